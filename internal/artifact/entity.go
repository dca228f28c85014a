// Package artifact 神器实体：命令使用会悄悄改变它的属性，情绪与外观由属性和时间推导
package artifact

import (
	"fmt"
	"time"
)

// Stats 隐藏属性，均不小于 0
type Stats struct {
	Chaos  int `json:"chaos"`
	Greed  int `json:"greed"`
	Shadow int `json:"shadow"`
}

func (s *Stats) clamp() {
	if s.Chaos < 0 {
		s.Chaos = 0
	}
	if s.Greed < 0 {
		s.Greed = 0
	}
	if s.Shadow < 0 {
		s.Shadow = 0
	}
}

// Mood 情绪，只推导不存储
type Mood string

const (
	MoodDormant   Mood = "Dormant"
	MoodUnstable  Mood = "Unstable"
	MoodVoracious Mood = "Voracious"
	MoodEerie     Mood = "Eerie"
)

var moodTraits = map[Mood][]string{
	MoodDormant:   {"Humming", "Cold"},
	MoodUnstable:  {"Vibrating", "Hot"},
	MoodVoracious: {"Golden", "Heavy"},
	MoodEerie:     {"Whispering", "Dark"},
}

// Traits 情绪对应的外在特征
func (m Mood) Traits() []string {
	return append([]string(nil), moodTraits[m]...)
}

// Entity 神器
type Entity struct {
	Name         string     `json:"name"`
	Stats        Stats      `json:"stats"`
	CreatedAt    time.Time  `json:"created_at"`
	LastModified time.Time  `json:"last_modified"`
	LastDisturb  *time.Time `json:"last_disturb,omitempty"`
}

func (e Entity) clone() Entity {
	if e.LastDisturb != nil {
		t := *e.LastDisturb
		e.LastDisturb = &t
	}
	return e
}

// utc 统一转为 UTC，保证持久化往返一致
func (e Entity) utc() Entity {
	e = e.clone()
	e.CreatedAt = e.CreatedAt.UTC()
	e.LastModified = e.LastModified.UTC()
	if e.LastDisturb != nil {
		t := e.LastDisturb.UTC()
		e.LastDisturb = &t
	}
	return e
}

// AgeDays 诞生至今的整天数
func (e Entity) AgeDays(now time.Time) int {
	if now.Before(e.CreatedAt) {
		return 0
	}
	return int(now.Sub(e.CreatedAt) / (24 * time.Hour))
}

// MoodRules 情绪推导参数
type MoodRules struct {
	Threshold      int
	NightStartHour int
	NightEndHour   int
	EerieLinger    time.Duration
	Location       *time.Location
}

// InNight t 是否在夜间窗口 [start, end) 内，允许跨零点
func (r MoodRules) InNight(t time.Time) bool {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	h := t.In(loc).Hour()
	if r.NightStartHour <= r.NightEndHour {
		return h >= r.NightStartHour && h < r.NightEndHour
	}
	return h >= r.NightStartHour || h < r.NightEndHour
}

// DeriveMood 超过阈值的属性中取最大者，相同按 chaos > greed > shadow；
// shadow 只在夜间或最近一次修改发生在夜间且未超过 linger 时参与
func DeriveMood(s Stats, lastModified, now time.Time, r MoodRules) Mood {
	shadowLive := r.InNight(now) ||
		(r.InNight(lastModified) && now.Sub(lastModified) <= r.EerieLinger)

	mood, best := MoodDormant, r.Threshold
	if s.Chaos > best {
		mood, best = MoodUnstable, s.Chaos
	}
	if s.Greed > best {
		mood, best = MoodVoracious, s.Greed
	}
	if shadowLive && s.Shadow > best {
		mood = MoodEerie
	}
	return mood
}

// Appearance 外观参数：红绿蓝分别来自 chaos/greed/shadow，chaos 越高棱角越多，greed 越高越膨胀
type Appearance struct {
	Color  string `json:"color"`
	Points int    `json:"points"`
	Radius int    `json:"radius"`
}

func channel(v int) int {
	c := 50 + 2*v
	if c > 255 {
		return 255
	}
	return c
}

// AppearanceOf 由属性计算外观
func AppearanceOf(s Stats) Appearance {
	return Appearance{
		Color:  fmt.Sprintf("#%02x%02x%02x", channel(s.Chaos), channel(s.Greed), channel(s.Shadow)),
		Points: 5 + s.Chaos/5,
		Radius: 50 + s.Greed,
	}
}

// View 对外的只读视图
type View struct {
	Entity
	Mood       Mood       `json:"mood"`
	Traits     []string   `json:"traits"`
	AgeDays    int        `json:"age_days"`
	Appearance Appearance `json:"appearance"`
}

// ViewOf 在 now 时刻观察实体
func ViewOf(e Entity, now time.Time, r MoodRules) View {
	mood := DeriveMood(e.Stats, e.LastModified, now, r)
	return View{
		Entity:     e.clone(),
		Mood:       mood,
		Traits:     mood.Traits(),
		AgeDays:    e.AgeDays(now),
		Appearance: AppearanceOf(e.Stats),
	}
}
