package artifact

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/bugg-bot/internal/config"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/logger"
	"github.com/wfunc/bugg-bot/internal/utils"
	"go.uber.org/zap"
)

// Category 命令使用类别
type Category string

const (
	Neutral    Category = "neutral"
	Gambling   Category = "gambling"
	Market     Category = "market"
	NightUsage Category = "night"
)

// ParseCategory 解析类别，未知返回 false
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case Neutral, Gambling, Market, NightUsage:
		return c, true
	}
	return "", false
}

// Outcome 扰动结果
type Outcome string

const (
	OutcomeCalm  Outcome = "calm"
	OutcomeAnger Outcome = "anger"
)

// Config 神器参数
type Config struct {
	Name              string
	GamblingIncrement int
	MarketIncrement   int
	NightIncrement    int
	TouchMax          int
	DisturbSwing      int
	DisturbCooldown   time.Duration
	Rules             MoodRules
}

// DefaultConfig 默认参数，夜间窗口 0-6 点
func DefaultConfig() Config {
	return Config{
		Name:              "The Cracked Compass",
		GamblingIncrement: 1,
		MarketIncrement:   1,
		NightIncrement:    1,
		TouchMax:          2,
		DisturbSwing:      25,
		DisturbCooldown:   10 * time.Minute,
		Rules: MoodRules{
			Threshold:      50,
			NightStartHour: 0,
			NightEndHour:   6,
			EerieLinger:    time.Hour,
			Location:       time.Local,
		},
	}
}

// FromConfig 由配置文件构造
func FromConfig(c config.ArtifactConfig, loc *time.Location) Config {
	return Config{
		Name:              c.Name,
		GamblingIncrement: c.GamblingIncrement,
		MarketIncrement:   c.MarketIncrement,
		NightIncrement:    c.NightIncrement,
		TouchMax:          c.TouchMax,
		DisturbSwing:      c.DisturbSwing,
		DisturbCooldown:   c.DisturbCooldown,
		Rules: MoodRules{
			Threshold:      c.MoodThreshold,
			NightStartHour: c.NightStartHour,
			NightEndHour:   c.NightEndHour,
			EerieLinger:    c.EerieLinger,
			Location:       loc,
		},
	}
}

// TouchResult 触摸结果
type TouchResult struct {
	View
	Stat     string `json:"stat"`
	Delta    int    `json:"delta"`
	Response string `json:"response"`
}

// DisturbResult 扰动结果
type DisturbResult struct {
	View
	Outcome  Outcome `json:"outcome"`
	Response string  `json:"response"`
}

// Store 神器存储
//
// 所有修改经由同一把锁；持久化在锁外进行，按版本号丢弃过期快照。
type Store struct {
	mu      sync.Mutex
	entity  Entity
	version uint64

	saveMu sync.Mutex
	saved  uint64

	cfg       Config
	persister Persister
	rng       utils.RNG
	now       func() time.Time
	logger    *zap.Logger
}

// Option 存储选项
type Option func(*Store)

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRNG 设置随机数源
func WithRNG(rng utils.RNG) Option {
	return func(s *Store) { s.rng = rng }
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open 加载快照并创建存储；没有快照时从零属性开始
func Open(ctx context.Context, cfg Config, persister Persister, opts ...Option) (*Store, error) {
	s := &Store{
		cfg:       cfg,
		persister: persister,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = utils.NewSecureSeededRand()
	}
	if s.persister == nil {
		s.persister = NewMemoryPersister()
	}

	snap, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Error("加载神器快照失败", zap.Error(err))
		return nil, err
	}
	if snap == nil {
		now := s.now()
		s.entity = Entity{Name: cfg.Name, CreatedAt: now, LastModified: now}
		s.logger.Info("未找到神器快照，使用初始状态", zap.String("name", cfg.Name))
		return s, nil
	}

	s.entity = snap.Entity.clone()
	if s.entity.Name == "" {
		s.entity.Name = cfg.Name
	}
	s.version, s.saved = snap.Version, snap.Version
	logger.LogArtifactEvent(s.logger, "loaded", s.entity.Stats.Chaos, s.entity.Stats.Greed, s.entity.Stats.Shadow,
		zap.Uint64("version", snap.Version))
	return s, nil
}

// Config 当前参数
func (s *Store) Config() Config { return s.cfg }

// Status 只读视图
func (s *Store) Status(ctx context.Context) View {
	s.mu.Lock()
	e := s.entity.clone()
	s.mu.Unlock()
	return ViewOf(e, s.now(), s.cfg.Rules)
}

// mutate 在锁内修改，锁外持久化；fn 返回错误时不做任何修改，applied 为 false
func (s *Store) mutate(ctx context.Context, event string, fn func(e *Entity, now time.Time) error) (view View, applied bool, err error) {
	s.mu.Lock()
	now := s.now()
	work := s.entity.clone()
	if err := fn(&work, now); err != nil {
		s.mu.Unlock()
		return View{}, false, err
	}
	work.Stats.clamp()
	work.LastModified = now
	s.entity = work
	s.version++
	snap := &Snapshot{Entity: work.clone(), Version: s.version}
	s.mu.Unlock()

	logger.LogArtifactEvent(s.logger, event, work.Stats.Chaos, work.Stats.Greed, work.Stats.Shadow,
		zap.Uint64("version", snap.Version))

	view = ViewOf(snap.Entity, now, s.cfg.Rules)
	return view, true, s.persist(ctx, snap)
}

// persist 按版本号顺序写入，比已保存版本旧的快照直接丢弃
func (s *Store) persist(ctx context.Context, snap *Snapshot) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if snap.Version <= s.saved {
		return nil
	}
	if err := s.persister.Save(ctx, snap); err != nil {
		s.logger.Error("保存神器快照失败，内存状态已生效",
			zap.Uint64("version", snap.Version), zap.Error(err))
		return apperr.Wrap(err, apperr.ErrArtifactPersist)
	}
	s.saved = snap.Version
	return nil
}

// ReportUsage 记录一次命令使用；夜间窗口内额外增加 shadow
func (s *Store) ReportUsage(ctx context.Context, c Category) (View, error) {
	view, _, err := s.mutate(ctx, "usage:"+string(c), func(e *Entity, now time.Time) error {
		switch c {
		case Gambling:
			e.Stats.Chaos += s.cfg.GamblingIncrement
		case Market:
			e.Stats.Greed += s.cfg.MarketIncrement
		case Neutral, NightUsage:
		default:
			return apperr.Newf(apperr.ErrInvalidParam, "未知类别 %q", c)
		}
		if s.cfg.Rules.InNight(now) {
			e.Stats.Shadow += s.cfg.NightIncrement
		}
		return nil
	})
	return view, err
}

var statNames = []string{"chaos", "greed", "shadow"}

func statRef(st *Stats, name string) *int {
	switch name {
	case "chaos":
		return &st.Chaos
	case "greed":
		return &st.Greed
	default:
		return &st.Shadow
	}
}

// Touch 随机一项属性小幅变化，幅度不超过 TouchMax
func (s *Store) Touch(ctx context.Context) (TouchResult, error) {
	var res TouchResult
	view, applied, err := s.mutate(ctx, "touch", func(e *Entity, now time.Time) error {
		mood := DeriveMood(e.Stats, e.LastModified, now, s.cfg.Rules)
		res.Response = pick(s.rng, touchResponses[mood])
		res.Stat = statNames[s.rng.Intn(len(statNames))]
		ref := statRef(&e.Stats, res.Stat)
		before := *ref
		*ref = max(before+utils.IntBetween(s.rng, -s.cfg.TouchMax, s.cfg.TouchMax), 0)
		// 记录截断后的实际变化
		res.Delta = *ref - before
		return nil
	})
	if !applied {
		return TouchResult{}, err
	}
	res.View = view
	return res, err
}

// Disturb 大幅扰动；冷却期内返回 OnCooldown 且不修改
func (s *Store) Disturb(ctx context.Context) (DisturbResult, error) {
	var res DisturbResult
	view, applied, err := s.mutate(ctx, "disturb", func(e *Entity, now time.Time) error {
		if e.LastDisturb != nil && s.cfg.DisturbCooldown > 0 {
			if remaining := e.LastDisturb.Add(s.cfg.DisturbCooldown).Sub(now); remaining > 0 {
				return apperr.Newf(apperr.ErrOnCooldown, "剩余 %s", remaining.Round(time.Second))
			}
		}

		swing := s.cfg.DisturbSwing
		if s.rng.Intn(2) == 0 {
			res.Outcome = OutcomeCalm
			e.Stats.Chaos -= utils.IntBetween(s.rng, 0, swing)
			e.Stats.Greed -= utils.IntBetween(s.rng, 0, swing)
			e.Stats.Shadow -= utils.IntBetween(s.rng, 0, swing)
			res.Response = pick(s.rng, disturbCalm)
		} else {
			res.Outcome = OutcomeAnger
			e.Stats.Chaos += utils.IntBetween(s.rng, swing/2, swing)
			e.Stats.Greed += utils.IntBetween(s.rng, -swing/2, swing/2)
			e.Stats.Shadow += utils.IntBetween(s.rng, -swing/2, swing/2)
			res.Response = pick(s.rng, disturbAnger)
		}
		t := now
		e.LastDisturb = &t
		return nil
	})
	if !applied {
		return DisturbResult{}, err
	}
	res.View = view
	return res, err
}

// CooldownRemaining 距离下次可扰动的时间
func (s *Store) CooldownRemaining() time.Duration {
	s.mu.Lock()
	last := s.entity.LastDisturb
	s.mu.Unlock()
	if last == nil {
		return 0
	}
	if d := last.Add(s.cfg.DisturbCooldown).Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

func pick(rng utils.RNG, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rng.Intn(len(pool))]
}
