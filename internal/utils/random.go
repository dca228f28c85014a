package utils

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"
)

// RNG 随机数源，游戏和神器都通过它取随机数以便测试时注入固定种子
type RNG interface {
	Intn(n int) int
	Int63n(n int64) int64
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// LockedRand 并发安全的 math/rand 包装
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand 使用指定种子创建随机数源
func NewRand(seed int64) *LockedRand {
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

// NewSecureSeededRand 使用 crypto/rand 生成种子
func NewSecureSeededRand() *LockedRand {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return NewRand(time.Now().UnixNano())
	}
	return NewRand(int64(binary.LittleEndian.Uint64(b[:])))
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *LockedRand) Int63n(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int63n(n)
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// IntBetween 返回 [lo, hi] 闭区间内的整数
func IntBetween(r RNG, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// DurationBetween 返回 [lo, hi] 闭区间内的时长
func DurationBetween(r RNG, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.Int63n(int64(hi-lo)+1))
}

// Clock 时间源
type Clock func() time.Time

// Now 返回当前时间，未设置时使用系统时间
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// FixedClock 可手动推进的时钟，测试用
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock 创建固定时钟
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now 返回当前时间
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance 推进时钟
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set 设置时钟
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
