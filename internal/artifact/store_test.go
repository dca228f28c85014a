package artifact

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/utils"
)

// scripted 按顺序返回预设的 Intn 结果
type scripted struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *scripted) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	if v >= n {
		return n - 1
	}
	return v
}
func (s *scripted) Int63n(n int64) int64        { return int64(s.Intn(int(n))) }
func (s *scripted) Float64() float64            { return 0 }
func (s *scripted) Shuffle(int, func(i, j int)) {}

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *utils.FixedClock
	mem   *MemoryPersister
	cfg   Config
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = utils.NewFixedClock(at(12, 0))
	s.mem = NewMemoryPersister()
	s.cfg = DefaultConfig()
	s.cfg.Rules = rules
}

func (s *StoreTestSuite) open(rng utils.RNG) *Store {
	if rng == nil {
		rng = utils.NewRand(42)
	}
	st, err := Open(s.ctx, s.cfg, s.mem, WithClock(s.clock.Now), WithRNG(rng))
	s.Require().NoError(err)
	return st
}

func (s *StoreTestSuite) TestFreshStore() {
	st := s.open(nil)
	v := st.Status(s.ctx)
	s.Equal("The Cracked Compass", v.Name)
	s.Equal(Stats{}, v.Stats)
	s.Equal(MoodDormant, v.Mood)
	s.Equal(at(12, 0), v.CreatedAt)
	s.Zero(s.mem.Saves())
}

func (s *StoreTestSuite) TestGamblingOnlyRaisesChaos() {
	st := s.open(nil)
	for i := 0; i < 7; i++ {
		_, err := st.ReportUsage(s.ctx, Gambling)
		s.Require().NoError(err)
	}
	v := st.Status(s.ctx)
	s.Equal(7, v.Stats.Chaos)
	s.Zero(v.Stats.Greed)
	s.Zero(v.Stats.Shadow)
	s.Equal(7, s.mem.Saves())
}

func (s *StoreTestSuite) TestMarketRaisesGreed() {
	st := s.open(nil)
	v, err := st.ReportUsage(s.ctx, Market)
	s.Require().NoError(err)
	s.Equal(Stats{Greed: 1}, v.Stats)
}

func (s *StoreTestSuite) TestNightUsage() {
	st := s.open(nil)

	// 白天显式上报夜间类别等同中性
	v, err := st.ReportUsage(s.ctx, NightUsage)
	s.Require().NoError(err)
	s.Equal(Stats{}, v.Stats)

	s.clock.Set(at(2, 30))
	v, err = st.ReportUsage(s.ctx, Gambling)
	s.Require().NoError(err)
	s.Equal(Stats{Chaos: 1, Shadow: 1}, v.Stats)

	v, err = st.ReportUsage(s.ctx, Neutral)
	s.Require().NoError(err)
	s.Equal(Stats{Chaos: 1, Shadow: 2}, v.Stats)

	v, err = st.ReportUsage(s.ctx, NightUsage)
	s.Require().NoError(err)
	s.Equal(3, v.Stats.Shadow)
}

func (s *StoreTestSuite) TestUnknownCategory() {
	st := s.open(nil)
	_, err := st.ReportUsage(s.ctx, Category("weather"))
	s.True(apperr.Is(err, apperr.ErrInvalidParam))
	s.Zero(s.mem.Saves())
}

func (s *StoreTestSuite) TestMoodCrossesThreshold() {
	s.cfg.GamblingIncrement = 10
	st := s.open(nil)
	for i := 0; i < 5; i++ {
		v, err := st.ReportUsage(s.ctx, Gambling)
		s.Require().NoError(err)
		s.Equal(MoodDormant, v.Mood)
	}
	v, err := st.ReportUsage(s.ctx, Gambling)
	s.Require().NoError(err)
	s.Equal(MoodUnstable, v.Mood)
	s.Equal([]string{"Vibrating", "Hot"}, v.Traits)
}

func (s *StoreTestSuite) TestTouchReportsAppliedDelta() {
	st := s.open(nil)
	prev := st.Status(s.ctx).Stats
	sawClamp := false
	for i := 0; i < 300; i++ {
		res, err := st.Touch(s.ctx)
		s.Require().NoError(err)
		after := res.Stats
		s.Equal(*statRef(&after, res.Stat)-*statRef(&prev, res.Stat), res.Delta)
		if *statRef(&prev, res.Stat) == 0 && res.Delta == 0 {
			sawClamp = true
		}
		prev = after
	}
	s.True(sawClamp)
}

func (s *StoreTestSuite) TestTouchIsBoundedAndNonNegative() {
	st := s.open(nil)
	for i := 0; i < 300; i++ {
		res, err := st.Touch(s.ctx)
		s.Require().NoError(err)
		s.LessOrEqual(res.Delta, 2)
		s.GreaterOrEqual(res.Delta, -2)
		s.Contains(statNames, res.Stat)
		s.NotEmpty(res.Response)
		s.GreaterOrEqual(res.Stats.Chaos, 0)
		s.GreaterOrEqual(res.Stats.Greed, 0)
		s.GreaterOrEqual(res.Stats.Shadow, 0)
	}
}

func (s *StoreTestSuite) TestDisturbCooldown() {
	st := s.open(nil)

	first, err := st.Disturb(s.ctx)
	s.Require().NoError(err)
	s.Contains([]Outcome{OutcomeCalm, OutcomeAnger}, first.Outcome)
	saves := s.mem.Saves()

	s.clock.Advance(9 * time.Minute)
	_, err = st.Disturb(s.ctx)
	s.Require().Error(err)
	s.True(apperr.Is(err, apperr.ErrOnCooldown))
	s.Contains(err.Error(), "1m0s")
	s.Equal(first.Stats, st.Status(s.ctx).Stats)
	s.Equal(saves, s.mem.Saves())
	s.Equal(time.Minute, st.CooldownRemaining())

	s.clock.Advance(time.Minute)
	_, err = st.Disturb(s.ctx)
	s.NoError(err)
}

func (s *StoreTestSuite) TestDisturbCalm() {
	s.cfg.GamblingIncrement = 30
	st := s.open(&scripted{vals: []int{0, 25, 10, 5, 0}})
	_, err := st.ReportUsage(s.ctx, Gambling)
	s.Require().NoError(err)

	res, err := st.Disturb(s.ctx)
	s.Require().NoError(err)
	s.Equal(OutcomeCalm, res.Outcome)
	// chaos 30-25，其余从 0 开始被截断
	s.Equal(Stats{Chaos: 5}, res.Stats)
	s.NotEmpty(res.Response)
}

func (s *StoreTestSuite) TestDisturbAnger() {
	// 1 → anger；chaos +12+10，greed -12+20，shadow -12+0
	st := s.open(&scripted{vals: []int{1, 10, 20, 0, 0}})
	res, err := st.Disturb(s.ctx)
	s.Require().NoError(err)
	s.Equal(OutcomeAnger, res.Outcome)
	s.Equal(Stats{Chaos: 22, Greed: 8, Shadow: 0}, res.Stats)
}

func (s *StoreTestSuite) TestPersistFailureKeepsMemoryState() {
	st := s.open(nil)
	s.mem.FailWith(stderrors.New("disk full"))

	v, err := st.ReportUsage(s.ctx, Gambling)
	s.Require().Error(err)
	s.True(apperr.Is(err, apperr.ErrArtifactPersist))
	s.Equal(1, v.Stats.Chaos)
	s.Equal(1, st.Status(s.ctx).Stats.Chaos)

	s.mem.FailWith(nil)
	_, err = st.ReportUsage(s.ctx, Gambling)
	s.Require().NoError(err)

	snap, err := s.mem.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, snap.Stats.Chaos)
	s.Equal(uint64(2), snap.Version)
}

func (s *StoreTestSuite) TestReloadFromSnapshot() {
	st := s.open(nil)
	_, err := st.ReportUsage(s.ctx, Market)
	s.Require().NoError(err)
	_, err = st.Disturb(s.ctx)
	s.Require().NoError(err)
	before := st.Status(s.ctx)

	again := s.open(nil)
	after := again.Status(s.ctx)
	s.Equal(before.Stats, after.Stats)
	s.Require().NotNil(after.LastDisturb)
	s.True(before.LastDisturb.Equal(*after.LastDisturb))

	_, err = again.Disturb(s.ctx)
	s.True(apperr.Is(err, apperr.ErrOnCooldown))
}

func (s *StoreTestSuite) TestConcurrentUsage() {
	st := s.open(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = st.ReportUsage(s.ctx, Gambling)
		}()
		go func() {
			defer wg.Done()
			_, _ = st.ReportUsage(s.ctx, Market)
		}()
	}
	wg.Wait()

	v := st.Status(s.ctx)
	s.Equal(50, v.Stats.Chaos)
	s.Equal(50, v.Stats.Greed)

	snap, err := s.mem.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(100), snap.Version)
	s.Equal(v.Stats, snap.Stats)
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("gambling")
	require.True(t, ok)
	assert.Equal(t, Gambling, c)
	_, ok = ParseCategory("weather")
	assert.False(t, ok)
}

func TestResponsePools(t *testing.T) {
	for _, m := range []Mood{MoodDormant, MoodUnstable, MoodVoracious, MoodEerie} {
		assert.Len(t, touchResponses[m], 10, string(m))
	}
	assert.Len(t, disturbCalm, 10)
	assert.Len(t, disturbAnger, 10)
}
