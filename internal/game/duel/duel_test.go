package duel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/utils"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newDuel(t *testing.T, cfg Config) (*game.State, *Duel) {
	t.Helper()
	st := &game.State{
		Players:   []game.Player{{ID: "alice"}, {ID: "bob"}},
		Phase:     game.PhaseInProgress,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	v, err := Factory(cfg)(st, game.Env{RNG: utils.NewRand(7)}, game.Options{})
	require.NoError(t, err)
	st.Board = v
	return st, v.(*Duel)
}

func shoot(st *game.State, actor string, at time.Time) error {
	return st.Board.Apply(st, game.Env{}, actor, game.Move{Action: ActionShoot, At: at})
}

func TestSignalDelayWithinBounds(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		st := &game.State{Players: []game.Player{{ID: "a"}, {ID: "b"}}, CreatedAt: t0}
		v, err := Factory(DefaultConfig())(st, game.Env{RNG: utils.NewRand(seed)}, game.Options{})
		require.NoError(t, err)
		delay := v.(*Duel).SignalAt.Sub(t0)
		assert.GreaterOrEqual(t, delay, 2*time.Second)
		assert.LessOrEqual(t, delay, 5*time.Second)
	}
}

func TestFalseStartLoses(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	require.NoError(t, shoot(st, "alice", d.SignalAt.Add(-time.Millisecond)))

	require.True(t, st.Finished())
	assert.Equal(t, "bob", st.Result.Winner)
	assert.Equal(t, "false start", st.Result.Reason)
}

func TestFirstShotWinsWithoutTieWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TieWindow = 0
	st, d := newDuel(t, cfg)

	require.NoError(t, shoot(st, "bob", d.SignalAt.Add(300*time.Millisecond)))
	require.True(t, st.Finished())
	assert.Equal(t, "bob", st.Result.Winner)
}

func TestLatencyBreaksTie(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())

	// bob 的消息先到，但 alice 的反应时间更短
	require.NoError(t, shoot(st, "bob", d.SignalAt.Add(250*time.Millisecond)))
	assert.False(t, st.Finished())
	require.NoError(t, shoot(st, "alice", d.SignalAt.Add(180*time.Millisecond)))

	require.True(t, st.Finished())
	assert.Equal(t, "alice", st.Result.Winner)
	assert.Equal(t, "bob", st.Result.Loser)
}

func TestEqualLatencyIsDraw(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	at := d.SignalAt.Add(100 * time.Millisecond)
	require.NoError(t, shoot(st, "alice", at))
	require.NoError(t, shoot(st, "bob", at))
	assert.True(t, st.Result.Draw)
}

func TestLateSecondShotLoses(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	require.NoError(t, shoot(st, "alice", d.SignalAt.Add(100*time.Millisecond)))
	require.NoError(t, shoot(st, "bob", d.SignalAt.Add(900*time.Millisecond)))
	assert.Equal(t, "alice", st.Result.Winner)
}

func TestDoubleShotRejected(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	require.NoError(t, shoot(st, "alice", d.SignalAt.Add(100*time.Millisecond)))
	err := shoot(st, "alice", d.SignalAt.Add(120*time.Millisecond))
	assert.True(t, apperr.Is(err, apperr.ErrInvalidMove))
}

func TestResolveAfterTieWindow(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	first := d.SignalAt.Add(100 * time.Millisecond)
	require.NoError(t, shoot(st, "bob", first))

	actor, mv, ok := d.DefaultAction(st)
	require.True(t, ok)
	assert.Equal(t, "bob", actor)

	mv.At = first.Add(50 * time.Millisecond)
	err := st.Board.Apply(st, game.Env{}, actor, mv)
	assert.True(t, apperr.Is(err, apperr.ErrInvalidMove))

	mv.At = first.Add(d.TieWindow)
	require.NoError(t, st.Board.Apply(st, game.Env{}, actor, mv))
	assert.Equal(t, "bob", st.Result.Winner)
}

func TestNoShotsHasNoDefaultAction(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	_, _, ok := d.DefaultAction(st)
	assert.False(t, ok)
}

func TestTimeoutPolicy(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	untilSignal := d.SignalAt.Sub(t0)
	assert.Equal(t, untilSignal+time.Minute, d.Timeout(st, time.Minute))

	first := d.SignalAt.Add(100 * time.Millisecond)
	require.NoError(t, shoot(st, "alice", first))
	st.UpdatedAt = first
	assert.Equal(t, d.TieWindow, d.Timeout(st, time.Minute))
}

func TestTimeoutDisabledBeforeFirstShot(t *testing.T) {
	st, d := newDuel(t, DefaultConfig())
	assert.Equal(t, time.Duration(0), d.Timeout(st, 0))

	first := d.SignalAt.Add(100 * time.Millisecond)
	require.NoError(t, shoot(st, "alice", first))
	st.UpdatedAt = first
	assert.Equal(t, d.TieWindow, d.Timeout(st, 0))
}

func TestSimultaneous(t *testing.T) {
	_, d := newDuel(t, DefaultConfig())
	assert.True(t, d.Simultaneous())
}
