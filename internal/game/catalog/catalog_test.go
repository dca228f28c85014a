package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/utils"
)

func TestEveryKindHasFactory(t *testing.T) {
	factories := New(config.Default().Game)
	for _, k := range game.Kinds {
		assert.Contains(t, factories, k)
	}
	assert.Len(t, factories, len(game.Kinds))
}

func TestCreateEveryKind(t *testing.T) {
	cfg := config.Default().Game
	sched := game.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	reg := game.NewRegistry(New(cfg), RegistryConfig(cfg),
		game.WithScheduler(sched),
		game.WithClock(sched.Now),
		game.WithRNG(utils.NewRand(1)))
	defer reg.Close()

	ctx := context.Background()
	for _, k := range game.Kinds {
		key := game.Key{Scope: "guild", Channel: string(k)}
		st, err := reg.Create(ctx, key, k, []string{"alice", "bob"}, game.Options{})
		require.NoError(t, err, "%s", k)
		assert.Equal(t, k, st.Kind)
		assert.Equal(t, k, st.Board.Kind())
		assert.False(t, st.Finished())
	}
	assert.Equal(t, len(game.Kinds), reg.Active())
}

func TestPokemonWaitingSideCanFlee(t *testing.T) {
	cfg := config.Default().Game
	sched := game.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	reg := game.NewRegistry(New(cfg), RegistryConfig(cfg),
		game.WithScheduler(sched),
		game.WithClock(sched.Now),
		game.WithRNG(utils.NewRand(1)))
	defer reg.Close()

	ctx := context.Background()
	key := game.Key{Scope: "guild", Channel: "arena"}
	st, err := reg.Create(ctx, key, game.KindPokemon, []string{"alice", "bob"},
		game.Options{Teams: [][]string{{"pikachu"}, {"geodude"}}})
	require.NoError(t, err)
	require.Equal(t, "alice", st.Current())

	moves, err := reg.LegalMoves(ctx, key, "bob")
	require.NoError(t, err)
	assert.Equal(t, []game.Move{{Action: "flee"}}, moves)

	// 非出手方只能逃跑
	_, err = reg.ApplyMove(ctx, key, "bob", game.Move{Action: "attack"})
	assert.Error(t, err)

	st, err = reg.ApplyMove(ctx, key, "bob", game.Move{Action: "flee"})
	require.NoError(t, err)
	require.True(t, st.Finished())
	assert.Equal(t, "alice", st.Result.Winner)
	assert.Equal(t, "bob", st.Result.Loser)
	assert.Equal(t, "fled", st.Result.Reason)
}

func TestDuelWithoutMoveTimeoutWaitsForShots(t *testing.T) {
	cfg := config.Default().Game
	cfg.MoveTimeout = 0
	sched := game.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	reg := game.NewRegistry(New(cfg), RegistryConfig(cfg),
		game.WithScheduler(sched),
		game.WithClock(sched.Now),
		game.WithRNG(utils.NewRand(1)))
	defer reg.Close()

	ctx := context.Background()
	key := game.Key{Scope: "guild", Channel: "saloon"}
	_, err := reg.Create(ctx, key, game.KindDuel, []string{"alice", "bob"}, game.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, sched.Pending())

	// 信号最晚 5s 后发出
	sched.Advance(cfg.Duel.MaxDelay + time.Second)
	st, err := reg.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, st.Finished())

	st, err = reg.ApplyMove(ctx, key, "alice", game.Move{Action: "shoot"})
	require.NoError(t, err)
	assert.False(t, st.Finished() && st.Result.Abandoned)

	sched.Advance(cfg.Duel.TieWindow + time.Millisecond)
	st, err = reg.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, st.Finished())
	assert.Equal(t, "alice", st.Result.Winner)
}
