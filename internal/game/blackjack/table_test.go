package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/utils"
)

func c(rank string) Card { return Card{Rank: rank, Suit: "♠"} }

func hand(ranks ...string) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = c(r)
	}
	return out
}

func TestHandValue(t *testing.T) {
	cases := []struct {
		hand  []Card
		total int
		soft  bool
	}{
		{hand("A", "K"), 21, true},
		{hand("K", "Q", "2"), 22, false},
		{hand("A", "A", "9"), 21, true},
		{hand("A", "K", "Q"), 21, false},
		{hand("A", "6"), 17, true},
		{hand("5", "7", "A", "A"), 14, false},
		{hand("9", "9", "A", "A", "A"), 21, false},
	}
	for _, tc := range cases {
		total, soft := HandValue(tc.hand)
		assert.Equal(t, tc.total, total, "%v", tc.hand)
		assert.Equal(t, tc.soft, soft, "%v", tc.hand)
	}

	assert.True(t, IsBlackjack(hand("A", "10")))
	assert.True(t, IsBlackjack(hand("J", "A")))
	assert.False(t, IsBlackjack(hand("7", "7", "7")))
	assert.True(t, IsBust(hand("K", "Q", "2")))
	assert.False(t, IsBust(hand("A", "A", "K", "9")))
}

func TestNewShoe(t *testing.T) {
	shoe := NewShoe(2, utils.NewRand(3))
	require.Len(t, shoe, 104)

	counts := map[Card]int{}
	for _, card := range shoe {
		counts[card]++
	}
	assert.Len(t, counts, 52)
	for _, n := range counts {
		assert.Equal(t, 2, n)
	}
}

var env = game.Env{RNG: utils.NewRand(11)}

func newTable(t *testing.T, players ...string) (*game.State, *Table) {
	t.Helper()
	st := &game.State{Phase: game.PhaseInProgress}
	for _, p := range players {
		st.Players = append(st.Players, game.Player{ID: p})
	}
	v, err := Factory(DefaultConfig())(st, env, game.Options{})
	require.NoError(t, err)
	st.Board = v
	return st, v.(*Table)
}

// stack 按抽牌顺序排好牌靴，并在底部垫 20 张避免重新洗牌
func stack(tb *Table, ranks ...string) {
	shoe := make([]Card, 0, len(ranks)+20)
	for i := 0; i < 20; i++ {
		shoe = append(shoe, c("2"))
	}
	for i := len(ranks) - 1; i >= 0; i-- {
		shoe = append(shoe, c(ranks[i]))
	}
	tb.Shoe = shoe
	tb.ShoeLeft = len(shoe)
}

func act(t *testing.T, st *game.State, actor, action string) {
	t.Helper()
	require.NoError(t, game.CheckActor(st, actor, game.Move{Action: action}))
	require.NoError(t, st.Board.Apply(st, env, actor, game.Move{Action: action}))
}

func TestRoundFlow(t *testing.T) {
	st, tb := newTable(t, "alice", "bob")
	assert.Equal(t, game.PhaseWaiting, st.Phase)

	// 庄家 10,7；alice 10,9；bob 10,5 再要一张 9
	stack(tb, "10", "7", "10", "9", "10", "5", "9")
	act(t, st, "bob", ActionDeal)

	assert.Equal(t, game.PhaseInProgress, st.Phase)
	assert.Equal(t, 1, st.Round)
	assert.Equal(t, "alice", st.Current())

	err := game.CheckActor(st, "bob", game.Move{Action: ActionHit})
	assert.True(t, apperr.Is(err, apperr.ErrNotYourTurn))

	act(t, st, "alice", ActionStand)
	assert.Equal(t, "bob", st.Current())
	act(t, st, "bob", ActionHit)

	// 全员结束，庄家 17 停牌并结算，回到等待阶段
	assert.Equal(t, game.PhaseWaiting, st.Phase)
	assert.Equal(t, OutcomeWin, tb.Seats[0].Outcome)
	assert.Equal(t, OutcomeBust, tb.Seats[1].Outcome)
	assert.Equal(t, 1, tb.Seats[0].Wins)
	assert.Len(t, st.Players, 2)

	// 下一轮沿用同一个牌靴
	left := tb.ShoeLeft
	act(t, st, "alice", ActionDeal)
	assert.Equal(t, 2, st.Round)
	assert.Equal(t, 1, tb.Shuffles)
	assert.Equal(t, left-6, tb.ShoeLeft)
}

func TestDealerDrawsBelowSeventeen(t *testing.T) {
	st, tb := newTable(t, "alice")
	// 庄家 10,3 再抽 5 到 18；alice 10,7 停牌
	stack(tb, "10", "3", "10", "7", "5")
	act(t, st, "alice", ActionDeal)
	act(t, st, "alice", ActionStand)

	total, _ := HandValue(tb.Dealer)
	assert.Equal(t, 18, total)
	assert.Equal(t, OutcomeLose, tb.Seats[0].Outcome)
}

func TestPushAndDealerBust(t *testing.T) {
	st, tb := newTable(t, "alice", "bob")
	// 庄家 10,6 抽 K 爆牌；alice 10,6；bob 10,7
	stack(tb, "10", "6", "10", "6", "10", "7", "K")
	act(t, st, "alice", ActionDeal)
	act(t, st, "alice", ActionStand)
	act(t, st, "bob", ActionStand)

	assert.Equal(t, OutcomeWin, tb.Seats[0].Outcome)
	assert.Equal(t, OutcomeWin, tb.Seats[1].Outcome)

	// 下一轮：庄家 10,8；alice 10,8 平局；bob 10,7 输
	stack(tb, "10", "8", "10", "8", "10", "7")
	act(t, st, "bob", ActionDeal)
	act(t, st, "alice", ActionStand)
	act(t, st, "bob", ActionStand)
	assert.Equal(t, OutcomePush, tb.Seats[0].Outcome)
	assert.Equal(t, OutcomeLose, tb.Seats[1].Outcome)
}

func TestNaturalBlackjackSkipsTurn(t *testing.T) {
	st, tb := newTable(t, "alice", "bob")
	stack(tb, "10", "7", "A", "K", "9", "5")
	act(t, st, "alice", ActionDeal)

	assert.Equal(t, StatusBlackjack, tb.Seats[0].Status)
	assert.Equal(t, "bob", st.Current())
	act(t, st, "bob", ActionStand)
	assert.Equal(t, OutcomeBlackjack, tb.Seats[0].Outcome)
}

func TestHitToTwentyOneAutoStands(t *testing.T) {
	st, tb := newTable(t, "alice", "bob")
	stack(tb, "10", "7", "5", "6", "9", "8", "K")
	act(t, st, "alice", ActionDeal)
	act(t, st, "alice", ActionHit)

	assert.Equal(t, StatusStood, tb.Seats[0].Status)
	assert.Equal(t, "bob", st.Current())
}

func TestReshuffleWhenShoeLow(t *testing.T) {
	st, tb := newTable(t, "alice")
	tb.Shoe = tb.Shoe[:10]
	tb.ShoeLeft = 10

	act(t, st, "alice", ActionDeal)
	assert.Equal(t, 2, tb.Shuffles)
	assert.LessOrEqual(t, tb.ShoeLeft, 52-4)
}

func TestActionsOutsidePhase(t *testing.T) {
	st, tb := newTable(t, "alice")
	err := st.Board.Apply(st, env, "alice", game.Move{Action: ActionHit})
	assert.True(t, apperr.Is(err, apperr.ErrInvalidMove))

	stack(tb, "10", "7", "10", "5")
	act(t, st, "alice", ActionDeal)
	err = st.Board.Apply(st, env, "alice", game.Move{Action: ActionDeal})
	assert.True(t, apperr.Is(err, apperr.ErrInvalidMove))
}

func TestLeaveWhileWaiting(t *testing.T) {
	st, tb := newTable(t, "alice", "bob")
	act(t, st, "bob", game.ActionLeave)
	assert.Equal(t, []game.Player{{ID: "alice"}}, st.Players)
	assert.Len(t, tb.Seats, 1)

	act(t, st, "alice", game.ActionLeave)
	require.True(t, st.Finished())
	assert.True(t, st.Result.Abandoned)
}

func TestLeaveDuringRound(t *testing.T) {
	st, tb := newTable(t, "alice", "bob", "carol")
	stack(tb, "10", "7", "10", "5", "10", "4", "10", "3")
	act(t, st, "alice", ActionDeal)

	act(t, st, "alice", game.ActionLeave)
	assert.Equal(t, "bob", st.Current())

	act(t, st, "bob", ActionStand)
	assert.Equal(t, "carol", st.Current())
	act(t, st, "carol", ActionStand)

	// 离开的玩家在本轮结算后移除
	assert.Equal(t, game.PhaseWaiting, st.Phase)
	assert.Len(t, st.Players, 2)
	assert.Equal(t, "bob", tb.Seats[0].Player)
}

func TestDefaultAction(t *testing.T) {
	st, tb := newTable(t, "alice")
	_, _, ok := tb.DefaultAction(st)
	assert.False(t, ok)

	stack(tb, "10", "7", "10", "5")
	act(t, st, "alice", ActionDeal)
	actor, mv, ok := tb.DefaultAction(st)
	require.True(t, ok)
	assert.Equal(t, "alice", actor)
	assert.Equal(t, ActionStand, mv.Action)
}

func TestJoinCapacity(t *testing.T) {
	_, tb := newTable(t, "alice")
	assert.Equal(t, 6, tb.Capacity())

	st := &game.State{}
	for _, p := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		st.Players = append(st.Players, game.Player{ID: p})
	}
	_, err := Factory(DefaultConfig())(st, env, game.Options{})
	assert.True(t, apperr.Is(err, apperr.ErrGameFull))
}
