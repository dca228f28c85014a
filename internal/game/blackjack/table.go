// Package blackjack 多人21点：等待阶段入座，发牌后按座位顺序要牌或停牌，庄家不足 17 点继续要牌
package blackjack

import (
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/utils"
)

const (
	ActionDeal  = "deal"
	ActionHit   = "hit"
	ActionStand = "stand"
)

// 座位状态
const (
	StatusWaiting   = "waiting"
	StatusPlaying   = "playing"
	StatusStood     = "stood"
	StatusBusted    = "busted"
	StatusBlackjack = "blackjack"
	StatusLeft      = "left"
)

// Outcome 一轮结算结果
type Outcome string

const (
	OutcomeBlackjack Outcome = "blackjack"
	OutcomeWin       Outcome = "win"
	OutcomePush      Outcome = "push"
	OutcomeLose      Outcome = "lose"
	OutcomeBust      Outcome = "bust"
)

// Config 牌桌配置
type Config struct {
	Decks          int
	MaxPlayers     int
	ReshuffleBelow int
	DealerStand    int
}

// DefaultConfig 单副牌，最多 6 人，剩余不足 15 张时重新洗牌
func DefaultConfig() Config {
	return Config{Decks: 1, MaxPlayers: 6, ReshuffleBelow: 15, DealerStand: 17}
}

// Seat 座位，与 State.Players 一一对应
type Seat struct {
	Player  string  `json:"player"`
	Hand    []Card  `json:"hand"`
	Status  string  `json:"status"`
	Outcome Outcome `json:"outcome,omitempty"`
	Wins    int     `json:"wins"`
}

// Table 牌桌
type Table struct {
	Shoe     []Card `json:"-"`
	ShoeLeft int    `json:"shoe_left"`
	Dealer   []Card `json:"dealer"`
	Seats    []Seat `json:"seats"`
	Shuffles int    `json:"shuffles"`
	cfg      Config
}

// Factory 返回带配置的工厂；牌桌创建后处于等待阶段
func Factory(cfg Config) game.Factory {
	return func(st *game.State, env game.Env, _ game.Options) (game.Variant, error) {
		if len(st.Players) > cfg.MaxPlayers {
			return nil, apperr.Newf(apperr.ErrGameFull, "上限 %d", cfg.MaxPlayers)
		}
		t := &Table{cfg: cfg}
		t.reshuffle(env.RNG)
		for _, p := range st.Players {
			t.Seats = append(t.Seats, Seat{Player: p.ID, Status: StatusWaiting})
		}
		st.Phase = game.PhaseWaiting
		st.Turn = 0
		return t, nil
	}
}

func (t *Table) Kind() game.Kind { return game.KindBlackjack }

func (t *Table) Capacity() int { return t.cfg.MaxPlayers }

// OnJoin 新玩家入座，下一轮开始参与
func (t *Table) OnJoin(st *game.State, _ game.Env, actor string) error {
	for i := range t.Seats {
		if t.Seats[i].Player == actor {
			t.Seats[i].Status = StatusWaiting
			return nil
		}
	}
	t.Seats = append(t.Seats, Seat{Player: actor, Status: StatusWaiting})
	return nil
}

func (t *Table) reshuffle(rng utils.RNG) {
	t.Shoe = NewShoe(t.cfg.Decks, rng)
	t.ShoeLeft = len(t.Shoe)
	t.Shuffles++
}

func (t *Table) draw(rng utils.RNG) Card {
	if len(t.Shoe) == 0 {
		t.reshuffle(rng)
	}
	c := t.Shoe[len(t.Shoe)-1]
	t.Shoe = t.Shoe[:len(t.Shoe)-1]
	t.ShoeLeft = len(t.Shoe)
	return c
}

func (t *Table) seat(player string) *Seat {
	for i := range t.Seats {
		if t.Seats[i].Player == player {
			return &t.Seats[i]
		}
	}
	return nil
}

func (t *Table) Apply(st *game.State, env game.Env, actor string, mv game.Move) error {
	switch mv.Action {
	case game.ActionLeave:
		return t.leave(st, env, actor)
	case ActionDeal:
		return t.deal(st, env)
	case ActionHit, ActionStand:
		if st.Phase != game.PhaseInProgress {
			return apperr.New(apperr.ErrInvalidMove, "本轮尚未发牌")
		}
		s := t.seat(actor)
		if s == nil || s.Status != StatusPlaying {
			return apperr.Newf(apperr.ErrInvalidMove, "%s 当前不能操作", actor)
		}
		if mv.Action == ActionHit {
			s.Hand = append(s.Hand, t.draw(env.RNG))
			total, _ := HandValue(s.Hand)
			switch {
			case total > 21:
				s.Status = StatusBusted
			case total == 21:
				s.Status = StatusStood
			default:
				return nil
			}
		} else {
			s.Status = StatusStood
		}
		return t.advance(st, env)
	default:
		return apperr.Newf(apperr.ErrInvalidMove, "未知动作 %q", mv.Action)
	}
}

// deal 开始新一轮，沿用同一个牌靴
func (t *Table) deal(st *game.State, env game.Env) error {
	if st.Phase != game.PhaseWaiting {
		return apperr.New(apperr.ErrInvalidMove, "本轮正在进行")
	}
	if len(t.Shoe) < t.cfg.ReshuffleBelow {
		t.reshuffle(env.RNG)
	}

	t.Dealer = []Card{t.draw(env.RNG), t.draw(env.RNG)}
	for i := range t.Seats {
		s := &t.Seats[i]
		s.Outcome = ""
		s.Hand = []Card{t.draw(env.RNG), t.draw(env.RNG)}
		s.Status = StatusPlaying
		if IsBlackjack(s.Hand) {
			s.Status = StatusBlackjack
		}
	}

	if err := st.Start(); err != nil {
		return err
	}
	st.Round++
	st.Turn = len(t.Seats) - 1
	return t.advance(st, env)
}

// advance 轮到下一个还在要牌的座位；没有则庄家行动并结算
func (t *Table) advance(st *game.State, env game.Env) error {
	n := len(t.Seats)
	for step := 1; step <= n; step++ {
		i := (st.Turn + step) % n
		if t.Seats[i].Status == StatusPlaying && !st.Players[i].Forfeited {
			st.Turn = i
			return nil
		}
	}
	return t.settle(st, env)
}

func (t *Table) dealerPlay(env game.Env) int {
	total, _ := HandValue(t.Dealer)
	for total < t.cfg.DealerStand {
		t.Dealer = append(t.Dealer, t.draw(env.RNG))
		total, _ = HandValue(t.Dealer)
	}
	return total
}

func (t *Table) settle(st *game.State, env game.Env) error {
	dealer := t.dealerPlay(env)
	dealerBJ := IsBlackjack(t.Dealer)

	for i := range t.Seats {
		s := &t.Seats[i]
		if s.Status == StatusLeft {
			continue
		}
		total, _ := HandValue(s.Hand)
		switch {
		case s.Status == StatusBusted:
			s.Outcome = OutcomeBust
		case s.Status == StatusBlackjack && !dealerBJ:
			s.Outcome = OutcomeBlackjack
		case dealerBJ && s.Status != StatusBlackjack:
			s.Outcome = OutcomeLose
		case dealer > 21 || total > dealer:
			s.Outcome = OutcomeWin
		case total == dealer:
			s.Outcome = OutcomePush
		default:
			s.Outcome = OutcomeLose
		}
		if s.Outcome == OutcomeWin || s.Outcome == OutcomeBlackjack {
			s.Wins++
		}
		s.Status = StatusWaiting
	}

	t.dropLeft(st)
	if len(st.Players) == 0 {
		return st.Finish(game.Result{Abandoned: true, Reason: "table empty"})
	}
	st.Turn = 0
	return st.Pause()
}

// dropLeft 移除已离开的座位
func (t *Table) dropLeft(st *game.State) {
	seats := t.Seats[:0]
	players := st.Players[:0]
	for i, s := range t.Seats {
		if s.Status == StatusLeft || st.Players[i].Forfeited {
			continue
		}
		seats = append(seats, s)
		players = append(players, st.Players[i])
	}
	t.Seats = seats
	st.Players = players
}

func (t *Table) leave(st *game.State, env game.Env, actor string) error {
	i := st.PlayerIndex(actor)
	if i < 0 {
		return apperr.Newf(apperr.ErrInvalidMove, "%s 不在牌桌上", actor)
	}

	if st.Phase == game.PhaseWaiting {
		t.Seats[i].Status = StatusLeft
		t.dropLeft(st)
		st.Turn = 0
		if len(st.Players) == 0 {
			return st.Finish(game.Result{Abandoned: true, Reason: "table empty"})
		}
		return nil
	}

	wasTurn := st.Turn == i
	t.Seats[i].Status = StatusLeft
	st.Players[i].Forfeited = true
	if len(st.Active()) == 0 {
		t.dropLeft(st)
		return st.Finish(game.Result{Abandoned: true, Reason: "table empty"})
	}
	if wasTurn {
		return t.advance(st, env)
	}
	return nil
}

// IsTerminal 牌桌只在所有人离开或被强制结束时终止
func (t *Table) IsTerminal(*game.State) *game.Result { return nil }

func (t *Table) LegalMoves(st *game.State, actor string) []game.Move {
	if !st.Seated(actor) {
		return nil
	}
	leave := game.Move{Action: game.ActionLeave}
	if st.Phase == game.PhaseWaiting {
		return []game.Move{{Action: ActionDeal}, leave}
	}
	if st.Current() == actor {
		return []game.Move{{Action: ActionHit}, {Action: ActionStand}, leave}
	}
	return []game.Move{leave}
}

// DefaultAction 超时自动停牌；等待阶段无人发牌则关桌
func (t *Table) DefaultAction(st *game.State) (string, game.Move, bool) {
	if st.Phase != game.PhaseInProgress {
		return "", game.Move{}, false
	}
	return st.Current(), game.Move{Action: ActionStand}, true
}

func (t *Table) Clone() game.Variant {
	c := *t
	c.Shoe = append([]Card(nil), t.Shoe...)
	c.Dealer = append([]Card(nil), t.Dealer...)
	c.Seats = make([]Seat, len(t.Seats))
	for i, s := range t.Seats {
		s.Hand = append([]Card(nil), s.Hand...)
		c.Seats[i] = s
	}
	return &c
}
