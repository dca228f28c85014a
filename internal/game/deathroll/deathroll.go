// Package deathroll 死亡骰子：轮流在 [1, 上限] 掷骰，掷出的点数成为新上限，掷出 1 者输
package deathroll

import (
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
)

const ActionRoll = "roll"

// Config 上限配置
type Config struct {
	DefaultCeiling int
	MinCeiling     int
	MaxCeiling     int
}

// DefaultConfig 默认上限 100，可选范围 2-10000
func DefaultConfig() Config {
	return Config{DefaultCeiling: 100, MinCeiling: 2, MaxCeiling: 10000}
}

// Roll 一次掷骰记录
type Roll struct {
	Player  string `json:"player"`
	Ceiling int    `json:"ceiling"`
	Value   int    `json:"value"`
}

// Game 死亡骰子状态
type Game struct {
	Start   int    `json:"start"`
	Ceiling int    `json:"ceiling"`
	Rolls   []Roll `json:"rolls"`
}

// Factory 返回带配置的工厂；单人创建时进入等待阶段
func Factory(cfg Config) game.Factory {
	return func(st *game.State, _ game.Env, opts game.Options) (game.Variant, error) {
		ceiling := opts.Ceiling
		if ceiling == 0 {
			ceiling = cfg.DefaultCeiling
		}
		if ceiling < cfg.MinCeiling || ceiling > cfg.MaxCeiling {
			return nil, apperr.Newf(apperr.ErrInvalidParam, "上限需在 %d-%d 之间", cfg.MinCeiling, cfg.MaxCeiling)
		}
		switch len(st.Players) {
		case 1:
			st.Phase = game.PhaseWaiting
		case 2:
			st.Phase = game.PhaseInProgress
		default:
			return nil, apperr.Newf(apperr.ErrInvalidParam, "死亡骰子需要 1-2 名玩家")
		}
		st.Turn = 0
		return &Game{Start: ceiling, Ceiling: ceiling}, nil
	}
}

func (g *Game) Kind() game.Kind { return game.KindDeathRoll }

func (g *Game) Capacity() int { return 2 }

// OnJoin 对手加入后开局，发起者先掷
func (g *Game) OnJoin(st *game.State, _ game.Env, _ string) error {
	if len(st.Active()) == 2 {
		st.Turn = 0
		return st.Start()
	}
	return nil
}

func (g *Game) Apply(st *game.State, env game.Env, actor string, mv game.Move) error {
	switch mv.Action {
	case game.ActionLeave:
		if st.Phase == game.PhaseWaiting {
			return st.Finish(game.Result{Abandoned: true, Reason: "host left"})
		}
		return game.ForfeitHeadsUp(st, actor)
	case ActionRoll, "":
	default:
		return apperr.Newf(apperr.ErrInvalidMove, "未知动作 %q", mv.Action)
	}

	if st.Phase != game.PhaseInProgress {
		return apperr.New(apperr.ErrInvalidMove, "等待对手加入")
	}

	value := 1 + env.RNG.Intn(g.Ceiling)
	g.Rolls = append(g.Rolls, Roll{Player: actor, Ceiling: g.Ceiling, Value: value})
	g.Ceiling = value
	if value == 1 {
		return nil
	}
	return game.Advance(st)
}

// IsTerminal 最后一次掷出 1 时对手获胜
func (g *Game) IsTerminal(st *game.State) *game.Result {
	if len(g.Rolls) == 0 {
		return nil
	}
	last := g.Rolls[len(g.Rolls)-1]
	if last.Value != 1 {
		return nil
	}
	return &game.Result{Winner: st.Opponent(last.Player), Loser: last.Player, Reason: "rolled 1"}
}

func (g *Game) LegalMoves(st *game.State, actor string) []game.Move {
	if st.Phase != game.PhaseInProgress || st.Current() != actor {
		return []game.Move{{Action: game.ActionLeave}}
	}
	return []game.Move{{Action: ActionRoll}, {Action: game.ActionLeave}}
}

// DefaultAction 超时自动替当前玩家掷骰；等待阶段超时判弃局
func (g *Game) DefaultAction(st *game.State) (string, game.Move, bool) {
	if st.Phase != game.PhaseInProgress {
		return "", game.Move{}, false
	}
	return st.Current(), game.Move{Action: ActionRoll}, true
}

func (g *Game) Clone() game.Variant {
	c := *g
	c.Rolls = append([]Roll(nil), g.Rolls...)
	return &c
}
