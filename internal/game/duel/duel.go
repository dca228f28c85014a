// Package duel 反应决斗：随机延迟后发出信号，抢在信号前开枪判负，信号后反应更快者胜
package duel

import (
	"time"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/utils"
)

const (
	ActionShoot   = "shoot"
	ActionResolve = "resolve"
)

// Config 决斗配置
type Config struct {
	MinDelay  time.Duration
	MaxDelay  time.Duration
	TieWindow time.Duration
}

// DefaultConfig 2-5 秒随机延迟，200ms 内的先后按反应时间比较
func DefaultConfig() Config {
	return Config{MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second, TieWindow: 200 * time.Millisecond}
}

// Shot 一次开枪
type Shot struct {
	Player     string        `json:"player"`
	At         time.Time     `json:"at"`
	Latency    time.Duration `json:"latency"`
	FalseStart bool          `json:"false_start,omitempty"`
}

// Duel 决斗状态
type Duel struct {
	SignalAt  time.Time     `json:"signal_at"`
	TieWindow time.Duration `json:"tie_window"`
	Shots     []Shot        `json:"shots"`
}

// Factory 返回带配置的工厂
func Factory(cfg Config) game.Factory {
	return func(st *game.State, env game.Env, _ game.Options) (game.Variant, error) {
		if len(st.Players) != 2 {
			return nil, apperr.Newf(apperr.ErrInvalidParam, "决斗需要 2 名玩家，实际 %d", len(st.Players))
		}
		delay := utils.DurationBetween(env.RNG, cfg.MinDelay, cfg.MaxDelay)
		return &Duel{
			SignalAt:  st.CreatedAt.Add(delay),
			TieWindow: cfg.TieWindow,
		}, nil
	}
}

func (d *Duel) Kind() game.Kind { return game.KindDuel }

// Simultaneous 双方都可随时开枪
func (d *Duel) Simultaneous() bool { return true }

func (d *Duel) shotBy(player string) *Shot {
	for i := range d.Shots {
		if d.Shots[i].Player == player {
			return &d.Shots[i]
		}
	}
	return nil
}

func (d *Duel) Apply(st *game.State, _ game.Env, actor string, mv game.Move) error {
	switch mv.Action {
	case game.ActionLeave:
		return game.ForfeitHeadsUp(st, actor)
	case ActionShoot:
		return d.shoot(st, actor, mv.At)
	case ActionResolve:
		if len(d.Shots) == 0 {
			return apperr.New(apperr.ErrInvalidMove, "还没有人开枪")
		}
		if mv.At.Before(d.Shots[0].At.Add(d.TieWindow)) {
			return apperr.New(apperr.ErrInvalidMove, "比较窗口尚未结束")
		}
		return d.resolve(st, "fastest draw")
	default:
		return apperr.Newf(apperr.ErrInvalidMove, "未知动作 %q", mv.Action)
	}
}

func (d *Duel) shoot(st *game.State, actor string, at time.Time) error {
	if d.shotBy(actor) != nil {
		return apperr.New(apperr.ErrInvalidMove, "已经开过枪了")
	}

	if at.Before(d.SignalAt) {
		d.Shots = append(d.Shots, Shot{Player: actor, At: at, Latency: at.Sub(d.SignalAt), FalseStart: true})
		return st.Finish(game.Result{Winner: st.Opponent(actor), Loser: actor, Reason: "false start"})
	}

	shot := Shot{Player: actor, At: at, Latency: at.Sub(d.SignalAt)}
	if len(d.Shots) > 0 && shot.Latency-d.Shots[0].Latency > d.TieWindow {
		// 第一枪的比较窗口已过，直接判先开枪者胜
		return d.resolve(st, "fastest draw")
	}
	d.Shots = append(d.Shots, shot)

	if d.TieWindow <= 0 || len(d.Shots) == 2 {
		return d.resolve(st, "fastest draw")
	}
	return nil
}

// resolve 反应时间最短者胜，相同则平局
func (d *Duel) resolve(st *game.State, reason string) error {
	best := d.Shots[0]
	tie := false
	for _, s := range d.Shots[1:] {
		switch {
		case s.Latency < best.Latency:
			best, tie = s, false
		case s.Latency == best.Latency:
			tie = true
		}
	}
	if tie {
		return st.Finish(game.Result{Draw: true, Reason: "simultaneous"})
	}
	return st.Finish(game.Result{Winner: best.Player, Loser: st.Opponent(best.Player), Reason: reason})
}

func (d *Duel) IsTerminal(*game.State) *game.Result { return nil }

func (d *Duel) LegalMoves(st *game.State, actor string) []game.Move {
	if d.shotBy(actor) != nil {
		return []game.Move{{Action: game.ActionLeave}}
	}
	return []game.Move{{Action: ActionShoot}, {Action: game.ActionLeave}}
}

// Timeout 信号前等到信号后再加一个出手超时；已有人开枪时只等比较窗口
func (d *Duel) Timeout(st *game.State, def time.Duration) time.Duration {
	now := st.UpdatedAt
	if len(d.Shots) > 0 {
		return maxDuration(d.Shots[0].At.Add(d.TieWindow).Sub(now), time.Millisecond)
	}
	if def <= 0 {
		// 出手超时关闭时不计时
		return 0
	}
	return maxDuration(d.SignalAt.Sub(now), 0) + def
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

// DefaultAction 比较窗口结束后结算；无人开枪则判弃局
func (d *Duel) DefaultAction(*game.State) (string, game.Move, bool) {
	if len(d.Shots) == 0 {
		return "", game.Move{}, false
	}
	return d.Shots[0].Player, game.Move{Action: ActionResolve}, true
}

func (d *Duel) Clone() game.Variant {
	c := *d
	c.Shots = append([]Shot(nil), d.Shots...)
	return &c
}
