// Package pokemon 回合制对战：属性克制、等级缩放、车轮战替补，支持人机与双人模式
package pokemon

import (
	"fmt"
	"math"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/utils"
)

const (
	ActionAttack = "attack"
	ActionSwitch = "switch"
	ActionFlee   = "flee"
)

// CPUPlayer 人机模式下电脑一方的玩家 ID
const CPUPlayer = "cpu"

// Config 对战配置
type Config struct {
	DefaultLevel int
	MaxTeamSize  int
}

// DefaultConfig 默认 50 级，队伍最多 6 只
func DefaultConfig() Config {
	return Config{DefaultLevel: 50, MaxTeamSize: 6}
}

// Combatant 场上的一只宝可梦
type Combatant struct {
	Name    string     `json:"name"`
	Type    Type       `json:"type"`
	Level   int        `json:"level"`
	HP      int        `json:"hp"`
	MaxHP   int        `json:"max_hp"`
	Attack  int        `json:"attack"`
	Defense int        `json:"defense"`
	Speed   int        `json:"speed"`
	Moves   []MoveSpec `json:"moves"`
}

// Fainted 是否已倒下
func (c *Combatant) Fainted() bool { return c.HP <= 0 }

// ScaleStats 按等级缩放种族值：能力 ×level/50，HP 另加 2×level
func ScaleStats(s Species, level int) Combatant {
	mult := float64(level) / 50
	moves := s.Moves
	if len(moves) == 0 {
		moves = []MoveSpec{Tackle}
	}
	if len(moves) > 4 {
		moves = moves[:4]
	}
	hp := int(float64(s.HP)*mult) + 2*level
	return Combatant{
		Name:    s.Name,
		Type:    s.Type,
		Level:   level,
		HP:      hp,
		MaxHP:   hp,
		Attack:  maxInt(1, int(float64(s.Attack)*mult)),
		Defense: maxInt(1, int(float64(s.Defense)*mult)),
		Speed:   int(float64(s.Speed) * mult),
		Moves:   append([]MoveSpec(nil), moves...),
	}
}

// Damage 伤害公式
//
//	base   = floor(((2L/5+2) * power * atk/def / 50 + 2) * variance)
//	damage = floor(base * 倍率)
func Damage(att, def *Combatant, mv MoveSpec, variance float64) (damage int, mult float64) {
	mult = Effectiveness(mv.Type, def.Type)
	ratio := float64(att.Attack) / float64(def.Defense)
	base := math.Floor(((2*float64(att.Level)/5+2)*float64(mv.Power)*ratio/50 + 2) * variance)
	return int(math.Floor(base * mult)), mult
}

// Variance 0.85 到 1.0 之间的随机浮动
func Variance(rng utils.RNG) float64 {
	return 0.85 + rng.Float64()*0.15
}

// Side 一方队伍
type Side struct {
	Player string      `json:"player"`
	CPU    bool        `json:"cpu,omitempty"`
	Team   []Combatant `json:"team"`
	Active int         `json:"active"`
}

func (s *Side) active() *Combatant { return &s.Team[s.Active] }

// nextAlive 下一只未倒下的队员，没有则返回 -1
func (s *Side) nextAlive() int {
	for i := range s.Team {
		if !s.Team[i].Fainted() {
			return i
		}
	}
	return -1
}

// Defeated 全队倒下
func (s *Side) Defeated() bool { return s.nextAlive() < 0 }

// Battle 对战状态
type Battle struct {
	Sides [2]Side  `json:"sides"`
	PvE   bool     `json:"pve"`
	Log   []string `json:"log"`
}

// Factory 返回带配置的工厂
//
// 一名玩家或 opts.VsCPU 时为人机模式，电脑队伍取 opts.Teams[1]，缺省随机抽取；
// 两名玩家为双人模式，速度快的一方先手，相同时玩家 0 先手。
func Factory(cfg Config) game.Factory {
	return func(st *game.State, env game.Env, opts game.Options) (game.Variant, error) {
		level := opts.Level
		if level == 0 {
			level = cfg.DefaultLevel
		}
		if level < 1 || level > 100 {
			return nil, apperr.Newf(apperr.ErrInvalidParam, "等级 %d 超出范围 1-100", level)
		}

		pve := len(st.Players) == 1
		switch {
		case len(st.Players) == 2 && !opts.VsCPU:
		case pve:
		default:
			return nil, apperr.Newf(apperr.ErrInvalidParam, "对战需要 1 或 2 名玩家，实际 %d", len(st.Players))
		}

		b := &Battle{PvE: pve}
		for i := 0; i < 2; i++ {
			var names []string
			if i < len(opts.Teams) {
				names = opts.Teams[i]
			}
			team, err := buildTeam(names, level, cfg.MaxTeamSize, env.RNG)
			if err != nil {
				return nil, err
			}
			side := Side{Team: team}
			if pve && i == 1 {
				side.Player, side.CPU = CPUPlayer, true
			} else {
				side.Player = st.Players[i].ID
			}
			b.Sides[i] = side
		}

		st.Turn = 0
		if !pve && b.Sides[1].active().Speed > b.Sides[0].active().Speed {
			st.Turn = 1
		}
		b.logf("%s 对战 %s", b.Sides[0].active().Name, b.Sides[1].active().Name)
		return b, nil
	}
}

func buildTeam(names []string, level, maxSize int, rng utils.RNG) ([]Combatant, error) {
	if len(names) == 0 {
		all := SpeciesNames()
		names = []string{all[rng.Intn(len(all))]}
	}
	if maxSize > 0 && len(names) > maxSize {
		return nil, apperr.Newf(apperr.ErrInvalidParam, "队伍最多 %d 只", maxSize)
	}
	team := make([]Combatant, 0, len(names))
	for _, n := range names {
		s, ok := LookupSpecies(n)
		if !ok {
			return nil, apperr.Newf(apperr.ErrInvalidParam, "未知宝可梦 %q", n)
		}
		team = append(team, ScaleStats(s, level))
	}
	return team, nil
}

func (b *Battle) Kind() game.Kind { return game.KindPokemon }

func (b *Battle) logf(format string, args ...interface{}) {
	b.Log = append(b.Log, fmt.Sprintf(format, args...))
}

func (b *Battle) sideOf(player string) int {
	for i := range b.Sides {
		if b.Sides[i].Player == player {
			return i
		}
	}
	return -1
}

func (b *Battle) Apply(st *game.State, env game.Env, actor string, mv game.Move) error {
	side := b.sideOf(actor)
	if side < 0 || b.Sides[side].CPU {
		return apperr.Newf(apperr.ErrInvalidMove, "%s 不在对战中", actor)
	}
	b.Log = b.Log[:0]

	switch mv.Action {
	case ActionFlee, game.ActionLeave:
		other := b.Sides[1-side].Player
		if i := st.PlayerIndex(actor); i >= 0 {
			st.Players[i].Forfeited = true
		}
		b.logf("%s 逃跑了", actor)
		return st.Finish(game.Result{Winner: other, Loser: actor, Reason: "fled"})
	case ActionAttack, "":
		me := b.Sides[side].active()
		if mv.Index < 0 || mv.Index >= len(me.Moves) {
			return apperr.Newf(apperr.ErrInvalidMove, "招式序号 %d 无效", mv.Index)
		}
		if b.PvE {
			b.exchange(st, env, mv.Index)
			return nil
		}
		b.strike(env, side, mv.Index)
	case ActionSwitch:
		if err := b.swap(side, mv.Index); err != nil {
			return err
		}
		if b.PvE {
			b.cpuTurn(env)
			st.Round++
			return nil
		}
	default:
		return apperr.Newf(apperr.ErrInvalidMove, "未知动作 %q", mv.Action)
	}

	st.Round++
	return game.Advance(st)
}

// exchange 人机模式的一个回合：双方按速度先后出手
func (b *Battle) exchange(st *game.State, env game.Env, move int) {
	st.Round++
	human, cpu := b.Sides[0].Active, b.Sides[1].Active
	if b.Sides[1].active().Speed > b.Sides[0].active().Speed {
		b.cpuTurn(env)
		// 被击倒的一方本回合不再出手
		if b.Sides[0].Active == human && !b.Sides[0].active().Fainted() {
			b.strike(env, 0, move)
		}
		return
	}
	b.strike(env, 0, move)
	if b.Sides[1].Active == cpu && !b.Sides[1].active().Fainted() {
		b.cpuTurn(env)
	}
}

// cpuTurn 电脑随机选择招式
func (b *Battle) cpuTurn(env game.Env) {
	moves := b.Sides[1].active().Moves
	b.strike(env, 1, env.RNG.Intn(len(moves)))
}

// strike 一次攻击，目标倒下时自动换上下一只
func (b *Battle) strike(env game.Env, side, move int) {
	att := b.Sides[side].active()
	defSide := &b.Sides[1-side]
	def := defSide.active()
	spec := att.Moves[move]

	dmg, mult := Damage(att, def, spec, Variance(env.RNG))
	def.HP -= dmg
	if def.HP < 0 {
		def.HP = 0
	}
	b.logf("%s 使用了 %s，对 %s 造成 %d 点伤害", att.Name, spec.Name, def.Name, dmg)
	switch {
	case mult == 0:
		b.logf("没有效果")
	case mult > 1:
		b.logf("效果拔群")
	case mult < 1:
		b.logf("效果不太好")
	}

	if def.Fainted() {
		b.logf("%s 倒下了", def.Name)
		if next := defSide.nextAlive(); next >= 0 {
			defSide.Active = next
			b.logf("%s 派出了 %s", defSide.Player, defSide.active().Name)
		}
	}
}

func (b *Battle) swap(side, index int) error {
	s := &b.Sides[side]
	if index < 0 || index >= len(s.Team) {
		return apperr.Newf(apperr.ErrInvalidMove, "队员序号 %d 无效", index)
	}
	if index == s.Active {
		return apperr.New(apperr.ErrInvalidMove, "已经在场上")
	}
	if s.Team[index].Fainted() {
		return apperr.Newf(apperr.ErrInvalidMove, "%s 已倒下", s.Team[index].Name)
	}
	s.Active = index
	b.logf("%s 换上了 %s", s.Player, s.active().Name)
	return nil
}

// IsTerminal 一方全队倒下即结束
func (b *Battle) IsTerminal(*game.State) *game.Result {
	for i := range b.Sides {
		if b.Sides[i].Defeated() {
			return &game.Result{Winner: b.Sides[1-i].Player, Loser: b.Sides[i].Player, Reason: "knockout"}
		}
	}
	return nil
}

func (b *Battle) LegalMoves(st *game.State, actor string) []game.Move {
	side := b.sideOf(actor)
	if side < 0 || b.Sides[side].CPU {
		return nil
	}
	moves := []game.Move{{Action: ActionFlee}}
	if st.Current() != actor {
		return moves
	}
	s := &b.Sides[side]
	for i := range s.active().Moves {
		moves = append(moves, game.Move{Action: ActionAttack, Index: i})
	}
	for i := range s.Team {
		if i != s.Active && !s.Team[i].Fainted() {
			moves = append(moves, game.Move{Action: ActionSwitch, Index: i})
		}
	}
	return moves
}

// AnyTurn 双方随时可以逃跑
func (b *Battle) AnyTurn(action string) bool { return action == ActionFlee }

// DefaultAction 超时自动逃跑
func (b *Battle) DefaultAction(st *game.State) (string, game.Move, bool) {
	actor := st.Current()
	if actor == "" {
		return "", game.Move{}, false
	}
	return actor, game.Move{Action: ActionFlee}, true
}

func (b *Battle) Clone() game.Variant {
	c := *b
	for i := range c.Sides {
		team := make([]Combatant, len(b.Sides[i].Team))
		for j, m := range b.Sides[i].Team {
			m.Moves = append([]MoveSpec(nil), m.Moves...)
			team[j] = m
		}
		c.Sides[i].Team = team
	}
	c.Log = append([]string(nil), b.Log...)
	return &c
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
