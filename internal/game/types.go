package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/wfunc/bugg-bot/internal/utils"
)

// Kind 游戏类型，封闭集合
type Kind string

const (
	KindBlackjack Kind = "blackjack"
	KindPokemon   Kind = "pokemon"
	KindConnect4  Kind = "connect4"
	KindTicTacToe Kind = "tictactoe"
	KindDeathRoll Kind = "deathroll"
	KindDuel      Kind = "duel"
)

// Kinds 所有支持的游戏类型
var Kinds = []Kind{KindBlackjack, KindPokemon, KindConnect4, KindTicTacToe, KindDeathRoll, KindDuel}

// Valid 是否为已知类型
func (k Kind) Valid() bool {
	for _, kind := range Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Key 会话键：服务器(或私聊)范围 + 频道 + 可选的发起用户
type Key struct {
	Scope   string `json:"scope"`
	Channel string `json:"channel"`
	User    string `json:"user,omitempty"`
}

func (k Key) String() string {
	if k.User == "" {
		return k.Scope + ":" + k.Channel
	}
	return k.Scope + ":" + k.Channel + ":" + k.User
}

// ParseKey 解析 scope:channel[:user]
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Key{}, fmt.Errorf("invalid session key %q", s)
	}
	k := Key{Scope: parts[0], Channel: parts[1]}
	if len(parts) == 3 {
		k.User = parts[2]
		if k.User == "" {
			return Key{}, fmt.Errorf("invalid session key %q: empty user", s)
		}
	}
	if k.Scope == "" || k.Channel == "" {
		return Key{}, fmt.Errorf("invalid session key %q: empty scope or channel", s)
	}
	return k, nil
}

// Phase 游戏阶段
type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// 通用动作
const (
	ActionLeave = "leave"
)

// Player 参与者，顺序即出手顺序
type Player struct {
	ID        string `json:"id"`
	Forfeited bool   `json:"forfeited,omitempty"`
}

// Result 终局结果，仅在 PhaseFinished 时存在
type Result struct {
	Winner    string `json:"winner,omitempty"`
	Loser     string `json:"loser,omitempty"`
	Draw      bool   `json:"draw,omitempty"`
	Abandoned bool   `json:"abandoned,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Move 已解析的出手
type Move struct {
	Action string    `json:"action,omitempty"`
	Index  int       `json:"index"`
	At     time.Time `json:"at,omitempty"`
}

// Env 变体可用的外部依赖
type Env struct {
	RNG utils.RNG
	Now func() time.Time
}

// Options 创建游戏时的可选参数
type Options struct {
	Ceiling int        `json:"ceiling,omitempty"` // deathroll
	VsCPU   bool       `json:"vs_cpu,omitempty"`  // pokemon
	Level   int        `json:"level,omitempty"`   // pokemon
	Teams   [][]string `json:"teams,omitempty"`   // pokemon，按玩家顺序
}

// Variant 单个游戏的规则集
type Variant interface {
	Kind() Kind
	// Apply 校验并执行一步，返回错误时 st 不应被修改
	Apply(st *State, env Env, actor string, mv Move) error
	IsTerminal(st *State) *Result
	LegalMoves(st *State, actor string) []Move
	// DefaultAction 超时时替玩家执行的动作，ok=false 表示直接判弃局
	DefaultAction(st *State) (actor string, mv Move, ok bool)
	Clone() Variant
}

// Joiner 支持等待阶段加入的变体
type Joiner interface {
	Capacity() int
	OnJoin(st *State, env Env, actor string) error
}

// Simultaneous 所有玩家可同时出手的变体
type Simultaneous interface {
	Simultaneous() bool
}

// OutOfTurn 允许部分动作不受轮次限制的变体，例如对战中随时逃跑
type OutOfTurn interface {
	AnyTurn(action string) bool
}

// TimeoutPolicy 变体自定义当前超时
type TimeoutPolicy interface {
	Timeout(st *State, def time.Duration) time.Duration
}

// Factory 构造初始变体，可设置 st 的阶段和出手顺序
type Factory func(st *State, env Env, opts Options) (Variant, error)
