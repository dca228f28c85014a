package game

import (
	"fmt"
	"time"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
)

// PhaseEvent 阶段事件
type PhaseEvent string

const (
	EventStart   PhaseEvent = "start"   // 等待 -> 进行中
	EventPause   PhaseEvent = "pause"   // 进行中 -> 等待（21点一轮结束）
	EventFinish  PhaseEvent = "finish"  // 分出胜负或平局
	EventAbandon PhaseEvent = "abandon" // 超时、退出或强制结束
)

// PhaseTransition 阶段转换定义
type PhaseTransition struct {
	From  Phase
	Event PhaseEvent
	To    Phase
}

var phaseTransitions = map[string]PhaseTransition{}

func addTransition(t PhaseTransition) {
	phaseTransitions[transitionKey(t.From, t.Event)] = t
}

func transitionKey(p Phase, e PhaseEvent) string {
	return fmt.Sprintf("%s:%s", p, e)
}

func init() {
	addTransition(PhaseTransition{From: PhaseWaiting, Event: EventStart, To: PhaseInProgress})
	addTransition(PhaseTransition{From: PhaseInProgress, Event: EventPause, To: PhaseWaiting})
	addTransition(PhaseTransition{From: PhaseWaiting, Event: EventFinish, To: PhaseFinished})
	addTransition(PhaseTransition{From: PhaseInProgress, Event: EventFinish, To: PhaseFinished})
	addTransition(PhaseTransition{From: PhaseWaiting, Event: EventAbandon, To: PhaseFinished})
	addTransition(PhaseTransition{From: PhaseInProgress, Event: EventAbandon, To: PhaseFinished})
}

// CanTransition 当前阶段是否接受该事件
func CanTransition(p Phase, e PhaseEvent) bool {
	_, ok := phaseTransitions[transitionKey(p, e)]
	return ok
}

// State 一局游戏的完整状态
type State struct {
	ID        string    `json:"id"`
	Key       Key       `json:"key"`
	Kind      Kind      `json:"kind"`
	Players   []Player  `json:"players"`
	Turn      int       `json:"turn"`
	Phase     Phase     `json:"phase"`
	Result    *Result   `json:"result,omitempty"`
	Board     Variant   `json:"board"`
	Round     int       `json:"round"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Deadline  time.Time `json:"deadline,omitempty"`
}

// trigger 按转换表推进阶段
func (s *State) trigger(e PhaseEvent) error {
	t, ok := phaseTransitions[transitionKey(s.Phase, e)]
	if !ok {
		return apperr.Newf(apperr.ErrGameStateError, "无效的阶段转换: 阶段=%s, 事件=%s", s.Phase, e)
	}
	s.Phase = t.To
	return nil
}

// Start 进入进行中阶段
func (s *State) Start() error {
	return s.trigger(EventStart)
}

// Pause 回到等待阶段
func (s *State) Pause() error {
	return s.trigger(EventPause)
}

// Finish 以结果结束游戏
func (s *State) Finish(r Result) error {
	ev := EventFinish
	if r.Abandoned {
		ev = EventAbandon
	}
	if err := s.trigger(ev); err != nil {
		return err
	}
	s.Result = &r
	return nil
}

// Finished 是否已结束
func (s *State) Finished() bool {
	return s.Phase == PhaseFinished
}

// Current 当前出手玩家
func (s *State) Current() string {
	if s.Turn < 0 || s.Turn >= len(s.Players) {
		return ""
	}
	return s.Players[s.Turn].ID
}

// PlayerIndex 玩家下标，不存在返回 -1
func (s *State) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Seated 玩家在座且未弃权
func (s *State) Seated(id string) bool {
	i := s.PlayerIndex(id)
	return i >= 0 && !s.Players[i].Forfeited
}

// Active 未弃权的玩家
func (s *State) Active() []string {
	out := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.Forfeited {
			out = append(out, p.ID)
		}
	}
	return out
}

// Opponent 两人局中的另一名玩家
func (s *State) Opponent(id string) string {
	for _, p := range s.Players {
		if p.ID != id {
			return p.ID
		}
	}
	return ""
}

// Clone 深拷贝，返回给调用方的都是快照
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Players = append([]Player(nil), s.Players...)
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	if s.Board != nil {
		c.Board = s.Board.Clone()
	}
	return &c
}
