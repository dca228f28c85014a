package game

import (
	"context"
	"time"
)

// EventType 会话事件类型
type EventType string

const (
	EventCreated  EventType = "created"
	EventJoined   EventType = "joined"
	EventMoved    EventType = "moved"
	EventFinished EventType = "finished"
)

// Event 会话变化通知，State 为只读快照
type Event struct {
	Type    EventType `json:"type"`
	Key     Key       `json:"key"`
	Actor   string    `json:"actor,omitempty"`
	Move    *Move     `json:"move,omitempty"`
	Timeout bool      `json:"timeout,omitempty"`
	State   *State    `json:"state"`
	At      time.Time `json:"at"`
}

// Observer 订阅会话事件，在锁外同步调用
type Observer interface {
	OnGameEvent(ctx context.Context, ev Event)
}

// ObserverFunc 函数适配
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) OnGameEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}
