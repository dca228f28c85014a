package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/wfunc/bugg-bot/internal/game"
	"go.uber.org/zap"
)

// Hub 事件推送中心：把会话事件和神器变化广播给订阅的连接
type Hub struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// Message 推送消息
type Message struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	MessageTypeConnected = "connected"
	MessageTypeSubscribe = "subscribe"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"

	MessageTypeGamePrefix = "game_"
	MessageTypeArtifact   = "artifact"
)

// NewHub 创建Hub
func NewHub(cfg Config, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		cfg:        cfg.withDefaults(),
		logger:     logger,
		now:        time.Now,
	}
}

// Run 运行Hub，ctx 结束时关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("filter", client.Filter()))

	h.send(client, &Message{
		Type:      MessageTypeConnected,
		Timestamp: h.now().Unix(),
		Data:      json.RawMessage(`{"client_id":"` + client.ID + `"}`),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
	}
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端断开", zap.String("client_id", client.ID))
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// matches 过滤条件为空时接收全部；否则按会话键前缀匹配，便于按服务器或频道订阅
func matches(filter, key string) bool {
	if filter == "" || key == "" {
		return true
	}
	return key == filter || strings.HasPrefix(key, filter+":")
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for _, client := range h.clients {
		if !matches(client.Filter(), message.Key) {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满，丢弃消息",
				zap.String("client_id", client.ID),
				zap.String("type", message.Type))
		}
	}
}

// send 直接发送给单个仍在注册表中的客户端
func (h *Hub) send(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	if h.clients[client.ID] != client {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("客户端发送缓冲区满", zap.String("client_id", client.ID))
	}
}

// Publish 非阻塞投递；队列满时丢弃并记录
func (h *Hub) Publish(message *Message) {
	if message.Timestamp == 0 {
		message.Timestamp = h.now().Unix()
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("广播队列已满，丢弃消息", zap.String("type", message.Type), zap.String("key", message.Key))
	}
}

// PublishJSON 序列化 data 后广播
func (h *Hub) PublishJSON(msgType, key string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("序列化推送数据失败", zap.String("type", msgType), zap.Error(err))
		return
	}
	h.Publish(&Message{Type: msgType, Key: key, Data: raw})
}

// OnGameEvent 实现 game.Observer，在注册表锁外被同步调用，不能阻塞
func (h *Hub) OnGameEvent(_ context.Context, ev game.Event) {
	h.PublishJSON(MessageTypeGamePrefix+string(ev.Type), ev.Key.String(), ev)
}

// OnlineCount 在线连接数
func (h *Hub) OnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
