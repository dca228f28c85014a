package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/bugg-bot/internal/config"
	"go.uber.org/zap"
)

// Config 连接参数
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int64
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	SendBuffer      int
}

// FromConfig 由配置文件构造
func FromConfig(c config.WebSocketConfig) Config {
	return Config{
		ReadBufferSize:  c.ReadBufferSize,
		WriteBufferSize: c.WriteBufferSize,
		MaxMessageSize:  c.MaxMessageSize,
		PingInterval:    c.PingInterval,
		PongTimeout:     c.PongTimeout,
		WriteTimeout:    c.WriteTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 4096
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	// ping 周期必须小于 pong 超时
	if c.PingInterval <= 0 || c.PingInterval >= c.PongTimeout {
		c.PingInterval = c.PongTimeout * 9 / 10
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	return c
}

// Client 一个订阅连接
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	filter string
}

// Filter 当前订阅的会话键前缀
func (c *Client) Filter() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Client) setFilter(f string) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

// ServeWS 升级连接并注册；查询参数 key 设置初始订阅
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  h.cfg.ReadBufferSize,
		WriteBufferSize: h.cfg.WriteBufferSize,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket升级失败", zap.Error(err))
		return
	}

	client := &Client{
		ID:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.cfg.SendBuffer),
		filter: r.URL.Query().Get("key"),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump 处理订阅变更和应用层 ping
func (c *Client) readPump() {
	cfg := c.hub.cfg
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("WebSocket读取错误", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		c.sendError("消息格式错误")
		return
	}

	switch msg.Type {
	case MessageTypeSubscribe:
		c.setFilter(msg.Key)
		c.hub.logger.Debug("更新订阅", zap.String("client_id", c.ID), zap.String("filter", msg.Key))
		c.hub.send(c, &Message{Type: MessageTypeSubscribe, Key: msg.Key, Timestamp: c.hub.now().Unix()})
	case MessageTypePing:
		c.hub.send(c, &Message{Type: MessageTypePong, Timestamp: c.hub.now().Unix()})
	default:
		c.sendError("不支持的消息类型: " + msg.Type)
	}
}

func (c *Client) sendError(text string) {
	raw, _ := json.Marshal(map[string]string{"error": text})
	c.hub.send(c, &Message{Type: MessageTypeError, Data: raw, Timestamp: c.hub.now().Unix()})
}

// writePump 每条消息一帧，定时发送 ping
func (c *Client) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
