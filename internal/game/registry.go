package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/logger"
	"github.com/wfunc/bugg-bot/internal/utils"
	"go.uber.org/zap"
)

// RegistryConfig 会话注册表配置
type RegistryConfig struct {
	MoveTimeout       time.Duration
	WaitingTimeout    time.Duration
	FinishedRetention time.Duration
	MaxSessions       int
}

// Registry 会话注册表
//
// 每个键一把锁，同键操作串行，不同键互不阻塞。
// 锁顺序：只会在持有表锁时锁住尚未发布的新条目，其余情况两把锁不嵌套。
type Registry struct {
	mu        sync.RWMutex
	entries   map[Key]*entry
	factories map[Kind]Factory
	cfg       RegistryConfig
	logger    *zap.Logger
	sched     Scheduler
	rng       utils.RNG
	now       func() time.Time
	observers []Observer
	active    atomic.Int64
}

type entry struct {
	mu         sync.Mutex
	state      *State
	finished   atomic.Bool
	finishedAt atomic.Int64
	gen        uint64
	timer      Timer
}

// Option 注册表选项
type Option func(*Registry)

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithScheduler 设置超时调度器
func WithScheduler(s Scheduler) Option {
	return func(r *Registry) { r.sched = s }
}

// WithRNG 设置随机数源
func WithRNG(rng utils.RNG) Option {
	return func(r *Registry) { r.rng = rng }
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithObserver 订阅会话事件
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observers = append(r.observers, o) }
}

// NewRegistry 创建会话注册表
func NewRegistry(factories map[Kind]Factory, cfg RegistryConfig, opts ...Option) *Registry {
	r := &Registry{
		entries:   make(map[Key]*entry),
		factories: factories,
		cfg:       cfg,
		logger:    zap.NewNop(),
		sched:     realScheduler{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = utils.NewSecureSeededRand()
	}
	return r
}

// Subscribe 追加观察者，需在开始服务前调用
func (r *Registry) Subscribe(o Observer) {
	r.observers = append(r.observers, o)
}

func (r *Registry) env() Env {
	return Env{RNG: r.rng, Now: r.now}
}

func (r *Registry) lookup(key Key) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "会话 %s 不存在", key)
	}
	return e, nil
}

// Create 创建新游戏，同键已有未结束游戏时返回 AlreadyActive
func (r *Registry) Create(ctx context.Context, key Key, kind Kind, players []string, opts Options) (*State, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, apperr.Newf(apperr.ErrUnknownKind, "%s", kind)
	}
	if key.Scope == "" || key.Channel == "" {
		return nil, apperr.Newf(apperr.ErrInvalidParam, "会话键无效: %q", key.String())
	}
	if len(players) == 0 {
		return nil, apperr.New(apperr.ErrInvalidParam, "至少需要一名玩家")
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p == "" || seen[p] {
			return nil, apperr.Newf(apperr.ErrInvalidParam, "玩家列表无效: %v", players)
		}
		seen[p] = true
	}

	now := r.now()
	st := &State{
		ID:        uuid.NewString(),
		Key:       key,
		Kind:      kind,
		Phase:     PhaseInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, p := range players {
		st.Players = append(st.Players, Player{ID: p})
	}

	r.mu.Lock()
	if old, exists := r.entries[key]; exists && !old.finished.Load() {
		r.mu.Unlock()
		return nil, apperr.Newf(apperr.ErrAlreadyActive, "%s", key)
	}
	if r.cfg.MaxSessions > 0 && r.active.Load() >= int64(r.cfg.MaxSessions) {
		r.mu.Unlock()
		return nil, apperr.Newf(apperr.ErrTooManySessions, "上限 %d", r.cfg.MaxSessions)
	}

	board, err := factory(st, r.env(), opts)
	if err != nil {
		r.mu.Unlock()
		return nil, apperr.Wrap(err, apperr.ErrInvalidParam)
	}
	st.Board = board

	e := &entry{state: st}
	e.mu.Lock()
	r.arm(e)
	snap := st.Clone()
	e.mu.Unlock()

	r.entries[key] = e
	r.active.Add(1)
	r.mu.Unlock()

	r.logger.Info("创建游戏会话",
		zap.String("key", key.String()),
		zap.String("kind", string(kind)),
		zap.String("game_id", st.ID),
		zap.Strings("players", players))

	r.notify(ctx, Event{Type: EventCreated, Key: key, State: snap, At: now})
	return snap, nil
}

// Get 获取会话快照
func (r *Registry) Get(ctx context.Context, key Key) (*State, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), nil
}

// ApplyMove 执行一步，被拒绝时状态不变
func (r *Registry) ApplyMove(ctx context.Context, key Key, actor string, mv Move) (*State, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	snap, ev, err := r.applyLocked(e, actor, mv, false)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r.notify(ctx, ev)
	return snap, nil
}

func (r *Registry) applyLocked(e *entry, actor string, mv Move, timeout bool) (*State, Event, error) {
	st := e.state
	if err := CheckActor(st, actor, mv); err != nil {
		return nil, Event{}, err
	}
	now := r.now()
	if mv.At.IsZero() {
		mv.At = now
	}

	work := st.Clone()
	if err := work.Board.Apply(work, r.env(), actor, mv); err != nil {
		return nil, Event{}, apperr.Wrap(err, apperr.ErrInvalidMove)
	}
	work.Moves++
	work.UpdatedAt = now
	if !work.Finished() {
		if res := work.Board.IsTerminal(work); res != nil {
			if err := work.Finish(*res); err != nil {
				return nil, Event{}, err
			}
		}
	}

	e.state = work
	typ := EventMoved
	if work.Finished() {
		r.markFinished(e)
		typ = EventFinished
	} else {
		r.arm(e)
	}

	snap := work.Clone()
	m := mv
	return snap, Event{Type: typ, Key: work.Key, Actor: actor, Move: &m, Timeout: timeout, State: snap, At: now}, nil
}

// Join 等待阶段加入
func (r *Registry) Join(ctx context.Context, key Key, actor string) (*State, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	snap, err := r.joinLocked(e, actor)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r.notify(ctx, Event{Type: EventJoined, Key: key, Actor: actor, State: snap, At: snap.UpdatedAt})
	return snap, nil
}

func (r *Registry) joinLocked(e *entry, actor string) (*State, error) {
	st := e.state
	if st.Finished() {
		return nil, apperr.New(apperr.ErrGameOver)
	}
	j, ok := st.Board.(Joiner)
	if !ok {
		return nil, apperr.Newf(apperr.ErrInvalidMove, "%s 不支持中途加入", st.Kind)
	}
	if st.Seated(actor) {
		return nil, apperr.Newf(apperr.ErrAlreadyJoined, "%s", actor)
	}
	if st.Phase != PhaseWaiting {
		return nil, apperr.New(apperr.ErrAlreadyStarted)
	}
	if len(st.Active()) >= j.Capacity() {
		return nil, apperr.Newf(apperr.ErrGameFull, "上限 %d", j.Capacity())
	}

	work := st.Clone()
	if i := work.PlayerIndex(actor); i >= 0 {
		work.Players[i].Forfeited = false
	} else {
		work.Players = append(work.Players, Player{ID: actor})
	}
	if err := work.Board.(Joiner).OnJoin(work, r.env(), actor); err != nil {
		return nil, err
	}
	work.UpdatedAt = r.now()

	e.state = work
	r.arm(e)
	return work.Clone(), nil
}

// End 强制结束，对已结束的会话幂等返回终局快照
func (r *Registry) End(ctx context.Context, key Key, reason string) (*State, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.state.Finished() {
		snap := e.state.Clone()
		e.mu.Unlock()
		return snap, nil
	}
	work := e.state.Clone()
	if err := work.Finish(Result{Abandoned: true, Reason: reason}); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	work.UpdatedAt = r.now()
	e.state = work
	r.markFinished(e)
	snap := work.Clone()
	e.mu.Unlock()

	r.notify(ctx, Event{Type: EventFinished, Key: key, State: snap, At: snap.UpdatedAt})
	return snap, nil
}

// LegalMoves 当前玩家可执行的动作
func (r *Registry) LegalMoves(ctx context.Context, key Key, actor string) ([]Move, error) {
	e, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Finished() {
		return nil, nil
	}
	return e.state.Board.LegalMoves(e.state, actor), nil
}

// Active 未结束的会话数
func (r *Registry) Active() int {
	return int(r.active.Load())
}

// Sweep 清除保留期已过的已结束会话
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.cfg.FinishedRetention).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, e := range r.entries {
		if e.finished.Load() && e.finishedAt.Load() <= cutoff {
			delete(r.entries, key)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug("清理已结束会话", zap.Int("removed", removed))
	}
	return removed
}

// StartSweeper 启动定期清理任务
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Info("停止会话清理任务")
				return
			case <-ticker.C:
				r.Sweep(r.now())
			}
		}
	}()
}

// Close 取消所有待触发的超时
func (r *Registry) Close() {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		r.disarm(e)
		e.mu.Unlock()
	}
}

func (r *Registry) timeoutFor(st *State) time.Duration {
	d := r.cfg.MoveTimeout
	if st.Phase == PhaseWaiting {
		d = r.cfg.WaitingTimeout
	}
	if tp, ok := st.Board.(TimeoutPolicy); ok {
		d = tp.Timeout(st, d)
	}
	return d
}

// arm 重新计时，调用方持有 e.mu
func (r *Registry) arm(e *entry) {
	r.disarm(e)
	d := r.timeoutFor(e.state)
	if d <= 0 {
		return
	}
	gen := e.gen
	e.state.Deadline = r.now().Add(d)
	e.timer = r.sched.AfterFunc(d, func() { r.onTimeout(e, gen) })
}

// disarm 取消计时，调用方持有 e.mu
func (r *Registry) disarm(e *entry) {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.state.Deadline = time.Time{}
}

// markFinished 调用方持有 e.mu
func (r *Registry) markFinished(e *entry) {
	r.disarm(e)
	e.finishedAt.Store(r.now().UnixNano())
	if e.finished.CompareAndSwap(false, true) {
		r.active.Add(-1)
	}
	st := e.state
	fields := []zap.Field{zap.String("kind", string(st.Kind)), zap.String("game_id", st.ID)}
	if st.Result != nil {
		fields = append(fields,
			zap.String("winner", st.Result.Winner),
			zap.Bool("draw", st.Result.Draw),
			zap.Bool("abandoned", st.Result.Abandoned),
			zap.String("reason", st.Result.Reason))
	}
	logger.LogGameEvent(r.logger, "finished", st.Key.String(), fields...)
}

func (r *Registry) onTimeout(e *entry, gen uint64) {
	e.mu.Lock()
	if e.gen != gen || e.state.Finished() {
		e.mu.Unlock()
		return
	}

	st := e.state
	r.logger.Info("出手超时",
		zap.String("key", st.Key.String()),
		zap.String("kind", string(st.Kind)),
		zap.String("player", st.Current()))

	if actor, mv, ok := st.Board.DefaultAction(st); ok {
		_, ev, err := r.applyLocked(e, actor, mv, true)
		if err == nil {
			e.mu.Unlock()
			r.notify(context.Background(), ev)
			return
		}
		r.logger.Warn("默认动作失败，按弃局处理",
			zap.String("key", st.Key.String()),
			zap.String("action", mv.Action),
			zap.Error(err))
	}

	work := e.state.Clone()
	if err := work.Finish(Result{Abandoned: true, Reason: "timeout"}); err != nil {
		e.mu.Unlock()
		r.logger.Error("超时结束失败", zap.String("key", st.Key.String()), zap.Error(err))
		return
	}
	work.UpdatedAt = r.now()
	e.state = work
	r.markFinished(e)
	snap := work.Clone()
	e.mu.Unlock()

	r.notify(context.Background(), Event{Type: EventFinished, Key: snap.Key, Timeout: true, State: snap, At: snap.UpdatedAt})
}

func (r *Registry) notify(ctx context.Context, ev Event) {
	for _, o := range r.observers {
		o.OnGameEvent(ctx, ev)
	}
}
