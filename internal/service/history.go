package service

import (
	"context"
	"time"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/models"
	"github.com/wfunc/bugg-bot/internal/repository"
	"go.uber.org/zap"
)

// HistoryRecorder 订阅会话结束事件并写入游戏记录
type HistoryRecorder struct {
	repo    repository.GameRecordRepository
	log     *zap.Logger
	timeout time.Duration
}

// NewHistoryRecorder 创建记录器
func NewHistoryRecorder(repo repository.GameRecordRepository, log *zap.Logger) *HistoryRecorder {
	return &HistoryRecorder{repo: repo, log: log, timeout: 5 * time.Second}
}

// RecordOf 把终局快照转换为记录
func RecordOf(st *game.State) *models.GameRecord {
	rec := &models.GameRecord{
		GameID:     st.ID,
		Kind:       string(st.Kind),
		SessionKey: st.Key.String(),
		Rounds:     st.Round,
		Moves:      st.Moves,
		StartedAt:  st.CreatedAt,
		EndedAt:    st.UpdatedAt,
		Duration:   int(st.UpdatedAt.Sub(st.CreatedAt) / time.Second),
	}
	for _, p := range st.Players {
		rec.Players = append(rec.Players, p.ID)
	}
	if r := st.Result; r != nil {
		rec.Winner = r.Winner
		rec.Loser = r.Loser
		rec.Draw = r.Draw
		rec.Abandoned = r.Abandoned
		rec.Reason = r.Reason
	}
	return rec
}

// OnGameEvent 只处理结束事件；写库失败只记日志，不影响会话
func (h *HistoryRecorder) OnGameEvent(ctx context.Context, ev game.Event) {
	if ev.Type != game.EventFinished || ev.State == nil {
		return
	}

	// 超时事件没有请求上下文，单独设置期限
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	rec := RecordOf(ev.State)
	err := h.repo.Create(wctx, rec)
	if err != nil && apperr.IsRetryable(err) {
		// sqlite 写锁冲突等瞬时错误重试一次
		err = h.repo.Create(wctx, rec)
	}
	if err != nil {
		if apperr.Is(err, apperr.ErrAlreadyExists) {
			return
		}
		h.log.Error("写入游戏记录失败",
			zap.String("game_id", rec.GameID),
			zap.String("key", rec.SessionKey),
			zap.Error(err))
		return
	}
	h.log.Debug("游戏记录已保存", zap.String("game_id", rec.GameID), zap.String("kind", rec.Kind))
}

type historyService struct {
	repo repository.GameRecordRepository
}

// NewHistoryService 创建战绩服务
func NewHistoryService(repo repository.GameRecordRepository) HistoryService {
	return &historyService{repo: repo}
}

func (s *historyService) List(ctx context.Context, player string, page, pageSize int) ([]*models.GameRecord, *repository.Pagination, error) {
	if player == "" {
		return nil, nil, apperr.New(apperr.ErrInvalidParam, "缺少玩家")
	}
	p := repository.NewPagination(page, pageSize)
	rows, err := s.repo.ListByPlayer(ctx, player, p)
	if err != nil {
		return nil, nil, err
	}
	return rows, p, nil
}

func (s *historyService) Stats(ctx context.Context, player string) (*models.PlayerStats, error) {
	if player == "" {
		return nil, apperr.New(apperr.ErrInvalidParam, "缺少玩家")
	}
	return s.repo.Stats(ctx, player)
}
