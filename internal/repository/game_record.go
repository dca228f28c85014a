package repository

import (
	"context"
	"errors"
	"time"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/logger"
	"github.com/wfunc/bugg-bot/internal/models"
	"gorm.io/gorm"
)

// GameRecordRepository 游戏记录仓储接口
type GameRecordRepository interface {
	Create(ctx context.Context, record *models.GameRecord) error
	FindByGameID(ctx context.Context, gameID string) (*models.GameRecord, error)
	ListByPlayer(ctx context.Context, player string, p *Pagination) ([]*models.GameRecord, error)
	Recent(ctx context.Context, kind string, limit int) ([]*models.GameRecord, error)
	Stats(ctx context.Context, player string) (*models.PlayerStats, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

type gameRecordRepo struct {
	*BaseRepo
}

// NewGameRecordRepository 创建游戏记录仓储
func NewGameRecordRepository(db *gorm.DB) GameRecordRepository {
	return &gameRecordRepo{BaseRepo: NewBaseRepo(db)}
}

// Create 同一 GameID 重复写入视为已存在
func (r *gameRecordRepo) Create(ctx context.Context, record *models.GameRecord) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(record).Error
	logger.LogDatabaseOperation("create", record.TableName(), time.Since(start), err)
	if err != nil {
		var n int64
		if r.db.WithContext(ctx).Model(&models.GameRecord{}).Where("game_id = ?", record.GameID).Count(&n); n > 0 {
			return apperr.Wrapf(err, apperr.ErrAlreadyExists, "游戏记录 %s", record.GameID)
		}
		return apperr.Wrap(err, apperr.ErrDatabaseInsert, "写入游戏记录失败")
	}
	return nil
}

func (r *gameRecordRepo) FindByGameID(ctx context.Context, gameID string) (*models.GameRecord, error) {
	var rec models.GameRecord
	err := r.db.WithContext(ctx).Where("game_id = ?", gameID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Newf(apperr.ErrNotFound, "游戏记录 %s", gameID)
	}
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabaseQuery)
	}
	return &rec, nil
}

// participating 按 players 列粗筛，调用方再用 Contains 精确过滤
func (r *gameRecordRepo) participating(ctx context.Context, player string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.GameRecord{}).
		Where("players LIKE ?", models.PlayerParticipant(player))
}

// ListByPlayer 按结束时间倒序列出玩家参与的记录
func (r *gameRecordRepo) ListByPlayer(ctx context.Context, player string, p *Pagination) ([]*models.GameRecord, error) {
	if p == nil {
		p = NewPagination(1, 10)
	}
	q := r.participating(ctx, player)
	if err := q.Count(&p.Total).Error; err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabaseQuery)
	}

	var rows []*models.GameRecord
	err := r.participating(ctx, player).
		Order("ended_at DESC, id DESC").
		Scopes(Paginate(p)).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabaseQuery)
	}

	out := rows[:0]
	for _, rec := range rows {
		if rec.Players.Contains(player) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Recent 最近结束的记录，kind 为空时不过滤
func (r *gameRecordRepo) Recent(ctx context.Context, kind string, limit int) ([]*models.GameRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.db.WithContext(ctx).Order("ended_at DESC, id DESC").Limit(limit)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var rows []*models.GameRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabaseQuery)
	}
	return rows, nil
}

// Stats 汇总玩家战绩
func (r *gameRecordRepo) Stats(ctx context.Context, player string) (*models.PlayerStats, error) {
	var rows []*models.GameRecord
	err := r.participating(ctx, player).
		Select("kind", "players", "winner", "loser", "draw", "abandoned").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ErrDatabaseQuery)
	}

	stats := &models.PlayerStats{Player: player, ByKind: map[string]int64{}}
	for _, rec := range rows {
		if !rec.Players.Contains(player) {
			continue
		}
		stats.Played++
		stats.ByKind[rec.Kind]++
		switch {
		case rec.Winner == player:
			stats.Wins++
		case rec.Draw:
			stats.Draws++
		case rec.Abandoned && rec.Loser != player:
			stats.Abandoned++
		default:
			stats.Losses++
		}
	}
	return stats, nil
}

// DeleteBefore 清理早于 before 结束的记录
func (r *gameRecordRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().Where("ended_at < ?", before).Delete(&models.GameRecord{})
	if res.Error != nil {
		return 0, apperr.Wrap(res.Error, apperr.ErrDatabaseDelete)
	}
	return res.RowsAffected, nil
}
