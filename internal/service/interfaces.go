package service

import (
	"context"

	"github.com/wfunc/bugg-bot/internal/artifact"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/models"
	"github.com/wfunc/bugg-bot/internal/repository"
)

// GameService 游戏会话服务接口
type GameService interface {
	Create(ctx context.Context, req *CreateGameRequest) (*game.State, error)
	Get(ctx context.Context, key string) (*game.State, error)
	Join(ctx context.Context, key, player string) (*game.State, error)
	Move(ctx context.Context, req *MoveRequest) (*game.State, error)
	LegalMoves(ctx context.Context, key, player string) ([]game.Move, error)
	End(ctx context.Context, key, reason string) (*game.State, error)
	Active() int
}

// ArtifactService 神器服务接口
type ArtifactService interface {
	Status(ctx context.Context) artifact.View
	ReportUsage(ctx context.Context, category string) (artifact.View, error)
	CommandCompleted(ctx context.Context, command string) (artifact.View, error)
	Touch(ctx context.Context) (artifact.TouchResult, error)
	Disturb(ctx context.Context) (artifact.DisturbResult, error)
}

// HistoryService 战绩查询接口
type HistoryService interface {
	List(ctx context.Context, player string, page, pageSize int) ([]*models.GameRecord, *repository.Pagination, error)
	Stats(ctx context.Context, player string) (*models.PlayerStats, error)
}

// CreateGameRequest 创建游戏请求
type CreateGameRequest struct {
	Key     string       `json:"key" binding:"required"`
	Kind    string       `json:"kind" binding:"required"`
	Players []string     `json:"players" binding:"required,min=1"`
	Options game.Options `json:"options"`
}

// MoveRequest 出手请求
type MoveRequest struct {
	Key    string `json:"-"`
	Player string `json:"player" binding:"required"`
	Action string `json:"action"`
	Index  int    `json:"index"`
}
