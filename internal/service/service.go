package service

import (
	"github.com/wfunc/bugg-bot/internal/artifact"
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/repository"
	"go.uber.org/zap"
)

// Services 服务集合；未配置数据库时 History 为 nil
type Services struct {
	Game     GameService
	Artifact ArtifactService
	History  HistoryService
}

// NewServices 创建服务集合，按配置把战绩记录器挂到会话表上
func NewServices(cfg config.GameConfig, registry *game.Registry, store *artifact.Store, repos *repository.Manager, log *zap.Logger) *Services {
	s := &Services{
		Game:     NewGameService(registry, log.Named("game")),
		Artifact: NewArtifactService(store, log.Named("artifact")),
	}
	if repos == nil {
		return s
	}

	s.History = NewHistoryService(repos.GameRecords())
	if cfg.RecordHistory {
		registry.Subscribe(NewHistoryRecorder(repos.GameRecords(), log.Named("history")))
	}
	return s
}
