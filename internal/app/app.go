// Package app 负责按配置装配各组件，供 server 与 buggctl 共用
package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/wfunc/bugg-bot/internal/artifact"
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/database"
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/game/catalog"
	"github.com/wfunc/bugg-bot/internal/logger"
	"github.com/wfunc/bugg-bot/internal/repository"
	"github.com/wfunc/bugg-bot/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 装配完成的组件集合
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Registry *game.Registry
	Store    *artifact.Store
	Services *service.Services

	logger *zap.Logger
}

// needsDB 战绩或神器落库时才需要数据库
func needsDB(cfg *config.Config) bool {
	if cfg.Database.DSN == "" {
		return false
	}
	return cfg.Game.RecordHistory || cfg.Artifact.Store == "db"
}

// New 按配置创建组件；数据库不可用时战绩功能关闭
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, logger: log}

	if needsDB(cfg) {
		db, err := openDB(&cfg.Database)
		if err != nil {
			return nil, err
		}
		a.DB = db
	} else if cfg.Artifact.Store == "db" {
		return nil, apperr.New(apperr.ErrConfigValidate, "artifact.store=db 需要配置 database.dsn")
	}

	persister, err := a.persister()
	if err != nil {
		a.Close()
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, apperr.Wrap(err, apperr.ErrConfigValidate, "时区无效")
	}
	a.Store, err = artifact.Open(ctx, artifact.FromConfig(cfg.Artifact, loc), persister,
		artifact.WithLogger(logger.WithModule("artifact")))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Registry = game.NewRegistry(catalog.New(cfg.Game), catalog.RegistryConfig(cfg.Game),
		game.WithLogger(logger.WithModule("game")))

	var repos *repository.Manager
	if a.DB != nil {
		repos = repository.NewManager(a.DB)
	}
	a.Services = service.NewServices(cfg.Game, a.Registry, a.Store, repos, logger.WithModule("service"))

	log.Info("组件装配完成",
		zap.Bool("database", a.DB != nil),
		zap.String("artifact_store", cfg.Artifact.Store),
		zap.Bool("history", a.Services.History != nil))
	return a, nil
}

func openDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "" || cfg.Driver == "sqlite" || cfg.Driver == "sqlite3" {
		if dir := filepath.Dir(cfg.DSN); cfg.DSN != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, apperr.Wrap(err, apperr.ErrDatabaseConnect, "创建数据目录失败")
			}
		}
	}
	db, err := database.Open(cfg, logger.WithModule("database"))
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			if sqlDB, e := db.DB(); e == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
	}
	return db, nil
}

func (a *App) persister() (artifact.Persister, error) {
	switch a.Config.Artifact.Store {
	case "db":
		return artifact.NewDBPersister(a.DB, a.Config.Artifact.Name), nil
	case "memory":
		return artifact.NewMemoryPersister(), nil
	case "file", "":
		if dir := filepath.Dir(a.Config.Artifact.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, apperr.Wrap(err, apperr.ErrArtifactPersist, "创建神器存档目录失败")
			}
		}
		return artifact.NewFilePersister(a.Config.Artifact.Path), nil
	default:
		return nil, apperr.Newf(apperr.ErrConfigValidate, "未知的神器存储 %q", a.Config.Artifact.Store)
	}
}

// Close 取消待触发的超时并关闭数据库
func (a *App) Close() {
	if a.Registry != nil {
		a.Registry.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logger.Warn("关闭数据库失败", zap.Error(err))
			}
		}
	}
}
