package database

import (
	"time"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/logger"
	"github.com/wfunc/bugg-bot/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models 需要迁移的全部模型
func Models() []interface{} {
	return []interface{}{
		&models.GameRecord{},
		&models.ArtifactSnapshot{},
	}
}

// Migrate 自动迁移表结构；sqlite 文件库迁移期间持有文件锁，避免 server 与 buggctl 同时迁移
func Migrate(db *gorm.DB) error {
	if path := sqlitePath(db); path != "" {
		CleanupStaleLocks(path)
		lock, err := acquireMigrationLock(path)
		if err != nil {
			return err
		}
		defer releaseMigrationLock(lock)
	}

	start := time.Now()
	err := db.AutoMigrate(Models()...)
	logger.LogDatabaseOperation("migrate", "*", time.Since(start), err)
	if err != nil {
		return apperr.Wrap(err, apperr.ErrDatabaseUpdate, "数据库迁移失败")
	}

	logger.WithModule("database").Info("数据库迁移完成", zap.Int("models", len(Models())))
	return nil
}
