package database

import (
	"os"
	"path/filepath"
	"time"

	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	lockAttempts = 30
	lockWait     = time.Second
	lockStale    = 5 * time.Minute
)

// acquireMigrationLock 以独占方式创建锁文件
func acquireMigrationLock(dbPath string) (*os.File, error) {
	lockPath := dbPath + ".migration.lock"
	l := logger.WithModule("database")

	for i := 0; i < lockAttempts; i++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
		if err == nil {
			l.Debug("获取迁移锁成功", zap.String("lock", lockPath))
			return f, nil
		}

		if info, err := os.Stat(lockPath); err == nil && time.Since(info.ModTime()) > lockStale {
			l.Warn("迁移锁文件过期，尝试删除", zap.String("lock", lockPath))
			_ = os.Remove(lockPath)
			continue
		}

		l.Debug("等待迁移锁...", zap.Int("attempt", i+1))
		time.Sleep(lockWait)
	}

	return nil, apperr.Newf(apperr.ErrTransaction, "无法获取迁移锁 %s，可能有其他进程正在执行迁移", lockPath)
}

// releaseMigrationLock 释放迁移锁
func releaseMigrationLock(f *os.File) {
	if f == nil {
		return
	}
	path := f.Name()
	_ = f.Close()
	_ = os.Remove(path)
	logger.WithModule("database").Debug("释放迁移锁", zap.String("lock", path))
}

// sqlitePath 返回 sqlite 主库文件路径；内存库和其他驱动返回空
func sqlitePath(db *gorm.DB) string {
	if db == nil || db.Dialector.Name() != "sqlite" {
		return ""
	}
	sqlDB, err := db.DB()
	if err != nil {
		return ""
	}
	var (
		seq        int
		name, file string
	)
	if err := sqlDB.QueryRow("PRAGMA database_list").Scan(&seq, &name, &file); err != nil {
		return ""
	}
	return file
}

// CleanupStaleLocks 清理库文件旁遗留的过期锁
func CleanupStaleLocks(dbPath string) {
	matches, _ := filepath.Glob(dbPath + "*.lock")
	for _, lock := range matches {
		info, err := os.Stat(lock)
		if err != nil || time.Since(info.ModTime()) <= 2*lockStale {
			continue
		}
		logger.WithModule("database").Info("清理过期锁文件", zap.String("file", lock))
		_ = os.Remove(lock)
	}
}
