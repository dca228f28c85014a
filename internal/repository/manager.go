package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Manager 仓储管理器，懒加载各仓储
type Manager struct {
	*BaseRepo

	gameRecordOnce sync.Once
	gameRecord     GameRecordRepository
}

// NewManager 创建仓储管理器
func NewManager(db *gorm.DB) *Manager {
	return &Manager{BaseRepo: NewBaseRepo(db)}
}

// GameRecords 游戏记录仓储
func (m *Manager) GameRecords() GameRecordRepository {
	m.gameRecordOnce.Do(func() {
		m.gameRecord = NewGameRecordRepository(m.db)
	})
	return m.gameRecord
}

// WithTx 在事务中执行，fn 内拿到的是绑定事务的管理器
func (m *Manager) WithTx(ctx context.Context, fn func(tx *Manager) error) error {
	return m.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(NewManager(tx))
	})
}
