package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/bugg-bot/internal/database"
	"github.com/wfunc/bugg-bot/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 内存数据库，单连接保证所有查询看到同一个库
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateTestGameRecord 构造一条已结束记录
func CreateTestGameRecord(kind, winner string, endedAt time.Time, players ...string) *models.GameRecord {
	rec := &models.GameRecord{
		GameID:     uuid.NewString(),
		Kind:       kind,
		SessionKey: fmt.Sprintf("chan-%s", kind),
		Players:    models.StringList(players),
		Winner:     winner,
		Reason:     "knockout",
		Rounds:     3,
		Moves:      6,
		StartedAt:  endedAt.Add(-time.Minute),
		EndedAt:    endedAt,
		Duration:   60,
	}
	if winner != "" {
		for _, p := range players {
			if p != winner {
				rec.Loser = p
				break
			}
		}
	}
	return rec
}
