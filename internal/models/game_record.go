package models

import (
	"time"
)

// GameRecord 已结束的游戏记录
type GameRecord struct {
	BaseModel
	GameID     string     `gorm:"uniqueIndex;size:64;not null" json:"game_id"`
	Kind       string     `gorm:"size:20;index;not null" json:"kind"`
	SessionKey string     `gorm:"size:255;index" json:"session_key"`
	Players    StringList `gorm:"type:text" json:"players"`
	Winner     string     `gorm:"size:100;index" json:"winner"`
	Loser      string     `gorm:"size:100" json:"loser"`
	Draw       bool       `json:"draw"`
	Abandoned  bool       `json:"abandoned"`
	Reason     string     `gorm:"size:100" json:"reason"`
	Rounds     int        `json:"rounds"`
	Moves      int        `json:"moves"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    time.Time  `gorm:"index" json:"ended_at"`
	Duration   int        `json:"duration"` // 秒
}

// TableName 指定表名
func (GameRecord) TableName() string {
	return "game_records"
}

// PlayerParticipant 用于 LIKE 查询 players 列的模式
func PlayerParticipant(player string) string {
	return `%"` + player + `"%`
}

// PlayerStats 玩家战绩
type PlayerStats struct {
	Player    string           `json:"player"`
	Played    int64            `json:"played"`
	Wins      int64            `json:"wins"`
	Losses    int64            `json:"losses"`
	Draws     int64            `json:"draws"`
	Abandoned int64            `json:"abandoned"`
	ByKind    map[string]int64 `json:"by_kind"`
}
