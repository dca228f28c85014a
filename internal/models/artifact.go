package models

import (
	"time"
)

// ArtifactSnapshot 神器快照（按名称唯一）
type ArtifactSnapshot struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Chaos        int        `gorm:"not null;default:0" json:"chaos"`
	Greed        int        `gorm:"not null;default:0" json:"greed"`
	Shadow       int        `gorm:"not null;default:0" json:"shadow"`
	BornAt       time.Time  `json:"born_at"`
	LastModified time.Time  `json:"last_modified"`
	LastDisturb  *time.Time `json:"last_disturb,omitempty"`
	Version      uint64     `gorm:"not null;default:0" json:"version"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (ArtifactSnapshot) TableName() string {
	return "artifact_snapshots"
}
