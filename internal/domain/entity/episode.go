package entity

import (
	"time"
)

// EpisodeStatus 剧集状态
type EpisodeStatus string

const (
	EpisodeStatusDraft      EpisodeStatus = "draft"
	EpisodeStatusScripted   EpisodeStatus = "scripted"
	EpisodeStatusGenerating EpisodeStatus = "generating"
	EpisodeStatusCompleted  EpisodeStatus = "completed"
)

// Episode 剧集实体，剧本以 JSON 文档形式存储
type Episode struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID  string         `json:"project_id" gorm:"type:uuid;index;not null"`
	Title      string         `json:"title" gorm:"type:varchar(255);not null"`
	Synopsis   string         `json:"synopsis,omitempty" gorm:"type:text"`
	OrderIndex int            `json:"order_index" gorm:"default:0"`
	Script     map[string]any `json:"script,omitempty" gorm:"type:jsonb;serializer:json"`
	Status     EpisodeStatus  `json:"status" gorm:"type:varchar(50);default:'draft'"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Episode) TableName() string {
	return "episodes"
}

// NewEpisode 创建新剧集
func NewEpisode(projectID, title string, orderIndex int) *Episode {
	now := time.Now()
	return &Episode{
		ProjectID:  projectID,
		Title:      title,
		OrderIndex: orderIndex,
		Status:     EpisodeStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasScript 检查剧本是否已生成
func (e *Episode) HasScript() bool {
	return len(e.Script) > 0
}
