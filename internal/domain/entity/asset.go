package entity

import (
	"time"
)

// AssetModality 资产模态
type AssetModality string

const (
	AssetModalityImage AssetModality = "image"
	AssetModalityVideo AssetModality = "video"
	AssetModalityAudio AssetModality = "audio"
)

// Asset 生成产物实体，记录对象存储位置与来源任务
type Asset struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID   string         `json:"project_id" gorm:"type:uuid;index;not null"`
	EpisodeID   string         `json:"episode_id,omitempty" gorm:"type:uuid;index"`
	ItemID      string         `json:"item_id,omitempty" gorm:"type:varchar(100);index"`
	RunID       string         `json:"run_id,omitempty" gorm:"type:varchar(100);index"`
	Modality    AssetModality  `json:"modality" gorm:"type:varchar(20);not null"`
	ObjectKey   string         `json:"object_key" gorm:"type:varchar(512);not null"`
	URL         string         `json:"url,omitempty" gorm:"type:text"`
	SourceURL   string         `json:"source_url,omitempty" gorm:"type:text"`
	ContentType string         `json:"content_type,omitempty" gorm:"type:varchar(100)"`
	SizeBytes   int64          `json:"size_bytes,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}

// NewAsset 创建新资产
func NewAsset(projectID string, modality AssetModality, objectKey string) *Asset {
	return &Asset{
		ProjectID: projectID,
		Modality:  modality,
		ObjectKey: objectKey,
		CreatedAt: time.Now(),
	}
}
