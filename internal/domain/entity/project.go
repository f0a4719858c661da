// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

// ProjectSettings 项目设置
type ProjectSettings struct {
	Style        string  `json:"style,omitempty"`
	AspectRatio  string  `json:"aspect_ratio,omitempty"`
	DubLanguage  string  `json:"dub_language,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	DefaultModel string  `json:"default_model,omitempty"`
}

// Project 短剧项目实体
type Project struct {
	ID        string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID   string           `json:"owner_id,omitempty" gorm:"type:uuid;index"`
	Title     string           `json:"title" gorm:"type:varchar(255);not null"`
	Synopsis  string           `json:"synopsis,omitempty" gorm:"type:text"`
	Genre     string           `json:"genre,omitempty" gorm:"type:varchar(100)"`
	Settings  *ProjectSettings `json:"settings,omitempty" gorm:"type:jsonb;serializer:json"`
	Status    ProjectStatus    `json:"status" gorm:"type:varchar(50);default:'draft'"`
	CreatedAt time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(ownerID, title string) *Project {
	now := time.Now()
	return &Project{
		OwnerID:   ownerID,
		Title:     title,
		Status:    ProjectStatusDraft,
		Settings:  &ProjectSettings{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable 检查项目是否可编辑
func (p *Project) IsEditable() bool {
	return p.Status != ProjectStatusArchived
}
