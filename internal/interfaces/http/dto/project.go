// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"short-director-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title    string                  `json:"title" binding:"required,max=255"`
	Synopsis string                  `json:"synopsis" binding:"max=5000"`
	Genre    string                  `json:"genre" binding:"max=50"`
	Settings *ProjectSettingsRequest `json:"settings,omitempty"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title    *string                 `json:"title,omitempty" binding:"omitempty,max=255"`
	Synopsis *string                 `json:"synopsis,omitempty" binding:"omitempty,max=5000"`
	Genre    *string                 `json:"genre,omitempty" binding:"omitempty,max=50"`
	Status   *string                 `json:"status,omitempty"`
	Settings *ProjectSettingsRequest `json:"settings,omitempty"`
}

// ProjectSettingsRequest 项目设置请求
type ProjectSettingsRequest struct {
	Style        string  `json:"style,omitempty"`
	AspectRatio  string  `json:"aspect_ratio,omitempty"`
	DubLanguage  string  `json:"dub_language,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	DefaultModel string  `json:"default_model,omitempty"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID        string                   `json:"id"`
	OwnerID   string                   `json:"owner_id,omitempty"`
	Title     string                   `json:"title"`
	Synopsis  string                   `json:"synopsis,omitempty"`
	Genre     string                   `json:"genre,omitempty"`
	Status    string                   `json:"status"`
	Settings  *ProjectSettingsRequest  `json:"settings,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// ToProjectResponse 将领域实体转换为响应 DTO
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	if p == nil {
		return nil
	}

	resp := &ProjectResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		Synopsis:  p.Synopsis,
		Genre:     p.Genre,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.Settings != nil {
		resp.Settings = &ProjectSettingsRequest{
			Style:        p.Settings.Style,
			AspectRatio:  p.Settings.AspectRatio,
			DubLanguage:  p.Settings.DubLanguage,
			Temperature:  p.Settings.Temperature,
			DefaultModel: p.Settings.DefaultModel,
		}
	}
	return resp
}

// ToProjectListResponse 将领域实体列表转换为响应 DTO
func ToProjectListResponse(projects []*entity.Project) *ProjectListResponse {
	resp := &ProjectListResponse{
		Projects: make([]*ProjectResponse, 0, len(projects)),
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ToProjectResponse(p))
	}
	return resp
}

// ToProjectEntity 将请求 DTO 转换为领域实体
func (r *CreateProjectRequest) ToProjectEntity(ownerID string) *entity.Project {
	project := entity.NewProject(ownerID, r.Title)
	project.Synopsis = r.Synopsis
	project.Genre = r.Genre
	if r.Settings != nil {
		project.Settings = r.Settings.toEntity()
	}
	return project
}

// ApplyToProject 将更新请求应用到项目实体
func (r *UpdateProjectRequest) ApplyToProject(p *entity.Project) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Synopsis != nil {
		p.Synopsis = *r.Synopsis
	}
	if r.Genre != nil {
		p.Genre = *r.Genre
	}
	if r.Status != nil {
		p.Status = entity.ProjectStatus(*r.Status)
	}
	if r.Settings != nil {
		if p.Settings == nil {
			p.Settings = &entity.ProjectSettings{}
		}
		if r.Settings.Style != "" {
			p.Settings.Style = r.Settings.Style
		}
		if r.Settings.AspectRatio != "" {
			p.Settings.AspectRatio = r.Settings.AspectRatio
		}
		if r.Settings.DubLanguage != "" {
			p.Settings.DubLanguage = r.Settings.DubLanguage
		}
		if r.Settings.Temperature > 0 {
			p.Settings.Temperature = r.Settings.Temperature
		}
		if r.Settings.DefaultModel != "" {
			p.Settings.DefaultModel = r.Settings.DefaultModel
		}
	}
	p.UpdatedAt = time.Now()
}

func (r *ProjectSettingsRequest) toEntity() *entity.ProjectSettings {
	return &entity.ProjectSettings{
		Style:        r.Style,
		AspectRatio:  r.AspectRatio,
		DubLanguage:  r.DubLanguage,
		Temperature:  r.Temperature,
		DefaultModel: r.DefaultModel,
	}
}
