package dto

import (
	"time"

	"short-director-api/internal/domain/entity"
)

// CreateEpisodeRequest 创建分集请求
type CreateEpisodeRequest struct {
	Title      string `json:"title" binding:"required,max=255"`
	Synopsis   string `json:"synopsis" binding:"max=5000"`
	OrderIndex int    `json:"order_index" binding:"gte=0"`
}

// UpdateEpisodeRequest 更新分集请求
type UpdateEpisodeRequest struct {
	Title      *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Synopsis   *string `json:"synopsis,omitempty" binding:"omitempty,max=5000"`
	OrderIndex *int    `json:"order_index,omitempty" binding:"omitempty,gte=0"`
	Status     *string `json:"status,omitempty"`
}

// UpdateScriptRequest 整体替换分集剧本
type UpdateScriptRequest struct {
	Script map[string]any `json:"script" binding:"required"`
}

// UpdateScriptItemRequest 更新剧本条目
type UpdateScriptItemRequest struct {
	Fields map[string]any `json:"fields" binding:"required"`
}

// EpisodeResponse 分集响应
type EpisodeResponse struct {
	ID         string         `json:"id"`
	ProjectID  string         `json:"project_id"`
	Title      string         `json:"title"`
	Synopsis   string         `json:"synopsis,omitempty"`
	OrderIndex int            `json:"order_index"`
	Script     map[string]any `json:"script,omitempty"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// EpisodeListResponse 分集列表响应
type EpisodeListResponse struct {
	Episodes []*EpisodeResponse `json:"episodes"`
}

// ToEpisodeResponse 将领域实体转换为响应 DTO
// withScript 控制是否携带完整剧本，列表接口不带以减小响应体。
func ToEpisodeResponse(e *entity.Episode, withScript bool) *EpisodeResponse {
	if e == nil {
		return nil
	}
	resp := &EpisodeResponse{
		ID:         e.ID,
		ProjectID:  e.ProjectID,
		Title:      e.Title,
		Synopsis:   e.Synopsis,
		OrderIndex: e.OrderIndex,
		Status:     string(e.Status),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if withScript {
		resp.Script = e.Script
	}
	return resp
}

// ToEpisodeListResponse 将领域实体列表转换为响应 DTO
func ToEpisodeListResponse(episodes []*entity.Episode) *EpisodeListResponse {
	resp := &EpisodeListResponse{
		Episodes: make([]*EpisodeResponse, 0, len(episodes)),
	}
	for _, e := range episodes {
		resp.Episodes = append(resp.Episodes, ToEpisodeResponse(e, false))
	}
	return resp
}
