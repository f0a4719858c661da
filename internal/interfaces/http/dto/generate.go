package dto

import (
	"short-director-api/internal/application/generation"
)

// GenerateRequest 统一生成请求，SSE 流式返回
type GenerateRequest struct {
	ProjectID string `json:"project_id,omitempty"`
	EpisodeID string `json:"episode_id,omitempty"`
	Modality  string `json:"modality" binding:"required"`
	Skill     string `json:"skill,omitempty"`
	Prompt    string `json:"prompt" binding:"required"`
	APIKeyID  string `json:"api_key_id" binding:"required"`
	Model     string `json:"model,omitempty"`
	ItemID    string `json:"item_id,omitempty"`

	Directives generation.VideoDirectives `json:"directives,omitempty"`
	Params     map[string]any             `json:"params,omitempty"`
}

// ToGenerationRequest 转换为应用层请求
func (r *GenerateRequest) ToGenerationRequest() *generation.Request {
	return &generation.Request{
		ProjectID:  r.ProjectID,
		EpisodeID:  r.EpisodeID,
		Modality:   r.Modality,
		Skill:      r.Skill,
		Prompt:     r.Prompt,
		APIKeyID:   r.APIKeyID,
		Model:      r.Model,
		ItemID:     r.ItemID,
		Directives: r.Directives,
		Params:     r.Params,
	}
}
