package dto

import (
	"time"

	"short-director-api/internal/domain/entity"
)

// CreateAPIKeyRequest 创建模型凭据请求
type CreateAPIKeyRequest struct {
	Name      string            `json:"name" binding:"required,max=100"`
	Platform  string            `json:"platform" binding:"required,max=50"`
	Key       string            `json:"key" binding:"required"`
	BaseURL   string            `json:"base_url,omitempty" binding:"omitempty,max=500"`
	Model     string            `json:"model,omitempty" binding:"omitempty,max=100"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

// UpdateAPIKeyRequest 更新模型凭据请求
// Key 为空表示保持原密钥不变。
type UpdateAPIKeyRequest struct {
	Name      *string           `json:"name,omitempty" binding:"omitempty,max=100"`
	Platform  *string           `json:"platform,omitempty" binding:"omitempty,max=50"`
	Key       *string           `json:"key,omitempty"`
	BaseURL   *string           `json:"base_url,omitempty" binding:"omitempty,max=500"`
	Model     *string           `json:"model,omitempty" binding:"omitempty,max=100"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
	Enabled   *bool             `json:"enabled,omitempty"`
}

// APIKeyResponse 模型凭据响应，密钥始终脱敏
type APIKeyResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Platform  string            `json:"platform"`
	MaskedKey string            `json:"masked_key"`
	BaseURL   string            `json:"base_url,omitempty"`
	Model     string            `json:"model,omitempty"`
	Endpoints map[string]string `json:"endpoints,omitempty"`
	Enabled   bool              `json:"enabled"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// APIKeyListResponse 模型凭据列表响应
type APIKeyListResponse struct {
	Keys []*APIKeyResponse `json:"keys"`
}

// APIKeyTestResponse 凭据连通性测试响应
type APIKeyTestResponse struct {
	OK           bool     `json:"ok"`
	Model        string   `json:"model,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Message      string   `json:"message,omitempty"`
}

// ToAPIKeyResponse 将领域实体转换为响应 DTO
func ToAPIKeyResponse(k *entity.APIKey) *APIKeyResponse {
	if k == nil {
		return nil
	}
	return &APIKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		Platform:  k.Platform,
		MaskedKey: k.Masked(),
		BaseURL:   k.BaseURL,
		Model:     k.Model,
		Endpoints: k.Endpoints,
		Enabled:   k.Enabled,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

// ToAPIKeyListResponse 将领域实体列表转换为响应 DTO
func ToAPIKeyListResponse(keys []*entity.APIKey) *APIKeyListResponse {
	resp := &APIKeyListResponse{
		Keys: make([]*APIKeyResponse, 0, len(keys)),
	}
	for _, k := range keys {
		resp.Keys = append(resp.Keys, ToAPIKeyResponse(k))
	}
	return resp
}
