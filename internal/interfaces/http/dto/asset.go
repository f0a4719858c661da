package dto

import (
	"time"

	"short-director-api/internal/domain/entity"
)

// AssetResponse 资产响应
type AssetResponse struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id"`
	EpisodeID   string         `json:"episode_id,omitempty"`
	ItemID      string         `json:"item_id,omitempty"`
	RunID       string         `json:"run_id,omitempty"`
	Modality    string         `json:"modality"`
	URL         string         `json:"url"`
	ContentType string         `json:"content_type,omitempty"`
	SizeBytes   int64          `json:"size_bytes,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AssetListResponse 资产列表响应
type AssetListResponse struct {
	Assets []*AssetResponse `json:"assets"`
}

// ToAssetResponse 将领域实体转换为响应 DTO
func ToAssetResponse(a *entity.Asset) *AssetResponse {
	if a == nil {
		return nil
	}
	return &AssetResponse{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		EpisodeID:   a.EpisodeID,
		ItemID:      a.ItemID,
		RunID:       a.RunID,
		Modality:    string(a.Modality),
		URL:         a.URL,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAssetListResponse 将领域实体列表转换为响应 DTO
func ToAssetListResponse(assets []*entity.Asset) *AssetListResponse {
	resp := &AssetListResponse{
		Assets: make([]*AssetResponse, 0, len(assets)),
	}
	for _, a := range assets {
		resp.Assets = append(resp.Assets, ToAssetResponse(a))
	}
	return resp
}
