package repository

import (
	"context"

	"short-director-api/internal/domain/entity"
)

// AssetFilter 资产过滤条件
type AssetFilter struct {
	EpisodeID string
	ItemID    string
	Modality  entity.AssetModality
}

// AssetRepository 资产仓储接口
type AssetRepository interface {
	// Create 创建资产
	Create(ctx context.Context, asset *entity.Asset) error

	// GetByID 根据 ID 获取资产
	GetByID(ctx context.Context, id string) (*entity.Asset, error)

	// Delete 删除资产
	Delete(ctx context.Context, id string) error

	// ListByProject 获取项目下的资产列表
	ListByProject(ctx context.Context, projectID string, filter *AssetFilter, pagination Pagination) (*PagedResult[*entity.Asset], error)

	// LatestByItem 获取剧本条目最近一次生成的资产
	LatestByItem(ctx context.Context, episodeID, itemID string, modality entity.AssetModality) (*entity.Asset, error)
}
