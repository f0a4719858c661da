package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
)

// AssetRepository 资产仓储实现
type AssetRepository struct {
	client *Client
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(client *Client) *AssetRepository {
	return &AssetRepository{client: client}
}

// Create 创建资产
func (r *AssetRepository) Create(ctx context.Context, asset *entity.Asset) error {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(asset).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取资产
func (r *AssetRepository) GetByID(ctx context.Context, id string) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var asset entity.Asset
	if err := db.First(&asset, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return &asset, nil
}

// Delete 删除资产
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Asset{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

// ListByProject 获取项目下的资产列表
func (r *AssetRepository) ListByProject(ctx context.Context, projectID string, filter *repository.AssetFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Asset], error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.Asset{}).Where("project_id = ?", projectID)
	if filter != nil {
		if filter.EpisodeID != "" {
			db = db.Where("episode_id = ?", filter.EpisodeID)
		}
		if filter.ItemID != "" {
			db = db.Where("item_id = ?", filter.ItemID)
		}
		if filter.Modality != "" {
			db = db.Where("modality = ?", filter.Modality)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	var assets []*entity.Asset
	if err := db.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&assets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return repository.NewPagedResult(assets, total, pagination), nil
}

// LatestByItem 获取剧本条目最近一次生成的资产
func (r *AssetRepository) LatestByItem(ctx context.Context, episodeID, itemID string, modality entity.AssetModality) (*entity.Asset, error) {
	ctx, span := tracer.Start(ctx, "postgres.AssetRepository.LatestByItem")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var asset entity.Asset
	err := db.Where("episode_id = ? AND item_id = ? AND modality = ?", episodeID, itemID, modality).
		Order("created_at DESC").
		First(&asset).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get latest asset: %w", err)
	}
	return &asset, nil
}
