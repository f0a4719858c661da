package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
)

// APIKeyRepository 模型凭据仓储实现
type APIKeyRepository struct {
	client *Client
}

// NewAPIKeyRepository 创建凭据仓储
func NewAPIKeyRepository(client *Client) *APIKeyRepository {
	return &APIKeyRepository{client: client}
}

// Create 创建凭据
func (r *APIKeyRepository) Create(ctx context.Context, key *entity.APIKey) error {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(key).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取凭据
func (r *APIKeyRepository) GetByID(ctx context.Context, id string) (*entity.APIKey, error) {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var key entity.APIKey
	if err := db.First(&key, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return &key, nil
}

// Update 更新凭据
func (r *APIKeyRepository) Update(ctx context.Context, key *entity.APIKey) error {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(key).
		Select("name", "platform", "api_key", "base_url", "model", "endpoints", "enabled", "updated_at").
		Updates(key).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update api key: %w", err)
	}
	return nil
}

// Delete 删除凭据
func (r *APIKeyRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.APIKey{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete api key: %w", err)
	}
	return nil
}

// ListByOwner 获取用户凭据列表
func (r *APIKeyRepository) ListByOwner(ctx context.Context, ownerID string, pagination repository.Pagination) (*repository.PagedResult[*entity.APIKey], error) {
	ctx, span := tracer.Start(ctx, "postgres.APIKeyRepository.ListByOwner")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.APIKey{})
	if ownerID != "" {
		db = db.Where("owner_id = ?", ownerID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count api keys: %w", err)
	}

	var keys []*entity.APIKey
	if err := db.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&keys).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}

	return repository.NewPagedResult(keys, total, pagination), nil
}
