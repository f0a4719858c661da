package repository

import (
	"context"

	"short-director-api/internal/domain/entity"
)

// APIKeyRepository 模型凭据仓储接口
type APIKeyRepository interface {
	// Create 创建凭据
	Create(ctx context.Context, key *entity.APIKey) error

	// GetByID 根据 ID 获取凭据
	GetByID(ctx context.Context, id string) (*entity.APIKey, error)

	// Update 更新凭据
	Update(ctx context.Context, key *entity.APIKey) error

	// Delete 删除凭据
	Delete(ctx context.Context, id string) error

	// ListByOwner 获取用户凭据列表
	ListByOwner(ctx context.Context, ownerID string, pagination Pagination) (*PagedResult[*entity.APIKey], error)
}
