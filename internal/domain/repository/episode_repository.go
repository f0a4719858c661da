package repository

import (
	"context"

	"short-director-api/internal/domain/entity"
)

// EpisodeRepository 剧集仓储接口
type EpisodeRepository interface {
	// Create 创建剧集
	Create(ctx context.Context, episode *entity.Episode) error

	// GetByID 根据 ID 获取剧集
	GetByID(ctx context.Context, id string) (*entity.Episode, error)

	// Update 更新剧集
	Update(ctx context.Context, episode *entity.Episode) error

	// UpdateScript 更新剧本文档
	UpdateScript(ctx context.Context, id string, script map[string]any) error

	// Delete 删除剧集
	Delete(ctx context.Context, id string) error

	// ListByProject 获取项目下的剧集列表
	ListByProject(ctx context.Context, projectID string, pagination Pagination) (*PagedResult[*entity.Episode], error)
}
