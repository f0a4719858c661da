package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
)

// EpisodeRepository 剧集仓储实现
type EpisodeRepository struct {
	client *Client
}

// NewEpisodeRepository 创建剧集仓储
func NewEpisodeRepository(client *Client) *EpisodeRepository {
	return &EpisodeRepository{client: client}
}

// Create 创建剧集
func (r *EpisodeRepository) Create(ctx context.Context, episode *entity.Episode) error {
	ctx, span := tracer.Start(ctx, "postgres.EpisodeRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(episode).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create episode: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取剧集
func (r *EpisodeRepository) GetByID(ctx context.Context, id string) (*entity.Episode, error) {
	ctx, span := tracer.Start(ctx, "postgres.EpisodeRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var episode entity.Episode
	if err := db.First(&episode, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	return &episode, nil
}

// Update 更新剧集
func (r *EpisodeRepository) Update(ctx context.Context, episode *entity.Episode) error {
	ctx, span := tracer.Start(ctx, "postgres.EpisodeRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(episode).
		Select("title", "synopsis", "order_index", "script", "status", "updated_at").
		Updates(episode).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update episode: %w", err)
	}
	return nil
}

// UpdateScript 更新剧本文档
func (r *EpisodeRepository) UpdateScript(ctx context.Context, id string, script map[string]any) error {
	ctx, span := tracer.Start(ctx, "postgres.EpisodeRepository.UpdateScript")
	defer span.End()

	db := getDB(ctx, r.client.db)
	// 通过实体更新以复用 jsonb 序列化器
	patch := &entity.Episode{Script: script, Status: entity.EpisodeStatusScripted}
	if err := db.Model(&entity.Episode{}).
		Where("id = ?", id).
		Select("script", "status", "updated_at").
		Updates(patch).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update episode script: %w", err)
	}
	return nil
}

// Delete 删除剧集
func (r *EpisodeRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.EpisodeRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Episode{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete episode: %w", err)
	}
	return nil
}

// ListByProject 获取项目下的剧集列表
func (r *EpisodeRepository) ListByProject(ctx context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Episode], error) {
	ctx, span := tracer.Start(ctx, "postgres.EpisodeRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.Episode{}).Where("project_id = ?", projectID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count episodes: %w", err)
	}

	var episodes []*entity.Episode
	if err := db.Order("order_index ASC, created_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&episodes).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	return repository.NewPagedResult(episodes, total, pagination), nil
}
