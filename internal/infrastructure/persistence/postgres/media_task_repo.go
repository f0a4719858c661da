package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"short-director-api/internal/domain/entity"
)

// MediaTaskRepository 媒体任务仓储实现
type MediaTaskRepository struct {
	client *Client
}

// NewMediaTaskRepository 创建媒体任务仓储
func NewMediaTaskRepository(client *Client) *MediaTaskRepository {
	return &MediaTaskRepository{client: client}
}

// Create 创建任务
func (r *MediaTaskRepository) Create(ctx context.Context, task *entity.MediaTask) error {
	ctx, span := tracer.Start(ctx, "postgres.MediaTaskRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(task).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create media task: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取任务
func (r *MediaTaskRepository) GetByID(ctx context.Context, id string) (*entity.MediaTask, error) {
	ctx, span := tracer.Start(ctx, "postgres.MediaTaskRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var task entity.MediaTask
	if err := db.First(&task, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get media task: %w", err)
	}
	return &task, nil
}

// Update 更新任务
func (r *MediaTaskRepository) Update(ctx context.Context, task *entity.MediaTask) error {
	ctx, span := tracer.Start(ctx, "postgres.MediaTaskRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(task).
		Select("status", "result_url", "error", "finished_at", "updated_at").
		Updates(task).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update media task: %w", err)
	}
	return nil
}

// ListByRun 获取一次运行产生的任务列表
func (r *MediaTaskRepository) ListByRun(ctx context.Context, runID string) ([]*entity.MediaTask, error) {
	ctx, span := tracer.Start(ctx, "postgres.MediaTaskRepository.ListByRun")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var tasks []*entity.MediaTask
	if err := db.Where("run_id = ?", runID).Order("created_at ASC").Find(&tasks).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list media tasks: %w", err)
	}
	return tasks, nil
}
