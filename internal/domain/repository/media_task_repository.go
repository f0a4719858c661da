package repository

import (
	"context"

	"short-director-api/internal/domain/entity"
)

// MediaTaskRepository 媒体任务仓储接口
type MediaTaskRepository interface {
	// Create 创建任务
	Create(ctx context.Context, task *entity.MediaTask) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.MediaTask, error)

	// Update 更新任务
	Update(ctx context.Context, task *entity.MediaTask) error

	// ListByRun 获取一次运行产生的任务列表
	ListByRun(ctx context.Context, runID string) ([]*entity.MediaTask, error)
}
