package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"short-director-api/pkg/metrics"
)

// TaskResult 媒体任务终态结果
type TaskResult struct {
	TaskID     string    `json:"task_id"`
	Platform   string    `json:"platform"`
	Status     string    `json:"status"`
	ResultURL  string    `json:"result_url,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// TaskResultStore 媒体任务结果存储，终态结果带 TTL 落入 Redis
type TaskResultStore struct {
	client *Client
	ttl    time.Duration
}

// NewTaskResultStore 创建任务结果存储
func NewTaskResultStore(client *Client, ttl time.Duration) *TaskResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TaskResultStore{client: client, ttl: ttl}
}

func taskResultKey(platform, taskID string) string {
	return fmt.Sprintf("media:result:%s:%s", platform, taskID)
}

// Save 保存终态结果
func (s *TaskResultStore) Save(ctx context.Context, result *TaskResult) error {
	ctx, span := tracer.Start(ctx, "taskresult.Save",
		trace.WithAttributes(
			attribute.String("media.platform", result.Platform),
			attribute.String("media.task_id", result.TaskID),
		))
	defer span.End()

	bytes, err := json.Marshal(result)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal task result: %w", err)
	}

	if err := s.client.rdb.Set(ctx, taskResultKey(result.Platform, result.TaskID), bytes, s.ttl).Err(); err != nil {
		metrics.RedisOpsTotal.WithLabelValues("task_result_save", "error").Inc()
		span.RecordError(err)
		return fmt.Errorf("failed to save task result: %w", err)
	}

	metrics.RedisOpsTotal.WithLabelValues("task_result_save", "ok").Inc()
	return nil
}

// Get 获取终态结果，未命中返回 nil
func (s *TaskResultStore) Get(ctx context.Context, platform, taskID string) (*TaskResult, error) {
	ctx, span := tracer.Start(ctx, "taskresult.Get",
		trace.WithAttributes(
			attribute.String("media.platform", platform),
			attribute.String("media.task_id", taskID),
		))
	defer span.End()

	bytes, err := s.client.rdb.Get(ctx, taskResultKey(platform, taskID)).Bytes()
	if err != nil {
		if IsNil(err) {
			metrics.RedisOpsTotal.WithLabelValues("task_result_get", "miss").Inc()
			return nil, nil
		}
		metrics.RedisOpsTotal.WithLabelValues("task_result_get", "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get task result: %w", err)
	}

	var result TaskResult
	if err := json.Unmarshal(bytes, &result); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
	}

	metrics.RedisOpsTotal.WithLabelValues("task_result_get", "hit").Inc()
	return &result, nil
}
