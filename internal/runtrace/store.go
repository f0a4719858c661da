package runtrace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Summary 运行列表中的摘要条目
type Summary struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	StartedAt  string         `json:"started_at"`
	EndedAt    string         `json:"ended_at,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	Metrics    Metrics        `json:"metrics"`
}

// Store 轨迹查询接口，从落盘目录读取
type Store struct {
	dir string
}

// NewStore 创建轨迹查询存储
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir 返回轨迹目录
func (s *Store) Dir() string {
	return s.dir
}

// List 列出最近的运行，按开始时间倒序
// projectID / episodeID 非空时按上下文过滤；limit 被钳制在 [1, 200]。
func (s *Store) List(ctx context.Context, projectID, episodeID string, limit int) ([]Summary, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to read runs directory")
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := s.readRecord(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			// 跳过损坏的文件，不让一条坏记录拖垮整个列表
			logger.Warn(ctx, "skipping unreadable run record", "file", entry.Name(), "reason", err.Error())
			continue
		}
		if projectID != "" && contextValue(rec.Context, "project_id") != projectID {
			continue
		}
		if episodeID != "" && contextValue(rec.Context, "episode_id") != episodeID {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}

	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		sum := Summary{
			RunID:      rec.RunID,
			Status:     rec.Status,
			StartedAt:  rec.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			DurationMs: rec.DurationMs,
			Context:    rec.Context,
			Metrics:    rec.Metrics,
		}
		if rec.EndedAt != nil {
			sum.EndedAt = rec.EndedAt.Format("2006-01-02T15:04:05.000Z07:00")
		}
		out = append(out, sum)
	}
	return out, nil
}

// Get 按运行 ID 读取完整轨迹
func (s *Store) Get(ctx context.Context, runID string) (*Record, error) {
	path := filepath.Join(s.dir, safeFileName(runID)+".json")
	rec, err := s.readRecord(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrRunNotFound.WithDetail(runID)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to read run record")
	}
	return &rec, nil
}

func (s *Store) readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func contextValue(ctx map[string]any, key string) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx[key].(string); ok {
		return v
	}
	return ""
}
