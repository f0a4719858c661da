// Package runtrace 提供生成运行的持久化轨迹记录
//
// 每次生成请求对应一个 Recorder 实例。所有写入在单把锁下串行化，
// 并通过"写临时文件 + 原子重命名"落盘，崩溃不会留下半写的记录。
package runtrace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"short-director-api/pkg/metrics"
)

// 运行状态
const (
	StatusInitialized = "initialized"
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusError       = "error"
	StatusAborted     = "aborted"
)

// 事件类型
const (
	EventStatus     = "status"
	EventProgress   = "progress"
	EventBackendLog = "backend_log"
	EventThought    = "thought"
	EventError      = "error"
	EventFinish     = "finish"
	EventTextFinish = "text_finish"
)

const (
	// DefaultMaxEvents 事件列表硬上限，超出后淘汰最旧的
	DefaultMaxEvents = 2000

	// thoughtSampleEvery token 碎片的采样周期
	thoughtSampleEvery = 80
	// thoughtSampleLimit 采样片段保留的最大字符数
	thoughtSampleLimit = 600
	// thoughtMarker 含控制标记的碎片总是被采样
	thoughtMarker = "<|"
)

// EventRecord 轨迹中的单条事件
type EventRecord struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Metrics 轨迹计数器
type Metrics struct {
	Events          int `json:"events"`
	Statuses        int `json:"statuses"`
	ProgressUpdates int `json:"progress_updates"`
	BackendLogs     int `json:"backend_logs"`
	Errors          int `json:"errors"`
	ThoughtChunks   int `json:"thought_chunks"`
	ThoughtChars    int `json:"thought_chars"`
}

// Record 一次生成运行的完整轨迹
type Record struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
	Metrics    Metrics        `json:"metrics"`
	Result     map[string]any `json:"result,omitempty"`
	Events     []EventRecord  `json:"events"`
}

// Recorder 单次运行的轨迹记录器
type Recorder struct {
	mu        sync.Mutex
	dir       string
	maxEvents int

	record       Record
	finished     bool
	lastProgress int
}

// NewRecorder 创建轨迹记录器
// runID 为空时自动生成；maxEvents <= 0 时使用默认上限。
func NewRecorder(dir, runID string, maxEvents int) *Recorder {
	if runID == "" {
		runID = fmt.Sprintf("run_%d_%d", time.Now().UnixMilli(), os.Getpid())
	}
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	now := time.Now()
	return &Recorder{
		dir:          dir,
		maxEvents:    maxEvents,
		lastProgress: -1,
		record: Record{
			RunID:     runID,
			Status:    StatusInitialized,
			StartedAt: now,
			UpdatedAt: now,
			Events:    []EventRecord{},
		},
	}
}

// RunID 返回本次运行的标识
func (r *Recorder) RunID() string {
	return r.record.RunID
}

// StartedAt 返回运行开始时间
func (r *Recorder) StartedAt() time.Time {
	return r.record.StartedAt
}

// Start 标记运行开始并记录上下文快照
func (r *Recorder) Start(context map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.record.Status = StatusRunning
	r.record.Context = sanitizeMap(context, 0)
	r.appendLocked(EventStatus, map[string]any{"status": StatusRunning})
	r.flushLocked()
}

// Capture 记录一条事件
// thought 与 progress 事件按采样策略落盘，计数器始终递增。
func (r *Recorder) Capture(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}

	r.record.Metrics.Events++
	metrics.GenerationEventsTotal.WithLabelValues(eventType).Inc()

	store := true
	stored := payload

	switch eventType {
	case EventStatus:
		r.record.Metrics.Statuses++
	case EventBackendLog:
		r.record.Metrics.BackendLogs++
	case EventError:
		r.record.Metrics.Errors++
	case EventProgress:
		r.record.Metrics.ProgressUpdates++
		v, ok := progressValue(payload)
		if !ok {
			store = false
			break
		}
		// 仅在值变化且落在关键刻度上时入档，避免长流把事件列表刷爆
		if v == r.lastProgress || !(v == 0 || v == 1 || v == 100 || v%5 == 0) {
			store = false
		}
		r.lastProgress = v
	case EventThought:
		chunk, _ := payload.(string)
		r.record.Metrics.ThoughtChunks++
		r.record.Metrics.ThoughtChars += len([]rune(chunk))
		if !strings.Contains(chunk, thoughtMarker) && r.record.Metrics.ThoughtChunks%thoughtSampleEvery != 1 {
			store = false
			break
		}
		sample := []rune(chunk)
		if len(sample) > thoughtSampleLimit {
			sample = sample[:thoughtSampleLimit]
		}
		stored = map[string]any{
			"sample":     string(sample),
			"sample_len": len([]rune(chunk)),
		}
	}

	if store {
		r.appendLocked(eventType, sanitizeValue(stored, 0))
	}
	r.flushLocked()
}

// Finish 结束运行并落盘终态
// 幂等：第二次调用是空操作。只要捕获过 error 事件，
// 即使调用方声称 completed，最终状态也会提升为 error。
func (r *Recorder) Finish(status, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return
	}
	r.finished = true

	if r.record.Metrics.Errors > 0 && status == StatusCompleted {
		status = StatusError
	}
	now := time.Now()
	r.record.Status = status
	r.record.EndedAt = &now
	r.record.DurationMs = now.Sub(r.record.StartedAt).Milliseconds()
	r.record.Result = map[string]any{"status": status}
	if errMsg != "" {
		r.record.Result["error"] = truncateString(errMsg, maxStringLen)
	}
	r.flushLocked()
}

// Snapshot 返回当前记录的深拷贝（经过 JSON 往返）
func (r *Recorder) Snapshot() (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(r.record)
	if err != nil {
		return Record{}, err
	}
	var out Record
	if err := json.Unmarshal(data, &out); err != nil {
		return Record{}, err
	}
	return out, nil
}

func (r *Recorder) appendLocked(eventType string, payload any) {
	r.record.Events = append(r.record.Events, EventRecord{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if n := len(r.record.Events) - r.maxEvents; n > 0 {
		r.record.Events = r.record.Events[n:]
	}
}

// flushLocked 将记录原子写入磁盘，调用方持有锁
func (r *Recorder) flushLocked() {
	r.record.UpdatedAt = time.Now()
	if r.dir == "" {
		return
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(r.record, "", "  ")
	if err != nil {
		return
	}
	final := filepath.Join(r.dir, safeFileName(r.record.RunID)+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	// rename 在同一目录内是原子的
	_ = os.Rename(tmp, final)
}

func progressValue(payload any) (int, bool) {
	switch v := payload.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case map[string]any:
		if inner, ok := v["value"]; ok {
			return progressValue(inner)
		}
	}
	return 0, false
}

func safeFileName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return replacer.Replace(name)
}
