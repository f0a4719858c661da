package media

import (
	"context"
	"strings"
)

// TaskStatus 格式化器查询结果
type TaskStatus struct {
	Status     string
	Progress   int
	VideoURL   string
	FailReason string
	Raw        map[string]any
}

// Formatter 第三方视频聚合平台适配器
// 部分平台的接口形态与官方异步任务不同，由格式化器翻译成统一的
// 创建加轮询模型。
type Formatter interface {
	// Name 格式化器名称
	Name() string

	// Match 按基础 URL 判断是否适用
	Match(baseURL string) bool

	// Create 提交任务并返回任务 ID
	Create(ctx context.Context, auth Auth, req VideoRequest) (string, error)

	// Query 查询任务状态
	Query(ctx context.Context, auth Auth, taskID string) (*TaskStatus, error)
}

// Auth 格式化器鉴权信息
type Auth struct {
	BaseURL string
	APIKey  string
}

// FormatterRegistry 格式化器注册表
type FormatterRegistry struct {
	formatters []Formatter
}

// NewFormatterRegistry 创建注册表
func NewFormatterRegistry(formatters ...Formatter) *FormatterRegistry {
	return &FormatterRegistry{formatters: formatters}
}

// Search 按基础 URL 查找格式化器，未匹配返回 nil
func (r *FormatterRegistry) Search(baseURL string) Formatter {
	if baseURL == "" {
		return nil
	}
	lowered := strings.ToLower(strings.TrimRight(baseURL, "/"))
	for _, f := range r.formatters {
		if f.Match(lowered) {
			return f
		}
	}
	return nil
}
