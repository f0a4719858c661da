package port

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
)

// ModelSpec 构造一个 ChatModel 所需的全部连接参数
// 来源是解析后的 API Key 凭证，而不是静态配置。
type ModelSpec struct {
	Platform    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ChatModelFactory 定义工作流层对 LLM ChatModel 的最小依赖（port）。
type ChatModelFactory interface {
	Get(ctx context.Context, spec ModelSpec) (model.BaseChatModel, error)
}
