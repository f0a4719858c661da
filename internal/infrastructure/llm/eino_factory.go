package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"short-director-api/internal/infrastructure/provider"
	workflowport "short-director-api/internal/workflow/port"
)

const defaultTimeout = 120 * time.Second

// EinoFactory 管理多个 Eino ChatModel 客户端实例
// 凭证来自用户配置的 API Key，因此按连接参数缓存而不是按静态配置名。
type EinoFactory struct {
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory() *EinoFactory {
	return &EinoFactory{
		models: make(map[string]model.BaseChatModel),
	}
}

var _ workflowport.ChatModelFactory = (*EinoFactory)(nil)

// Get 获取 ChatModel，相同连接参数的实例被复用
func (f *EinoFactory) Get(ctx context.Context, spec workflowport.ModelSpec) (model.BaseChatModel, error) {
	key := cacheKey(spec)

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	chatModel, err := f.build(ctx, spec)
	if err != nil {
		return nil, err
	}

	f.models[key] = chatModel
	return chatModel, nil
}

func (f *EinoFactory) build(ctx context.Context, spec workflowport.ModelSpec) (model.BaseChatModel, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	switch provider.Normalize(spec.Platform) {
	case provider.PlatformVolcengine:
		// Ark 平台走专用适配器
		cfg := &ark.ChatModelConfig{
			APIKey: spec.APIKey,
			Model:  spec.Model,
		}
		if spec.BaseURL != "" {
			cfg.BaseURL = spec.BaseURL
		}
		if spec.MaxTokens > 0 {
			cfg.MaxTokens = &spec.MaxTokens
		}
		if spec.Temperature > 0 {
			cfg.Temperature = ptrFloat32(float32(spec.Temperature))
		}
		chatModel, err := ark.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create ark chat model: %w", err)
		}
		return chatModel, nil

	default:
		// OpenAI 兼容平台（含 Ollama 的 /v1 兼容层）走 OpenAI 适配器
		cfg := &openai.ChatModelConfig{
			APIKey:  spec.APIKey,
			BaseURL: openAICompatibleBaseURL(spec),
			Model:   spec.Model,
			Timeout: timeout,
		}
		if spec.MaxTokens > 0 {
			cfg.MaxTokens = &spec.MaxTokens
		}
		if spec.Temperature > 0 {
			cfg.Temperature = ptrFloat32(float32(spec.Temperature))
		}
		if cfg.APIKey == "" {
			// Ollama 不校验密钥，但 SDK 要求非空
			cfg.APIKey = "ollama"
		}
		chatModel, err := openai.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create eino chat model: %w", err)
		}
		return chatModel, nil
	}
}

// openAICompatibleBaseURL 将平台基础 URL 换算为 OpenAI 兼容端点
// Ollama 的原生 API 在 /api 下，OpenAI 兼容层在 /v1 下。
func openAICompatibleBaseURL(spec workflowport.ModelSpec) string {
	base := strings.TrimRight(spec.BaseURL, "/")
	if provider.Normalize(spec.Platform) == provider.PlatformOllama {
		base = strings.TrimSuffix(base, "/api")
		if base != "" {
			base += "/v1"
		}
	}
	return base
}

func cacheKey(spec workflowport.ModelSpec) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		spec.Platform, spec.BaseURL, spec.APIKey, spec.Model,
	}, "\x00")))
	return hex.EncodeToString(h[:8])
}

func ptrFloat32(f float32) *float32 {
	return &f
}
