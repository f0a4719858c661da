package chain

import (
	"context"
	"fmt"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	einoobs "short-director-api/internal/observability/eino"
	workflownode "short-director-api/internal/workflow/node"
	workflowport "short-director-api/internal/workflow/port"
	workflowprompt "short-director-api/internal/workflow/prompt"
	workflowskill "short-director-api/internal/workflow/skill"
	"short-director-api/pkg/logger"
)

// SkillInput 一次技能调用的输入
type SkillInput struct {
	Skill workflowskill.Skill
	Spec  workflowport.ModelSpec
	// Vars 模板变量，缺失的键由 Format 填空串
	Vars map[string]any
	// Temperature / MaxTokens 为空时沿用凭证默认
	Temperature *float64
	MaxTokens   *int
}

// SkillChain 执行一个具名技能：格式化提示词并调用 ChatModel
type SkillChain struct {
	factory workflowport.ChatModelFactory
}

func NewSkillChain(factory workflowport.ChatModelFactory) *SkillChain {
	return &SkillChain{factory: factory}
}

// Stream 返回 Eino StreamReader；调用方负责 Close()。
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
func (c *SkillChain) Stream(ctx context.Context, in *SkillInput) (*schema.StreamReader[*schema.Message], error) {
	ctx = tagObservability(ctx, in)
	chatModel, msgs, err := c.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	reader, err := chatModel.Stream(ctx, msgs, buildSkillModelOptions(in, true)...)
	if err != nil && workflownode.IsResponseFormatUnsupportedError(err) {
		if reader != nil {
			reader.Close()
		}
		logger.Warn(ctx, "llm response_format not supported for stream, fallback to prompt-only",
			"skill", in.Skill.Name,
			"model", in.Spec.Model,
			"error", err.Error(),
		)
		return chatModel.Stream(ctx, msgs, buildSkillModelOptions(in, false)...)
	}
	return reader, err
}

// Invoke 非流式执行，用于连通性测试等一次性调用
func (c *SkillChain) Invoke(ctx context.Context, in *SkillInput) (*schema.Message, error) {
	ctx = tagObservability(ctx, in)
	chatModel, msgs, err := c.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	outMsg, err := chatModel.Generate(ctx, msgs, buildSkillModelOptions(in, true)...)
	if err != nil && workflownode.IsResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm response_format not supported, fallback to prompt-only",
			"skill", in.Skill.Name,
			"model", in.Spec.Model,
			"error", err.Error(),
		)
		outMsg, err = chatModel.Generate(ctx, msgs, buildSkillModelOptions(in, false)...)
	}
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

func tagObservability(ctx context.Context, in *SkillInput) context.Context {
	if in == nil {
		return ctx
	}
	return einoobs.WithWorkflowProvider(ctx, in.Skill.Name, in.Spec.Platform)
}

func (c *SkillChain) prepare(ctx context.Context, in *SkillInput) (model.BaseChatModel, []*schema.Message, error) {
	if c == nil || c.factory == nil {
		return nil, nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Spec.Model) == "" {
		return nil, nil, fmt.Errorf("model is required")
	}

	chatModel, err := c.factory.Get(ctx, in.Spec)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := formatSkillMessages(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	return chatModel, msgs, nil
}

var skillPromptRegistry = workflowprompt.NewRegistry()

func formatSkillMessages(ctx context.Context, in *SkillInput) ([]*schema.Message, error) {
	tpl, err := skillPromptRegistry.ChatTemplate(in.Skill.PromptID)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{
		"title":    "",
		"synopsis": "",
		"prompt":   "",
		"existing": "",
		"script":   "",
		"category": "",
		"context":  "",
		"style":    "",
		"nonce":    "",
	}
	for k, v := range in.Vars {
		vars[k] = v
	}
	return tpl.Format(ctx, vars)
}

func buildSkillModelOptions(in *SkillInput, enableFormat bool) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in == nil {
		return opts
	}
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(float32(*in.Temperature)))
	}
	if in.MaxTokens != nil && *in.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	// 结构化技能优先用 response_format 约束输出，不支持的模型回退到提示词约束
	if enableFormat && in.Skill.Structured {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{"type": "json_object"},
		}))
	}
	return opts
}
