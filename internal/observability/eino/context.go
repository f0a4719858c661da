package eino

import (
	"context"
)

type workflowKey struct{}
type providerKey struct{}

// WithWorkflowProvider 在 Context 中标记当前工作流与提供商
// 回调处理器用它给指标和追踪打标签。
func WithWorkflowProvider(ctx context.Context, workflow, provider string) context.Context {
	ctx = context.WithValue(ctx, workflowKey{}, workflow)
	return context.WithValue(ctx, providerKey{}, provider)
}

// WorkflowFromContext 取当前工作流名称，未设置返回 "unknown"
func WorkflowFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(workflowKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// ProviderFromContext 取当前提供商名称，未设置返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(providerKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
