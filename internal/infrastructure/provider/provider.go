// Package provider 定义 AI 提供商平台注册表
//
// 平台是一个封闭的枚举：新平台通过新增变体接入，而不是运行时注册，
// 保证能力检查可以做到穷举。
package provider

import (
	"strings"

	apperrors "short-director-api/pkg/errors"
)

// Platform 提供商平台枚举
type Platform string

const (
	// PlatformOpenAI OpenAI 兼容平台（默认兜底）
	PlatformOpenAI Platform = "openai"
	// PlatformOllama 本地 Ollama 服务（仅文本对话）
	PlatformOllama Platform = "ollama"
	// PlatformVolcengine 火山引擎 Ark 平台
	PlatformVolcengine Platform = "volcengine"
)

// Capability 提供商能力枚举
type Capability string

const (
	CapabilityText      Capability = "text"
	CapabilityImage     Capability = "image"
	CapabilityVideo     Capability = "video"
	CapabilityVideoPoll Capability = "video_poll"
	CapabilityAudio     Capability = "audio"
)

// Config 解析后的提供商连接配置，请求期间不可变
type Config struct {
	Platform           Platform
	BaseURL            string
	Endpoints          map[Capability]string
	RequiresCredential bool
}

// Overrides 用户（API Key 配置）覆盖项，空值回退到平台默认
type Overrides struct {
	BaseURL   string
	Endpoints map[Capability]string
}

// aliases 平台别名表，全部小写
var aliases = map[string]Platform{
	"openai":     PlatformOpenAI,
	"ollama":     PlatformOllama,
	"volcengine": PlatformVolcengine,
	"ark":        PlatformVolcengine,
	"doubao":     PlatformVolcengine,
	"volcano":    PlatformVolcengine,
	"volc":       PlatformVolcengine,
	"huoshan":    PlatformVolcengine,
	"火山引擎":       PlatformVolcengine,
}

// defaults 各平台的默认连接配置
var defaults = map[Platform]Config{
	PlatformOpenAI: {
		Platform: PlatformOpenAI,
		BaseURL:  "https://api.openai.com/v1",
		Endpoints: map[Capability]string{
			CapabilityText:      "/chat/completions",
			CapabilityImage:     "/images/generations",
			CapabilityVideo:     "/videos",
			CapabilityVideoPoll: "/videos/{task_id}",
			CapabilityAudio:     "/audio/speech",
		},
		RequiresCredential: true,
	},
	PlatformOllama: {
		Platform: PlatformOllama,
		BaseURL:  "http://127.0.0.1:11434/api",
		Endpoints: map[Capability]string{
			CapabilityText: "/chat",
		},
		RequiresCredential: false,
	},
	PlatformVolcengine: {
		Platform: PlatformVolcengine,
		BaseURL:  "https://ark.cn-beijing.volces.com/api/v3",
		Endpoints: map[Capability]string{
			CapabilityText:      "/chat/completions",
			CapabilityImage:     "/images/generations",
			CapabilityVideo:     "/contents/generations/tasks",
			CapabilityVideoPoll: "/contents/generations/tasks/{task_id}",
		},
		RequiresCredential: true,
	},
}

// placeholders 某些厂商控制台会把公开默认值原样回填到用户配置里，
// 这些值等同于"未设置"，解析端点前先剔除。
var placeholders = map[Platform]map[string]bool{
	PlatformVolcengine: {
		"videos":                                true,
		"/videos":                               true,
		"videos/{task_id}":                      true,
		"/videos/{task_id}":                     true,
		"contents/generations/tasks":            true,
		"/contents/generations/tasks":           true,
		"contents/generations/tasks/{task_id}":  true,
		"/contents/generations/tasks/{task_id}": true,
	},
}

// Normalize 将平台名称规范化为枚举值
// 大小写不敏感，未知名称回退到 OpenAI 兼容平台而不是报错，
// 配置错误应当降级而不是阻塞启动。
func Normalize(name string) Platform {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := aliases[key]; ok {
		return p
	}
	return PlatformOpenAI
}

// Defaults 返回平台的默认配置副本
func Defaults(p Platform) Config {
	cfg, ok := defaults[p]
	if !ok {
		cfg = defaults[PlatformOpenAI]
	}
	out := cfg
	out.Endpoints = make(map[Capability]string, len(cfg.Endpoints))
	for k, v := range cfg.Endpoints {
		out.Endpoints[k] = v
	}
	return out
}

// Supports 判断平台是否支持某能力
func Supports(p Platform, capability Capability) bool {
	_, ok := Defaults(p).Endpoints[capability]
	return ok
}

// Resolve 合并平台默认值与用户覆盖项，覆盖值优先，空白回退默认
func Resolve(p Platform, o Overrides) (Config, error) {
	cfg := Defaults(p)

	if base := strings.TrimSpace(o.BaseURL); base != "" {
		cfg.BaseURL = normalizeBaseURL(p, base)
	}

	for capability := range cfg.Endpoints {
		resolved, err := ResolveEndpoint(p, capability, o.Endpoints[capability])
		if err != nil {
			return Config{}, err
		}
		cfg.Endpoints[capability] = resolved
	}

	return cfg, nil
}

// ResolveEndpoint 解析单个能力端点
// 剔除占位值后，空白回退平台默认；非绝对路径补前导 "/"。
// 平台不支持该能力时返回明确错误，调用方应在发起网络请求前失败。
func ResolveEndpoint(p Platform, capability Capability, value string) (string, error) {
	def, ok := Defaults(p).Endpoints[capability]
	if !ok {
		return "", apperrors.ErrCapabilityUnsupported.WithDetail(
			"platform " + string(p) + " does not support capability " + string(capability))
	}

	value = strings.TrimSpace(value)
	if ph, ok := placeholders[p]; ok && ph[value] {
		value = ""
	}
	if value == "" {
		return def, nil
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return value, nil
}

// ExpandTaskID 替换端点中的 {task_id} 占位符
func ExpandTaskID(endpoint, taskID string) string {
	return strings.ReplaceAll(endpoint, "{task_id}", taskID)
}

// videoModelHints 模型名中暗示视频能力的片段
var videoModelHints = []string{"seedance", "i2v", "t2v", "video", "kling", "veo"}

// imageModelHints 模型名中暗示图像能力的片段
var imageModelHints = []string{"seedream", "dall-e", "image", "flux", "sdxl", "stable-diffusion"}

// GuessCapabilities 根据模型名推断可能的能力，用于凭据测试的提示信息
// 推断只看命名习惯，拿不准时回退为文本能力。
func GuessCapabilities(model string) []Capability {
	name := strings.ToLower(model)
	for _, hint := range videoModelHints {
		if strings.Contains(name, hint) {
			return []Capability{CapabilityVideo}
		}
	}
	for _, hint := range imageModelHints {
		if strings.Contains(name, hint) {
			return []Capability{CapabilityImage}
		}
	}
	return []Capability{CapabilityText}
}

// normalizeBaseURL 规范化用户提供的基础 URL
// Ollama 的 HTTP API 挂在 /api 前缀下，用户通常只填主机和端口。
func normalizeBaseURL(p Platform, base string) string {
	base = strings.TrimRight(base, "/")
	if p == PlatformOllama {
		rest := base
		if i := strings.Index(rest, "://"); i >= 0 {
			rest = rest[i+3:]
		}
		if !strings.Contains(rest, "/") {
			base += "/api"
		}
	}
	return base
}
