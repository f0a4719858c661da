// Package skill 定义文本生成技能注册表
//
// 技能 = 提示词模板 + 输出契约。文本管线按技能名解析出模板、
// 结构化输出要求、标签段映射和各列表的 id 前缀。
package skill

import (
	apperrors "short-director-api/pkg/errors"

	"short-director-api/internal/workflow/prompt"
)

// Skill 一个具名技能的静态描述
type Skill struct {
	// Name 技能名，对外标识
	Name string
	// PromptID 对应的提示词模板
	PromptID prompt.PromptID
	// Structured 为真时模型必须返回可解析的 JSON，解析失败按错误处理
	Structured bool
	// TagMap 成对标记段落 → 结果键
	TagMap map[string]string
	// IDPrefixes 结构化输出中各列表的条目 id 前缀
	IDPrefixes map[string]string
}

// 内置技能名
const (
	NameScreenwriter    = "short-video-screenwriter"
	NameStoryboardMaker = "short-video-storyboard-maker"
	NamePromptEngineer  = "short-video-prompt-engineer"
	NameVideoPrompt     = "short-video-sora2-prompt"
)

var builtins = map[string]Skill{
	NameScreenwriter: {
		Name:       NameScreenwriter,
		PromptID:   prompt.PromptScreenwriterV1,
		Structured: true,
		TagMap: map[string]string{
			"META":       "meta",
			"OUTLINE":    "outline",
			"CHARACTERS": "characters",
			"SCENES":     "scenes",
			"STORYBOARD": "storyboard",
		},
		IDPrefixes: map[string]string{
			"characters": "char",
			"scenes":     "scene",
			"storyboard": "shot",
		},
	},
	NameStoryboardMaker: {
		Name:       NameStoryboardMaker,
		PromptID:   prompt.PromptStoryboardMakerV1,
		Structured: true,
		TagMap: map[string]string{
			"STORYBOARD": "storyboard",
		},
		IDPrefixes: map[string]string{
			"storyboard": "shot",
		},
	},
	NamePromptEngineer: {
		Name:     NamePromptEngineer,
		PromptID: prompt.PromptPromptEngineerV1,
	},
	NameVideoPrompt: {
		Name:     NameVideoPrompt,
		PromptID: prompt.PromptVideoPromptV1,
	},
}

// Resolve 按名称解析技能，未知名称返回 404 级错误
func Resolve(name string) (Skill, error) {
	if s, ok := builtins[name]; ok {
		return s, nil
	}
	return Skill{}, apperrors.ErrNotFound.WithDetail("unknown skill: " + name)
}

// Names 返回全部内置技能名
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	return out
}
