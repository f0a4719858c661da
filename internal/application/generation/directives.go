package generation

import (
	"strings"

	"short-director-api/internal/workflow/node"
)

// VideoDirectives 视频提示词前置指令开关
type VideoDirectives struct {
	RemoveBGM     bool   `json:"remove_bgm"`
	KeepVoice     bool   `json:"keep_voice"`
	KeepSFX       bool   `json:"keep_sfx"`
	VoiceLanguage string `json:"voice_language"`
}

// BuildVideoPrompt 在提示词前拼接规范化指令
// 每条指令至多出现一次，提示词中已有的不再重复；指令之间以中文逗号
// 连接，末尾加句号换行。
func BuildVideoPrompt(prompt string, d VideoDirectives) string {
	text := strings.TrimSpace(node.StripThink(prompt))
	if text == "" {
		return ""
	}

	var prefixes []string
	if d.RemoveBGM && !strings.Contains(text, "无背景音乐") {
		prefixes = append(prefixes, "无背景音乐")
	}
	if d.KeepVoice && !strings.Contains(text, "保留人物声音") {
		prefixes = append(prefixes, "保留人物声音")
	}
	if d.KeepSFX && !strings.Contains(text, "保留人物音效") {
		prefixes = append(prefixes, "保留人物音效")
	}
	if lang := strings.TrimSpace(d.VoiceLanguage); lang != "" && lang != "不指定" && lang != "unspecified" {
		langPrompt := lang + "配音"
		if !strings.Contains(text, langPrompt) {
			prefixes = append(prefixes, langPrompt)
		}
	}

	if len(prefixes) > 0 {
		text = strings.Join(prefixes, "，") + "。\n" + text
	}
	return text
}
