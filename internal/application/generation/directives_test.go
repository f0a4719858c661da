package generation

import (
	"strings"
	"testing"
)

func TestBuildVideoPrompt(t *testing.T) {
	all := VideoDirectives{RemoveBGM: true, KeepVoice: true, KeepSFX: true, VoiceLanguage: "中文"}

	tests := []struct {
		name   string
		prompt string
		d      VideoDirectives
		want   string
	}{
		{
			"no directives",
			"一只猫在雨中奔跑",
			VideoDirectives{},
			"一只猫在雨中奔跑",
		},
		{
			"all directives",
			"一只猫在雨中奔跑",
			all,
			"无背景音乐，保留人物声音，保留人物音效，中文配音。\n一只猫在雨中奔跑",
		},
		{
			"directive already present is not repeated",
			"无背景音乐。一只猫在雨中奔跑",
			VideoDirectives{RemoveBGM: true, KeepVoice: true},
			"保留人物声音。\n无背景音乐。一只猫在雨中奔跑",
		},
		{
			"unspecified language is skipped",
			"一只猫",
			VideoDirectives{VoiceLanguage: "不指定"},
			"一只猫",
		},
		{
			"english unspecified is skipped",
			"一只猫",
			VideoDirectives{VoiceLanguage: "unspecified"},
			"一只猫",
		},
		{
			"empty prompt stays empty",
			"   ",
			all,
			"",
		},
		{
			"think block is stripped first",
			"<think>推理过程</think>一只猫",
			VideoDirectives{RemoveBGM: true},
			"无背景音乐。\n一只猫",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildVideoPrompt(tt.prompt, tt.d); got != tt.want {
				t.Errorf("BuildVideoPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildVideoPromptIdempotent(t *testing.T) {
	d := VideoDirectives{RemoveBGM: true, KeepVoice: true, VoiceLanguage: "日语"}
	once := BuildVideoPrompt("夜晚的街道", d)
	twice := BuildVideoPrompt(once, d)
	if once != twice {
		t.Errorf("second pass changed prompt:\nfirst:  %q\nsecond: %q", once, twice)
	}
	if strings.Count(twice, "无背景音乐") != 1 {
		t.Errorf("directive duplicated: %q", twice)
	}
}
