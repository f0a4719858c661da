package node

import (
	"reflect"
	"testing"
)

func TestExtractFencedJSONMergesBlocks(t *testing.T) {
	text := "前言\n```json\n{\"a\": 1, \"b\": \"old\"}\n```\n中间说明\n```json\n{\"b\": \"new\", \"c\": true}\n```\n结尾"

	obj, ok := ExtractFencedJSON(text)
	if !ok {
		t.Fatal("no JSON extracted")
	}
	want := map[string]any{"a": float64(1), "b": "new", "c": true}
	if !reflect.DeepEqual(obj, want) {
		t.Errorf("merged = %v, want %v", obj, want)
	}
}

func TestExtractFencedJSONFallbackWholeText(t *testing.T) {
	obj, ok := ExtractFencedJSON(`模型说：{"characters": []} 完。`)
	if !ok {
		t.Fatal("fallback extraction failed")
	}
	if _, exists := obj["characters"]; !exists {
		t.Errorf("obj = %v", obj)
	}
}

func TestExtractFencedJSONNone(t *testing.T) {
	if obj, ok := ExtractFencedJSON("纯文本，没有任何结构化输出"); ok {
		t.Errorf("expected no JSON, got %v", obj)
	}
}

func TestExtractFencedJSONIgnoresInvalidBlock(t *testing.T) {
	text := "```json\n{broken\n```\n```json\n{\"ok\": 1}\n```"
	obj, ok := ExtractFencedJSON(text)
	if !ok {
		t.Fatal("valid block should still parse")
	}
	if obj["ok"] != float64(1) {
		t.Errorf("obj = %v", obj)
	}
}

func TestExtractTagSections(t *testing.T) {
	text := "开场白 <|SCRIPT|>第一场：夜市<|SCRIPT_END|> 其他 <|SUMMARY|>梗概内容<|SUMMARY_END|>"
	tags := map[string]string{"SCRIPT": "script", "SUMMARY": "summary"}

	got := ExtractTagSections(text, tags)
	if got["script"] != "第一场：夜市" {
		t.Errorf("script = %q", got["script"])
	}
	if got["summary"] != "梗概内容" {
		t.Errorf("summary = %q", got["summary"])
	}
}

func TestExtractTagSectionsUnclosed(t *testing.T) {
	got := ExtractTagSections("<|SCRIPT|>被截断的内容", map[string]string{"SCRIPT": "script"})
	if got["script"] != "被截断的内容" {
		t.Errorf("unclosed section = %q", got["script"])
	}
}

func TestExtractTagSectionsAbsent(t *testing.T) {
	if got := ExtractTagSections("没有标签", map[string]string{"SCRIPT": "script"}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestStripThink(t *testing.T) {
	tests := []struct{ name, in, want string }{
		{"closed block", "<think>推理中</think>答案", "答案"},
		{"multiple blocks", "<think>a</think>x<think>b</think>y", "xy"},
		{"unclosed drops tail", "前文<think>被截断", "前文"},
		{"no block", "普通文本", "普通文本"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThink(tt.in); got != tt.want {
				t.Errorf("StripThink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestThinkFilterStreaming(t *testing.T) {
	f := &ThinkFilter{}
	chunks := []string{"你好<thi", "nk>内部推理", "继续推理</think>正式", "回答"}
	var visible string
	for _, c := range chunks {
		visible += f.Feed(c)
	}
	if visible != "你好正式回答" {
		t.Errorf("visible = %q, want %q", visible, "你好正式回答")
	}
}

func TestTruncateByRunes(t *testing.T) {
	if got := TruncateByRunes("中文字符串", 3); got != "中文字" {
		t.Errorf("got %q", got)
	}
	if got := TruncateByRunes("abc", 10); got != "abc" {
		t.Errorf("got %q", got)
	}
}
