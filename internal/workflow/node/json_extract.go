package node

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSONObject 尝试从模型输出中截取“第一个完整 JSON 对象/数组”。
// 这是一个容错逻辑：模型可能会在 JSON 前后夹杂多余文本。
func ExtractJSONObject(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	// 如果模型输出夹杂了其它文本，尽量截取第一个 JSON 值（对象/数组）。
	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")
	start := -1
	end := -1
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start = objStart
		end = strings.LastIndex(raw, "}")
	case arrStart >= 0:
		start = arrStart
		end = strings.LastIndex(raw, "]")
	}
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	// 简单校验：确保至少能被 Decoder 消费到一个 JSON 起始。
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err == nil {
		if d, ok := tok.(json.Delim); ok && (d == '{' || d == '[') {
			return raw
		}
	}

	// 最后兜底：尝试读取到 EOF 为止，避免调用方误用。
	dec = json.NewDecoder(strings.NewReader(raw))
	for {
		_, e := dec.Token()
		if e != nil {
			if errors.Is(e, io.EOF) {
				break
			}
			return strings.TrimSpace(s)
		}
	}
	return raw
}

// ExtractFencedJSON 提取输出中所有 ```json 围栏块并合并为一个对象
// 多个块按出现顺序合并，后出现的键覆盖先出现的。没有围栏块时退回
// 对整段文本的容错解析。第二个返回值表示是否解析出了对象。
func ExtractFencedJSON(s string) (map[string]any, bool) {
	merged := make(map[string]any)
	found := false

	for _, m := range fencedJSONRe.FindAllStringSubmatch(s, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &obj); err != nil {
			continue
		}
		for k, v := range obj {
			merged[k] = v
		}
		found = true
	}
	if found {
		return merged, true
	}

	// 无围栏块：尝试把整段文本当成一个 JSON 对象
	candidate := ExtractJSONObject(s)
	if candidate == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// StripFences 去掉文本中的围栏标记，保留围栏内的内容
func StripFences(s string) string {
	s = fencedJSONRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
