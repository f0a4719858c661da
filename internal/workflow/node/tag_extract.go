package node

import (
	"strings"
)

// ExtractTagSections 按技能声明的标签映射提取成对分隔的段落
//
// 段落格式为 <|TAG|>内容<|TAG_END|>，tags 把标签名映射到结果键。
// 只返回实际出现的段落；同一标签出现多次时保留第一段。
func ExtractTagSections(s string, tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string)
	for tag, key := range tags {
		open := "<|" + tag + "|>"
		closeTag := "<|" + tag + "_END|>"

		start := strings.Index(s, open)
		if start < 0 {
			continue
		}
		rest := s[start+len(open):]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			// 未闭合的段落取到文本末尾，流中断时仍能拿到部分内容
			out[key] = strings.TrimSpace(rest)
			continue
		}
		out[key] = strings.TrimSpace(rest[:end])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StripTagMarkers 去掉文本中所有 <|...|> 控制标记
func StripTagMarkers(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "<|")
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start:], "|>")
		if end < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:start])
		s = s[start+end+2:]
	}
	return b.String()
}
