package runtrace

const (
	maxStringLen = 2000
	maxListLen   = 50
	maxDepth     = 6
)

// sanitizeValue 压缩任意负载使其适合入档：
// 超长字符串截断、超长列表截尾、嵌套过深的结构折叠为占位符。
func sanitizeValue(v any, depth int) any {
	if depth > maxDepth {
		return "<truncated: depth>"
	}
	switch val := v.(type) {
	case string:
		return truncateString(val, maxStringLen)
	case map[string]any:
		return sanitizeMap(val, depth)
	case []any:
		out := make([]any, 0, min(len(val), maxListLen))
		for i, item := range val {
			if i >= maxListLen {
				out = append(out, "<truncated: list>")
				break
			}
			out = append(out, sanitizeValue(item, depth+1))
		}
		return out
	default:
		return val
	}
}

func sanitizeMap(m map[string]any, depth int) map[string]any {
	if m == nil {
		return nil
	}
	if depth > maxDepth {
		return map[string]any{"_truncated": "depth"}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(v, depth+1)
	}
	return out
}

func truncateString(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
