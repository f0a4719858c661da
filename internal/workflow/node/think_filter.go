package node

import (
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// StripThink 去掉推理模型输出中的 <think>…</think> 片段
// 未闭合的片段（流被截断）连同其后的内容一起丢弃。
func StripThink(s string) string {
	for {
		start := strings.Index(s, thinkOpen)
		if start < 0 {
			break
		}
		end := strings.Index(s[start:], thinkClose)
		if end < 0 {
			s = s[:start]
			break
		}
		s = s[:start] + s[start+end+len(thinkClose):]
	}
	return strings.TrimSpace(s)
}

// ThinkFilter 流式思考片段过滤器
// 按 token 逐段喂入，过滤掉 think 片段后返回应透传的可见文本。
type ThinkFilter struct {
	inThink bool
	pending strings.Builder
}

// Feed 处理一个流式片段，返回其中的可见部分
func (f *ThinkFilter) Feed(chunk string) string {
	f.pending.WriteString(chunk)
	buf := f.pending.String()
	var out strings.Builder

	for {
		if f.inThink {
			end := strings.Index(buf, thinkClose)
			if end < 0 {
				// 片段尾部可能是被截断的结束标记，留到下一次
				f.pending.Reset()
				f.pending.WriteString(tailPartial(buf, thinkClose))
				return out.String()
			}
			buf = buf[end+len(thinkClose):]
			f.inThink = false
			continue
		}

		start := strings.Index(buf, thinkOpen)
		if start < 0 {
			keep := tailPartial(buf, thinkOpen)
			out.WriteString(buf[:len(buf)-len(keep)])
			f.pending.Reset()
			f.pending.WriteString(keep)
			return out.String()
		}
		out.WriteString(buf[:start])
		buf = buf[start+len(thinkOpen):]
		f.inThink = true
	}
}

// tailPartial 返回 buf 尾部可能是 marker 前缀的部分
func tailPartial(buf, marker string) string {
	maxLen := len(marker) - 1
	if maxLen > len(buf) {
		maxLen = len(buf)
	}
	for n := maxLen; n > 0; n-- {
		if strings.HasPrefix(marker, buf[len(buf)-n:]) {
			return buf[len(buf)-n:]
		}
	}
	return ""
}
