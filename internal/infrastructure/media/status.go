package media

import (
	"strings"
)

// Outcome 轮询结果分类
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCompleted
	OutcomeFailed
)

var (
	completedStatuses = map[string]struct{}{
		"completed": {}, "succeeded": {}, "success": {}, "done": {},
	}
	failedStatuses = map[string]struct{}{
		"failed": {}, "error": {},
	}
)

// ClassifyStatus 将提供商状态归类为待定、完成或失败
// 状态比较不区分大小写，未识别的状态一律视为仍在进行。
func ClassifyStatus(status string) Outcome {
	s := strings.ToLower(strings.TrimSpace(status))
	if _, ok := completedStatuses[s]; ok {
		return OutcomeCompleted
	}
	if _, ok := failedStatuses[s]; ok {
		return OutcomeFailed
	}
	return OutcomePending
}

// DiscoverResultURL 按固定优先级从轮询响应中提取视频地址
// 依次尝试 video_url、detail.draft_info.downloadable_url、url、
// data.video_url、data.url，全部缺失时返回空串。
func DiscoverResultURL(payload map[string]any) string {
	if url := stringField(payload, "video_url"); url != "" {
		return url
	}
	if detail, ok := payload["detail"].(map[string]any); ok {
		if draft, ok := detail["draft_info"].(map[string]any); ok {
			if url := stringField(draft, "downloadable_url"); url != "" {
				return url
			}
		}
	}
	if url := stringField(payload, "url"); url != "" {
		return url
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if url := stringField(data, "video_url"); url != "" {
			return url
		}
		if url := stringField(data, "url"); url != "" {
			return url
		}
	}
	return ""
}

// ExtractTaskID 从任务创建响应中提取任务 ID
func ExtractTaskID(payload map[string]any) string {
	if id := stringField(payload, "id"); id != "" {
		return id
	}
	if id := stringField(payload, "task_id"); id != "" {
		return id
	}
	if detail, ok := payload["detail"].(map[string]any); ok {
		if id := stringField(detail, "id"); id != "" {
			return id
		}
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if id := stringField(data, "id"); id != "" {
			return id
		}
		if id := stringField(data, "task_id"); id != "" {
			return id
		}
		if task, ok := data["task"].(map[string]any); ok {
			if id := stringField(task, "id"); id != "" {
				return id
			}
		}
	}
	return ""
}

// FailReason 从轮询响应中提取失败原因
func FailReason(payload map[string]any) string {
	if reason := stringField(payload, "fail_reason"); reason != "" {
		return reason
	}
	if reason := stringField(payload, "error"); reason != "" {
		return reason
	}
	if errObj, ok := payload["error"].(map[string]any); ok {
		if reason := stringField(errObj, "message"); reason != "" {
			return reason
		}
	}
	return "Unknown"
}

// ProgressValue 从轮询响应中提取进度百分比
func ProgressValue(payload map[string]any) int {
	switch v := payload["progress"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		s := strings.TrimSuffix(v, "%")
		total := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				return 0
			}
			total = total*10 + int(r-'0')
		}
		return total
	}
	return 0
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
