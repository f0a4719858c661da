package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"short-director-api/internal/infrastructure/provider"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/metrics"
)

// VideoRequest 视频生成任务参数
type VideoRequest struct {
	Model     string
	Prompt    string
	Seconds   int
	Size      string
	Watermark bool
	// ImageURLs 参考图地址，要求公网可访问
	ImageURLs []string
}

// SubmitVideo 提交视频生成任务，返回远端任务 ID
func (c *Client) SubmitVideo(ctx context.Context, cfg provider.Config, apiKey string, req VideoRequest) (string, error) {
	endpoint, ok := cfg.Endpoints[provider.CapabilityVideo]
	if !ok {
		return "", apperrors.ErrCapabilityUnsupported.WithDetail(
			fmt.Sprintf("platform %s does not support video generation", cfg.Platform))
	}
	url := cfg.BaseURL + endpoint

	var payload any
	if cfg.Platform == provider.PlatformVolcengine {
		p, err := volcengineVideoPayload(req)
		if err != nil {
			return "", err
		}
		payload = p
	} else {
		payload = openAIVideoPayload(req)
	}

	status, body, err := c.PostJSON(ctx, url, apiKey, payload)
	if err != nil {
		metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "video", "submit_error").Inc()
		return "", apperrors.Wrap(err, apperrors.CodeProviderError, "failed to submit video task")
	}
	if status < 200 || status >= 300 {
		metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "video", "submit_error").Inc()
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("video provider error (%d): %s", status, truncateBody(body)))
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeProviderError, "unexpected task create response")
	}

	taskID := ExtractTaskID(resp)
	if taskID == "" {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("no task ID returned: %s", truncateBody(body)))
	}

	metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "video", "submitted").Inc()
	return taskID, nil
}

// volcengineVideoPayload 构造火山引擎内容生成任务请求体
// i2v 模型且有两张以上参考图时使用首尾帧角色，否则只取第一张。
func volcengineVideoPayload(req VideoRequest) (map[string]any, error) {
	content := []map[string]any{
		{"type": "text", "text": req.Prompt},
	}

	modelLower := strings.ToLower(req.Model)
	switch {
	case len(req.ImageURLs) >= 2 && strings.Contains(modelLower, "i2v"):
		content = append(content,
			map[string]any{
				"type":      "image_url",
				"role":      "first_frame",
				"image_url": map[string]any{"url": req.ImageURLs[0]},
			},
			map[string]any{
				"type":      "image_url",
				"role":      "last_frame",
				"image_url": map[string]any{"url": req.ImageURLs[len(req.ImageURLs)-1]},
			},
		)
	case len(req.ImageURLs) >= 1:
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": req.ImageURLs[0]},
		})
	case strings.Contains(modelLower, "i2v"):
		return nil, apperrors.ErrReferenceNotReady.WithDetail(
			"i2v model requires a publicly accessible image reference")
	}

	return map[string]any{
		"model":   req.Model,
		"content": content,
	}, nil
}

// openAIVideoPayload 构造 OpenAI 兼容视频请求体
func openAIVideoPayload(req VideoRequest) map[string]any {
	seconds := req.Seconds
	if seconds <= 0 {
		seconds = 15
	}
	size := req.Size
	if size == "" {
		size = "1280x720"
	}

	payload := map[string]any{
		"model":     req.Model,
		"prompt":    req.Prompt,
		"seconds":   strconv.Itoa(seconds),
		"size":      size,
		"watermark": req.Watermark,
	}
	if len(req.ImageURLs) > 0 {
		payload["input_reference"] = req.ImageURLs
	}
	return payload
}

func truncateBody(body []byte) string {
	const limit = 512
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
