package media

import (
	"context"
	"encoding/json"
	"fmt"

	"short-director-api/internal/infrastructure/provider"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/metrics"
)

// ImageRequest 图片生成参数
type ImageRequest struct {
	Model  string
	Prompt string
	Size   string
	N      int
	// Images 参考图列表，支持公网 URL 或 data URI
	Images []string
}

// GenerateImage 同步生成图片，返回图片地址
func (c *Client) GenerateImage(ctx context.Context, cfg provider.Config, apiKey string, req ImageRequest) (string, error) {
	endpoint, ok := cfg.Endpoints[provider.CapabilityImage]
	if !ok {
		return "", apperrors.ErrCapabilityUnsupported.WithDetail(
			fmt.Sprintf("platform %s does not support image generation", cfg.Platform))
	}
	url := cfg.BaseURL + endpoint

	size := req.Size
	if size == "" {
		size = "16x9"
	}
	n := req.N
	if n <= 0 {
		n = 1
	}

	payload := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
		"size":   size,
		"n":      n,
	}
	if len(req.Images) > 0 {
		payload["image"] = req.Images
	}

	status, body, err := c.PostJSON(ctx, url, apiKey, payload)
	if err != nil {
		metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "image", "error").Inc()
		return "", apperrors.Wrap(err, apperrors.CodeProviderError, "failed to submit image request")
	}
	if status != 200 {
		metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "image", "error").Inc()
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("image provider error (%d): %s", status, truncateBody(body)))
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeProviderError, "unexpected image response")
	}

	imageURL := firstImageURL(resp)
	if imageURL == "" {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("no image URL in response: %s", truncateBody(body)))
	}

	metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "image", "completed").Inc()
	return imageURL, nil
}

// firstImageURL 提取响应 data 数组首个元素的 url 字段
func firstImageURL(resp map[string]any) string {
	data, ok := resp["data"].([]any)
	if !ok || len(data) == 0 {
		return ""
	}
	first, ok := data[0].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(first, "url")
}
