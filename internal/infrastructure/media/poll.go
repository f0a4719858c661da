package media

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"short-director-api/internal/infrastructure/provider"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/logger"
	"short-director-api/pkg/metrics"
)

// PollOptions 轮询参数
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

// PollUpdate 单次轮询的状态快照
type PollUpdate struct {
	Status   string
	Progress int
	Raw      map[string]any
}

// PollVideo 轮询视频任务直至终态，返回视频地址与最后一次响应
// 网络错误与非 200 响应计入重试次数后继续轮询，耗尽次数视为超时。
func (c *Client) PollVideo(ctx context.Context, cfg provider.Config, apiKey, taskID string, opts PollOptions, onUpdate func(PollUpdate)) (string, map[string]any, error) {
	endpoint, ok := cfg.Endpoints[provider.CapabilityVideoPoll]
	if !ok {
		return "", nil, apperrors.ErrCapabilityUnsupported.WithDetail(
			fmt.Sprintf("platform %s does not support video task polling", cfg.Platform))
	}
	url := cfg.BaseURL + provider.ExpandTaskID(endpoint, taskID)

	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}

	platform := string(cfg.Platform)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(interval):
		}

		status, body, err := c.GetJSON(ctx, url, apiKey)
		if err != nil {
			metrics.MediaPollAttempts.WithLabelValues(platform, "network_error").Inc()
			logger.Warn(ctx, "media poll request failed", "task_id", taskID, "error", err)
			continue
		}
		if status != 200 {
			metrics.MediaPollAttempts.WithLabelValues(platform, "bad_status").Inc()
			continue
		}

		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			metrics.MediaPollAttempts.WithLabelValues(platform, "parse_error").Inc()
			continue
		}

		update := PollUpdate{
			Status:   stringField(payload, "status"),
			Progress: ProgressValue(payload),
			Raw:      payload,
		}
		if onUpdate != nil {
			onUpdate(update)
		}

		switch ClassifyStatus(update.Status) {
		case OutcomeCompleted:
			metrics.MediaPollAttempts.WithLabelValues(platform, "completed").Inc()
			videoURL := DiscoverResultURL(payload)
			if videoURL == "" {
				return "", payload, apperrors.ErrResultURLMissing
			}
			return videoURL, payload, nil
		case OutcomeFailed:
			metrics.MediaPollAttempts.WithLabelValues(platform, "failed").Inc()
			return "", payload, apperrors.New(apperrors.CodeProviderError,
				fmt.Sprintf("Video generation failed: %s", FailReason(payload)))
		default:
			metrics.MediaPollAttempts.WithLabelValues(platform, "pending").Inc()
		}
	}

	return "", nil, apperrors.ErrMediaTimeout
}
