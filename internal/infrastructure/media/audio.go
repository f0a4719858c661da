package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"short-director-api/internal/infrastructure/provider"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/metrics"
)

// SpeechRequest 语音合成参数
type SpeechRequest struct {
	Model string
	Input string
	Voice string
}

// SynthesizeSpeech 合成语音，返回音频数据与 Content-Type
func (c *Client) SynthesizeSpeech(ctx context.Context, cfg provider.Config, apiKey string, req SpeechRequest) ([]byte, string, error) {
	endpoint, ok := cfg.Endpoints[provider.CapabilityAudio]
	if !ok {
		return nil, "", apperrors.ErrCapabilityUnsupported.WithDetail(
			fmt.Sprintf("platform %s does not support speech synthesis", cfg.Platform))
	}
	url := cfg.BaseURL + endpoint

	voice := req.Voice
	if voice == "" {
		voice = "alloy"
	}
	payload := map[string]any{
		"model": req.Model,
		"input": req.Input,
		"voice": voice,
	}

	body, err := encodeJSON(payload)
	if err != nil {
		return nil, "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "audio", "error").Inc()
		return nil, "", apperrors.Wrap(err, apperrors.CodeProviderError, "speech request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "audio", "error").Inc()
		return nil, "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("speech provider error (%d): %s", resp.StatusCode, string(msg)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read audio body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	metrics.MediaTasksTotal.WithLabelValues(string(cfg.Platform), "audio", "completed").Inc()
	return audio, contentType, nil
}
