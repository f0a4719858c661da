package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	apperrors "short-director-api/pkg/errors"
)

const kieBaseURL = "https://api.kie.ai/api/v1"

// KieFormatter Kie AI 图生视频适配器，原生异步创建加轮询
type KieFormatter struct {
	client *Client
}

// NewKieFormatter 创建 Kie 适配器
func NewKieFormatter(client *Client) *KieFormatter {
	return &KieFormatter{client: client}
}

// Name 格式化器名称
func (f *KieFormatter) Name() string {
	return "Kie"
}

// Match 按基础 URL 判断是否适用
func (f *KieFormatter) Match(baseURL string) bool {
	return baseURL == kieBaseURL
}

// Create 提交图生视频任务
func (f *KieFormatter) Create(ctx context.Context, auth Auth, req VideoRequest) (string, error) {
	if len(req.ImageURLs) == 0 {
		return "", apperrors.ErrReferenceNotReady.WithDetail(
			"Kie image-to-video model requires at least one image")
	}

	// 文档支持 10 或 15 秒两档
	nFrames := "15"
	if req.Seconds > 0 && req.Seconds <= 10 {
		nFrames = "10"
	}

	aspectRatio := "landscape"
	sizeLower := strings.ToLower(req.Size)
	if strings.Contains(sizeLower, "9:16") || strings.Contains(sizeLower, "portrait") || strings.Contains(sizeLower, "vertical") {
		aspectRatio = "portrait"
	}

	payload := map[string]any{
		"model": "sora-2-image-to-video-stable",
		"input": map[string]any{
			"prompt":        req.Prompt,
			"image_urls":    []string{req.ImageURLs[0]},
			"aspect_ratio":  aspectRatio,
			"n_frames":      nFrames,
			"upload_method": "s3",
		},
	}

	status, body, err := f.client.PostJSON(ctx, strings.TrimRight(auth.BaseURL, "/")+"/jobs/createTask", auth.APIKey, payload)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeProviderError, "Kie task creation failed")
	}
	if status != 200 {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("Kie API error (%d): %s", status, truncateBody(body)))
	}

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			TaskID string `json:"taskId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeProviderError, "unexpected Kie response")
	}
	if resp.Code != 200 {
		return "", apperrors.New(apperrors.CodeProviderError,
			fmt.Sprintf("Kie API error: %s", resp.Message))
	}
	if resp.Data.TaskID == "" {
		return "", apperrors.New(apperrors.CodeProviderError, "failed to retrieve taskId from Kie response")
	}
	return resp.Data.TaskID, nil
}

// Query 查询任务状态
// Kie 的状态机为 waiting、queuing、generating、success、fail。
func (f *KieFormatter) Query(ctx context.Context, auth Auth, taskID string) (*TaskStatus, error) {
	queryURL := fmt.Sprintf("%s/jobs/recordInfo?taskId=%s",
		strings.TrimRight(auth.BaseURL, "/"), url.QueryEscape(taskID))

	status, body, err := f.client.GetJSON(ctx, queryURL, auth.APIKey)
	if err != nil {
		return &TaskStatus{Status: "failed", FailReason: fmt.Sprintf("Network or Parse Error: %v", err)}, nil
	}
	if status != 200 {
		return &TaskStatus{Status: "failed", FailReason: fmt.Sprintf("Kie query returned status %d", status)}, nil
	}

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			State      string `json:"state"`
			FailMsg    string `json:"failMsg"`
			ResultJSON string `json:"resultJson"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return &TaskStatus{Status: "failed", FailReason: fmt.Sprintf("Network or Parse Error: %v", err)}, nil
	}
	if resp.Code != 200 {
		reason := resp.Message
		if reason == "" {
			reason = "Unknown error"
		}
		return &TaskStatus{Status: "failed", FailReason: reason}, nil
	}

	switch resp.Data.State {
	case "success":
		// resultJson 是字符串化的 JSON
		videoURL := ""
		if resp.Data.ResultJSON != "" {
			var result struct {
				ResultUrls []string `json:"resultUrls"`
			}
			if err := json.Unmarshal([]byte(resp.Data.ResultJSON), &result); err == nil && len(result.ResultUrls) > 0 {
				videoURL = result.ResultUrls[0]
			}
		}
		return &TaskStatus{Status: "completed", Progress: 100, VideoURL: videoURL}, nil
	case "fail":
		reason := resp.Data.FailMsg
		if reason == "" {
			reason = "Generation failed"
		}
		return &TaskStatus{Status: "failed", FailReason: reason}, nil
	default:
		// waiting、queuing、generating 均视为进行中，无精确进度
		return &TaskStatus{Status: "processing", Progress: 50}, nil
	}
}
