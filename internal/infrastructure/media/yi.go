package media

import (
	"bufio"
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"short-director-api/internal/infrastructure/persistence/redis"
	apperrors "short-director-api/pkg/errors"
)

const yiBaseURL = "https://api.apiyi.com/v1"

var yiVideoURLRe = regexp.MustCompile(`\[点击这里\]\((https?://[^\)]+)\)`)

// YiFormatter ApiYi 适配器，将流式对话接口适配到创建加轮询模型
// 提交时阻塞读完整个流，终态结果写入 Redis 供后续查询。
type YiFormatter struct {
	client *Client
	store  *redis.TaskResultStore
}

// NewYiFormatter 创建 ApiYi 适配器
func NewYiFormatter(client *Client, store *redis.TaskResultStore) *YiFormatter {
	return &YiFormatter{client: client, store: store}
}

// Name 格式化器名称
func (f *YiFormatter) Name() string {
	return "ApiYi"
}

// Match 按基础 URL 判断是否适用
func (f *YiFormatter) Match(baseURL string) bool {
	return baseURL == yiBaseURL
}

// Create 提交任务，读完流后返回合成的任务 ID
func (f *YiFormatter) Create(ctx context.Context, auth Auth, req VideoRequest) (string, error) {
	if len(req.ImageURLs) == 0 {
		return "", apperrors.ErrReferenceNotReady.WithDetail(
			"ApiYi requires at least one image")
	}

	model := req.Model
	if model == "" {
		model = "sora_video2"
	}

	payload := map[string]any{
		"model":  model,
		"stream": true,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": req.Prompt},
					{"type": "image_url", "image_url": map[string]any{"url": req.ImageURLs[0]}},
				},
			},
		},
	}

	taskID := uuid.New().String()
	result := &redis.TaskResult{
		TaskID:     taskID,
		Platform:   "apiyi",
		FinishedAt: time.Now(),
	}

	videoURL, failReason := f.consumeStream(ctx, auth, payload)
	if videoURL != "" {
		result.Status = "completed"
		result.ResultURL = videoURL
	} else {
		result.Status = "failed"
		if failReason == "" {
			failReason = "Stream ended without URL"
		}
		result.Error = failReason
	}
	result.FinishedAt = time.Now()

	if err := f.store.Save(ctx, result); err != nil {
		return "", err
	}
	return taskID, nil
}

// consumeStream 读取流式响应，提取视频地址或错误消息
func (f *YiFormatter) consumeStream(ctx context.Context, auth Auth, payload any) (videoURL, failReason string) {
	body, err := f.client.PostStream(ctx, strings.TrimRight(auth.BaseURL, "/")+"/chat/completions", auth.APIKey, payload)
	if err != nil {
		return "", err.Error()
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		dataStr := line[len("data: "):]
		if dataStr == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(dataStr), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}

		if strings.Contains(strings.ToLower(content), "error") || strings.Contains(content, "失败") {
			failReason = strings.TrimSpace(content)
		}
		if strings.Contains(content, "视频生成成功") {
			if m := yiVideoURLRe.FindStringSubmatch(content); m != nil {
				videoURL = m[1]
			}
		}
	}
	if err := scanner.Err(); err != nil && failReason == "" {
		failReason = err.Error()
	}
	return videoURL, failReason
}

// Query 从结果存储读取终态
func (f *YiFormatter) Query(ctx context.Context, auth Auth, taskID string) (*TaskStatus, error) {
	result, err := f.store.Get(ctx, "apiyi", taskID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &TaskStatus{Status: "failed", FailReason: "Task result not found"}, nil
	}
	progress := 0
	if result.Status == "completed" {
		progress = 100
	}
	return &TaskStatus{
		Status:     result.Status,
		Progress:   progress,
		VideoURL:   result.ResultURL,
		FailReason: result.Error,
	}, nil
}
