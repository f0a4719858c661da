package generation

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/infrastructure/media"
	"short-director-api/internal/infrastructure/provider"
	"short-director-api/internal/runtrace"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/metrics"
)

// runMedia 媒体生成状态机入口
func (e *Engine) runMedia(ctx context.Context, em *Emitter, req *Request, key *entity.APIKey, cfg provider.Config) error {
	if cfg.Platform == provider.PlatformOllama {
		return apperrors.ErrCapabilityUnsupported.WithDetail(
			"Ollama only supports text workflows")
	}

	if !em.Status(fmt.Sprintf("Starting %s generation...", req.Modality)) {
		return nil
	}
	em.BackendLog(fmt.Sprintf("--- Starting %s generation ---", req.Modality))

	episode, doc, err := e.loadScript(ctx, req.EpisodeID)
	if err != nil {
		return err
	}

	// 引用缺图必须在任何网络请求之前失败
	refs, err := ResolveReferences(doc, req.Prompt, true)
	if err != nil {
		return err
	}

	switch req.Modality {
	case ModalityImage:
		return e.runImage(ctx, em, req, key, cfg, episode, refs)
	case ModalityVideo:
		return e.runVideo(ctx, em, req, key, cfg, episode, refs)
	case ModalityAudio:
		return e.runAudio(ctx, em, req, key, cfg, episode, refs)
	}
	return apperrors.ErrInvalidParam.WithDetail("unsupported media modality")
}

// runWithHeartbeat 在后台执行阻塞调用，期间按固定间隔递增进度，封顶 99
func (e *Engine) runWithHeartbeat(ctx context.Context, em *Emitter, progress *int, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	interval := e.cfg.Generation.Media.HeartbeatInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			// 消费方断开，后台调用结果被丢弃
			return ctx.Err()
		case <-ticker.C:
			if *progress < 99 {
				*progress++
			}
			if !em.Progress(*progress) {
				return context.Canceled
			}
		}
	}
}

// runImage 同步图片生成
func (e *Engine) runImage(ctx context.Context, em *Emitter, req *Request, key *entity.APIKey, cfg provider.Config, episode *entity.Episode, refs *ResolvedRefs) error {
	model := req.Model
	if model == "" {
		model = key.Model
	}
	if model == "" {
		model = "nano-banana"
	}

	em.BackendLog("Image Model: " + model)
	em.Status("Requesting generation API...")

	progress := 1
	em.Progress(progress)

	var imageURL string
	err := e.runWithHeartbeat(ctx, em, &progress, func() error {
		url, genErr := e.media.GenerateImage(ctx, cfg, key.Key, media.ImageRequest{
			Model:  model,
			Prompt: refs.Prompt,
			Size:   paramString(req.Params, "size"),
			Images: refs.ImageURLs,
		})
		imageURL = url
		return genErr
	})
	if err != nil {
		return err
	}

	return e.finalizeAsset(ctx, em, req, episode, entity.AssetModalityImage, imageURL, refs.Prompt, refs.Prompt, "png")
}

// runVideo 视频生成状态机：提交、轮询或格式化器快捷路径
func (e *Engine) runVideo(ctx context.Context, em *Emitter, req *Request, key *entity.APIKey, cfg provider.Config, episode *entity.Episode, refs *ResolvedRefs) error {
	providerPrompt := BuildVideoPrompt(refs.Prompt, req.Directives)
	if providerPrompt == "" {
		return apperrors.ErrInvalidParam.WithDetail("video prompt is empty")
	}

	model := req.Model
	if model == "" {
		model = key.Model
	}
	if model == "" {
		model = "sora-2"
	}

	imageRefs, err := e.videoImageRefs(ctx, em, req, cfg, refs)
	if err != nil {
		return err
	}

	task := &entity.MediaTask{
		ProjectID: req.ProjectID,
		RunID:     em.Recorder().RunID(),
		Platform:  string(cfg.Platform),
		Modality:  string(entity.AssetModalityVideo),
		Status:    entity.MediaTaskStatusSubmitted,
	}
	if episode != nil {
		task.EpisodeID = episode.ID
	}

	videoReq := media.VideoRequest{
		Model:     model,
		Prompt:    providerPrompt,
		Seconds:   paramInt(req.Params, "seconds"),
		Size:      paramString(req.Params, "size"),
		ImageURLs: imageRefs,
	}

	progress := 1
	em.Progress(progress)

	var videoURL string
	started := time.Now()

	if f := e.matchFormatter(cfg); f != nil {
		videoURL, err = e.runFormatterTask(ctx, em, f, cfg, key, videoReq, task, &progress)
	} else {
		videoURL, err = e.runNativeTask(ctx, em, cfg, key, videoReq, task, &progress)
	}

	if task.RemoteID != "" && e.mediaTasks != nil {
		if err != nil {
			status := entity.MediaTaskStatusFailed
			if appErr := apperrors.AsAppError(err); appErr != nil && appErr.Code == apperrors.CodeMediaTimeout {
				status = entity.MediaTaskStatusTimedOut
			}
			task.MarkFinished(status, "", errorMessage(err))
		} else {
			task.MarkFinished(entity.MediaTaskStatusCompleted, videoURL, "")
		}
		if updateErr := e.mediaTasks.Update(ctx, task); updateErr != nil {
			em.BackendLog("Failed to persist task state: " + updateErr.Error())
		}
	}
	metrics.MediaTaskDuration.WithLabelValues(string(cfg.Platform), task.Modality).Observe(time.Since(started).Seconds())

	if err != nil {
		return err
	}

	return e.finalizeAsset(ctx, em, req, episode, entity.AssetModalityVideo, videoURL, refs.Prompt, providerPrompt, "mp4")
}

// matchFormatter 火山引擎走官方异步接口，其余平台按基础 URL 匹配格式化器
func (e *Engine) matchFormatter(cfg provider.Config) media.Formatter {
	if e.formatters == nil || cfg.Platform == provider.PlatformVolcengine {
		return nil
	}
	return e.formatters.Search(cfg.BaseURL)
}

// runFormatterTask 格式化器路径：提交后按统一轮询模型查询
func (e *Engine) runFormatterTask(ctx context.Context, em *Emitter, f media.Formatter, cfg provider.Config, key *entity.APIKey, videoReq media.VideoRequest, task *entity.MediaTask, progress *int) (string, error) {
	em.Status(fmt.Sprintf("Delegating to %s formatter...", f.Name()))

	auth := media.Auth{BaseURL: cfg.BaseURL, APIKey: key.Key}

	var taskID string
	err := e.runWithHeartbeat(ctx, em, progress, func() error {
		id, createErr := f.Create(ctx, auth, videoReq)
		taskID = id
		return createErr
	})
	if err != nil {
		return "", err
	}

	task.RemoteID = taskID
	if e.mediaTasks != nil {
		if createErr := e.mediaTasks.Create(ctx, task); createErr != nil {
			em.BackendLog("Failed to persist task: " + createErr.Error())
		}
	}
	em.Status(fmt.Sprintf("Task created: %s, queuing...", taskID))

	interval := e.cfg.Generation.Media.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxAttempts := e.cfg.Generation.Media.PollMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 60
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}

		status, queryErr := f.Query(ctx, auth, task.RemoteID)
		if queryErr != nil {
			em.BackendLog("Polling error: " + queryErr.Error())
			continue
		}

		switch media.ClassifyStatus(status.Status) {
		case media.OutcomeCompleted:
			if status.VideoURL == "" {
				return "", apperrors.ErrResultURLMissing
			}
			return status.VideoURL, nil
		case media.OutcomeFailed:
			return "", apperrors.New(apperrors.CodeProviderError,
				fmt.Sprintf("Video generation failed: %s", status.FailReason))
		default:
			p := clampProgress(status.Progress, *progress)
			if p > *progress {
				*progress = p
				if !em.Progress(*progress) {
					return "", context.Canceled
				}
			}
		}
	}
	return "", apperrors.ErrMediaTimeout
}

// runNativeTask 官方异步接口路径：提交任务后轮询取回视频地址
func (e *Engine) runNativeTask(ctx context.Context, em *Emitter, cfg provider.Config, key *entity.APIKey, videoReq media.VideoRequest, task *entity.MediaTask, progress *int) (string, error) {
	em.Status(fmt.Sprintf("Submitting video task to %s...", videoReq.Model))

	var taskID string
	err := e.runWithHeartbeat(ctx, em, progress, func() error {
		id, submitErr := e.media.SubmitVideo(ctx, cfg, key.Key, videoReq)
		taskID = id
		return submitErr
	})
	if err != nil {
		return "", err
	}

	task.RemoteID = taskID
	if e.mediaTasks != nil {
		if createErr := e.mediaTasks.Create(ctx, task); createErr != nil {
			em.BackendLog("Failed to persist task: " + createErr.Error())
		}
	}
	em.Status(fmt.Sprintf("Task created: %s, queuing...", taskID))

	videoURL, _, err := e.media.PollVideo(ctx, cfg, key.Key, taskID, media.PollOptions{
		Interval:    e.cfg.Generation.Media.PollInterval,
		MaxAttempts: e.cfg.Generation.Media.PollMaxAttempts,
	}, func(update media.PollUpdate) {
		em.BackendLog(fmt.Sprintf("status - %s | progress - %d%%", update.Status, update.Progress))
		if p := clampProgress(update.Progress, *progress); p > *progress {
			*progress = p
			em.Progress(*progress)
		}
	})
	return videoURL, err
}

// videoImageRefs 解析视频任务参考图
// 火山引擎要求公网 URL，拒绝非公网引用；其它平台在关键帧模式下
// 将九宫格图切分并上传到对象存储换取公网地址。
func (e *Engine) videoImageRefs(ctx context.Context, em *Emitter, req *Request, cfg provider.Config, refs *ResolvedRefs) ([]string, error) {
	raw := paramStringList(req.Params, "input_reference")
	if len(raw) == 0 {
		raw = refs.ImageURLs
	}
	if len(raw) == 0 {
		return nil, nil
	}

	if cfg.Platform == provider.PlatformVolcengine {
		for _, ref := range raw {
			if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
				return nil, apperrors.ErrInvalidParam.WithDetail(
					fmt.Sprintf("volcengine requires publicly accessible image references, got %q", ref))
			}
		}
		return raw, nil
	}

	if paramString(req.Params, "generation_mode") != "keyframes" {
		return raw[:1], nil
	}

	// 关键帧模式：切分九宫格并逐帧上传
	em.Status("Splitting storyboard grid...")
	data, _, err := e.media.Download(ctx, raw[0])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeAssetDownloadFail, "failed to download storyboard grid")
	}

	frames, err := media.SplitGrid(data, 3, 3)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to split storyboard image")
	}

	urls := make([]string, 0, len(frames))
	for i, frame := range frames {
		objectKey := fmt.Sprintf("keyframes/%s/frame_%d.png", em.Recorder().RunID(), i+1)
		url, upErr := e.storage.Upload(ctx, objectKey, bytes.NewReader(frame), int64(len(frame)), "image/png")
		if upErr != nil {
			return nil, apperrors.Wrap(upErr, apperrors.CodeStorageError, "failed to upload keyframe")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// runAudio 语音合成
func (e *Engine) runAudio(ctx context.Context, em *Emitter, req *Request, key *entity.APIKey, cfg provider.Config, episode *entity.Episode, refs *ResolvedRefs) error {
	model := req.Model
	if model == "" {
		model = key.Model
	}

	em.Status("Requesting speech synthesis...")
	progress := 1
	em.Progress(progress)

	var audio []byte
	var contentType string
	err := e.runWithHeartbeat(ctx, em, &progress, func() error {
		data, ct, synthErr := e.media.SynthesizeSpeech(ctx, cfg, key.Key, media.SpeechRequest{
			Model: model,
			Input: refs.Prompt,
			Voice: paramString(req.Params, "voice"),
		})
		audio, contentType = data, ct
		return synthErr
	})
	if err != nil {
		return err
	}

	return e.storeAsset(ctx, em, req, episode, entity.AssetModalityAudio, "", refs.Prompt, refs.Prompt, "mp3", audio, contentType)
}

// finalizeAsset 下载远端产物并入库
func (e *Engine) finalizeAsset(ctx context.Context, em *Emitter, req *Request, episode *entity.Episode, modality entity.AssetModality, sourceURL, prompt, providerPrompt, ext string) error {
	em.Status("Downloading asset...")

	data, contentType, err := e.media.Download(ctx, sourceURL)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeAssetDownloadFail, "failed to download asset")
	}

	return e.storeAsset(ctx, em, req, episode, modality, sourceURL, prompt, providerPrompt, ext, data, contentType)
}

// storeAsset 上传对象存储、写资产记录并发送终态事件
func (e *Engine) storeAsset(ctx context.Context, em *Emitter, req *Request, episode *entity.Episode, modality entity.AssetModality, sourceURL, prompt, providerPrompt, ext string, data []byte, contentType string) error {
	objectKey := fmt.Sprintf("assets/%s/%s.%s", string(modality), uuid.New().String(), ext)

	url, err := e.storage.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorageError, "failed to store asset")
	}

	asset := &entity.Asset{
		ProjectID:   req.ProjectID,
		ItemID:      req.ItemID,
		RunID:       em.Recorder().RunID(),
		Modality:    modality,
		ObjectKey:   objectKey,
		URL:         url,
		SourceURL:   sourceURL,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Metadata: map[string]any{
			"prompt":          prompt,
			"provider_prompt": providerPrompt,
			"source_url":      sourceURL,
		},
	}
	if episode != nil {
		asset.EpisodeID = episode.ID
	}
	if style := paramString(req.Params, "style_image_url"); style != "" {
		asset.Metadata["style_image_url"] = style
	}

	if err := e.assets.Create(ctx, asset); err != nil {
		return err
	}

	em.Progress(100)
	em.Status("Completed")
	em.Emit(runtrace.EventFinish, map[string]any{
		"id":              asset.ID,
		"url":             url,
		"type":            string(modality),
		"prompt":          prompt,
		"provider_prompt": providerPrompt,
	})
	return nil
}

// clampProgress 进度只进不退，且轮询期间封顶 99
func clampProgress(value, current int) int {
	if value < current {
		return current
	}
	if value < 10 {
		value = 10
	}
	if value > 99 {
		value = 99
	}
	return value
}

func paramInt(params map[string]any, key string) int {
	if params == nil {
		return 0
	}
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func paramStringList(params map[string]any, key string) []string {
	if params == nil {
		return nil
	}
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}
