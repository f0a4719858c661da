package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"short-director-api/internal/application/script"
	"short-director-api/internal/config"
	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
	"short-director-api/internal/infrastructure/media"
	"short-director-api/internal/infrastructure/persistence/redis"
	"short-director-api/internal/infrastructure/provider"
	storageminio "short-director-api/internal/infrastructure/storage/minio"
	"short-director-api/internal/runtrace"
	"short-director-api/internal/workflow/chain"
	workflowskill "short-director-api/internal/workflow/skill"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/logger"
	"short-director-api/pkg/metrics"
)

// Modality 生成模态
const (
	ModalityText  = "text"
	ModalityImage = "image"
	ModalityVideo = "video"
	ModalityAudio = "audio"
)

// Request 一次生成请求
type Request struct {
	ProjectID string
	EpisodeID string
	Modality  string
	Skill     string
	Prompt    string
	// APIKeyID 使用的模型凭据
	APIKeyID string
	// Model 覆盖凭据上的默认模型
	Model string
	// ItemID 媒体生成的目标剧本条目
	ItemID string
	// Directives 视频指令开关
	Directives VideoDirectives
	// Params 自由参数：seconds、size、generation_mode、input_reference 等
	Params map[string]any
}

// Engine 生成编排引擎
type Engine struct {
	cfg        *config.Config
	projects   repository.ProjectRepository
	episodes   repository.EpisodeRepository
	assets     repository.AssetRepository
	apiKeys    repository.APIKeyRepository
	mediaTasks repository.MediaTaskRepository
	cache      *redis.Cache
	chain      *chain.SkillChain
	media      *media.Client
	formatters *media.FormatterRegistry
	storage    *storageminio.Client
}

// NewEngine 创建生成引擎
func NewEngine(
	cfg *config.Config,
	projects repository.ProjectRepository,
	episodes repository.EpisodeRepository,
	assets repository.AssetRepository,
	apiKeys repository.APIKeyRepository,
	mediaTasks repository.MediaTaskRepository,
	cache *redis.Cache,
	skillChain *chain.SkillChain,
	mediaClient *media.Client,
	formatters *media.FormatterRegistry,
	storage *storageminio.Client,
) *Engine {
	return &Engine{
		cfg:        cfg,
		projects:   projects,
		episodes:   episodes,
		assets:     assets,
		apiKeys:    apiKeys,
		mediaTasks: mediaTasks,
		cache:      cache,
		chain:      skillChain,
		media:      mediaClient,
		formatters: formatters,
		storage:    storage,
	}
}

// Validate 请求的同步校验，失败直接作为 HTTP 错误返回
func (r *Request) Validate() error {
	switch r.Modality {
	case ModalityText, ModalityImage, ModalityVideo, ModalityAudio:
	default:
		return apperrors.ErrInvalidParam.WithDetail(
			fmt.Sprintf("unknown modality: %s", r.Modality))
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return apperrors.ErrInvalidParam.WithDetail("prompt is required")
	}
	if r.Modality == ModalityText {
		if _, err := workflowskill.Resolve(r.Skill); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.APIKeyID) == "" {
		return apperrors.ErrCredentialMissing
	}
	return nil
}

// Start 启动一次生成运行，返回事件发射器
// ctx 绑定消费方（HTTP 连接），取消即视为客户端断开。
func (e *Engine) Start(ctx context.Context, req *Request) (*Emitter, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	recorder := runtrace.NewRecorder(e.cfg.Trace.Dir, "", e.cfg.Trace.MaxEvents)
	recorder.Start(map[string]any{
		"project_id": req.ProjectID,
		"episode_id": req.EpisodeID,
		"modality":   req.Modality,
		"skill":      req.Skill,
	})

	emitter := NewEmitter(ctx, recorder, e.cfg.Generation.EventBuffer)

	go e.run(ctx, emitter, req)

	return emitter, nil
}

// run 运行管线并收敛终态，错误只以 error 事件离开流边界
func (e *Engine) run(ctx context.Context, em *Emitter, req *Request) {
	recorder := em.Recorder()
	started := time.Now()

	metrics.ActiveRuns.Inc()
	defer metrics.ActiveRuns.Dec()
	defer em.Close()

	status := runtrace.StatusCompleted
	err := e.dispatch(ctx, em, req)
	switch {
	case err != nil && em.Detached():
		status = runtrace.StatusAborted
		recorder.Finish(runtrace.StatusAborted, "Client disconnected")
	case err != nil:
		em.Error(errorMessage(err))
		status = runtrace.StatusError
		recorder.Finish(runtrace.StatusError, errorMessage(err))
	case em.Detached():
		status = runtrace.StatusAborted
		recorder.Finish(runtrace.StatusAborted, "Client disconnected")
	default:
		// Finish 内部会在出现过 error 事件时把 completed 提升为 error
		recorder.Finish(runtrace.StatusCompleted, "")
	}

	metrics.GenerationRunsTotal.WithLabelValues(req.Modality, req.Skill, status).Inc()
	metrics.GenerationRunDuration.WithLabelValues(req.Modality).Observe(time.Since(started).Seconds())

	logger.Info(ctx, "generation run finished",
		"run_id", recorder.RunID(),
		"modality", req.Modality,
		"status", status,
		"duration_ms", time.Since(started).Milliseconds())
}

// dispatch 按模态路由到对应管线
func (e *Engine) dispatch(ctx context.Context, em *Emitter, req *Request) error {
	key, cfg, err := e.resolveCredential(ctx, req)
	if err != nil {
		return err
	}

	switch req.Modality {
	case ModalityText:
		return e.runText(ctx, em, req, key, cfg)
	default:
		return e.runMedia(ctx, em, req, key, cfg)
	}
}

// resolveCredential 加载凭据并解析提供商配置
func (e *Engine) resolveCredential(ctx context.Context, req *Request) (*entity.APIKey, provider.Config, error) {
	var zero provider.Config

	key, err := e.loadAPIKey(ctx, req.APIKeyID)
	if err != nil {
		return nil, zero, err
	}
	if key == nil {
		return nil, zero, apperrors.ErrCredentialNotFound
	}
	if !key.Enabled {
		return nil, zero, apperrors.New(apperrors.CodeCredentialInvalid, "API key is disabled")
	}

	platform := provider.Normalize(key.Platform)

	overrides := provider.Overrides{BaseURL: key.BaseURL}
	if len(key.Endpoints) > 0 {
		overrides.Endpoints = make(map[provider.Capability]string, len(key.Endpoints))
		for k, v := range key.Endpoints {
			overrides.Endpoints[provider.Capability(k)] = v
		}
	}

	cfg, err := provider.Resolve(platform, overrides)
	if err != nil {
		return nil, zero, err
	}

	if cfg.RequiresCredential && strings.TrimSpace(key.Key) == "" {
		return nil, zero, apperrors.ErrCredentialMissing.WithDetail(
			fmt.Sprintf("platform %s requires an API key", platform))
	}

	return key, cfg, nil
}

// loadAPIKey 经缓存加载凭据
func (e *Engine) loadAPIKey(ctx context.Context, id string) (*entity.APIKey, error) {
	if e.cache == nil {
		return e.apiKeys.GetByID(ctx, id)
	}

	raw, err := e.cache.GetOrLoadSafe(ctx, redis.APIKeyCacheKey(id), 5*time.Minute, func() (interface{}, error) {
		return e.apiKeys.GetByID(ctx, id)
	})
	if err != nil {
		// 缓存故障回退直查数据库
		return e.apiKeys.GetByID(ctx, id)
	}

	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var key entity.APIKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return e.apiKeys.GetByID(ctx, id)
	}
	return &key, nil
}

// loadScript 加载剧集的剧本文档，剧集可选
func (e *Engine) loadScript(ctx context.Context, episodeID string) (*entity.Episode, *script.Document, error) {
	if episodeID == "" {
		return nil, script.NewDocument(), nil
	}
	episode, err := e.episodes.GetByID(ctx, episodeID)
	if err != nil {
		return nil, nil, err
	}
	if episode == nil {
		return nil, nil, apperrors.ErrEpisodeNotFound
	}
	return episode, script.FromMap(episode.Script), nil
}

// collectPool 汇集项目全部剧集的剧本条目作为合并池
func (e *Engine) collectPool(ctx context.Context, projectID string) (*script.Pool, error) {
	pool := &script.Pool{}
	if projectID == "" {
		return pool, nil
	}

	page := 1
	for {
		result, err := e.episodes.ListByProject(ctx, projectID, repository.NewPagination(page, 100))
		if err != nil {
			return nil, err
		}
		for _, ep := range result.Items {
			if len(ep.Script) > 0 {
				pool.AddDocument(script.FromMap(ep.Script))
			}
		}
		if page >= result.TotalPages {
			break
		}
		page++
	}
	return pool, nil
}

func errorMessage(err error) string {
	appErr := apperrors.AsAppError(err)
	msg := appErr.Message
	if appErr.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, appErr.Detail)
	}
	if appErr.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, appErr.Err)
	}
	return msg
}
