package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
	"short-director-api/internal/infrastructure/persistence/redis"
	"short-director-api/internal/infrastructure/provider"
	"short-director-api/internal/interfaces/http/dto"
	"short-director-api/internal/workflow/chain"
	workflowport "short-director-api/internal/workflow/port"
	workflowprompt "short-director-api/internal/workflow/prompt"
	workflowskill "short-director-api/internal/workflow/skill"
	apperrors "short-director-api/pkg/errors"
)

// connectionTestTimeout 连通性测试的调用上限
const connectionTestTimeout = 30 * time.Second

// APIKeyHandler 模型凭据处理器
type APIKeyHandler struct {
	apiKeyRepo repository.APIKeyRepository
	cache      *redis.Cache
	chain      *chain.SkillChain
}

// NewAPIKeyHandler 创建模型凭据处理器
func NewAPIKeyHandler(apiKeyRepo repository.APIKeyRepository, cache *redis.Cache, skillChain *chain.SkillChain) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyRepo: apiKeyRepo,
		cache:      cache,
		chain:      skillChain,
	}
}

// ListAPIKeys 获取凭据列表，密钥脱敏返回
// @Summary 获取凭据列表
// @Tags APIKeys
// @Produce json
// @Success 200 {object} dto.Response[dto.APIKeyListResponse]
// @Router /api/v1/api-keys [get]
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.apiKeyRepo.ListByOwner(ctx, ownerID(c), repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, ctx, err, "failed to list api keys")
		return
	}

	resp := dto.ToAPIKeyListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateAPIKey 创建凭据
// @Summary 创建凭据
// @Tags APIKeys
// @Accept json
// @Produce json
// @Param body body dto.CreateAPIKeyRequest true "凭据信息"
// @Success 201 {object} dto.Response[dto.APIKeyResponse]
// @Router /api/v1/api-keys [post]
func (h *APIKeyHandler) CreateAPIKey(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	key := entity.NewAPIKey(ownerID(c), req.Name, req.Platform, req.Key)
	key.BaseURL = req.BaseURL
	key.Model = req.Model
	key.Endpoints = req.Endpoints

	if err := h.apiKeyRepo.Create(ctx, key); err != nil {
		respondError(c, ctx, err, "failed to create api key")
		return
	}
	dto.Created(c, dto.ToAPIKeyResponse(key))
}

// GetAPIKey 获取凭据详情
// @Summary 获取凭据详情
// @Tags APIKeys
// @Produce json
// @Param id path string true "凭据 ID"
// @Success 200 {object} dto.Response[dto.APIKeyResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/api-keys/{id} [get]
func (h *APIKeyHandler) GetAPIKey(c *gin.Context) {
	ctx := c.Request.Context()

	key, err := h.loadKey(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get api key")
		return
	}
	dto.Success(c, dto.ToAPIKeyResponse(key))
}

// UpdateAPIKey 更新凭据并失效缓存
// @Summary 更新凭据
// @Tags APIKeys
// @Accept json
// @Produce json
// @Param id path string true "凭据 ID"
// @Param body body dto.UpdateAPIKeyRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.APIKeyResponse]
// @Router /api/v1/api-keys/{id} [put]
func (h *APIKeyHandler) UpdateAPIKey(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	key, err := h.loadKey(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get api key")
		return
	}

	if req.Name != nil {
		key.Name = *req.Name
	}
	if req.Platform != nil {
		key.Platform = *req.Platform
	}
	if req.Key != nil && *req.Key != "" {
		key.Key = *req.Key
	}
	if req.BaseURL != nil {
		key.BaseURL = *req.BaseURL
	}
	if req.Model != nil {
		key.Model = *req.Model
	}
	if req.Endpoints != nil {
		key.Endpoints = req.Endpoints
	}
	if req.Enabled != nil {
		key.Enabled = *req.Enabled
	}
	key.UpdatedAt = time.Now()

	if err := h.apiKeyRepo.Update(ctx, key); err != nil {
		respondError(c, ctx, err, "failed to update api key")
		return
	}
	h.invalidate(ctx, key.ID)
	dto.Success(c, dto.ToAPIKeyResponse(key))
}

// DeleteAPIKey 删除凭据并失效缓存
// @Summary 删除凭据
// @Tags APIKeys
// @Param id path string true "凭据 ID"
// @Success 204
// @Router /api/v1/api-keys/{id} [delete]
func (h *APIKeyHandler) DeleteAPIKey(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if err := h.apiKeyRepo.Delete(ctx, id); err != nil {
		respondError(c, ctx, err, "failed to delete api key")
		return
	}
	h.invalidate(ctx, id)
	dto.NoContent(c)
}

// TestAPIKey 对凭据发起一次最小模型调用验证连通性
// @Summary 凭据连通性测试
// @Tags APIKeys
// @Produce json
// @Param id path string true "凭据 ID"
// @Success 200 {object} dto.Response[dto.APIKeyTestResponse]
// @Router /api/v1/api-keys/{id}/test [post]
func (h *APIKeyHandler) TestAPIKey(c *gin.Context) {
	ctx := c.Request.Context()

	key, err := h.loadKey(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get api key")
		return
	}

	cfg, err := provider.Resolve(provider.Normalize(key.Platform), provider.Overrides{BaseURL: key.BaseURL})
	if err != nil {
		respondError(c, ctx, err, "failed to resolve provider")
		return
	}
	if cfg.RequiresCredential && key.Key == "" {
		respondError(c, ctx, apperrors.ErrCredentialMissing, "")
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, connectionTestTimeout)
	defer cancel()

	msg, err := h.chain.Invoke(callCtx, &chain.SkillInput{
		Skill: workflowskill.Skill{
			Name:     "connection-test",
			PromptID: workflowprompt.PromptConnectionTestV1,
		},
		Spec: workflowport.ModelSpec{
			Platform: string(cfg.Platform),
			APIKey:   key.Key,
			BaseURL:  cfg.BaseURL,
			Model:    key.Model,
			Timeout:  connectionTestTimeout,
		},
		Vars: map[string]any{"prompt": "ping"},
	})
	if err != nil {
		dto.Success(c, &dto.APIKeyTestResponse{
			OK:      false,
			Model:   key.Model,
			Message: err.Error(),
		})
		return
	}

	caps := make([]string, 0, 1)
	for _, capability := range provider.GuessCapabilities(key.Model) {
		caps = append(caps, string(capability))
	}
	dto.Success(c, &dto.APIKeyTestResponse{
		OK:           true,
		Model:        key.Model,
		Capabilities: caps,
		Message:      msg.Content,
	})
}

func (h *APIKeyHandler) loadKey(ctx context.Context, id string) (*entity.APIKey, error) {
	key, err := h.apiKeyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, apperrors.ErrCredentialNotFound
	}
	return key, nil
}

func (h *APIKeyHandler) invalidate(ctx context.Context, id string) {
	if h.cache == nil {
		return
	}
	_ = h.cache.InvalidateAPIKey(ctx, id)
}
