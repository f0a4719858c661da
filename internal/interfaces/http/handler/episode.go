package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"short-director-api/internal/application/script"
	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
	"short-director-api/internal/interfaces/http/dto"
	apperrors "short-director-api/pkg/errors"
)

// EpisodeHandler 分集与剧本处理器
type EpisodeHandler struct {
	episodeRepo repository.EpisodeRepository
	projectRepo repository.ProjectRepository
	txMgr       repository.Transactor
}

// NewEpisodeHandler 创建分集处理器
func NewEpisodeHandler(episodeRepo repository.EpisodeRepository, projectRepo repository.ProjectRepository, txMgr repository.Transactor) *EpisodeHandler {
	return &EpisodeHandler{
		episodeRepo: episodeRepo,
		projectRepo: projectRepo,
		txMgr:       txMgr,
	}
}

// ListEpisodes 获取项目下的分集列表
// @Summary 获取分集列表
// @Tags Episodes
// @Produce json
// @Param id path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.EpisodeListResponse]
// @Router /api/v1/projects/{id}/episodes [get]
func (h *EpisodeHandler) ListEpisodes(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.episodeRepo.ListByProject(ctx, c.Param("id"), repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, ctx, err, "failed to list episodes")
		return
	}

	resp := dto.ToEpisodeListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateEpisode 在项目下创建分集
// @Summary 创建分集
// @Tags Episodes
// @Accept json
// @Produce json
// @Param id path string true "项目 ID"
// @Param body body dto.CreateEpisodeRequest true "分集信息"
// @Success 201 {object} dto.Response[dto.EpisodeResponse]
// @Router /api/v1/projects/{id}/episodes [post]
func (h *EpisodeHandler) CreateEpisode(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := c.Param("id")

	var req dto.CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, ctx, err, "failed to get project")
		return
	}
	if project == nil {
		respondError(c, ctx, apperrors.ErrProjectNotFound, "")
		return
	}

	episode := entity.NewEpisode(projectID, req.Title, req.OrderIndex)
	episode.Synopsis = req.Synopsis
	if err := h.episodeRepo.Create(ctx, episode); err != nil {
		respondError(c, ctx, err, "failed to create episode")
		return
	}
	dto.Created(c, dto.ToEpisodeResponse(episode, true))
}

// GetEpisode 获取分集详情
// @Summary 获取分集详情
// @Tags Episodes
// @Produce json
// @Param id path string true "分集 ID"
// @Success 200 {object} dto.Response[dto.EpisodeResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/episodes/{id} [get]
func (h *EpisodeHandler) GetEpisode(c *gin.Context) {
	ctx := c.Request.Context()

	episode, err := h.loadEpisode(c)
	if err != nil {
		respondError(c, ctx, err, "failed to get episode")
		return
	}
	dto.Success(c, dto.ToEpisodeResponse(episode, true))
}

// UpdateEpisode 更新分集
// @Summary 更新分集
// @Tags Episodes
// @Accept json
// @Produce json
// @Param id path string true "分集 ID"
// @Param body body dto.UpdateEpisodeRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.EpisodeResponse]
// @Router /api/v1/episodes/{id} [put]
func (h *EpisodeHandler) UpdateEpisode(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	episode, err := h.loadEpisode(c)
	if err != nil {
		respondError(c, ctx, err, "failed to get episode")
		return
	}

	if req.Title != nil {
		episode.Title = *req.Title
	}
	if req.Synopsis != nil {
		episode.Synopsis = *req.Synopsis
	}
	if req.OrderIndex != nil {
		episode.OrderIndex = *req.OrderIndex
	}
	if req.Status != nil {
		episode.Status = entity.EpisodeStatus(*req.Status)
	}
	episode.UpdatedAt = time.Now()

	if err := h.episodeRepo.Update(ctx, episode); err != nil {
		respondError(c, ctx, err, "failed to update episode")
		return
	}
	dto.Success(c, dto.ToEpisodeResponse(episode, true))
}

// DeleteEpisode 删除分集
// @Summary 删除分集
// @Tags Episodes
// @Param id path string true "分集 ID"
// @Success 204
// @Router /api/v1/episodes/{id} [delete]
func (h *EpisodeHandler) DeleteEpisode(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.episodeRepo.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, ctx, err, "failed to delete episode")
		return
	}
	dto.NoContent(c)
}

// GetScript 获取分集剧本
// @Summary 获取分集剧本
// @Tags Episodes
// @Produce json
// @Param id path string true "分集 ID"
// @Success 200 {object} dto.Response[map[string]any]
// @Router /api/v1/episodes/{id}/script [get]
func (h *EpisodeHandler) GetScript(c *gin.Context) {
	ctx := c.Request.Context()

	episode, err := h.loadEpisode(c)
	if err != nil {
		respondError(c, ctx, err, "failed to get episode")
		return
	}
	dto.Success(c, episode.Script)
}

// UpdateScript 整体替换分集剧本
// @Summary 替换分集剧本
// @Tags Episodes
// @Accept json
// @Produce json
// @Param id path string true "分集 ID"
// @Param body body dto.UpdateScriptRequest true "剧本"
// @Success 200 {object} dto.Response[map[string]any]
// @Router /api/v1/episodes/{id}/script [put]
func (h *EpisodeHandler) UpdateScript(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	episode, err := h.loadEpisode(c)
	if err != nil {
		respondError(c, ctx, err, "failed to get episode")
		return
	}

	if err := h.episodeRepo.UpdateScript(ctx, episode.ID, req.Script); err != nil {
		respondError(c, ctx, err, "failed to update script")
		return
	}
	dto.Success(c, req.Script)
}

// UpdateScriptItem 按条目 ID 增量更新剧本条目
// @Summary 更新剧本条目
// @Tags Episodes
// @Accept json
// @Produce json
// @Param id path string true "分集 ID"
// @Param item_id path string true "条目 ID"
// @Param body body dto.UpdateScriptItemRequest true "更新字段"
// @Success 200 {object} dto.Response[map[string]any]
// @Router /api/v1/episodes/{id}/script/items/{item_id} [put]
func (h *EpisodeHandler) UpdateScriptItem(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateScriptItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// 读改写放在同一事务中，避免并发条目编辑互相覆盖
	var merged map[string]any
	err := h.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		episode, err := h.episodeRepo.GetByID(txCtx, c.Param("id"))
		if err != nil {
			return err
		}
		if episode == nil {
			return apperrors.ErrEpisodeNotFound
		}

		doc := script.FromMap(episode.Script)
		if err := script.UpdateItem(doc, c.Param("item_id"), req.Fields); err != nil {
			return err
		}

		merged = doc.ToMap()
		return h.episodeRepo.UpdateScript(txCtx, episode.ID, merged)
	})
	if err != nil {
		respondError(c, ctx, err, "failed to update script item")
		return
	}
	dto.Success(c, merged)
}

// DeleteScriptItem 按条目 ID 删除剧本条目
// @Summary 删除剧本条目
// @Tags Episodes
// @Param id path string true "分集 ID"
// @Param item_id path string true "条目 ID"
// @Success 200 {object} dto.Response[map[string]any]
// @Router /api/v1/episodes/{id}/script/items/{item_id} [delete]
func (h *EpisodeHandler) DeleteScriptItem(c *gin.Context) {
	ctx := c.Request.Context()

	var merged map[string]any
	err := h.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		episode, err := h.episodeRepo.GetByID(txCtx, c.Param("id"))
		if err != nil {
			return err
		}
		if episode == nil {
			return apperrors.ErrEpisodeNotFound
		}

		doc := script.FromMap(episode.Script)
		if err := script.DeleteItem(doc, c.Param("item_id")); err != nil {
			return err
		}

		merged = doc.ToMap()
		return h.episodeRepo.UpdateScript(txCtx, episode.ID, merged)
	})
	if err != nil {
		respondError(c, ctx, err, "failed to delete script item")
		return
	}
	dto.Success(c, merged)
}

func (h *EpisodeHandler) loadEpisode(c *gin.Context) (*entity.Episode, error) {
	episode, err := h.episodeRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, apperrors.ErrEpisodeNotFound
	}
	return episode, nil
}
