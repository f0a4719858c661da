package handler

import (
	"github.com/gin-gonic/gin"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
	storageminio "short-director-api/internal/infrastructure/storage/minio"
	"short-director-api/internal/interfaces/http/dto"
	apperrors "short-director-api/pkg/errors"
	"short-director-api/pkg/logger"
)

// AssetHandler 生成产物处理器
type AssetHandler struct {
	assetRepo repository.AssetRepository
	storage   *storageminio.Client
}

// NewAssetHandler 创建生成产物处理器
func NewAssetHandler(assetRepo repository.AssetRepository, storage *storageminio.Client) *AssetHandler {
	return &AssetHandler{
		assetRepo: assetRepo,
		storage:   storage,
	}
}

// ListAssets 获取项目下的资产列表，支持按集、条目、模态过滤
// @Summary 获取资产列表
// @Tags Assets
// @Produce json
// @Param id path string true "项目 ID"
// @Param episode_id query string false "按集过滤"
// @Param item_id query string false "按剧本条目过滤"
// @Param modality query string false "按模态过滤 image/video/audio"
// @Success 200 {object} dto.Response[dto.AssetListResponse]
// @Router /api/v1/projects/{id}/assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	filter := &repository.AssetFilter{
		EpisodeID: c.Query("episode_id"),
		ItemID:    c.Query("item_id"),
		Modality:  entity.AssetModality(c.Query("modality")),
	}

	result, err := h.assetRepo.ListByProject(ctx, c.Param("id"), filter,
		repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, ctx, err, "failed to list assets")
		return
	}

	resp := dto.ToAssetListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetAsset 获取资产详情
// @Summary 获取资产详情
// @Tags Assets
// @Produce json
// @Param id path string true "资产 ID"
// @Success 200 {object} dto.Response[dto.AssetResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	ctx := c.Request.Context()

	asset, err := h.assetRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get asset")
		return
	}
	if asset == nil {
		respondError(c, ctx, apperrors.ErrAssetNotFound, "")
		return
	}
	dto.Success(c, dto.ToAssetResponse(asset))
}

// DeleteAsset 删除资产记录并尽力清理对象存储
// @Summary 删除资产
// @Tags Assets
// @Param id path string true "资产 ID"
// @Success 204
// @Router /api/v1/assets/{id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	asset, err := h.assetRepo.GetByID(ctx, id)
	if err != nil {
		respondError(c, ctx, err, "failed to get asset")
		return
	}
	if asset == nil {
		respondError(c, ctx, apperrors.ErrAssetNotFound, "")
		return
	}

	if err := h.assetRepo.Delete(ctx, id); err != nil {
		respondError(c, ctx, err, "failed to delete asset")
		return
	}

	// 对象清理失败不影响删除结果，留给后续巡检
	if h.storage != nil && asset.ObjectKey != "" {
		if err := h.storage.Remove(ctx, asset.ObjectKey); err != nil {
			logger.Warn(ctx, "failed to remove stored object",
				"asset_id", id, "object_key", asset.ObjectKey, "error", err.Error())
		}
	}
	dto.NoContent(c)
}
