package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"short-director-api/internal/interfaces/http/dto"
	"short-director-api/internal/runtrace"
)

// RunHandler 生成轨迹查询处理器
type RunHandler struct {
	store *runtrace.Store
}

// NewRunHandler 创建生成轨迹查询处理器
func NewRunHandler(store *runtrace.Store) *RunHandler {
	return &RunHandler{store: store}
}

// ListRuns 获取生成轨迹摘要列表
// @Summary 获取轨迹列表
// @Tags Runs
// @Produce json
// @Param project_id query string false "按项目过滤"
// @Param episode_id query string false "按集过滤"
// @Param limit query int false "返回条数上限"
// @Success 200 {object} dto.Response[[]runtrace.Summary]
// @Router /api/v1/runs [get]
func (h *RunHandler) ListRuns(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	summaries, err := h.store.List(ctx, c.Query("project_id"), c.Query("episode_id"), limit)
	if err != nil {
		respondError(c, ctx, err, "failed to list runs")
		return
	}
	dto.Success(c, summaries)
}

// GetRun 获取单次生成的完整轨迹
// @Summary 获取轨迹详情
// @Tags Runs
// @Produce json
// @Param id path string true "运行 ID"
// @Success 200 {object} dto.Response[runtrace.Record]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/runs/{id} [get]
func (h *RunHandler) GetRun(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get run")
		return
	}
	dto.Success(c, record)
}
