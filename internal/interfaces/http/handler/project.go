// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"short-director-api/internal/domain/entity"
	"short-director-api/internal/domain/repository"
	"short-director-api/internal/interfaces/http/dto"
	apperrors "short-director-api/pkg/errors"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectRepo repository.ProjectRepository
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectRepo repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
	}
}

// ListProjects 获取项目列表
// @Summary 获取项目列表
// @Tags Projects
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Router /api/v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	filter := &repository.ProjectFilter{
		OwnerID: ownerID(c),
		Genre:   c.Query("genre"),
		Status:  entity.ProjectStatus(c.Query("status")),
	}

	result, err := h.projectRepo.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, ctx, err, "failed to list projects")
		return
	}

	resp := dto.ToProjectListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateProject 创建项目
// @Summary 创建项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Router /api/v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project := req.ToProjectEntity(ownerID(c))
	if err := h.projectRepo.Create(ctx, project); err != nil {
		respondError(c, ctx, err, "failed to create project")
		return
	}
	dto.Created(c, dto.ToProjectResponse(project))
}

// GetProject 获取项目详情
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param id path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx := c.Request.Context()

	project, err := h.projectRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get project")
		return
	}
	if project == nil {
		respondError(c, ctx, apperrors.ErrProjectNotFound, "")
		return
	}
	dto.Success(c, dto.ToProjectResponse(project))
}

// UpdateProject 更新项目
// @Summary 更新项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project, err := h.projectRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ctx, err, "failed to get project")
		return
	}
	if project == nil {
		respondError(c, ctx, apperrors.ErrProjectNotFound, "")
		return
	}

	req.ApplyToProject(project)
	if err := h.projectRepo.Update(ctx, project); err != nil {
		respondError(c, ctx, err, "failed to update project")
		return
	}
	dto.Success(c, dto.ToProjectResponse(project))
}

// DeleteProject 删除项目
// @Summary 删除项目
// @Tags Projects
// @Param id path string true "项目 ID"
// @Success 204
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.projectRepo.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, ctx, err, "failed to delete project")
		return
	}
	dto.NoContent(c)
}
