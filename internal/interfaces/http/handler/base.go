package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"short-director-api/internal/interfaces/http/dto"
	"short-director-api/pkg/errors"
	"short-director-api/pkg/logger"
)

// ownerHeader 调用方身份头，单机部署下缺省为 local
const ownerHeader = "X-Owner-ID"

func ownerID(c *gin.Context) string {
	if v := c.GetHeader(ownerHeader); v != "" {
		return v
	}
	return "local"
}

// respondError 统一错误出口
// AppError 按自身状态码与消息返回；其余错误记日志并回 500。
func respondError(c *gin.Context, ctx context.Context, err error, logMsg string) {
	if appErr := errors.AsAppError(err); appErr != nil {
		detail := &dto.ErrorDetail{ErrorCode: string(appErr.Code)}
		if appErr.Detail != "" {
			detail.Details = appErr.Detail
		}
		dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, detail)
		return
	}
	logger.Error(ctx, logMsg, err)
	dto.InternalError(c, logMsg)
}
