package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"short-director-api/internal/application/generation"
	"short-director-api/internal/interfaces/http/dto"
)

// GenerateHandler 生成流程处理器，以 SSE 推送生成事件
type GenerateHandler struct {
	engine *generation.Engine
}

// NewGenerateHandler 创建生成流程处理器
func NewGenerateHandler(engine *generation.Engine) *GenerateHandler {
	return &GenerateHandler{engine: engine}
}

// sseFrame SSE 数据帧
type sseFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Generate 启动一次生成任务并以 SSE 流式返回事件
// @Summary 发起生成
// @Tags Generation
// @Accept json
// @Produce text/event-stream
// @Param body body dto.GenerateRequest true "生成请求"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	em, err := h.engine.Start(ctx, req.ToGenerationRequest())
	if err != nil {
		// 校验类错误在进入流之前返回普通 JSON
		respondError(c, ctx, err, "failed to start generation")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// 首帧回传 run_id，供客户端断连后查询轨迹
	rec := em.Recorder()
	writeFrame(c.Writer, &sseFrame{
		Type: "trace",
		Payload: map[string]any{
			"run_id":     rec.RunID(),
			"status":     "running",
			"started_at": rec.StartedAt().Format(time.RFC3339),
		},
	})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-em.Events():
			if !ok {
				return false
			}
			writeFrame(w, &sseFrame{Type: ev.Type, Payload: ev.Payload})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func writeFrame(w io.Writer, frame *sseFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
