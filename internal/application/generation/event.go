// Package generation 实现多模态生成编排：事件流、文本管线与媒体状态机
package generation

import (
	"context"
	"sync"

	"short-director-api/internal/runtrace"
)

// Event 生成过程中推送给客户端的单个事件
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Emitter 有界事件发射器
// 每次 Emit 先写入轨迹记录器，再投递到消费通道；消费方上下文取消后
// Emit 返回 false，生产方应在下一个让出点停止。
type Emitter struct {
	ctx      context.Context
	recorder *runtrace.Recorder
	ch       chan Event

	closeOnce sync.Once
}

// NewEmitter 创建事件发射器，buffer 为通道容量
func NewEmitter(ctx context.Context, recorder *runtrace.Recorder, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 64
	}
	return &Emitter{
		ctx:      ctx,
		recorder: recorder,
		ch:       make(chan Event, buffer),
	}
}

// Events 消费通道
func (e *Emitter) Events() <-chan Event {
	return e.ch
}

// Emit 记录并投递事件，消费方断开后返回 false
func (e *Emitter) Emit(eventType string, payload any) bool {
	e.recorder.Capture(eventType, payload)

	// 已断开时不再投递，避免与通道写入竞争
	select {
	case <-e.ctx.Done():
		return false
	default:
	}
	select {
	case <-e.ctx.Done():
		return false
	case e.ch <- Event{Type: eventType, Payload: payload}:
		return true
	}
}

// Status 发送状态事件
func (e *Emitter) Status(msg string) bool {
	return e.Emit(runtrace.EventStatus, msg)
}

// Progress 发送进度事件
func (e *Emitter) Progress(value int) bool {
	return e.Emit(runtrace.EventProgress, value)
}

// BackendLog 发送后端日志事件
func (e *Emitter) BackendLog(msg string) bool {
	return e.Emit(runtrace.EventBackendLog, msg)
}

// Error 发送错误事件
func (e *Emitter) Error(msg string) bool {
	return e.Emit(runtrace.EventError, msg)
}

// Close 关闭消费通道，生产方结束时调用一次
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		close(e.ch)
	})
}

// Recorder 返回底层轨迹记录器
func (e *Emitter) Recorder() *runtrace.Recorder {
	return e.recorder
}

// Detached 消费方是否已断开
func (e *Emitter) Detached() bool {
	select {
	case <-e.ctx.Done():
		return true
	default:
		return false
	}
}
