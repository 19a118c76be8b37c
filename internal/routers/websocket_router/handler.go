// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"context"
	"strings"

	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/middleware"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"

	"go.uber.org/zap"
)

// WSHandler WebSocket 基础 Handler 结构体，封装 App Container
// 所有 WebSocket Handler 都应该嵌入此结构体以获得依赖注入能力
type WSHandler struct {
	App *app.App
}

// NewWSHandler 创建 WebSocket 基础 Handler 实例
func NewWSHandler(a *app.App) *WSHandler {
	return &WSHandler{App: a}
}

// clientContext 取出连接建立时的请求上下文
// 连接已断开时退化为 Background，避免在失效的 HTTP context 上继续操作
func clientContext(c *pkgapp.WebsocketClient) context.Context {
	if c != nil && c.Ctx != nil && c.Ctx.Request != nil {
		return c.Ctx.Request.Context()
	}
	return context.Background()
}

// clientTraceID 取连接握手时分配的 Trace ID
func clientTraceID(c *pkgapp.WebsocketClient) string {
	if c == nil || c.Ctx == nil {
		return ""
	}
	return middleware.GetTraceIDFromGin(c.Ctx)
}

// logError 记录错误日志，包含 Trace ID
func (h *WSHandler) logError(c *pkgapp.WebsocketClient, method string, err error) {
	// 连接关闭导致的错误且 context 已取消时降级日志级别
	if isNetworkClosedError(err) && clientContext(c).Err() != nil {
		h.App.Logger().Debug(method,
			zap.Error(err),
			zap.String("traceId", clientTraceID(c)),
		)
		return
	}

	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", clientTraceID(c)),
	)
}

// respondError 统一错误响应方法
// 记录错误日志并发送包含 Details 的错误响应给客户端
func (h *WSHandler) respondError(c *pkgapp.WebsocketClient, codeErr *code.Code, err error, method string) {
	h.logError(c, method, err)
	c.ToResponse(codeErr.WithDetails(err.Error()))
}

// isNetworkClosedError 检查是否为网络关闭相关的错误
func isNetworkClosedError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		err == context.Canceled
}
