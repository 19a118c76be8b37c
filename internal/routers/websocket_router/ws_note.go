package websocket_router

import (
	"errors"
	"sync"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/logger"

	"go.uber.org/zap"
)

// WebSocket 消息动作名
const (
	ActionNoteEdit    = "NoteEdit"
	ActionNoteFlush   = "NoteFlush"
	ActionNoteSave    = "NoteSave"
	ActionSearchNotes = "SearchNotes"
)

// NoteWSHandler WebSocket 便签处理器
// 承载编辑通道与即时搜索通道，使用 App Container 注入依赖
type NoteWSHandler struct {
	*WSHandler

	// 即时搜索的静默期定时器，按连接区分
	searchMu     sync.Mutex
	searchTimers map[*pkgapp.WebsocketClient]*time.Timer
}

// NewNoteWSHandler 创建 NoteWSHandler 实例
func NewNoteWSHandler(a *app.App) *NoteWSHandler {
	return &NoteWSHandler{
		WSHandler:    NewWSHandler(a),
		searchTimers: make(map[*pkgapp.WebsocketClient]*time.Timer),
	}
}

// NoteEdit 处理编辑消息
// 内容进入防抖写入队列，静默期后合并落盘；立即回执，不等待写入
func (h *NoteWSHandler) NoteEdit(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteEditRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, "websocket_router.note.NoteEdit.BindAndValid")
		return
	}

	ctx := clientContext(c)

	if err := h.App.NoteService.Edit(ctx, params); err != nil {
		h.respondServiceError(c, err, "websocket_router.note.NoteEdit")
		return
	}

	c.ToResponse(code.Success, ActionNoteEdit)
}

// NoteFlush 处理立即落盘消息
func (h *NoteWSHandler) NoteFlush(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteFlushRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, "websocket_router.note.NoteFlush.BindAndValid")
		return
	}

	ctx := clientContext(c)

	if err := h.App.NoteService.Flush(ctx, params.ID); err != nil {
		h.respondServiceError(c, err, "websocket_router.note.NoteFlush")
		return
	}

	c.ToResponse(code.Success, ActionNoteFlush)
}

// NoteSave 处理显式同步保存消息
// 丢弃待写入快照并同步写入当前内容，窗口关闭前使用
func (h *NoteWSHandler) NoteSave(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteEditRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, "websocket_router.note.NoteSave.BindAndValid")
		return
	}

	ctx := clientContext(c)

	if err := h.App.NoteService.SaveNow(ctx, params); err != nil {
		h.respondServiceError(c, err, "websocket_router.note.NoteSave")
		return
	}

	c.ToResponse(code.Success, ActionNoteSave)
}

// SearchNotes 处理即时搜索消息
// 同一连接上的连续输入在静默期内只触发最后一次查询
func (h *NoteWSHandler) SearchNotes(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.NoteSearchRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, "websocket_router.note.SearchNotes.BindAndValid")
		return
	}

	delay := h.App.Config().GetSearchReloadDelay()
	if delay <= 0 {
		h.runSearch(c, params)
		return
	}

	h.searchMu.Lock()
	if t, ok := h.searchTimers[c]; ok {
		t.Stop()
	}
	h.searchTimers[c] = time.AfterFunc(delay, func() {
		h.searchMu.Lock()
		delete(h.searchTimers, c)
		h.searchMu.Unlock()
		h.runSearch(c, params)
	})
	h.searchMu.Unlock()
}

func (h *NoteWSHandler) runSearch(c *pkgapp.WebsocketClient, params *dto.NoteSearchRequest) {
	ctx := clientContext(c)
	if ctx.Err() != nil {
		return
	}

	notes, err := h.App.NoteService.Search(ctx, params)
	if err != nil {
		h.respondServiceError(c, err, "websocket_router.note.SearchNotes")
		return
	}

	h.App.Logger().Debug("search executed",
		zap.String("keyword", params.Keyword),
		zap.Int(logger.FieldCount, len(notes)))

	c.ToResponse(code.Success.WithData(notes), ActionSearchNotes)
}

// respondServiceError 将服务层错误映射为客户端响应
func (h *NoteWSHandler) respondServiceError(c *pkgapp.WebsocketClient, err error, method string) {
	h.logError(c, method, err)

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		c.ToResponse(codeErr)
		return
	}
	c.ToResponse(code.ServerError.WithDetails(err.Error()))
}
