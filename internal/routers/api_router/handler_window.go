package api_router

import (
	"context"

	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/internal/middleware"
	"github.com/aibianji/sticky-notes-app/internal/session"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	apperrors "github.com/aibianji/sticky-notes-app/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WindowHandler 便签窗口会话 API 路由处理器
type WindowHandler struct {
	*Handler
}

// NewWindowHandler 创建 WindowHandler 实例
func NewWindowHandler(a *app.App) *WindowHandler {
	return &WindowHandler{
		Handler: NewHandler(a),
	}
}

// windowEntryDTO 窗口会话条目响应
type windowEntryDTO struct {
	NoteID   int64  `json:"noteId"`
	Handle   string `json:"handle"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	OpenedAt int64  `json:"openedAt"`
	Focused  bool   `json:"focused"`
}

func toWindowEntryDTO(e *session.Entry, focused bool) *windowEntryDTO {
	return &windowEntryDTO{
		NoteID:   e.NoteID,
		Handle:   e.Handle,
		X:        e.Geometry.X,
		Y:        e.Geometry.Y,
		Width:    e.Geometry.Width,
		Height:   e.Geometry.Height,
		OpenedAt: e.OpenedAt.Unix(),
		Focused:  focused,
	}
}

// Open 打开或聚焦便签窗口
// @Summary 打开便签窗口
// @Description 同一便签同时至多一个窗口，已打开时转为聚焦
// @Tags 窗口
// @Accept json
// @Produce json
// @Param params body dto.WindowOpenRequest true "便签 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/window/open [post]
func (h *WindowHandler) Open(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.WindowOpenRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("WindowHandler.Open.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	// 窗口必须属于一条存在的便签
	if _, err := h.App.NoteService.Get(ctx, params.NoteID); err != nil {
		h.logError(ctx, "WindowHandler.Open.NoteGet", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	entry, focused, err := h.App.Registry.OpenOrFocus(ctx, params.NoteID)
	if err != nil {
		h.logError(ctx, "WindowHandler.Open", err)
		response.ToResponse(code.ErrorWindowOpenFail.WithDetails(err.Error()))
		return
	}

	response.ToResponse(code.Success.WithData(toWindowEntryDTO(entry, focused)))
}

// Close 关闭便签窗口
// @Summary 关闭便签窗口
// @Description 关闭前落盘该便签的待写入内容
// @Tags 窗口
// @Accept json
// @Produce json
// @Param params body dto.WindowCloseRequest true "便签 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/window/close [post]
func (h *WindowHandler) Close(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.WindowCloseRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("WindowHandler.Close.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.Registry.Close(ctx, params.NoteID); err != nil {
		h.logError(ctx, "WindowHandler.Close", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// CloseAll 关闭全部便签窗口
// @Summary 关闭全部窗口
// @Description 逐个落盘并关闭所有已打开的便签窗口
// @Tags 窗口
// @Produce json
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/windows [delete]
func (h *WindowHandler) CloseAll(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	h.App.Registry.CloseAll(c.Request.Context())

	response.ToResponse(code.Success)
}

// Geometry 上报窗口几何信息
// @Summary 更新窗口几何信息
// @Description 展示层在窗口移动或缩放后上报位置与尺寸
// @Tags 窗口
// @Accept json
// @Produce json
// @Param params body dto.WindowGeometryRequest true "几何参数"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/window/geometry [put]
func (h *WindowHandler) Geometry(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.WindowGeometryRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("WindowHandler.Geometry.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	geometry := session.Geometry{X: params.X, Y: params.Y, Width: params.Width, Height: params.Height}
	if err := h.App.Registry.UpdateGeometry(params.NoteID, geometry); err != nil {
		h.logError(ctx, "WindowHandler.Geometry", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// List 获取已打开的窗口列表
// @Summary 获取窗口列表
// @Tags 窗口
// @Produce json
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/windows [get]
func (h *WindowHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	entries := h.App.Registry.List()
	list := make([]*windowEntryDTO, 0, len(entries))
	for _, e := range entries {
		list = append(list, toWindowEntryDTO(e, false))
	}

	response.ToResponse(code.Success.WithData(list))
}

func (h *WindowHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
