package api_router

import (
	"context"

	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/internal/middleware"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/convert"
	apperrors "github.com/aibianji/sticky-notes-app/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderHandler 提醒 API 路由处理器
type ReminderHandler struct {
	*Handler
}

// NewReminderHandler 创建 ReminderHandler 实例
func NewReminderHandler(a *app.App) *ReminderHandler {
	return &ReminderHandler{
		Handler: NewHandler(a),
	}
}

// ListByNote 获取某便签的提醒列表
// @Summary 获取便签提醒
// @Tags 提醒
// @Produce json
// @Param noteId query int true "便签 ID"
// @Success 200 {object} pkgapp.Res{data=[]service.ReminderDTO} "成功"
// @Router /api/reminders [get]
func (h *ReminderHandler) ListByNote(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	noteID := convert.StrTo(c.Query("noteId")).MustInt64()
	if noteID <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	reminders, err := h.App.ReminderService.ListByNote(ctx, noteID)
	if err != nil {
		h.logError(ctx, "ReminderHandler.ListByNote", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(reminders))
}

// Upcoming 获取即将到期的提醒
// @Summary 获取即将到期的提醒
// @Description 前瞻窗口内未触发的提醒，附带父便签摘要，回收站便签不参与
// @Tags 提醒
// @Produce json
// @Param params query dto.ReminderUpcomingRequest false "查询参数"
// @Success 200 {object} pkgapp.Res{data=[]service.ReminderWithNoteDTO} "成功"
// @Router /api/reminders/upcoming [get]
func (h *ReminderHandler) Upcoming(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ReminderUpcomingRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ReminderHandler.Upcoming.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	reminders, err := h.App.ReminderService.ListUpcoming(ctx, params.Limit)
	if err != nil {
		h.logError(ctx, "ReminderHandler.Upcoming", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(reminders))
}

// Create 创建提醒
// @Summary 创建提醒
// @Description 提醒时间必须晚于当前时间，父便签必须存在
// @Tags 提醒
// @Accept json
// @Produce json
// @Param params body dto.ReminderCreateRequest true "提醒参数"
// @Success 200 {object} pkgapp.Res{data=service.ReminderDTO} "成功"
// @Router /api/reminder [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ReminderCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ReminderHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	reminder, err := h.App.ReminderService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "ReminderHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(reminder))
}

// Update 更新提醒
// @Summary 更新提醒
// @Description 已触发的提醒更新时间后重新生效
// @Tags 提醒
// @Accept json
// @Produce json
// @Param params body dto.ReminderUpdateRequest true "提醒参数"
// @Success 200 {object} pkgapp.Res{data=service.ReminderDTO} "成功"
// @Router /api/reminder [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ReminderUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ReminderHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	reminder, err := h.App.ReminderService.Update(ctx, params)
	if err != nil {
		h.logError(ctx, "ReminderHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(reminder))
}

// Trigger 标记提醒已触发
// @Summary 标记提醒已触发
// @Description 单向标记，重复标记视为成功
// @Tags 提醒
// @Produce json
// @Param id path int true "提醒 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/reminder/{id}/trigger [put]
func (h *ReminderHandler) Trigger(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := convert.StrTo(c.Param("id")).MustInt64()
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.ReminderService.MarkTriggered(ctx, id); err != nil {
		h.logError(ctx, "ReminderHandler.Trigger", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Delete 删除提醒
// @Summary 删除提醒
// @Tags 提醒
// @Produce json
// @Param id path int true "提醒 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/reminder/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := convert.StrTo(c.Param("id")).MustInt64()
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.ReminderService.Delete(ctx, id); err != nil {
		h.logError(ctx, "ReminderHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

func (h *ReminderHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
