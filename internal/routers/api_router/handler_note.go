package api_router

import (
	"context"
	"time"

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

// NoteHandler 便签 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type NoteHandler struct {
	*Handler
}

// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App, wss *pkgapp.WebsocketServer) *NoteHandler {
	return &NoteHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// Get 获取单条便签详情
// @Summary 获取便签详情
// @Description 根据 ID 获取单条便签的内容和元数据（包含回收站中的便签）
// @Tags 便签
// @Produce json
// @Param id path int true "便签 ID"
// @Success 200 {object} pkgapp.Res{data=service.NoteDTO} "成功"
// @Router /api/note/{id} [get]
func (h *NoteHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := convert.StrTo(c.Param("id")).MustInt64()
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	note, err := h.App.NoteService.Get(ctx, id)
	if err != nil {
		h.logError(ctx, "NoteHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// List 获取便签列表
// @Summary 获取便签列表
// @Description 分页获取活跃便签，支持分类过滤、关键词过滤与排序
// @Tags 便签
// @Produce json
// @Param params query dto.NoteListRequest true "查询参数"
// @Success 200 {object} pkgapp.Res{data=[]service.NoteDTO} "成功"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteListRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.List.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	notes, count, err := h.App.NoteService.List(ctx, params, pager)
	if err != nil {
		h.logError(ctx, "NoteHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, notes, count)
}

// Create 创建便签
// @Summary 创建便签
// @Description 新建一条活跃状态的便签，颜色缺省时使用配置默认色
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "便签内容"
// @Success 200 {object} pkgapp.Res{data=service.NoteDTO} "成功"
// @Router /api/note [post]
func (h *NoteHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	note, err := h.App.NoteService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Edit 提交内容编辑
// @Summary 编辑便签内容
// @Description 内容修改进入防抖写入队列，静默期后合并落盘
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NoteEditRequest true "编辑内容"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/note/edit [post]
func (h *NoteHandler) Edit(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteEditRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Edit.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.NoteService.Edit(ctx, params); err != nil {
		h.logError(ctx, "NoteHandler.Edit", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Flush 立即落盘待写入内容
// @Summary 落盘便签
// @Description 跳过剩余静默期，立即写入该便签的待写入内容
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NoteFlushRequest true "便签 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/note/flush [post]
func (h *NoteHandler) Flush(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteFlushRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Flush.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.NoteService.Flush(ctx, params.ID); err != nil {
		h.logError(ctx, "NoteHandler.Flush", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Save 显式同步保存
// @Summary 同步保存便签
// @Description 丢弃待写入快照并同步写入当前内容，窗口关闭前使用
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NoteEditRequest true "保存内容"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/note/save [post]
func (h *NoteHandler) Save(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteEditRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Save.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.NoteService.SaveNow(ctx, params); err != nil {
		h.logError(ctx, "NoteHandler.Save", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Pin 切换置顶标记
// @Summary 切换置顶
// @Description 翻转便签的置顶标记，返回更新后的便签
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NotePinRequest true "便签 ID"
// @Success 200 {object} pkgapp.Res{data=service.NoteDTO} "成功"
// @Router /api/note/pin [put]
func (h *NoteHandler) Pin(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NotePinRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Pin.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	note, err := h.App.NoteService.TogglePin(ctx, params.ID)
	if err != nil {
		h.logError(ctx, "NoteHandler.Pin", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Color 更新颜色标记
// @Summary 更新便签颜色
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NoteColorRequest true "颜色参数"
// @Success 200 {object} pkgapp.Res{data=service.NoteDTO} "成功"
// @Router /api/note/color [put]
func (h *NoteHandler) Color(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteColorRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Color.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	note, err := h.App.NoteService.SetColor(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Color", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Category 更新分类归属
// @Summary 更新便签分类
// @Description categoryId 为空时表示移出分类
// @Tags 便签
// @Accept json
// @Produce json
// @Param params body dto.NoteCategoryRequest true "分类参数"
// @Success 200 {object} pkgapp.Res{data=service.NoteDTO} "成功"
// @Router /api/note/category [put]
func (h *NoteHandler) Category(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteCategoryRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Category.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	note, err := h.App.NoteService.SetCategory(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Category", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(note))
}

// Trash 批量移入回收站
// @Summary 移入回收站
// @Description 将一批便签移入回收站并取消其待写入内容，返回实际转移数量
// @Tags 回收站
// @Accept json
// @Produce json
// @Param params body dto.NoteBatchRequest true "便签 ID 列表"
// @Success 200 {object} pkgapp.Res{data=int64} "成功"
// @Router /api/notes/trash [post]
func (h *NoteHandler) Trash(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteBatchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Trash.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	count, err := h.App.NoteService.Trash(ctx, params.IDs)
	if err != nil {
		h.logError(ctx, "NoteHandler.Trash", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(count))
}

// Restore 批量从回收站恢复
// @Summary 恢复便签
// @Tags 回收站
// @Accept json
// @Produce json
// @Param params body dto.NoteBatchRequest true "便签 ID 列表"
// @Success 200 {object} pkgapp.Res{data=int64} "成功"
// @Router /api/notes/restore [put]
func (h *NoteHandler) Restore(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteBatchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Restore.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	count, err := h.App.NoteService.Restore(ctx, params.IDs)
	if err != nil {
		h.logError(ctx, "NoteHandler.Restore", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(count))
}

// Purge 批量彻底删除
// @Summary 彻底删除便签
// @Description 连同提醒与截图资源一并删除，不可恢复
// @Tags 回收站
// @Accept json
// @Produce json
// @Param params body dto.NoteBatchRequest true "便签 ID 列表"
// @Success 200 {object} pkgapp.Res{data=int64} "成功"
// @Router /api/notes/purge [delete]
func (h *NoteHandler) Purge(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteBatchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Purge.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	count, err := h.App.NoteService.Purge(ctx, params.IDs)
	if err != nil {
		h.logError(ctx, "NoteHandler.Purge", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(count))
}

// TrashList 获取回收站列表
// @Summary 获取回收站列表
// @Description 分页获取回收站便签，按进入回收站时间倒序
// @Tags 回收站
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]service.NoteDTO} "成功"
// @Router /api/trash [get]
func (h *NoteHandler) TrashList(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()
	pager := &pkgapp.Pager{Page: pkgapp.GetPage(c), PageSize: pkgapp.GetPageSize(c)}

	notes, count, err := h.App.NoteService.ListTrash(ctx, pager)
	if err != nil {
		h.logError(ctx, "NoteHandler.TrashList", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, notes, count)
}

// TrashCleanup 手动清理回收站
// @Summary 清理回收站
// @Description 立即清理超过保留期的回收站便签，retentionDays 缺省时使用配置保留期
// @Tags 回收站
// @Accept json
// @Produce json
// @Param params body dto.TrashCleanupRequest false "清理参数"
// @Success 200 {object} pkgapp.Res{data=int64} "成功"
// @Router /api/trash/cleanup [post]
func (h *NoteHandler) TrashCleanup(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.TrashCleanupRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.TrashCleanup.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	count, err := h.App.NoteService.CleanupTrash(ctx, time.Duration(params.RetentionDays)*24*time.Hour)
	if err != nil {
		h.logError(ctx, "NoteHandler.TrashCleanup", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(count))
}

// Search 内容搜索
// @Summary 搜索便签
// @Description 活跃便签的内容子串搜索，相同查询合并执行
// @Tags 便签
// @Produce json
// @Param params query dto.NoteSearchRequest true "搜索参数"
// @Success 200 {object} pkgapp.Res{data=[]service.NoteDTO} "成功"
// @Router /api/notes/search [get]
func (h *NoteHandler) Search(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NoteSearchRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("NoteHandler.Search.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	notes, err := h.App.NoteService.Search(ctx, params)
	if err != nil {
		h.logError(ctx, "NoteHandler.Search", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(notes))
}

func (h *NoteHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
