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

// CategoryHandler 分类 API 路由处理器
type CategoryHandler struct {
	*Handler
}

// NewCategoryHandler 创建 CategoryHandler 实例
func NewCategoryHandler(a *app.App) *CategoryHandler {
	return &CategoryHandler{
		Handler: NewHandler(a),
	}
}

// List 获取分类列表
// @Summary 获取分类列表
// @Description 返回全部分类，按手动排序
// @Tags 分类
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]service.CategoryDTO} "成功"
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()

	categories, err := h.App.CategoryService.List(ctx)
	if err != nil {
		h.logError(ctx, "CategoryHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(categories))
}

// Create 创建分类
// @Summary 创建分类
// @Description 新建分类并追加到排序末尾，名称不可重复
// @Tags 分类
// @Accept json
// @Produce json
// @Param params body dto.CategoryCreateRequest true "分类参数"
// @Success 200 {object} pkgapp.Res{data=service.CategoryDTO} "成功"
// @Router /api/category [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CategoryCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CategoryHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	category, err := h.App.CategoryService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "CategoryHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(category))
}

// Update 更新分类
// @Summary 更新分类名称与颜色
// @Tags 分类
// @Accept json
// @Produce json
// @Param params body dto.CategoryUpdateRequest true "分类参数"
// @Success 200 {object} pkgapp.Res{data=service.CategoryDTO} "成功"
// @Router /api/category [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CategoryUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CategoryHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	category, err := h.App.CategoryService.Update(ctx, params)
	if err != nil {
		h.logError(ctx, "CategoryHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(category))
}

// Delete 删除分类
// @Summary 删除分类
// @Description 引用该分类的便签归类置空，便签本身不受影响
// @Tags 分类
// @Produce json
// @Param id path int true "分类 ID"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/category/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := convert.StrTo(c.Param("id")).MustInt64()
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	if err := h.App.CategoryService.Delete(ctx, id); err != nil {
		h.logError(ctx, "CategoryHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Reorder 整组重排分类
// @Summary 重排分类
// @Description orderedIds 必须是现有分类 ID 的完整排列，返回重排后的列表
// @Tags 分类
// @Accept json
// @Produce json
// @Param params body dto.CategoryReorderRequest true "排序参数"
// @Success 200 {object} pkgapp.Res{data=[]service.CategoryDTO} "成功"
// @Router /api/categories/reorder [put]
func (h *CategoryHandler) Reorder(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CategoryReorderRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CategoryHandler.Reorder.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()

	categories, err := h.App.CategoryService.Reorder(ctx, params)
	if err != nil {
		h.logError(ctx, "CategoryHandler.Reorder", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(categories))
}

func (h *CategoryHandler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
