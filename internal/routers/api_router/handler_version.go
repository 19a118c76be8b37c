package api_router

import (
	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"

	"github.com/gin-gonic/gin"
)

// VersionHandler 版本信息 API 路由处理器
type VersionHandler struct {
	*Handler
}

// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{
		Handler: NewHandler(a),
	}
}

// ServerVersion 获取服务版本信息
// @Summary 获取版本信息
// @Description 返回当前服务的版本号、Git Tag 以及编译时间
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.VersionDTO} "成功"
// @Router /api/version [get]
func (h *VersionHandler) ServerVersion(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	versionInfo := h.App.Version()
	response.ToResponse(code.Success.WithData(dto.VersionDTO{
		Version:   versionInfo.Version,
		GitTag:    versionInfo.GitTag,
		BuildTime: versionInfo.BuildTime,
	}))
}
