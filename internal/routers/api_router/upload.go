package api_router

import (
	"time"

	"github.com/aibianji/sticky-notes-app/internal/app"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/fileurl"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadHandler 截图上传 API 路由处理器
type UploadHandler struct {
	*Handler
}

// NewUploadHandler 创建 UploadHandler 实例
func NewUploadHandler(a *app.App) *UploadHandler {
	return &UploadHandler{Handler: NewHandler(a)}
}

// screenshotInfo 截图上传结果
type screenshotInfo struct {
	FileKey string `json:"fileKey"`
	Url     string `json:"url"`
	Size    int64  `json:"size"`
}

// Screenshot 上传便签截图
// @Summary 上传截图
// @Description 保存便签的区域截图文件，按日期目录存放，返回可访问地址
// @Tags 截图
// @Accept multipart/form-data
// @Produce json
// @Param imagefile formData file true "截图文件"
// @Success 200 {object} pkgapp.Res "成功"
// @Router /api/screenshot [post]
func (h *UploadHandler) Screenshot(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if h.App.Screenshots == nil {
		response.ToResponse(code.ErrorUploadFileFail.WithDetails("screenshot storage is disabled"))
		return
	}

	file, fileHeader, err := c.Request.FormFile("imagefile")
	if err != nil {
		h.App.Logger().Error("UploadHandler.Screenshot.FormFile err", zap.Error(err))
		response.ToResponse(code.ErrorInvalidParams)
		return
	}
	defer file.Close()

	appConfig := h.App.Config()
	if !fileurl.IsContainExt(fileurl.ImageType, fileHeader.Filename, appConfig.App.UploadAllowExts) {
		response.ToResponse(code.ErrorUploadFileExtFail)
		return
	}
	maxSize := int64(appConfig.App.UploadMaxSize) * 1024 * 1024
	if maxSize > 0 && fileHeader.Size > maxSize {
		response.ToResponse(code.ErrorUploadFileSizeFail)
		return
	}

	fileKey := fileurl.GetDatePath("2006/01/02") + fileurl.GetFileNameOrRandom(fileHeader.Filename)
	url, err := h.App.Screenshots.SendFile(fileKey, file, fileHeader.Header.Get("Content-Type"), time.Now())
	if err != nil {
		h.App.Logger().Error("UploadHandler.Screenshot.SendFile err",
			zap.String("fileKey", fileKey),
			zap.Error(err))
		response.ToResponse(code.ErrorUploadFileFail.WithDetails(err.Error()))
		return
	}

	h.App.Logger().Info("screenshot uploaded",
		zap.String("fileKey", fileKey),
		zap.Int64("size", fileHeader.Size))

	response.ToResponse(code.Success.WithData(screenshotInfo{
		FileKey: fileKey,
		Url:     url,
		Size:    fileHeader.Size,
	}))
}
