package routers

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/middleware"
	"github.com/aibianji/sticky-notes-app/internal/routers/api_router"
	"github.com/aibianji/sticky-notes-app/internal/routers/websocket_router"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

// NewRouter 创建 HTTP 路由
// 挂载嵌入式前端、REST API、WebSocket 编辑通道与截图静态目录
func NewRouter(frontendFiles embed.FS, appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,                                 // 开启并行消息处理
			Recovery:            gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 1024 * 16, // 设置最大读取缓冲区大小 16MB
			WriteMaxPayloadSize: 1024 * 1024 * 16, // 设置最大写入缓冲区大小 16MB
		},
	})

	// 窗口与提醒事件经由 WebSocket 推送到前端
	appContainer.SetEventPusher(wss)

	// 创建 WebSocket Handlers（注入 App Container）
	noteWSHandler := websocket_router.NewNoteWSHandler(appContainer)
	windowWSHandler := websocket_router.NewWindowWSHandler(appContainer)

	// 编辑通道
	wss.Use(websocket_router.ActionNoteEdit, noteWSHandler.NoteEdit)
	wss.Use(websocket_router.ActionNoteFlush, noteWSHandler.NoteFlush)
	wss.Use(websocket_router.ActionNoteSave, noteWSHandler.NoteSave)
	// 即时搜索通道
	wss.Use(websocket_router.ActionSearchNotes, noteWSHandler.SearchNotes)
	// 窗口生命周期信号
	wss.Use(websocket_router.ActionWindowClosed, windowWSHandler.WindowClosed)
	wss.Use(websocket_router.ActionWindowGeometry, windowWSHandler.WindowGeometry)

	frontendAssets, _ := fs.Sub(frontendFiles, "frontend/assets")
	frontendIndexContent, _ := frontendFiles.ReadFile("frontend/index.html")

	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", frontendIndexContent)
	})

	cacheMiddleware := func(c *gin.Context) {
		// 设置强缓存，缓存一年
		c.Header("Cache-Control", "public, s-maxage=31536000, max-age=31536000, must-revalidate")
		c.Next()
	}

	r.Group("/assets", cacheMiddleware).StaticFS("/", http.FS(frontendAssets))

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(gin.Logger())
		api.Use(middleware.TraceMiddleware()) // Trace ID 中间件
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer, wss)
		categoryHandler := api_router.NewCategoryHandler(appContainer)
		reminderHandler := api_router.NewReminderHandler(appContainer)
		windowHandler := api_router.NewWindowHandler(appContainer)
		uploadHandler := api_router.NewUploadHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		// WebSocket 编辑与搜索通道
		api.GET("/ws", wss.Run())

		// 系统
		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)

		// 便签
		api.GET("/notes", noteHandler.List)
		api.GET("/notes/search", noteHandler.Search)
		api.GET("/note/:id", noteHandler.Get)
		api.POST("/note", noteHandler.Create)
		api.POST("/note/edit", noteHandler.Edit)
		api.POST("/note/flush", noteHandler.Flush)
		api.POST("/note/save", noteHandler.Save)
		api.PUT("/note/pin", noteHandler.Pin)
		api.PUT("/note/color", noteHandler.Color)
		api.PUT("/note/category", noteHandler.Category)

		// 回收站
		api.GET("/trash", noteHandler.TrashList)
		api.POST("/trash/cleanup", noteHandler.TrashCleanup)
		api.POST("/notes/trash", noteHandler.Trash)
		api.PUT("/notes/restore", noteHandler.Restore)
		api.DELETE("/notes/purge", noteHandler.Purge)

		// 分类
		api.GET("/categories", categoryHandler.List)
		api.PUT("/categories/reorder", categoryHandler.Reorder)
		api.POST("/category", categoryHandler.Create)
		api.PUT("/category", categoryHandler.Update)
		api.DELETE("/category/:id", categoryHandler.Delete)

		// 提醒
		api.GET("/reminders", reminderHandler.ListByNote)
		api.GET("/reminders/upcoming", reminderHandler.Upcoming)
		api.POST("/reminder", reminderHandler.Create)
		api.PUT("/reminder", reminderHandler.Update)
		api.PUT("/reminder/:id/trigger", reminderHandler.Trigger)
		api.DELETE("/reminder/:id", reminderHandler.Delete)

		// 窗口会话
		api.GET("/windows", windowHandler.List)
		api.DELETE("/windows", windowHandler.CloseAll)
		api.POST("/window/open", windowHandler.Open)
		api.POST("/window/close", windowHandler.Close)
		api.PUT("/window/geometry", windowHandler.Geometry)

		// 截图
		api.POST("/screenshot", uploadHandler.Screenshot)
	}

	// 截图静态目录
	if cfg.LocalFS.IsEnabled && cfg.LocalFS.SavePath != "" {
		r.StaticFS(cfg.LocalFS.UrlPrefix, http.Dir(cfg.LocalFS.SavePath))
	}
	r.NoRoute(middleware.NoFound())

	return r
}
