// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/dao"
	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/service"
	"github.com/aibianji/sticky-notes-app/internal/session"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/debounce"
	"github.com/aibianji/sticky-notes-app/pkg/storage/local_fs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 内容写入协调器
	coordinator *debounce.Coordinator

	// 截图存储
	Screenshots *local_fs.LocalFS

	// Repository 层
	NoteRepo     domain.NoteRepository
	CategoryRepo domain.CategoryRepository
	ReminderRepo domain.ReminderRepository

	// Service 层
	NoteService     service.NoteService
	CategoryService service.CategoryService
	ReminderService service.ReminderService

	// 窗口会话注册表
	Registry *session.Registry

	// 事件推送出口，WebSocket 服务就绪后挂接
	eventsMu sync.RWMutex
	events   session.EventPusher

	// StartTime 进程启动时间，健康检查用
	StartTime time.Time
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	// 初始化防抖写入协调器
	dbcConfig := cfg.GetDebounceConfig()
	a.coordinator = debounce.New(&dbcConfig, logger)

	// 初始化截图存储
	if cfg.LocalFS.IsEnabled {
		client, err := local_fs.NewClient(&cfg.LocalFS)
		if err != nil {
			return nil, fmt.Errorf("failed to init screenshot storage: %w", err)
		}
		a.Screenshots = client
	}

	// 创建 DatabaseConfig 用于 DAO
	dbConfig := &dao.DatabaseConfig{
		Type:            cfg.Database.Type,
		Path:            cfg.Database.Path,
		TablePrefix:     cfg.Database.TablePrefix,
		AutoMigrate:     cfg.Database.AutoMigrate,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		RunMode:         cfg.Server.RunMode,
	}

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(dbConfig),
		dao.WithLogger(logger),
	)

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.CategoryRepo = dao.NewCategoryRepository(a.Dao)
	a.ReminderRepo = dao.NewReminderRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		Note: service.NoteServiceConfig{
			DefaultColor:    cfg.Note.DefaultColor,
			DefaultPageSize: cfg.App.DefaultPageSize,
			MaxPageSize:     cfg.App.MaxPageSize,
			SearchDebounce:  cfg.GetSearchReloadDelay(),
		},
		Trash: service.TrashServiceConfig{
			RetentionTime: cfg.GetTrashRetention(),
		},
		Reminder: service.ReminderServiceConfig{
			UpcomingWindow: cfg.GetReminderUpcomingWindow(),
		},
	}

	// 初始化 Service 层（依赖注入）
	var screenshots service.ScreenshotStore
	if a.Screenshots != nil {
		screenshots = a.Screenshots
	}
	a.NoteService = service.NewNoteService(a.NoteRepo, a.CategoryRepo, a.coordinator, screenshots, svcConfig)
	a.CategoryService = service.NewCategoryService(a.CategoryRepo, svcConfig)
	a.ReminderService = service.NewReminderService(a.ReminderRepo, a.NoteRepo, svcConfig)

	// 初始化窗口会话注册表
	// 展示层由前端承担，窗口的创建与销毁通过事件推送驱动
	a.Registry = session.NewRegistry(nil, a.NoteService, a, logger)

	logger.Info("App container initialized successfully",
		zap.Duration("quietPeriod", dbcConfig.QuietPeriod),
		zap.Bool("screenshotStorage", a.Screenshots != nil))

	return a, nil
}

// SetEventPusher 挂接事件推送出口（WebSocket 服务就绪后调用）
func (a *App) SetEventPusher(p session.EventPusher) {
	a.eventsMu.Lock()
	defer a.eventsMu.Unlock()
	a.events = p
}

// Push 广播服务端事件，未挂接出口时静默丢弃
func (a *App) Push(action string, data any) {
	a.eventsMu.RLock()
	p := a.events
	a.eventsMu.RUnlock()
	if p != nil {
		p.Push(action, data)
	}
}

// Shutdown 优雅关闭：关闭全部窗口并落盘待写入内容
func (a *App) Shutdown(ctx context.Context) error {
	a.Registry.CloseAll(ctx)

	if err := a.NoteService.Shutdown(ctx); err != nil {
		a.logger.Error("flush pending writes on shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}
