package task

import (
	"github.com/aibianji/sticky-notes-app/pkg/safe_close"
	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
	}
}

// RegisterTasks 用依赖实例化所有已注册的任务
func (m *Manager) RegisterTasks(deps *Deps) error {
	for _, factory := range GetFactories() {
		t, err := factory(deps)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			// 按配置禁用
			continue
		}
		m.scheduler.AddTask(t)
		m.logger.Info("task registered", zap.String("name", t.Name()))
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
