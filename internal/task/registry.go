package task

import (
	"sync"

	"github.com/aibianji/sticky-notes-app/internal/service"
)

// Deps 任务构造所需的依赖
type Deps struct {
	NoteService     service.NoteService
	ReminderService service.ReminderService
	Events          EventPusher

	// SweepSchedule 回收站清理的 cron 表达式（分 时 日 月 周）
	SweepSchedule string
	// DispatchInterval 提醒派发轮询间隔的原始配置串
	DispatchInterval string
}

// EventPusher 向已连接的前端广播任务事件
type EventPusher interface {
	Push(action string, data any)
}

// TaskFactory 任务工厂函数类型,用于创建任务实例
// 返回 (nil, nil) 表示该任务按配置被禁用
type TaskFactory func(deps *Deps) (Task, error)

// taskRegistry 全局任务注册表
var (
	taskRegistry  []TaskFactory
	registryMutex sync.RWMutex
)

// Register 注册任务工厂函数
// 通常在各个任务文件的 init() 函数中调用
func Register(factory TaskFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	taskRegistry = append(taskRegistry, factory)
}

// GetFactories 获取所有已注册的任务工厂
func GetFactories() []TaskFactory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	// 返回副本,避免外部修改
	factories := make([]TaskFactory, len(taskRegistry))
	copy(factories, taskRegistry)
	return factories
}
