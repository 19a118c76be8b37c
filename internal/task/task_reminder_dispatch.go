package task

import (
	"context"
	"time"

	"github.com/aibianji/sticky-notes-app/global"
	"github.com/aibianji/sticky-notes-app/internal/service"
	"github.com/aibianji/sticky-notes-app/pkg/logger"
	"github.com/aibianji/sticky-notes-app/pkg/util"
	"go.uber.org/zap"
)

// EventReminderFire 提醒到期事件动作名
const EventReminderFire = "reminder.fire"

// init 自动注册提醒派发任务
func init() {
	Register(NewReminderDispatchTask)
}

// ReminderDispatchTask 轮询已到期的提醒并推送到前端
// 推送后标记已触发，标记失败的提醒下一轮重试
type ReminderDispatchTask struct {
	reminderService service.ReminderService
	events          EventPusher
	interval        time.Duration
}

// NewReminderDispatchTask 创建提醒派发任务
// 间隔配置为空或 0 时任务被禁用
func NewReminderDispatchTask(deps *Deps) (Task, error) {
	if deps.DispatchInterval == "" {
		return nil, nil
	}
	interval, err := util.ParseDuration(deps.DispatchInterval)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, nil
	}

	return &ReminderDispatchTask{
		reminderService: deps.ReminderService,
		events:          deps.Events,
		interval:        interval,
	}, nil
}

// Name 返回任务名称
func (t *ReminderDispatchTask) Name() string {
	return "ReminderDispatchTask"
}

// Run 派发一轮到期提醒
func (t *ReminderDispatchTask) Run(ctx context.Context) error {
	due, err := t.reminderService.ListDue(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, reminder := range due {
		if t.events != nil {
			t.events.Push(EventReminderFire, reminder)
		}
		if err := t.reminderService.MarkTriggered(ctx, reminder.ID); err != nil {
			global.Logger.Warn("mark reminder triggered failed",
				zap.Int64(logger.FieldReminderID, reminder.ID),
				zap.Error(err),
			)
		}
	}

	if len(due) > 0 {
		global.Logger.Info(t.Name()+" dispatched",
			zap.Int(logger.FieldCount, len(due)))
	}
	return nil
}

// LoopInterval 返回轮询间隔
func (t *ReminderDispatchTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 启动时立即派发一次，处理停机期间到期的提醒
func (t *ReminderDispatchTask) IsStartupRun() bool {
	return true
}
