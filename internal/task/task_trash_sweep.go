package task

import (
	"context"
	"sync"
	"time"

	"github.com/aibianji/sticky-notes-app/global"
	"github.com/aibianji/sticky-notes-app/internal/service"
	"github.com/aibianji/sticky-notes-app/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// init 自动注册回收站清理任务
func init() {
	Register(NewTrashSweepTask)
}

// TrashSweepTask 按 cron 计划清理超过保留期的回收站便签
type TrashSweepTask struct {
	noteService service.NoteService
	schedule    cron.Schedule

	mu       sync.Mutex
	nextRun  time.Time
	firstRun bool
}

// NewTrashSweepTask 创建回收站清理任务
// 未配置清理计划时任务被禁用
func NewTrashSweepTask(deps *Deps) (Task, error) {
	if deps.SweepSchedule == "" {
		return nil, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(deps.SweepSchedule)
	if err != nil {
		return nil, err
	}

	return &TrashSweepTask{
		noteService: deps.NoteService,
		schedule:    schedule,
		nextRun:     schedule.Next(time.Now()),
		firstRun:    true,
	}, nil
}

// Name 返回任务名称
func (t *TrashSweepTask) Name() string {
	return "TrashSweepTask"
}

// Run 到达计划时间点时执行清理，其余轮询直接返回
// 启动后的首次调用无条件执行，补上停机期间错过的计划点
func (t *TrashSweepTask) Run(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	if !t.firstRun && now.Before(t.nextRun) {
		t.mu.Unlock()
		return nil
	}
	t.firstRun = false
	t.nextRun = t.schedule.Next(now)
	t.mu.Unlock()

	count, err := t.noteService.CleanupTrash(ctx, 0)
	if err != nil {
		global.Logger.Error(t.Name()+" failed", zap.Error(err))
		return err
	}
	if count > 0 {
		global.Logger.Info(t.Name()+" completed",
			zap.Int64(logger.FieldCount, count))
	}
	return nil
}

// LoopInterval 返回轮询间隔
func (t *TrashSweepTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun 启动时补跑一次，处理停机期间错过的计划点
func (t *TrashSweepTask) IsStartupRun() bool {
	return true
}
