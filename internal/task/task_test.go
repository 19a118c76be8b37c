package task

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aibianji/sticky-notes-app/global"
	"github.com/aibianji/sticky-notes-app/internal/service"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	global.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type mockNoteService struct {
	service.NoteService

	mu       sync.Mutex
	cleanups []time.Duration
}

func (m *mockNoteService) CleanupTrash(ctx context.Context, retention time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups = append(m.cleanups, retention)
	return 2, nil
}

type mockReminderService struct {
	service.ReminderService

	due       []*service.ReminderWithNoteDTO
	triggered []int64
}

func (m *mockReminderService) ListDue(ctx context.Context, now time.Time) ([]*service.ReminderWithNoteDTO, error) {
	return m.due, nil
}

func (m *mockReminderService) MarkTriggered(ctx context.Context, id int64) error {
	m.triggered = append(m.triggered, id)
	return nil
}

type mockEventPusher struct {
	mu      sync.Mutex
	actions []string
}

func (m *mockEventPusher) Push(action string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, action)
}

func TestNewTrashSweepTask_Disabled(t *testing.T) {
	task, err := NewTrashSweepTask(&Deps{SweepSchedule: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Error("empty schedule should disable the task")
	}

	if _, err := NewTrashSweepTask(&Deps{SweepSchedule: "not a cron expr"}); err == nil {
		t.Error("invalid cron expression should fail")
	}
}

func TestTrashSweepTask_RunsOnScheduleOnly(t *testing.T) {
	noteSvc := &mockNoteService{}
	task, err := NewTrashSweepTask(&Deps{
		NoteService:   noteSvc,
		SweepSchedule: "0 * * * *",
	})
	if err != nil {
		t.Fatalf("NewTrashSweepTask failed: %v", err)
	}

	// 首次调用无条件补跑
	if err := task.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(noteSvc.cleanups) != 1 {
		t.Fatalf("startup run should sweep once, got %d", len(noteSvc.cleanups))
	}
	if noteSvc.cleanups[0] != 0 {
		t.Errorf("sweep should use the configured retention, got %v", noteSvc.cleanups[0])
	}

	// 计划点未到，后续轮询不再清理
	if err := task.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(noteSvc.cleanups) != 1 {
		t.Errorf("sweep must wait for the next schedule point, got %d runs", len(noteSvc.cleanups))
	}
}

func TestReminderDispatchTask_Run(t *testing.T) {
	reminderSvc := &mockReminderService{
		due: []*service.ReminderWithNoteDTO{
			{ReminderDTO: service.ReminderDTO{ID: 1, NoteID: 10}},
			{ReminderDTO: service.ReminderDTO{ID: 2, NoteID: 11}},
		},
	}
	pusher := &mockEventPusher{}

	task, err := NewReminderDispatchTask(&Deps{
		ReminderService:  reminderSvc,
		Events:           pusher,
		DispatchInterval: "30s",
	})
	if err != nil {
		t.Fatalf("NewReminderDispatchTask failed: %v", err)
	}
	if task.LoopInterval() != 30*time.Second {
		t.Errorf("expected 30s interval, got %v", task.LoopInterval())
	}

	if err := task.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(pusher.actions) != 2 {
		t.Errorf("expected 2 fire events, got %d", len(pusher.actions))
	}
	for _, action := range pusher.actions {
		if action != EventReminderFire {
			t.Errorf("unexpected event action %q", action)
		}
	}
	if len(reminderSvc.triggered) != 2 {
		t.Errorf("expected both reminders marked triggered, got %v", reminderSvc.triggered)
	}
}

func TestNewReminderDispatchTask_Disabled(t *testing.T) {
	task, err := NewReminderDispatchTask(&Deps{DispatchInterval: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Error("empty interval should disable the task")
	}

	task, err = NewReminderDispatchTask(&Deps{DispatchInterval: "0s"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Error("zero interval should disable the task")
	}
}
