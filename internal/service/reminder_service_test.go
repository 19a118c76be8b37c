package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"gorm.io/gorm"
)

type mockReminderRepo struct {
	domain.ReminderRepository

	reminders map[int64]*domain.Reminder
	nextID    int64
	triggered []int64
	upcoming  []*domain.ReminderWithNote
	due       []*domain.ReminderWithNote

	lastFrom, lastTo int64
	lastLimit        int
}

func (m *mockReminderRepo) GetByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	reminder, ok := m.reminders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *reminder
	return &copied, nil
}

func (m *mockReminderRepo) Create(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	m.nextID++
	reminder.ID = m.nextID
	m.reminders[reminder.ID] = reminder
	copied := *reminder
	return &copied, nil
}

func (m *mockReminderRepo) Update(ctx context.Context, reminder *domain.Reminder) error {
	if _, ok := m.reminders[reminder.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *reminder
	m.reminders[reminder.ID] = &copied
	return nil
}

func (m *mockReminderRepo) ListUpcoming(ctx context.Context, from, to int64, limit int) ([]*domain.ReminderWithNote, error) {
	m.lastFrom, m.lastTo, m.lastLimit = from, to, limit
	return m.upcoming, nil
}

func (m *mockReminderRepo) ListDue(ctx context.Context, now int64) ([]*domain.ReminderWithNote, error) {
	return m.due, nil
}

func (m *mockReminderRepo) MarkTriggered(ctx context.Context, id int64) error {
	reminder, ok := m.reminders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reminder.IsTriggered = true
	m.triggered = append(m.triggered, id)
	return nil
}

func newTestReminderService(reminderRepo *mockReminderRepo, noteRepo *mockNoteRepo) ReminderService {
	return NewReminderService(reminderRepo, noteRepo, &ServiceConfig{})
}

func TestReminderService_Create(t *testing.T) {
	reminderRepo := &mockReminderRepo{reminders: map[int64]*domain.Reminder{}}
	noteRepo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestReminderService(reminderRepo, noteRepo)
	ctx := context.Background()

	future := time.Now().Add(time.Hour).Unix()
	created, err := svc.Create(ctx, &dto.ReminderCreateRequest{NoteID: 1, RemindAt: future, Title: "standup"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 || created.NoteID != 1 || created.IsTriggered {
		t.Errorf("unexpected created reminder: %+v", created)
	}

	// 过去的时间点被拒绝
	past := time.Now().Add(-time.Hour).Unix()
	if _, err := svc.Create(ctx, &dto.ReminderCreateRequest{NoteID: 1, RemindAt: past}); !errors.Is(err, code.ErrorReminderPast) {
		t.Errorf("expected ErrorReminderPast, got %v", err)
	}

	// 父便签不存在被拒绝
	if _, err := svc.Create(ctx, &dto.ReminderCreateRequest{NoteID: 99, RemindAt: future}); !errors.Is(err, code.ErrorNoteNotFound) {
		t.Errorf("expected ErrorNoteNotFound, got %v", err)
	}
}

func TestReminderService_Update_ReactivatesTriggered(t *testing.T) {
	reminderRepo := &mockReminderRepo{reminders: map[int64]*domain.Reminder{
		1: {ID: 1, NoteID: 1, RemindAt: time.Now().Unix(), IsTriggered: true},
	}}
	noteRepo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestReminderService(reminderRepo, noteRepo)

	future := time.Now().Add(time.Hour).Unix()
	updated, err := svc.Update(context.Background(), &dto.ReminderUpdateRequest{ID: 1, RemindAt: future, Title: "again"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.IsTriggered {
		t.Error("moving remindAt to the future should clear the triggered flag")
	}

	if _, err := svc.Update(context.Background(), &dto.ReminderUpdateRequest{ID: 99, RemindAt: future}); !errors.Is(err, code.ErrorReminderNotFound) {
		t.Errorf("expected ErrorReminderNotFound, got %v", err)
	}
}

func TestReminderService_ListUpcoming_NoUpperBoundByDefault(t *testing.T) {
	reminderRepo := &mockReminderRepo{reminders: map[int64]*domain.Reminder{}}
	noteRepo := &mockNoteRepo{notes: map[int64]*domain.Note{}}
	svc := newTestReminderService(reminderRepo, noteRepo)

	before := time.Now().Unix()
	if _, err := svc.ListUpcoming(context.Background(), 10); err != nil {
		t.Fatalf("ListUpcoming failed: %v", err)
	}
	after := time.Now().Unix()

	if reminderRepo.lastFrom < before || reminderRepo.lastFrom > after {
		t.Errorf("lower bound should be now, got from=%d", reminderRepo.lastFrom)
	}
	// 远在 limit 之外的提醒也属于即将到期，默认不加时间上界
	if reminderRepo.lastTo != 0 {
		t.Errorf("no time bound without a configured window, got to=%d", reminderRepo.lastTo)
	}
	if reminderRepo.lastLimit != 10 {
		t.Errorf("limit should pass through, got %d", reminderRepo.lastLimit)
	}
}

func TestReminderService_ListUpcoming_ConfiguredWindow(t *testing.T) {
	reminderRepo := &mockReminderRepo{reminders: map[int64]*domain.Reminder{}}
	noteRepo := &mockNoteRepo{notes: map[int64]*domain.Note{}}
	svc := NewReminderService(reminderRepo, noteRepo, &ServiceConfig{
		Reminder: ReminderServiceConfig{UpcomingWindow: 7 * 24 * time.Hour},
	})

	if _, err := svc.ListUpcoming(context.Background(), 0); err != nil {
		t.Fatalf("ListUpcoming failed: %v", err)
	}

	wantTo := reminderRepo.lastFrom + int64((7 * 24 * time.Hour).Seconds())
	if reminderRepo.lastTo != wantTo {
		t.Errorf("configured window should cap the range, got to=%d want=%d", reminderRepo.lastTo, wantTo)
	}
}

func TestReminderService_MarkTriggered(t *testing.T) {
	reminderRepo := &mockReminderRepo{reminders: map[int64]*domain.Reminder{
		1: {ID: 1, NoteID: 1, RemindAt: time.Now().Unix()},
	}}
	noteRepo := &mockNoteRepo{notes: map[int64]*domain.Note{}}
	svc := newTestReminderService(reminderRepo, noteRepo)

	if err := svc.MarkTriggered(context.Background(), 1); err != nil {
		t.Fatalf("MarkTriggered failed: %v", err)
	}
	if !reminderRepo.reminders[1].IsTriggered {
		t.Error("reminder should be marked triggered")
	}

	if err := svc.MarkTriggered(context.Background(), 99); !errors.Is(err, code.ErrorReminderNotFound) {
		t.Errorf("expected ErrorReminderNotFound, got %v", err)
	}
}
