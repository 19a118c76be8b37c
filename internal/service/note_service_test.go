package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aibianji/sticky-notes-app/global"
	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/debounce"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	global.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type contentUpdate struct {
	id             int64
	content        string
	screenshotPath string
}

type mockNoteRepo struct {
	domain.NoteRepository

	mu      sync.Mutex
	notes   map[int64]*domain.Note
	updates []contentUpdate

	trashedIDs  []int64
	restoredIDs []int64
	purgedIDs   []int64
	expired     []*domain.Note

	trashErr error
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *note
	return &copied, nil
}

func (m *mockNoteRepo) UpdateContent(ctx context.Context, content, screenshotPath string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.updates = append(m.updates, contentUpdate{id: id, content: content, screenshotPath: screenshotPath})
	return nil
}

func (m *mockNoteRepo) UpdatePinned(ctx context.Context, pinned bool, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	note.IsPinned = pinned
	return nil
}

func (m *mockNoteRepo) UpdateCategory(ctx context.Context, categoryID *int64, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	note.CategoryID = categoryID
	return nil
}

func (m *mockNoteRepo) Trash(ctx context.Context, deletedAt int64, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trashErr != nil {
		return 0, m.trashErr
	}
	var count int64
	for _, id := range ids {
		note, ok := m.notes[id]
		if !ok || note.DeletedAt != nil {
			continue
		}
		at := deletedAt
		note.DeletedAt = &at
		m.trashedIDs = append(m.trashedIDs, id)
		count++
	}
	return count, nil
}

func (m *mockNoteRepo) Purge(ctx context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, id := range ids {
		if _, ok := m.notes[id]; !ok {
			continue
		}
		delete(m.notes, id)
		m.purgedIDs = append(m.purgedIDs, id)
		count++
	}
	return count, nil
}

func (m *mockNoteRepo) ListTrashedBefore(ctx context.Context, cutoff int64) ([]*domain.Note, error) {
	return m.expired, nil
}

func (m *mockNoteRepo) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.updates)
}

func (m *mockNoteRepo) lastUpdate() contentUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates[len(m.updates)-1]
}

type mockScreenshotStore struct {
	mu      sync.Mutex
	deleted []string
}

func (m *mockScreenshotStore) Delete(fileKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, fileKey)
	return nil
}

func newTestNoteService(repo *mockNoteRepo, store ScreenshotStore) NoteService {
	return newTestNoteServiceWithCategories(repo, &mockCategoryRepo{}, store)
}

func newTestNoteServiceWithCategories(repo *mockNoteRepo, categoryRepo *mockCategoryRepo, store ScreenshotStore) NoteService {
	coordinator := debounce.New(&debounce.Config{
		QuietPeriod:  20 * time.Millisecond,
		WriteTimeout: time.Second,
	}, zap.NewNop())
	config := &ServiceConfig{
		Note: NoteServiceConfig{
			DefaultColor:    "#FFF7B1",
			DefaultPageSize: 20,
			MaxPageSize:     200,
		},
		Trash: TrashServiceConfig{RetentionTime: 30 * 24 * time.Hour},
	}
	return NewNoteService(repo, categoryRepo, coordinator, store, config)
}

func activeNote(id int64) *domain.Note {
	return &domain.Note{
		ID:        id,
		Content:   "hello",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestNoteService_Edit_CoalescesIntoSingleWrite(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestNoteService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := svc.Edit(ctx, &dto.NoteEditRequest{ID: 1, Content: string(rune('a' + i))})
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
	}

	time.Sleep(150 * time.Millisecond)

	if got := repo.updateCount(); got != 1 {
		t.Fatalf("expected 1 coalesced write, got %d", got)
	}
	if last := repo.lastUpdate(); last.content != "e" {
		t.Errorf("expected last submitted content to win, got %q", last.content)
	}
}

func TestNoteService_Edit_TrashedNoteRejected(t *testing.T) {
	deletedAt := time.Now().Unix()
	note := activeNote(1)
	note.DeletedAt = &deletedAt
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: note}}
	svc := newTestNoteService(repo, nil)

	err := svc.Edit(context.Background(), &dto.NoteEditRequest{ID: 1, Content: "x"})
	if !errors.Is(err, code.ErrorNoteAlreadyTrashed) {
		t.Errorf("expected ErrorNoteAlreadyTrashed, got %v", err)
	}

	err = svc.Edit(context.Background(), &dto.NoteEditRequest{ID: 99, Content: "x"})
	if !errors.Is(err, code.ErrorNoteNotFound) {
		t.Errorf("expected ErrorNoteNotFound, got %v", err)
	}
}

func TestNoteService_SaveNow_DropsPendingSnapshot(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestNoteService(repo, nil)
	ctx := context.Background()

	if err := svc.Edit(ctx, &dto.NoteEditRequest{ID: 1, Content: "stale"}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if err := svc.SaveNow(ctx, &dto.NoteEditRequest{ID: 1, Content: "final"}); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}

	// 等待静默期，确认被丢弃的快照不会再落盘
	time.Sleep(150 * time.Millisecond)

	if got := repo.updateCount(); got != 1 {
		t.Fatalf("expected exactly 1 write, got %d", got)
	}
	if last := repo.lastUpdate(); last.content != "final" {
		t.Errorf("expected synchronous content to persist, got %q", last.content)
	}
}

func TestNoteService_Trash_CancelsPendingWrite(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestNoteService(repo, nil)
	ctx := context.Background()

	if err := svc.Edit(ctx, &dto.NoteEditRequest{ID: 1, Content: "doomed"}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	count, err := svc.Trash(ctx, []int64{1})
	if err != nil {
		t.Fatalf("Trash failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 note trashed, got %d", count)
	}

	time.Sleep(150 * time.Millisecond)

	if got := repo.updateCount(); got != 0 {
		t.Errorf("pending write should be dropped on trash, got %d writes", got)
	}
}

func TestNoteService_Trash_FailureKeepsPendingWrite(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestNoteService(repo, nil)
	ctx := context.Background()

	if err := svc.Edit(ctx, &dto.NoteEditRequest{ID: 1, Content: "survives"}); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	repo.trashErr = errors.New("database is locked")
	if _, err := svc.Trash(ctx, []int64{1}); err == nil {
		t.Fatal("Trash should propagate the repository error")
	}
	repo.trashErr = nil

	// 转移失败时便签仍活跃，未保存的编辑照常落盘
	time.Sleep(150 * time.Millisecond)

	if got := repo.updateCount(); got != 1 {
		t.Fatalf("pending write must survive a failed trash, got %d writes", got)
	}
	if last := repo.lastUpdate(); last.content != "survives" {
		t.Errorf("expected pending content to persist, got %q", last.content)
	}
}

func TestNoteService_SetCategory_UnknownCategoryRejected(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	categoryRepo := newCategoryRepoWith("work")
	svc := newTestNoteServiceWithCategories(repo, categoryRepo, nil)
	ctx := context.Background()

	missing := int64(99)
	if _, err := svc.SetCategory(ctx, &dto.NoteCategoryRequest{ID: 1, CategoryID: &missing}); !errors.Is(err, code.ErrorCategoryNotFound) {
		t.Errorf("expected ErrorCategoryNotFound, got %v", err)
	}
	note, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if note.CategoryID != nil {
		t.Errorf("dangling categoryId must not be persisted, got %d", *note.CategoryID)
	}

	valid := int64(1)
	noteDTO, err := svc.SetCategory(ctx, &dto.NoteCategoryRequest{ID: 1, CategoryID: &valid})
	if err != nil {
		t.Fatalf("SetCategory failed: %v", err)
	}
	if noteDTO.CategoryID == nil || *noteDTO.CategoryID != 1 {
		t.Errorf("expected categoryId 1, got %v", noteDTO.CategoryID)
	}

	// nil 移出分类
	noteDTO, err = svc.SetCategory(ctx, &dto.NoteCategoryRequest{ID: 1})
	if err != nil {
		t.Fatalf("SetCategory failed: %v", err)
	}
	if noteDTO.CategoryID != nil {
		t.Errorf("nil categoryId should clear the assignment, got %v", *noteDTO.CategoryID)
	}

	// 创建时同样拒绝不存在的分类
	if _, err := svc.Create(ctx, &dto.NoteCreateRequest{Content: "x", CategoryID: &missing}); !errors.Is(err, code.ErrorCategoryNotFound) {
		t.Errorf("expected ErrorCategoryNotFound on create, got %v", err)
	}
}

func TestNoteService_TogglePin(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: activeNote(1)}}
	svc := newTestNoteService(repo, nil)
	ctx := context.Background()

	noteDTO, err := svc.TogglePin(ctx, 1)
	if err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if !noteDTO.IsPinned {
		t.Error("expected pin to flip to true")
	}

	noteDTO, err = svc.TogglePin(ctx, 1)
	if err != nil {
		t.Fatalf("TogglePin failed: %v", err)
	}
	if noteDTO.IsPinned {
		t.Error("expected pin to flip back to false")
	}

	if _, err := svc.TogglePin(ctx, 99); !errors.Is(err, code.ErrorNoteNotFound) {
		t.Errorf("expected ErrorNoteNotFound, got %v", err)
	}
}

func TestNoteService_Purge_RemovesScreenshots(t *testing.T) {
	note := activeNote(1)
	note.ScreenshotPath = "screenshots/2026/a.png"
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{1: note, 2: activeNote(2)}}
	store := &mockScreenshotStore{}
	svc := newTestNoteService(repo, store)

	count, err := svc.Purge(context.Background(), []int64{1, 2, 99})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 notes purged, got %d", count)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "screenshots/2026/a.png" {
		t.Errorf("expected screenshot asset removed, got %v", store.deleted)
	}
}

func TestNoteService_CleanupTrash(t *testing.T) {
	old := activeNote(1)
	old.ScreenshotPath = "screenshots/old.png"
	deletedAt := time.Now().Add(-31 * 24 * time.Hour).Unix()
	old.DeletedAt = &deletedAt

	repo := &mockNoteRepo{
		notes:   map[int64]*domain.Note{1: old},
		expired: []*domain.Note{old},
	}
	store := &mockScreenshotStore{}
	svc := newTestNoteService(repo, store)

	count, err := svc.CleanupTrash(context.Background(), 0)
	if err != nil {
		t.Fatalf("CleanupTrash failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 note swept, got %d", count)
	}
	if len(repo.purgedIDs) != 1 || repo.purgedIDs[0] != 1 {
		t.Errorf("expected note 1 purged, got %v", repo.purgedIDs)
	}
	if len(store.deleted) != 1 {
		t.Errorf("expected screenshot removed, got %v", store.deleted)
	}
}

func TestNoteService_CleanupTrash_DisabledRetention(t *testing.T) {
	repo := &mockNoteRepo{notes: map[int64]*domain.Note{}}
	coordinator := debounce.New(nil, zap.NewNop())
	svc := NewNoteService(repo, &mockCategoryRepo{}, coordinator, nil, &ServiceConfig{})

	count, err := svc.CleanupTrash(context.Background(), 0)
	if err != nil {
		t.Fatalf("CleanupTrash failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no-op sweep with zero retention, got %d", count)
	}
}
