package dao

import (
	"context"
	"testing"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDao 创建基于内存 SQLite 的测试 Dao
func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngine(&DatabaseConfig{
		Type:        "sqlite",
		Path:        t.TempDir() + "/test.sqlite3",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	return New(db, context.Background())
}

func newTestNote(t *testing.T, repo domain.NoteRepository, content string) *domain.Note {
	t.Helper()
	note, err := repo.Create(context.Background(), &domain.Note{Content: content, Color: "#FFF7B1"})
	require.NoError(t, err)
	return note
}

func TestNoteRepository_CreateAndGet(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	note := newTestNote(t, repo, "hello sticky note")
	assert.NotZero(t, note.ID)
	assert.False(t, note.IsTrashed())
	assert.False(t, note.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello sticky note", got.Content)
	assert.Equal(t, "#FFF7B1", got.Color)
}

func TestNoteRepository_TrashRestorePurge(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	a := newTestNote(t, repo, "a")
	b := newTestNote(t, repo, "b")

	now := time.Now().Unix()

	// 回收 a，b 和一个不存在的 id：不存在的被静默跳过
	count, err := repo.Trash(ctx, now, []int64{a.ID, b.ID, 99999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 重复回收是幂等的
	count, err = repo.Trash(ctx, now, []int64{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTrashed())

	// 恢复 a
	count, err = repo.Restore(ctx, []int64{a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsTrashed())

	// 活跃便签也允许直接清除
	count, err = repo.Purge(ctx, []int64{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNoteRepository_PurgeRemovesReminders(t *testing.T) {
	d := newTestDao(t)
	noteRepo := NewNoteRepository(d)
	reminderRepo := NewReminderRepository(d)
	ctx := context.Background()

	note := newTestNote(t, noteRepo, "with reminder")
	_, err := reminderRepo.Create(ctx, &domain.Reminder{
		NoteID:   note.ID,
		RemindAt: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = noteRepo.Purge(ctx, []int64{note.ID})
	require.NoError(t, err)

	reminders, err := reminderRepo.ListByNoteID(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestNoteRepository_ListSortAndFilter(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	first := newTestNote(t, repo, "first")
	second := newTestNote(t, repo, "second")
	third := newTestNote(t, repo, "third")

	// third 最近被修改，间隔确保时间戳可区分
	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, repo.UpdateContent(ctx, "third updated", "", third.ID))

	notes, err := repo.List(ctx, &domain.NoteListQuery{SortKey: domain.NoteSortUpdatedDesc})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, third.ID, notes[0].ID)

	notes, err = repo.List(ctx, &domain.NoteListQuery{SortKey: domain.NoteSortCreatedAsc})
	require.NoError(t, err)
	assert.Equal(t, first.ID, notes[0].ID)
	assert.Equal(t, third.ID, notes[2].ID)

	// 回收站便签从活跃列表消失
	_, err = repo.Trash(ctx, time.Now().Unix(), []int64{second.ID})
	require.NoError(t, err)

	notes, err = repo.List(ctx, &domain.NoteListQuery{SortKey: domain.NoteSortCreatedAsc})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	trashed, err := repo.List(ctx, &domain.NoteListQuery{IsTrash: true})
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, second.ID, trashed[0].ID)

	count, err := repo.ListCount(ctx, &domain.NoteListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestNoteRepository_SearchCaseInsensitive(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	newTestNote(t, repo, "Buy MILK tomorrow")
	newTestNote(t, repo, "water the plants")
	trashed := newTestNote(t, repo, "milk in the trash")
	_, err := repo.Trash(ctx, time.Now().Unix(), []int64{trashed.ID})
	require.NoError(t, err)

	notes, err := repo.List(ctx, &domain.NoteListQuery{Keyword: "milk"})
	require.NoError(t, err)
	require.Len(t, notes, 1, "search is case-insensitive and never scans the trash")
	assert.Contains(t, notes[0].Content, "MILK")

	// 纯空白关键字等价于无搜索，回落为完整活跃列表
	notes, err = repo.List(ctx, &domain.NoteListQuery{Keyword: "   "})
	require.NoError(t, err)
	assert.Len(t, notes, 2, "whitespace-only keyword must not filter")

	count, err := repo.ListCount(ctx, &domain.NoteListQuery{Keyword: "\t \n"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestNoteRepository_ListTrashedBefore(t *testing.T) {
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	ctx := context.Background()

	old := newTestNote(t, repo, "old trash")
	fresh := newTestNote(t, repo, "fresh trash")

	now := time.Now()
	_, err := repo.Trash(ctx, now.Add(-31*24*time.Hour).Unix(), []int64{old.ID})
	require.NoError(t, err)
	_, err = repo.Trash(ctx, now.Add(-29*24*time.Hour).Unix(), []int64{fresh.ID})
	require.NoError(t, err)

	cutoff := now.Add(-30 * 24 * time.Hour).Unix()
	expired, err := repo.ListTrashedBefore(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, expired, 1, "29 天的还在保留期内，31 天的过期")
	assert.Equal(t, old.ID, expired[0].ID)
}

func TestCategoryRepository_ReorderAndDelete(t *testing.T) {
	d := newTestDao(t)
	catRepo := NewCategoryRepository(d)
	noteRepo := NewNoteRepository(d)
	ctx := context.Background()

	work, err := catRepo.Create(ctx, &domain.Category{Name: "work", SortOrder: 0})
	require.NoError(t, err)
	home, err := catRepo.Create(ctx, &domain.Category{Name: "home", SortOrder: 1})
	require.NoError(t, err)
	misc, err := catRepo.Create(ctx, &domain.Category{Name: "misc", SortOrder: 2})
	require.NoError(t, err)

	// 把 misc 移到最前
	require.NoError(t, catRepo.Reorder(ctx, []int64{misc.ID, work.ID, home.ID}))

	categories, err := catRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, misc.ID, categories[0].ID)
	// sort_order 连续且无重复
	seen := map[int]bool{}
	for i, c := range categories {
		assert.Equal(t, i, c.SortOrder)
		assert.False(t, seen[c.SortOrder])
		seen[c.SortOrder] = true
	}

	// 删除分类会把引用它的便签归类置空
	note := newTestNote(t, noteRepo, "in work category")
	require.NoError(t, noteRepo.UpdateCategory(ctx, &work.ID, note.ID))

	require.NoError(t, catRepo.Delete(ctx, work.ID))

	got, err := noteRepo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	_, err = catRepo.GetByID(ctx, work.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCategoryRepository_MaxSortOrder(t *testing.T) {
	d := newTestDao(t)
	repo := NewCategoryRepository(d)
	ctx := context.Background()

	max, err := repo.MaxSortOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, max)

	_, err = repo.Create(ctx, &domain.Category{Name: "a", SortOrder: 0})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Category{Name: "b", SortOrder: 5})
	require.NoError(t, err)

	max, err = repo.MaxSortOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, max)
}

func TestReminderRepository_DueAndSuppression(t *testing.T) {
	d := newTestDao(t)
	noteRepo := NewNoteRepository(d)
	reminderRepo := NewReminderRepository(d)
	ctx := context.Background()

	active := newTestNote(t, noteRepo, "active note")
	trashed := newTestNote(t, noteRepo, "trashed note")
	_, err := noteRepo.Trash(ctx, time.Now().Unix(), []int64{trashed.ID})
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute).Unix()
	r1, err := reminderRepo.Create(ctx, &domain.Reminder{NoteID: active.ID, RemindAt: past, Title: "due"})
	require.NoError(t, err)
	_, err = reminderRepo.Create(ctx, &domain.Reminder{NoteID: trashed.ID, RemindAt: past, Title: "suppressed"})
	require.NoError(t, err)

	due, err := reminderRepo.ListDue(ctx, time.Now().Unix())
	require.NoError(t, err)
	require.Len(t, due, 1, "回收站便签的提醒不触发")
	assert.Equal(t, r1.ID, due[0].ID)
	assert.Equal(t, "active note", due[0].NoteContent)

	// 标记触发后不再出现在到期列表
	require.NoError(t, reminderRepo.MarkTriggered(ctx, r1.ID))
	due, err = reminderRepo.ListDue(ctx, time.Now().Unix())
	require.NoError(t, err)
	assert.Empty(t, due)

	// 重复标记是幂等的
	require.NoError(t, reminderRepo.MarkTriggered(ctx, r1.ID))

	got, err := reminderRepo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.True(t, got.IsTriggered)
}

func TestReminderRepository_ListUpcoming(t *testing.T) {
	d := newTestDao(t)
	noteRepo := NewNoteRepository(d)
	reminderRepo := NewReminderRepository(d)
	ctx := context.Background()

	note := newTestNote(t, noteRepo, "note")
	now := time.Now()

	_, err := reminderRepo.Create(ctx, &domain.Reminder{NoteID: note.ID, RemindAt: now.Add(2 * time.Hour).Unix(), Title: "later"})
	require.NoError(t, err)
	_, err = reminderRepo.Create(ctx, &domain.Reminder{NoteID: note.ID, RemindAt: now.Add(time.Hour).Unix(), Title: "sooner"})
	require.NoError(t, err)
	_, err = reminderRepo.Create(ctx, &domain.Reminder{NoteID: note.ID, RemindAt: now.Add(10 * 24 * time.Hour).Unix(), Title: "far out"})
	require.NoError(t, err)

	// to <= 0 不设时间上界，远期提醒也包含在内
	upcoming, err := reminderRepo.ListUpcoming(ctx, now.Unix(), 0, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "sooner", upcoming[0].Title, "按 remind_at 升序")
	assert.Equal(t, "far out", upcoming[2].Title)

	// 可选时间上界生效
	upcoming, err = reminderRepo.ListUpcoming(ctx, now.Unix(), now.Add(7*24*time.Hour).Unix(), 0)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)

	// limit 生效
	upcoming, err = reminderRepo.ListUpcoming(ctx, now.Unix(), 0, 1)
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}
