package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aibianji/sticky-notes-app/pkg/code"
)

type mockOpener struct {
	mu      sync.Mutex
	opened  []string
	focused []string
	closed  []string

	focusErr error
}

func (m *mockOpener) Open(ctx context.Context, noteID int64, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, handle)
	return nil
}

func (m *mockOpener) Focus(ctx context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.focusErr != nil {
		return m.focusErr
	}
	m.focused = append(m.focused, handle)
	return nil
}

func (m *mockOpener) Close(ctx context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, handle)
	return nil
}

type mockFlusher struct {
	flushed []int64
}

func (m *mockFlusher) Flush(ctx context.Context, id int64) error {
	m.flushed = append(m.flushed, id)
	return nil
}

type mockPusher struct {
	mu     sync.Mutex
	events []string
}

func (m *mockPusher) Push(action string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, action)
}

func TestRegistry_OpenOrFocus(t *testing.T) {
	opener := &mockOpener{}
	pusher := &mockPusher{}
	registry := NewRegistry(opener, nil, pusher, nil)
	ctx := context.Background()

	entry, focused, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}
	if focused {
		t.Error("first open must not report focus")
	}
	if entry.Handle == "" {
		t.Error("entry should carry an opaque handle")
	}

	// 重复打开同一便签仅聚焦，句柄不变
	again, focused, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}
	if !focused {
		t.Error("second open must focus the existing window")
	}
	if again.Handle != entry.Handle {
		t.Error("focus must not allocate a new handle")
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 open window, got %d", registry.Count())
	}
	if len(opener.opened) != 1 || len(opener.focused) != 1 {
		t.Errorf("expected 1 open + 1 focus, got %d/%d", len(opener.opened), len(opener.focused))
	}

	wantEvents := []string{EventWindowOpen, EventWindowFocus}
	for i, want := range wantEvents {
		if pusher.events[i] != want {
			t.Errorf("event %d: expected %s, got %s", i, want, pusher.events[i])
		}
	}
}

func TestRegistry_StaleHandleReopens(t *testing.T) {
	opener := &mockOpener{}
	registry := NewRegistry(opener, nil, nil, nil)
	ctx := context.Background()

	first, _, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}

	// 展示层窗口已消失，Focus 报错后注册表应重新打开
	opener.focusErr = errors.New("window gone")
	second, focused, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}
	if focused {
		t.Error("reopen after stale handle must not report focus")
	}
	if second.Handle == first.Handle {
		t.Error("reopen must allocate a fresh handle")
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 open window, got %d", registry.Count())
	}
}

func TestRegistry_CloseFlushesPendingWrite(t *testing.T) {
	opener := &mockOpener{}
	flusher := &mockFlusher{}
	registry := NewRegistry(opener, flusher, nil, nil)
	ctx := context.Background()

	entry, _, err := registry.OpenOrFocus(ctx, 7)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}

	if err := registry.Close(ctx, 7); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(flusher.flushed) != 1 || flusher.flushed[0] != 7 {
		t.Errorf("close must flush pending content first, got %v", flusher.flushed)
	}
	if len(opener.closed) != 1 || opener.closed[0] != entry.Handle {
		t.Errorf("surface must be destroyed, got %v", opener.closed)
	}
	if registry.IsOpen(7) {
		t.Error("entry must be removed after close")
	}

	if err := registry.Close(ctx, 7); !errors.Is(err, code.ErrorWindowNotFound) {
		t.Errorf("closing a closed window: expected ErrorWindowNotFound, got %v", err)
	}
}

func TestRegistry_HandleClosedIdempotent(t *testing.T) {
	pusher := &mockPusher{}
	registry := NewRegistry(nil, nil, pusher, nil)

	entry, _, err := registry.OpenOrFocus(context.Background(), 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}

	registry.HandleClosed(1, entry.Handle)
	registry.HandleClosed(1, entry.Handle)
	registry.HandleClosed(99, "no-such-window")

	if registry.Count() != 0 {
		t.Errorf("expected empty registry, got %d", registry.Count())
	}

	closeEvents := 0
	for _, event := range pusher.events {
		if event == EventWindowClose {
			closeEvents++
		}
	}
	if closeEvents != 1 {
		t.Errorf("expected exactly 1 close event, got %d", closeEvents)
	}
}

func TestRegistry_HandleClosedStaleHandleIgnored(t *testing.T) {
	registry := NewRegistry(nil, nil, nil, nil)
	ctx := context.Background()

	first, _, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}
	registry.HandleClosed(1, first.Handle)

	second, _, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}

	// 旧窗口的迟到关闭信号不得移除新条目
	registry.HandleClosed(1, first.Handle)

	if !registry.IsOpen(1) {
		t.Fatal("stale close signal must not remove the current entry")
	}

	// 同一便签仍然至多一个窗口：再次打开只会聚焦现有条目
	again, focused, err := registry.OpenOrFocus(ctx, 1)
	if err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}
	if !focused || again.Handle != second.Handle {
		t.Errorf("expected focus on the surviving window, got focused=%v handle=%s", focused, again.Handle)
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 open window, got %d", registry.Count())
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	opener := &mockOpener{}
	registry := NewRegistry(opener, nil, nil, nil)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		if _, _, err := registry.OpenOrFocus(ctx, id); err != nil {
			t.Fatalf("OpenOrFocus failed: %v", err)
		}
	}

	registry.CloseAll(ctx)

	if registry.Count() != 0 {
		t.Errorf("expected all windows closed, got %d", registry.Count())
	}
	if len(opener.closed) != 3 {
		t.Errorf("expected 3 surfaces destroyed, got %d", len(opener.closed))
	}
}

func TestRegistry_UpdateGeometry(t *testing.T) {
	registry := NewRegistry(nil, nil, nil, nil)
	ctx := context.Background()

	if _, _, err := registry.OpenOrFocus(ctx, 1); err != nil {
		t.Fatalf("OpenOrFocus failed: %v", err)
	}

	geometry := Geometry{X: 10, Y: 20, Width: 300, Height: 400}
	if err := registry.UpdateGeometry(1, geometry); err != nil {
		t.Fatalf("UpdateGeometry failed: %v", err)
	}

	entries := registry.List()
	if len(entries) != 1 || entries[0].Geometry != geometry {
		t.Errorf("geometry not recorded: %+v", entries)
	}

	if err := registry.UpdateGeometry(99, geometry); !errors.Is(err, code.ErrorWindowNotFound) {
		t.Errorf("expected ErrorWindowNotFound, got %v", err)
	}
}
