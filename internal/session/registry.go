// Package session 维护便签窗口的进程内会话注册表
// 注册表只存在于进程生命周期内，从不持久化
package session

import (
	"context"
	"sync"
	"time"

	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Geometry 窗口最后一次上报的位置与尺寸
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Entry 单个便签窗口的会话条目
type Entry struct {
	NoteID   int64     `json:"noteId"`
	Handle   string    `json:"handle"`
	Geometry Geometry  `json:"geometry"`
	OpenedAt time.Time `json:"openedAt"`
}

// SurfaceOpener 抽象展示层窗口的创建 / 聚焦 / 关闭
// 由展示层实现，注册表只持有不透明句柄
type SurfaceOpener interface {
	// Open 为便签创建窗口，返回不透明句柄
	Open(ctx context.Context, noteID int64, handle string) error

	// Focus 将已存在的窗口提到前台
	Focus(ctx context.Context, handle string) error

	// Close 销毁窗口
	Close(ctx context.Context, handle string) error
}

// Flusher 在窗口关闭前落盘便签的待写入内容
type Flusher interface {
	Flush(ctx context.Context, id int64) error
}

// EventPusher 向已连接的前端广播窗口事件
type EventPusher interface {
	Push(action string, data any)
}

// 窗口事件动作名
const (
	EventWindowOpen  = "window.open"
	EventWindowFocus = "window.focus"
	EventWindowClose = "window.close"
)

// Registry 便签窗口会话注册表
// 同一便签同时至多一个窗口，重复打开转为聚焦
type Registry struct {
	mu      sync.Mutex
	entries map[int64]*Entry

	opener  SurfaceOpener
	flusher Flusher
	events  EventPusher
	logger  *zap.Logger
}

// NewRegistry 创建空注册表
// opener 为 nil 时窗口操作退化为纯登记（用于无展示层的场景与测试）
func NewRegistry(opener SurfaceOpener, flusher Flusher, events EventPusher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries: make(map[int64]*Entry),
		opener:  opener,
		flusher: flusher,
		events:  events,
		logger:  logger,
	}
}

// OpenOrFocus 打开便签窗口；已打开时仅聚焦
// 返回会话条目以及本次是否聚焦了已存在的窗口
func (r *Registry) OpenOrFocus(ctx context.Context, noteID int64) (*Entry, bool, error) {
	r.mu.Lock()
	existing, ok := r.entries[noteID]
	r.mu.Unlock()

	if ok {
		if r.opener != nil {
			if err := r.opener.Focus(ctx, existing.Handle); err != nil {
				// 句柄失效（窗口已被展示层销毁），移除后重新打开
				r.logger.Warn("stale window handle, reopening",
					zap.Int64(logger.FieldNoteID, noteID),
					zap.String(logger.FieldWindowID, existing.Handle),
					zap.Error(err),
				)
				r.HandleClosed(noteID, existing.Handle)
				return r.open(ctx, noteID)
			}
		}
		r.push(EventWindowFocus, existing)
		return existing, true, nil
	}

	return r.open(ctx, noteID)
}

// open 创建新窗口并登记
func (r *Registry) open(ctx context.Context, noteID int64) (*Entry, bool, error) {
	entry := &Entry{
		NoteID:   noteID,
		Handle:   uuid.NewString(),
		OpenedAt: time.Now(),
	}

	if r.opener != nil {
		if err := r.opener.Open(ctx, noteID, entry.Handle); err != nil {
			return nil, false, code.ErrorWindowOpenFail.WithDetails(err.Error())
		}
	}

	r.mu.Lock()
	// 并发打开同一便签时后到者让位
	if existing, ok := r.entries[noteID]; ok {
		r.mu.Unlock()
		if r.opener != nil {
			_ = r.opener.Close(ctx, entry.Handle)
		}
		return existing, true, nil
	}
	r.entries[noteID] = entry
	r.mu.Unlock()

	r.push(EventWindowOpen, entry)
	return entry, false, nil
}

// Close 关闭便签窗口
// 关闭前落盘该便签的待写入内容
func (r *Registry) Close(ctx context.Context, noteID int64) error {
	r.mu.Lock()
	entry, ok := r.entries[noteID]
	r.mu.Unlock()
	if !ok {
		return code.ErrorWindowNotFound
	}

	if r.flusher != nil {
		if err := r.flusher.Flush(ctx, noteID); err != nil {
			r.logger.Warn("flush before window close failed",
				zap.Int64(logger.FieldNoteID, noteID),
				zap.Error(err),
			)
		}
	}
	if r.opener != nil {
		if err := r.opener.Close(ctx, entry.Handle); err != nil {
			r.logger.Warn("close window surface failed",
				zap.Int64(logger.FieldNoteID, noteID),
				zap.String(logger.FieldWindowID, entry.Handle),
				zap.Error(err),
			)
		}
	}

	r.HandleClosed(noteID, entry.Handle)
	return nil
}

// CloseAll 关闭全部窗口，进程退出前调用
func (r *Registry) CloseAll(ctx context.Context) {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil {
			r.logger.Warn("close window failed during shutdown",
				zap.Int64(logger.FieldNoteID, id),
				zap.Error(err),
			)
		}
	}
}

// HandleClosed 移除会话条目
// 展示层窗口因任何原因消失（用户关闭、崩溃）后携带自身句柄调用，重复调用无害
// 句柄与当前登记不符的信号来自已被替换的旧窗口，忽略以免移除新条目
func (r *Registry) HandleClosed(noteID int64, handle string) {
	r.mu.Lock()
	entry, ok := r.entries[noteID]
	if ok && entry.Handle != handle {
		ok = false
	}
	if ok {
		delete(r.entries, noteID)
	}
	r.mu.Unlock()

	if ok {
		r.push(EventWindowClose, entry)
	}
}

// UpdateGeometry 记录窗口最后一次上报的位置与尺寸
func (r *Registry) UpdateGeometry(noteID int64, geometry Geometry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[noteID]
	if !ok {
		return code.ErrorWindowNotFound
	}
	entry.Geometry = geometry
	return nil
}

// IsOpen 判断便签当前是否有打开的窗口
func (r *Registry) IsOpen(noteID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[noteID]
	return ok
}

// Count 当前打开的窗口数
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// List 返回全部会话条目的副本
func (r *Registry) List() []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		copied := *entry
		entries = append(entries, &copied)
	}
	return entries
}

// push 广播窗口事件，events 未接入时静默跳过
func (r *Registry) push(action string, entry *Entry) {
	if r.events == nil {
		return
	}
	r.events.Push(action, entry)
}
