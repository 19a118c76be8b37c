// Package debounce provides a per-key debounced write coordinator
// Package debounce 提供按键防抖的写入协调器
// Used to coalesce rapid edits to the same note into a single SQLite write per quiet period
// 用于将同一便签的快速编辑合并为每个静默期一次的 SQLite 写入
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrCoordinatorClosed returned when the coordinator is closed
	// ErrCoordinatorClosed 当协调器已关闭时返回
	ErrCoordinatorClosed = errors.New("debounce coordinator is closed")
)

// Config coordinator configuration
// Config 协调器配置
type Config struct {
	// QuietPeriod interval of no further submits after which the pending write fires, default 500ms
	// QuietPeriod 无新提交后触发待写入的静默间隔，默认 500ms
	QuietPeriod time.Duration
	// WriteTimeout write operation timeout, default 30 seconds
	// WriteTimeout 写操作超时时间，默认 30 秒
	WriteTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QuietPeriod:  500 * time.Millisecond,
		WriteTimeout: 30 * time.Second,
	}
}

// entry holds the pending state for one key
// entry 保存单个键的待写入状态
type entry struct {
	mu sync.Mutex

	// timer for the pending write, nil when idle
	// 待写入的定时器，空闲时为 nil
	timer *time.Timer
	// fn is the latest submitted write, nil when nothing is pending
	// fn 为最近一次提交的写入，没有待写入时为 nil
	fn func() error
	// inFlight is true while a write for this key is executing
	// inFlight 在该键的写入执行期间为 true
	inFlight bool
	// dirty is true after a failed write until the next success
	// dirty 在写入失败后为 true，直到下次成功
	dirty bool
}

// Coordinator coalesces writes per key: each Submit resets the key's quiet
// timer, only the last submitted fn within a quiet window is executed, and at
// most one write per key is ever in flight.
// Coordinator 按键合并写入：每次 Submit 重置该键的静默定时器，
// 静默窗口内仅执行最后一次提交的 fn，且每个键至多一个写入在执行。
type Coordinator struct {
	config Config
	logger *zap.Logger

	mu      sync.Mutex
	entries map[int64]*entry
	closed  bool

	// wg tracks outstanding write executions for FlushAll/Shutdown
	// wg 跟踪进行中的写入，供 FlushAll/Shutdown 等待
	wg sync.WaitGroup
}

// New creates a coordinator
// New 创建协调器
// cfg: configuration, if nil use default configuration
// cfg: 配置，如果为 nil 则使用默认配置
// logger: zap logger, if nil use nop logger
// logger: zap 日志器，如果为 nil 则使用 nop logger
func New(cfg *Config, logger *zap.Logger) *Coordinator {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.QuietPeriod <= 0 {
		cfg.QuietPeriod = 500 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Coordinator{
		config:  *cfg,
		logger:  logger,
		entries: make(map[int64]*entry),
	}

	c.logger.Info("debounce coordinator started",
		zap.Duration("quietPeriod", cfg.QuietPeriod),
		zap.Duration("writeTimeout", cfg.WriteTimeout))

	return c
}

// Submit schedules fn for key after the quiet period. A newer Submit for the
// same key supersedes the pending fn and restarts the timer; only the last
// submission within a quiet window is executed.
// Submit 在静默期后为 key 调度 fn。同键的新提交会取代待执行的 fn
// 并重启定时器；静默窗口内仅最后一次提交会被执行。
func (c *Coordinator) Submit(key int64, fn func() error) error {
	return c.SubmitAfter(key, c.config.QuietPeriod, fn)
}

// SubmitAfter schedules fn with an explicit quiet period, for callers whose
// reload cadence differs from content saves
// SubmitAfter 使用显式静默期调度 fn，供刷新节奏不同于内容保存的调用方使用
func (c *Coordinator) SubmitAfter(key int64, quiet time.Duration, fn func() error) error {
	e, err := c.getOrCreateEntry(key)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Supersede any pending write
	// 取代所有待执行的写入
	if e.timer != nil {
		e.timer.Stop()
	}
	e.fn = fn
	e.timer = time.AfterFunc(quiet, func() {
		c.fire(key, e)
	})
	return nil
}

// Cancel drops the pending write for key without executing it. An in-flight
// write is not interrupted.
// Cancel 丢弃 key 的待执行写入而不执行。进行中的写入不会被中断。
func (c *Coordinator) Cancel(key int64) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.fn = nil
	c.logger.Debug("debounce cancelled", zap.Int64("key", key))
}

// Flush executes the pending write for key immediately, if any, and waits for
// it to settle. Used on editor teardown so a close inside the quiet period
// does not drop the last edit.
// Flush 立即执行 key 的待写入（如有）并等待完成。
// 用于编辑器关闭时，避免静默期内关闭丢失最后一次编辑。
func (c *Coordinator) Flush(key int64) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	fn := e.fn
	e.fn = nil
	if fn == nil {
		e.mu.Unlock()
		return nil
	}
	// Wait out an in-flight write before starting our own
	// 等待进行中的写入结束后再开始本次写入
	for e.inFlight {
		e.mu.Unlock()
		time.Sleep(time.Millisecond)
		e.mu.Lock()
	}
	e.inFlight = true
	e.mu.Unlock()

	err := c.execute(key, fn)

	e.mu.Lock()
	e.inFlight = false
	e.dirty = err != nil
	e.mu.Unlock()
	return err
}

// FlushAll flushes every pending write and waits for all in-flight writes to
// settle. Called on shutdown.
// FlushAll 冲刷所有待写入并等待所有进行中的写入结束。在关闭时调用。
func (c *Coordinator) FlushAll() error {
	c.mu.Lock()
	keys := make([]int64, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	c.mu.Unlock()

	var firstErr error
	for _, key := range keys {
		if err := c.Flush(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.wg.Wait()
	return firstErr
}

// Dirty reports whether the last write for key failed and has not been
// superseded by a successful one. The UI uses this to keep the note marked
// unsaved and prompt a retry.
// Dirty 报告 key 的最近一次写入是否失败且尚未被成功写入覆盖。
// UI 据此保持便签的未保存标记并提示重试。
func (c *Coordinator) Dirty(key int64) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Pending reports whether a write for key is scheduled and not yet executed
// Pending 报告 key 是否有已调度但尚未执行的写入
func (c *Coordinator) Pending(key int64) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fn != nil
}

// Shutdown flushes all pending writes and rejects further submissions
// Shutdown 冲刷所有待写入并拒绝后续提交
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.logger.Info("debounce coordinator shutting down")

	done := make(chan error, 1)
	go func() {
		done <- c.FlushAll()
	}()

	select {
	case err := <-done:
		c.logger.Info("debounce coordinator shutdown completed")
		return err
	case <-ctx.Done():
		c.logger.Warn("debounce coordinator shutdown timeout")
		return ctx.Err()
	}
}

func (c *Coordinator) getOrCreateEntry(key int64) (*entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrCoordinatorClosed
	}
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e, nil
}

// fire runs when the quiet timer expires: take the latest fn and execute it,
// unless a write for this key is still in flight, in which case re-arm the
// timer so the writes never overlap.
// fire 在静默定时器到期时运行：取出最新的 fn 并执行；
// 若该键仍有写入在执行，则重置定时器，保证写入不重叠。
func (c *Coordinator) fire(key int64, e *entry) {
	e.mu.Lock()
	if e.fn == nil {
		// Cancelled or already flushed
		// 已取消或已被冲刷
		e.timer = nil
		e.mu.Unlock()
		return
	}
	if e.inFlight {
		// Wait for the in-flight write to settle before firing again
		// 等待进行中的写入结束后再次触发
		e.timer = time.AfterFunc(c.config.QuietPeriod, func() {
			c.fire(key, e)
		})
		e.mu.Unlock()
		return
	}
	fn := e.fn
	e.fn = nil
	e.timer = nil
	e.inFlight = true
	e.mu.Unlock()

	c.wg.Add(1)
	defer c.wg.Done()

	err := c.execute(key, fn)

	e.mu.Lock()
	e.inFlight = false
	e.dirty = err != nil
	e.mu.Unlock()
}

// execute runs one write with the configured timeout
// execute 在配置的超时内执行一次写入
func (c *Coordinator) execute(key int64, fn func() error) error {
	start := time.Now()
	result := make(chan error, 1)
	go func() {
		result <- fn()
	}()

	var err error
	select {
	case err = <-result:
	case <-time.After(c.config.WriteTimeout):
		err = context.DeadlineExceeded
	}

	if err != nil {
		c.logger.Error("debounced write failed",
			zap.Int64("key", key),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return err
	}
	c.logger.Debug("debounced write committed",
		zap.Int64("key", key),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
