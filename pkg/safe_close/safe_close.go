// Package safe_close coordinates graceful shutdown of multiple goroutines
// Package safe_close 协调多个协程的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose fans a single close signal out to every attached goroutine and
// waits for all of them to report done
// SafeClose 将关闭信号广播给所有已注册协程，并等待它们全部退出
type SafeClose struct {
	mu          sync.Mutex
	closeSignal chan struct{}
	closed      bool
	closeErr    error
	wg          sync.WaitGroup
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach starts f in a new goroutine. f must call done when it has fully
// stopped, and must return promptly once closeSignal is closed.
// Attach 在新协程中启动 f。f 完全停止后必须调用 done，
// 并在 closeSignal 关闭后尽快返回。
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	done := sync.OnceFunc(s.wg.Done)
	go f(done, s.closeSignal)
}

// SendCloseSignal closes the signal channel. The first error wins;
// subsequent calls are no-ops.
// SendCloseSignal 关闭信号通道。仅保留第一个错误，后续调用为空操作。
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	close(s.closeSignal)
}

// WaitClosed blocks until the close signal has been sent and every attached
// goroutine has called done, then returns the close cause.
// WaitClosed 阻塞直到关闭信号发出且所有协程退出，返回关闭原因。
func (s *SafeClose) WaitClosed() error {
	<-s.closeSignal
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

// CloseWait sends the close signal and waits for shutdown to finish
// CloseWait 发送关闭信号并等待关闭完成
func (s *SafeClose) CloseWait() {
	s.SendCloseSignal(nil)
	s.wg.Wait()
}
