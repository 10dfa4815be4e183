package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop is a wall-clock Clock. Expired callbacks are handed to post, which
// must run them on the owner's event loop (for a bubbletea program that is
// tea.Program.Send wrapping the callback in a message).
type Loop struct {
	mu     sync.Mutex
	post   func(func())
	closed bool
}

func NewLoop(post func(func())) *Loop {
	return &Loop{post: post}
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) (Timer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.post == nil {
		return nil, ErrStopped
	}

	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		if t.stopped.Load() {
			return
		}
		l.deliver(fn)
	})
	return t, nil
}

// Close stops delivery. Callbacks already posted still run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *Loop) deliver(fn func()) {
	l.mu.Lock()
	post, closed := l.post, l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	post(fn)
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	return t.timer.Stop()
}
