// Package semaphore bounds how many accepted connections are handled at
// once. Waiting for a slot gives up after a timeout so a busy server drops
// new peers instead of queueing them forever.
package semaphore

import (
	"context"
	"time"

	"estd/netsock/pkg/sockerr"
)

// ConnSemaphore hands out a fixed number of connection slots.
// A nil *ConnSemaphore imposes no limit.
type ConnSemaphore struct {
	slots   chan struct{}
	timeout time.Duration
}

// New creates a semaphore with n free slots. Acquire waits at most timeout
// for one of them.
func New(n int, timeout time.Duration) *ConnSemaphore {
	slots := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		slots <- struct{}{}
	}
	return &ConnSemaphore{slots: slots, timeout: timeout}
}

// Acquire takes a slot. It returns ctx.Err() if ctx ends first and a
// sockerr.KindTimeout error if no slot frees up within the timeout.
func (s *ConnSemaphore) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-s.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return sockerr.Newf(sockerr.KindTimeout, "acquire", "no connection slot free after %v", s.timeout)
	}
}

// Release returns a slot taken by Acquire.
func (s *ConnSemaphore) Release() {
	if s == nil {
		return
	}
	s.slots <- struct{}{}
}

// Available reports the number of free slots. A nil semaphore reports -1.
func (s *ConnSemaphore) Available() int {
	if s == nil {
		return -1
	}
	return len(s.slots)
}
