// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CallbackQueue runs host callbacks (resolvers and change notifications) on a
// host-chosen goroutine. Either call Run from a dedicated goroutine or call
// Drain from the host frame loop.
type CallbackQueue struct {
	mu     sync.Mutex
	fns    []func()
	closed bool
	signal chan struct{}
}

func NewCallbackQueue() *CallbackQueue {
	return &CallbackQueue{signal: make(chan struct{}, 1)}
}

// Post queues fn. It reports false when the queue is closed.
func (q *CallbackQueue) Post(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// Drain runs every queued callback and returns how many ran.
func (q *CallbackQueue) Drain() int {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Run drains the queue until ctx is done or the queue is closed.
func (q *CallbackQueue) Run(ctx context.Context) error {
	for {
		q.Drain()
		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil
		}
		select {
		case <-q.signal:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops Run and rejects further posts. Queued callbacks are dropped.
func (q *CallbackQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.fns = nil
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// call runs fn on the queue and waits up to timeout for it to finish.
func (q *CallbackQueue) call(timeout time.Duration, fn func()) error {
	done := make(chan struct{})
	if !q.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrClosed
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		return fmt.Errorf("%w: callback timed out after %v", ErrTransient, timeout)
	}
}
