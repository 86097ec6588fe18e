// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"context"
	"sync"
	"time"
)

// message is a unit of work for the UI thread. Messages with a target run
// against that instance and are dropped when it no longer exists; messages
// without one run against the pump.
type message struct {
	target BrowserID
	fn     func(*instance)
	ctl    func()
}

type dequeued int

const (
	dequeuedMessage dequeued = iota
	dequeuedTick
	dequeuedPeriodic
	dequeuedCapture
)

// queue is the UI thread inbox. High-priority messages always run before
// captures; captures are coalesced per instance by the caller.
type queue struct {
	mu       sync.Mutex
	high     []message
	captures []BrowserID
	tick     bool
	closed   bool
	signal   chan struct{}
}

func newQueue() *queue {
	return &queue{signal: make(chan struct{}, 1)}
}

func (q *queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *queue) post(m message) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.high = append(q.high, m)
	q.mu.Unlock()
	q.notify()
	return nil
}

func (q *queue) postCapture(id BrowserID) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.captures = append(q.captures, id)
	q.mu.Unlock()
	q.notify()
	return nil
}

// postTick schedules a tick after the current message.
func (q *queue) postTick() {
	q.mu.Lock()
	q.tick = true
	q.mu.Unlock()
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.notify()
}

// next blocks until work is available. It returns ErrClosed once the queue
// is closed and ctx.Err() when ctx is done.
func (q *queue) next(ctx context.Context, periodic <-chan time.Time) (message, BrowserID, dequeued, error) {
	for {
		q.mu.Lock()
		switch {
		case q.closed:
			q.mu.Unlock()
			return message{}, 0, 0, ErrClosed
		case len(q.high) > 0:
			m := q.high[0]
			q.high[0] = message{}
			q.high = q.high[1:]
			q.mu.Unlock()
			return m, 0, dequeuedMessage, nil
		case q.tick:
			q.tick = false
			q.mu.Unlock()
			return message{}, 0, dequeuedTick, nil
		case len(q.captures) > 0:
			id := q.captures[0]
			q.captures = q.captures[1:]
			q.mu.Unlock()
			return message{}, id, dequeuedCapture, nil
		}
		q.mu.Unlock()
		select {
		case <-q.signal:
		case <-periodic:
			return message{}, 0, dequeuedPeriodic, nil
		case <-ctx.Done():
			return message{}, 0, 0, ctx.Err()
		}
	}
}
