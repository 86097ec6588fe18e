// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YindSoft/webtexture/engine"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Pump owns a browser UI thread. All engine work for the browsers it creates
// happens inside Run, on one locked OS thread.
type Pump struct {
	opts      Options
	log       logrus.FieldLogger
	q         *queue
	callbacks *CallbackQueue
	stopCB    context.CancelFunc

	running  atomic.Bool
	done     chan struct{}
	release  sync.Once
	shutdown atomic.Bool

	// UI thread only.
	instances map[BrowserID]*instance
	quit      bool
}

// NewPump creates a pump. Call Run to start its UI thread. When
// opts.Callbacks is nil the pump runs its own callback queue on a
// background goroutine.
func NewPump(opts *Options) (*Pump, error) {
	o := opts.withDefaults()
	if o.FrameWidth > 1<<14 || o.FrameHeight > 1<<14 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidArgument, o.FrameWidth, o.FrameHeight)
	}
	p := &Pump{
		opts:      o,
		log:       o.Logger,
		q:         newQueue(),
		callbacks: o.Callbacks,
		done:      make(chan struct{}),
		instances: map[BrowserID]*instance{},
	}
	if p.callbacks == nil {
		p.callbacks = NewCallbackQueue()
		ctx, cancel := context.WithCancel(context.Background())
		p.stopCB = cancel
		go p.callbacks.Run(ctx)
	}
	reservedScheme(o.Scheme, p.log)
	return p, nil
}

// Callbacks returns the queue running resolver and observer callbacks.
func (p *Pump) Callbacks() *CallbackQueue { return p.callbacks }

// Run dispatches messages until Shutdown is processed, ctx is done or the
// pump is released. It returns nil after a shutdown, and an error wrapping
// ErrFatal when the queue fails underneath it.
func (p *Pump) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: pump already running", ErrInvalidArgument)
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(p.done)

	ticker := time.NewTicker(p.opts.TickInterval.Std())
	defer ticker.Stop()

	p.log.Debug("message pump started")
	for !p.quit {
		m, id, kind, err := p.q.next(ctx, ticker.C)
		if err != nil {
			closeErr := p.closeAll()
			if errors.Is(err, ErrClosed) {
				return multierr.Append(fmt.Errorf("%w: queue closed", ErrFatal), closeErr)
			}
			return multierr.Append(err, closeErr)
		}
		switch kind {
		case dequeuedMessage:
			p.dispatch(m)
			p.q.postTick()
		case dequeuedTick:
			p.tick(false)
		case dequeuedPeriodic:
			p.tick(true)
		case dequeuedCapture:
			if i := p.instances[id]; i != nil {
				i.captureQueued.Store(false)
				i.capture()
			}
			p.q.postTick()
		}
	}
	p.log.Debug("message pump stopped")
	return nil
}

func (p *Pump) dispatch(m message) {
	if m.ctl != nil {
		m.ctl()
		return
	}
	i := p.instances[m.target]
	if i == nil {
		p.log.WithField("browser", m.target).Debug("message for unknown browser dropped")
		return
	}
	m.fn(i)
}

// tick lets engines deliver queued work and requests captures of instances
// that changed. Periodic ticks also capture documents with embedded plug-ins.
func (p *Pump) tick(periodic bool) {
	for _, i := range p.instances {
		i.eng.Pump()
		if i.State() != StateReady {
			continue
		}
		if i.dirty || (periodic && i.alwaysCapture) {
			i.requestCapture()
		}
	}
}

// post queues fn for the instance id.
func (p *Pump) post(id BrowserID, fn func(*instance)) error {
	if err := p.q.post(message{target: id, fn: fn}); err != nil {
		return fmt.Errorf("%w: pump not accepting messages", ErrUnavailable)
	}
	return nil
}

type created struct {
	inst *instance
	err  error
}

// NewBrowser creates a browser instance on the UI thread and waits for it.
// Run must be active or start before ctx is done.
func (p *Pump) NewBrowser(ctx context.Context) (*Browser, error) {
	reply := make(chan created, 1)
	var (
		mu        sync.Mutex
		abandoned bool
	)
	err := p.q.post(message{ctl: func() {
		i, err := p.create()
		mu.Lock()
		defer mu.Unlock()
		if err == nil && abandoned {
			p.destroy(i.id)
			return
		}
		reply <- created{inst: i, err: err}
	}})
	if err != nil {
		return nil, fmt.Errorf("%w: pump not accepting messages", ErrUnavailable)
	}
	select {
	case r := <-reply:
		if r.err != nil {
			return nil, r.err
		}
		return &Browser{id: r.inst.id, pump: p, inst: r.inst}, nil
	case <-p.done:
		return nil, fmt.Errorf("%w: pump stopped", ErrUnavailable)
	case <-ctx.Done():
		mu.Lock()
		abandoned = true
		select {
		case r := <-reply:
			if r.inst != nil {
				_ = p.post(r.inst.id, func(i *instance) { p.destroy(i.id) })
			}
		default:
		}
		mu.Unlock()
		return nil, ctx.Err()
	}
}

func (p *Pump) create() (*instance, error) {
	id := BrowserID(nextBrowserID.Add(1))
	log := p.log.WithField("browser", id)
	i := newInstance(id, p, log)
	eng, err := p.opts.Engine(engine.Config{
		Width:   p.opts.FrameWidth,
		Height:  p.opts.FrameHeight,
		Handler: i.sink,
		Schemes: schemeHandler,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating engine: %v", ErrUnavailable, err)
	}
	i.eng = eng
	if err := eng.Navigate("about:blank"); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("%w: priming navigation: %v", ErrUnavailable, err)
	}
	p.instances[id] = i
	registerInstance(i)
	log.Debug("browser created")
	return i, nil
}

// destroy tears down the instance id. Unknown ids are ignored.
func (p *Pump) destroy(id BrowserID) {
	i := p.instances[id]
	if i == nil {
		return
	}
	delete(p.instances, id)
	if err := i.close(); err != nil {
		i.log.WithError(err).Warn("closing browser")
	}
}

func (p *Pump) closeAll() error {
	var err error
	for id, i := range p.instances {
		delete(p.instances, id)
		err = multierr.Append(err, i.close())
	}
	return err
}

// Shutdown asks Run to close every browser and return.
func (p *Pump) Shutdown() error {
	if !p.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	err := p.q.post(message{ctl: func() {
		if err := p.closeAll(); err != nil {
			p.log.WithError(err).Warn("closing browsers at shutdown")
		}
		p.quit = true
	}})
	if err != nil {
		return fmt.Errorf("%w: pump not accepting messages", ErrUnavailable)
	}
	return nil
}

// Done is closed when Run returns.
func (p *Pump) Done() <-chan struct{} { return p.done }

// Release stops accepting messages. A Run still in progress returns an
// ErrFatal error after closing its browsers.
func (p *Pump) Release() {
	p.release.Do(func() {
		p.q.close()
		if p.stopCB != nil {
			p.callbacks.Close()
			p.stopCB()
		}
	})
}
