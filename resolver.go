// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Resolver maps a relative reference found in resolver-backed content to an
// absolute URL. Returning false means the reference has no target.
// Resolve is called on the pump's CallbackQueue.
type Resolver interface {
	Resolve(ref string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ref string) (string, bool)

func (f ResolverFunc) Resolve(ref string) (string, bool) { return f(ref) }

// hostResolver forwards engine lookups for an instance to the host Resolver
// through the callback queue. A timeout or closed queue yields no URL.
type hostResolver struct {
	r       Resolver
	queue   *CallbackQueue
	timeout time.Duration
	log     logrus.FieldLogger
}

func (h *hostResolver) Resolve(ref string) (string, bool) {
	type result struct {
		url string
		ok  bool
	}
	res := make(chan result, 1)
	err := h.queue.call(h.timeout, func() {
		url, ok := h.r.Resolve(ref)
		res <- result{url, ok}
	})
	if err != nil {
		h.log.WithError(err).WithField("ref", ref).Warn("resolver call failed")
		return "", false
	}
	r := <-res
	return r.url, r.ok
}
