package sysreq

import (
	"sync/atomic"
	"time"
)

// Resolution states. A resolver only ever moves forward through them.
const (
	statePending uint32 = iota
	stateBusy
	stateReady
)

const (
	initialBackoff = 50 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// resolver probes backends once and caches the outcome, including the outcome
// that nothing is installed. Readers after resolution never block.
//
// Claiming uses a compare-and-swap from pending to busy, so exactly one caller
// probes; callers that lose the claim poll with exponential backoff until the
// state is ready.
type resolver struct {
	state atomic.Uint32

	// Written by the claiming goroutine before state becomes ready and
	// read-only afterwards.
	backend Backend
	found   bool

	order []Backend
	probe func(Backend) bool
	sleep func(time.Duration)
}

func newResolver(order []Backend, probe func(Backend) bool) *resolver {
	return &resolver{
		order: order,
		probe: probe,
		sleep: time.Sleep,
	}
}

// defaultResolver is the process-wide resolution cache.
var defaultResolver = newResolver(preference, Backend.probe)

// get returns the resolved backend, probing on first use.
func (r *resolver) get() (Backend, bool) {
	wait := initialBackoff
	for {
		switch r.state.Load() {
		case stateReady:
			return r.backend, r.found
		case statePending:
			if r.state.CompareAndSwap(statePending, stateBusy) {
				r.backend, r.found = r.resolve()
				r.state.Store(stateReady)
				return r.backend, r.found
			}
			// Lost the claim; fall through to waiting.
		}
		r.sleep(wait)
		wait = min(wait*2, maxBackoff)
	}
}

func (r *resolver) resolve() (Backend, bool) {
	for _, b := range r.order {
		if r.probe(b) {
			return b, true
		}
	}
	return 0, false
}

// Resolve returns the HTTP client this process uses, probing for one on first
// call. It returns ErrNoClientAvailable when none is installed.
func Resolve() (Backend, error) {
	b, ok := defaultResolver.get()
	if !ok {
		return 0, ErrNoClientAvailable
	}
	return b, nil
}

// Installed reports whether a compatible HTTP client is installed, probing for
// one on first call.
func Installed() bool {
	_, ok := defaultResolver.get()
	return ok
}
