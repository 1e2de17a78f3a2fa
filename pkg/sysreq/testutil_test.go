package sysreq

import (
	"context"
	"sync"
)

// invocation is one recorded process start.
type invocation struct {
	name string
	args []string
}

// fakeRunner records invocations and answers with a canned result.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []invocation
	result processResult
	err    error
}

func (f *fakeRunner) run(_ context.Context, name string, args []string) (processResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invocation{name: name, args: append([]string(nil), args...)})
	return f.result, f.err
}

func (f *fakeRunner) invocations() []invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]invocation(nil), f.calls...)
}

// readyResolver returns a resolver already settled on b.
func readyResolver(b Backend) *resolver {
	r := newResolver([]Backend{b}, func(Backend) bool { return true })
	r.get()
	return r
}

// emptyResolver returns a resolver that found nothing.
func emptyResolver() *resolver {
	r := newResolver(preference, func(Backend) bool { return false })
	r.get()
	return r
}

// recordingLogger keeps the messages it receives.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) InfoObj(msg, _ string, _ interface{})  { l.record(msg) }
func (l *recordingLogger) DebugObj(msg, _ string, _ interface{}) { l.record(msg) }
func (l *recordingLogger) WarnObj(msg, _ string, _ interface{})  { l.record(msg) }
func (l *recordingLogger) ErrorObj(msg, _ string, _ interface{}) { l.record(msg) }
