package sysreq

import (
	"context"
	"time"
)

// Response is the result of a successful request.
type Response struct {
	// Body is everything the client wrote to standard output.
	Body []byte

	// Backend is the client that served the request.
	Backend Backend
}

// Request gathers a URL and an optional timeout before sending.
type Request struct {
	url     string
	timeout time.Duration
	log     Logger

	run      runFunc
	resolver *resolver
}

// NewRequest creates a request for url with no timeout.
func NewRequest(url string) *Request {
	return &Request{
		url:      url,
		log:      noopLogger{},
		run:      runProcess,
		resolver: defaultResolver,
	}
}

// Timeout sets the time limit the client enforces for the whole request.
//
// Timeout panics if d is not positive: a zero timeout has no meaning for any
// client and indicates a programming error. Use NoTimeout to clear the limit.
func (r *Request) Timeout(d time.Duration) *Request {
	if d <= 0 {
		panic("sysreq: timeout must be positive")
	}
	r.timeout = d
	return r
}

// NoTimeout removes any time limit.
func (r *Request) NoTimeout() *Request {
	r.timeout = 0
	return r
}

// Logger routes request diagnostics to log. A nil log disables logging.
func (r *Request) Logger(log Logger) *Request {
	r.log = ensureLogger(log)
	return r
}

// Send validates the URL, resolves the client and runs it.
func (r *Request) Send() (*Response, error) {
	return r.SendContext(context.Background())
}

// SendContext is like Send, but kills the client process if ctx ends before
// it exits.
func (r *Request) SendContext(ctx context.Context) (*Response, error) {
	url, err := ValidateURL(r.url)
	if err != nil {
		return nil, err
	}

	b, ok := r.resolver.get()
	if !ok {
		r.log.WarnObj("no http client installed", "sysreq_resolve", map[string]any{
			"supported": SupportedHTTPClients(),
		})
		return nil, ErrNoClientAvailable
	}

	r.log.DebugObj("sysreq fetch starting", "sysreq_fetch", map[string]any{
		"backend":    b.String(),
		"url":        url,
		"timeout_ms": r.timeout.Milliseconds(),
	})

	start := time.Now()
	body, err := b.fetch(ctx, r.run, url, r.timeout)
	if err != nil {
		r.log.WarnObj("sysreq fetch failed", "sysreq_error", map[string]any{
			"backend":    b.String(),
			"url":        url,
			"elapsed_ms": time.Since(start).Milliseconds(),
			"error":      err.Error(),
		})
		return nil, err
	}

	r.log.DebugObj("sysreq fetch completed", "sysreq_fetch", map[string]any{
		"backend":    b.String(),
		"bytes":      len(body),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return &Response{Body: body, Backend: b}, nil
}
