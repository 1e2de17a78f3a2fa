package sysreq

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installedBackends returns the real clients available on this host.
func installedBackends(t *testing.T) []Backend {
	t.Helper()
	if testing.Short() {
		t.Skip("spawns real http clients")
	}
	var out []Backend
	for _, b := range preference {
		if b.probe() {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		t.Skip("no http client installed")
	}
	return out
}

func newContentServer(t *testing.T) *httptest.Server {
	t.Helper()
	body := []byte("<!doctype html><title>sysreq</title>\x00\xff binary-safe body\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/", http.StatusFound)
		case "/":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIntegrationMatchesReferenceClient(t *testing.T) {
	backends := installedBackends(t)
	srv := newContentServer(t)

	ref, err := resty.New().SetTimeout(5 * time.Second).R().Get(srv.URL + "/")
	require.NoError(t, err)
	want := ref.Body()

	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			got, err := b.fetch(context.Background(), runProcess, srv.URL+"/", 10*time.Second)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestIntegrationMetacharacterTransparency(t *testing.T) {
	backends := installedBackends(t)
	srv := newContentServer(t)
	plain := srv.URL + "/"
	decorated := plain + "#//\"\"\"\"\"'''''[[]]`````${hello}$hello###"

	_, err := ValidateURL(decorated)
	require.NoError(t, err)

	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			want, err := b.fetch(context.Background(), runProcess, plain, 10*time.Second)
			require.NoError(t, err)
			got, err := b.fetch(context.Background(), runProcess, decorated, 10*time.Second)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestIntegrationInjectionImmunity(t *testing.T) {
	backends := installedBackends(t)
	srv := newContentServer(t)
	t.Setenv("SYSREQ_PWNED", srv.URL+"/")

	inputs := []string{
		"$SYSREQ_PWNED",
		"`SYSREQ_PWNED`",
		"${SYSREQ_PWNED}",
		"[[SYSREQ_PWNED]]",
		"#//\"\"\"\"\"'''''[[]]`````${hello}$hello###",
	}

	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			for _, raw := range inputs {
				body, err := b.fetch(context.Background(), runProcess, raw, 5*time.Second)
				if err == nil {
					assert.Empty(t, body, "fetching %q must not reach the server", raw)
				}
			}
		})
	}
}

func TestIntegrationFollowsRedirect(t *testing.T) {
	backends := installedBackends(t)
	srv := newContentServer(t)

	want, err := resty.New().R().Get(srv.URL + "/")
	require.NoError(t, err)

	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			got, err := b.fetch(context.Background(), runProcess, srv.URL+"/redirect", 10*time.Second)
			require.NoError(t, err)
			assert.Equal(t, want.Body(), got)
		})
	}
}

// newBlackHole accepts connections and never answers.
func newBlackHole(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "http://" + ln.Addr().String() + "/"
}

func TestIntegrationTimeout(t *testing.T) {
	backends := installedBackends(t)
	url := newBlackHole(t)
	const timeout = 100 * time.Millisecond

	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			start := time.Now()
			_, err := b.fetch(context.Background(), runProcess, url, timeout)
			elapsed := time.Since(start)

			require.Error(t, err)
			if b == PowerShell && !errors.Is(err, ErrTimedOut) {
				// The stderr heuristic depends on interpreter version and locale.
				t.Skipf("PowerShell timeout heuristic did not match: %v", err)
			}
			assert.ErrorIs(t, err, ErrTimedOut)
			assert.GreaterOrEqual(t, elapsed, timeout)
			// PowerShell rounds its request timeout up to one second and
			// starts slowly.
			assert.Less(t, elapsed, 30*time.Second)
		})
	}
}
