package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/sysfetch/pkg/sysreq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			_, _ = w.Write([]byte(`<html><head><title>Page</title><meta property="og:image" content="/og.png"></head></html>`))
		case "/missing":
			http.NotFound(w, r)
		default:
			_, _ = w.Write([]byte("body:" + r.URL.Path))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetWritesBodyToStdout(t *testing.T) {
	srv := newPageServer(t)
	out, err := execute(t, "--client", "resty", "get", srv.URL+"/hello")
	require.NoError(t, err)
	assert.Equal(t, "body:/hello", out)
}

func TestGetWritesOutputFile(t *testing.T) {
	srv := newPageServer(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "hello.txt")

	_, err := execute(t, "--client", "resty", "get", "-o", target, srv.URL+"/hello")
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "body:/hello", string(got))
}

func TestGetRejectsNonHTTPScheme(t *testing.T) {
	_, err := execute(t, "get", "file:///etc/passwd")
	assert.ErrorIs(t, err, sysreq.ErrInvalidURLScheme)
}

func TestGetRejectsNegativeTimeout(t *testing.T) {
	_, err := execute(t, "get", "--timeout", "-1s", "http://example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")
}

func TestGetReportsStatusFromReferenceClient(t *testing.T) {
	srv := newPageServer(t)
	_, err := execute(t, "--client", "resty", "get", srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestMetaPrintsJSON(t *testing.T) {
	srv := newPageServer(t)
	out, err := execute(t, "--client", "resty", "meta", srv.URL+"/page")
	require.NoError(t, err)

	var meta map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	assert.Equal(t, "Page", meta["title"])
	assert.Equal(t, srv.URL+"/og.png", meta["image_url"])
}

func TestBatchFetchesTargets(t *testing.T) {
	srv := newPageServer(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "targets.yaml")
	content := "targets:\n" +
		"  - id: one\n    url: " + srv.URL + "/one\n" +
		"  - id: two\n    url: " + srv.URL + "/two\n    output: nested/two.txt\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	outDir := filepath.Join(dir, "out")
	_, err := execute(t, "--client", "resty", "batch", "--dir", outDir, file)
	require.NoError(t, err)

	one, err := os.ReadFile(filepath.Join(outDir, "one.out"))
	require.NoError(t, err)
	assert.Equal(t, "body:/one", string(one))
	two, err := os.ReadFile(filepath.Join(outDir, "nested", "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "body:/two", string(two))
}

func TestBatchRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "targets.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"targets":[]}`), 0o600))

	_, err := execute(t, "batch", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load targets")
}

func TestUnknownClientFlag(t *testing.T) {
	_, err := execute(t, "--client", "telnet", "get", "http://example.org")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported client")
}

func TestBackendsListsSupportedClients(t *testing.T) {
	out, err := execute(t, "backends", "--json")

	var payload struct {
		Supported []string `json:"supported"`
		Resolved  string   `json:"resolved"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, sysreq.SupportedHTTPClients(), payload.Supported)

	if sysreq.Installed() {
		require.NoError(t, err)
		assert.NotEmpty(t, payload.Resolved)
		return
	}
	var exitErr exitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.code)
	assert.Empty(t, payload.Resolved)
}

func TestBackendsTextOutput(t *testing.T) {
	out, _ := execute(t, "backends")
	want := "supported: " + strings.Join(sysreq.SupportedHTTPClients(), ", ") + "\n"
	assert.True(t, strings.HasPrefix(out, want), out)
	assert.Contains(t, out, "resolved: ")
}
