package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/sysfetch/internal/config"
	"github.com/samvad-hq/sysfetch/internal/logger"
	"github.com/samvad-hq/sysfetch/internal/scraper"
	"github.com/samvad-hq/sysfetch/internal/storage"
	"github.com/samvad-hq/sysfetch/internal/targets"
	"github.com/samvad-hq/sysfetch/pkg/httpclient"
)

// StatusError reports a response whose known status is not 2xx.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// clientFactory builds a client enforcing timeout; zero means no limit.
type clientFactory func(timeout time.Duration) httpclient.Client

// Fetcher is the sysfetch runtime. It wires the configured HTTP client to the
// response cache and runs single and batch fetches.
type Fetcher struct {
	cfg       *config.Config
	log       logger.Logger
	store     storage.Store
	newClient clientFactory
}

// NewFetcher builds a fetcher runtime from config.
func NewFetcher(cfg *config.Config, log logger.Logger) (*Fetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	newClient, err := clientFor(cfg.Client, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Fetcher{
		cfg:       cfg,
		log:       log,
		store:     store,
		newClient: newClient,
	}, nil
}

func clientFor(kind string, log logger.Logger) (clientFactory, error) {
	switch kind {
	case config.ClientSystem, "":
		return func(timeout time.Duration) httpclient.Client {
			return httpclient.NewSystemClient(timeout, log)
		}, nil
	case config.ClientResty:
		return func(timeout time.Duration) httpclient.Client {
			return httpclient.NewRestyClient(timeout)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported client %q", kind)
	}
}

// Fetch returns the body at url, serving it from the cache when present.
// A zero timeout falls back to the configured default.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if f == nil || f.newClient == nil {
		return nil, fmt.Errorf("fetcher is not initialized")
	}

	if body, ok, err := f.store.Lookup(url); err != nil {
		f.log.WarnObj("cache lookup failed", "cache_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	} else if ok {
		f.log.DebugObj("cache hit", "url", url)
		return body, nil
	}

	if timeout <= 0 {
		timeout = f.cfg.Timeout
	}
	resp, err := f.newClient(timeout).Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if code := resp.StatusCode(); code != httpclient.StatusUnknown && (code < 200 || code > 299) {
		return nil, &StatusError{URL: url, Status: code}
	}

	body := resp.Body()
	if err := f.store.Save(url, body); err != nil {
		f.log.WarnObj("cache save failed", "cache_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	}
	return body, nil
}

// Get implements httpclient.Client over Fetch so other components share the
// cache. Headers are not supported.
func (f *Fetcher) Get(ctx context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	body, err := f.Fetch(ctx, url, 0)
	if err != nil {
		return nil, err
	}
	return cachedResponse(body), nil
}

type cachedResponse []byte

func (c cachedResponse) Body() []byte    { return c }
func (c cachedResponse) StatusCode() int { return httpclient.StatusUnknown }

// Meta fetches url and extracts its page metadata.
func (f *Fetcher) Meta(ctx context.Context, url string) (scraper.PageMeta, error) {
	s, err := scraper.New(f)
	if err != nil {
		return scraper.PageMeta{}, err
	}
	return s.Scrape(ctx, url)
}

// RunBatch fetches every target in order, writing each body below dir.
// Failures are logged and returned together; remaining targets still run.
func (f *Fetcher) RunBatch(ctx context.Context, list []targets.Target, dir string) error {
	if len(list) == 0 {
		return fmt.Errorf("no targets to fetch")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	start := time.Now()
	f.log.InfoObj("batch started", "batch_meta", map[string]any{
		"targets_count": len(list),
		"dir":           dir,
	})

	errs := make([]error, 0, len(list))
	for _, t := range list {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := f.runTarget(ctx, t, dir); err != nil {
			errs = append(errs, err)
			f.log.ErrorObj("target fetch failed", "target_error", map[string]any{
				"target_id": t.ID,
				"url":       t.URL,
				"error":     err.Error(),
			})
		}
	}

	f.log.InfoObj("batch completed", "batch_meta", map[string]any{
		"targets_count": len(list),
		"failed":        len(errs),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (f *Fetcher) runTarget(ctx context.Context, t targets.Target, dir string) error {
	body, err := f.Fetch(ctx, t.URL, t.Timeout())
	if err != nil {
		return fmt.Errorf("target %s: %w", t.ID, err)
	}

	path := filepath.Join(dir, t.Output)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("target %s: create directory: %w", t.ID, err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("target %s: write output: %w", t.ID, err)
	}

	f.log.InfoObj("target fetched", "target_result", map[string]any{
		"target_id": t.ID,
		"bytes":     len(body),
		"output":    path,
	})
	return nil
}

// Close releases the response cache.
func (f *Fetcher) Close() error {
	if f == nil || f.store == nil {
		return nil
	}
	if err := f.store.Close(); err != nil {
		f.log.ErrorObj("storage close failed", "error", err)
		return err
	}
	return nil
}
