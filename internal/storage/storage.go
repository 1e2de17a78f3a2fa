package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local response cache.

// Store caches response bodies by URL.
type Store interface {
	Close() error
	Lookup(url string) ([]byte, bool, error)
	Save(url string, body []byte) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = time.Hour
	defaultCleanupInterval = 10 * time.Minute
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// cacheKey keeps keys fixed-size regardless of URL length.
func cacheKey(url string) []byte {
	sum := sha1.Sum([]byte(url))
	return []byte(hex.EncodeToString(sum[:]))
}

type noopStore struct{}

func (noopStore) Close() error                        { return nil }
func (noopStore) Lookup(string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Save(string, []byte) error           { return nil }
