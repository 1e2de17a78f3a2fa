package storage

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func TestBoltStoreSavesAndExpiresResponses(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	}

	storeRaw, err := openBolt(filepath.Join(dir, "nested", "cache.db"), opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }

	const url = "http://example.org/#//\"'[[]]`${hello}"
	if _, ok, err := store.Lookup(url); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	body := []byte("\x00binary\xffbody")
	if err := store.Save(url, body); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := store.Lookup(url)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("Lookup got %q want %q", got, body)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, err := store.Lookup(url); err != nil || ok {
		t.Fatalf("expected entry to expire, ok=%v err=%v", ok, err)
	}

	err = store.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(responseBucket)).Get(cacheKey(url)); v != nil {
			t.Fatalf("expired entry should be deleted on lookup")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestBoltStoreEmptyBodyIsAHit(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "cache.db"), normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer storeRaw.Close()

	if err := storeRaw.Save("http://example.org/empty", nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := storeRaw.Lookup("http://example.org/empty")
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("expected empty hit, got=%q ok=%v err=%v", got, ok, err)
	}
}

func TestBoltStoreCleanupSweepsExpired(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "cache.db"), Options{
		TTL:             time.Second,
		CleanupInterval: time.Second,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }
	for _, u := range []string{"http://a.example", "http://b.example"} {
		if err := store.Save(u, []byte(u)); err != nil {
			t.Fatalf("Save %s: %v", u, err)
		}
	}

	now = now.Add(5 * time.Second)
	if err := store.maybeCleanupExpired(now); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	var n int
	_ = store.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(responseBucket)).Stats().KeyN
		return nil
	})
	if n != 0 {
		t.Fatalf("expected sweep to remove all entries, %d left", n)
	}
	if store.lastCleanup.Load() != now.Unix() {
		t.Fatalf("lastCleanup not advanced")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Save("http://example.org", []byte("x")); err != nil {
		t.Fatalf("noop store Save: %v", err)
	}
	if _, ok, _ := store.Lookup("http://example.org"); ok {
		t.Fatalf("noop store must never hit")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unknown storage type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
