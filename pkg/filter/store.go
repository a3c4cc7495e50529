package filter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Store memoizes per-file results by cache key.
type Store[R any] interface {
	Get(key string) (R, bool, error)
	Put(key string, result R) error
}

// MemoryStore keeps results for the life of the process. Safe for
// concurrent use.
type MemoryStore[R any] struct {
	mu sync.RWMutex
	m  map[string]R
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore[R any]() *MemoryStore[R] {
	return &MemoryStore[R]{m: make(map[string]R)}
}

// Get returns the result stored under key.
func (s *MemoryStore[R]) Get(key string) (R, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[key]
	return r, ok, nil
}

// Put stores result under key.
func (s *MemoryStore[R]) Put(key string, result R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = result
	return nil
}

// diskSchemaVersion is bumped when the payload layout changes; entries
// written with another version read as misses.
const diskSchemaVersion uint16 = 1

type diskPayload[R any] struct {
	Schema uint16 `msgpack:"schema"`
	Key    string `msgpack:"key"`
	Result R      `msgpack:"result"`
}

// DiskStore persists msgpack-encoded results under a directory so a fresh
// process can reuse the work of earlier ones. Safe for concurrent use.
type DiskStore[R any] struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskStore creates dir if needed and returns a store rooted there.
func OpenDiskStore[R any](dir string) (*DiskStore[R], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &DiskStore[R]{dir: dir}, nil
}

// Dir returns the store root.
func (s *DiskStore[R]) Dir() string {
	return s.dir
}

func (s *DiskStore[R]) pathFor(key string) string {
	// Fan out on the first two characters to keep directories small.
	sub := "xx"
	if len(key) >= 2 {
		sub = key[:2]
	}
	return filepath.Join(s.dir, sub, key+".mp")
}

// Get reads the entry for key. Missing, foreign-schema and mismatched
// entries read as misses.
func (s *DiskStore[R]) Get(key string) (R, bool, error) {
	var zero R
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zero, false, nil
		}
		return zero, false, err
	}
	defer f.Close()

	var p diskPayload[R]
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return zero, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if p.Schema != diskSchemaVersion || p.Key != key {
		return zero, false, nil
	}
	return p.Result, true, nil
}

// Put writes the entry atomically (temp file + rename).
func (s *DiskStore[R]) Put(key string, result R) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(diskPayload[R]{Schema: diskSchemaVersion, Key: key, Result: result}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// DropAll deletes every entry.
func (s *DiskStore[R]) DropAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(s.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o755)
}
