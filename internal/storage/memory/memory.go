// Package memory provides process-local implementations of the state store
// and cache ports, for dev runs and tests.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"flex_reviews/internal/adapters/observability"
)

type Store struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewStore() *Store { return &Store{m: map[string][]byte{}} }

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Update runs fn under the store lock; a nil result deletes the key.
func (s *Store) Update(_ context.Context, key string, fn func(cur []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur []byte
	if v, ok := s.m[key]; ok {
		cur = append([]byte(nil), v...)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if next == nil {
		delete(s.m, key)
		return nil
	}
	s.m[key] = append([]byte(nil), next...)
	return nil
}

type entry struct {
	b   []byte
	exp time.Time
}

// Cache stores JSON copies so callers never share memory with the cache.
type Cache struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

func NewCache() *Cache { return &Cache{m: map[string]entry{}, now: time.Now} }

func (c *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.m[key]
	if ok && !e.exp.IsZero() && !c.now().Before(e.exp) {
		delete(c.m, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.b, dst)
}

// Set stores v; ttlSec <= 0 keeps it until deleted.
func (c *Cache) Set(_ context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := entry{b: b}
	if ttlSec > 0 {
		e.exp = c.now().Add(time.Duration(ttlSec) * time.Second)
	}
	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (c *Cache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	observability.ObserveCache("memory", "del")
	return nil
}
