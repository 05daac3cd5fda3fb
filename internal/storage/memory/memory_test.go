package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func set(v []byte) func([]byte) ([]byte, error) {
	return func([]byte) ([]byte, error) { return v, nil }
}

func TestStore_UpdateCopiesValues(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	in := []byte(`["a"]`)
	if err := s.Update(ctx, "k", set(in)); err != nil {
		t.Fatalf("update: %v", err)
	}
	in[0] = 'X'

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != `["a"]` {
		t.Fatalf("unexpected: %q ok=%v err=%v", got, ok, err)
	}

	var seen []byte
	_ = s.Update(ctx, "k", func(cur []byte) ([]byte, error) {
		seen = cur
		return nil, nil
	})
	if string(seen) != `["a"]` {
		t.Fatalf("fn got %q", seen)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected nil result to remove key")
	}
}

func TestStore_UpdateErrorKeepsValue(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.Update(ctx, "k", set([]byte("1")))

	boom := errors.New("boom")
	if err := s.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if got, ok, _ := s.Get(ctx, "k"); !ok || string(got) != "1" {
		t.Fatalf("value changed: %q ok=%v", got, ok)
	}
}

func TestCache_TTL(t *testing.T) {
	c := NewCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	if err := c.Set(ctx, "k", map[string]int{"n": 1}, 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got map[string]int
	if ok, err := c.Get(ctx, "k", &got); !ok || err != nil || got["n"] != 1 {
		t.Fatalf("expected hit, got %v ok=%v err=%v", got, ok, err)
	}

	now = now.Add(10 * time.Second)
	if ok, _ := c.Get(ctx, "k", &got); ok {
		t.Fatalf("expected expiry at ttl")
	}

	_ = c.Set(ctx, "forever", 1, 0)
	now = now.Add(24 * time.Hour)
	var n int
	if ok, _ := c.Get(ctx, "forever", &n); !ok || n != 1 {
		t.Fatalf("ttl<=0 should not expire")
	}
}
