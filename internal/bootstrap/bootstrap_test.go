package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/mockfile"
	"flex_reviews/internal/shared"
)

func TestOpenStores_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := shared.Config{StateBackend: shared.BackendRedis, RedisAddr: mr.Addr()}

	st, err := OpenStores(context.Background(), cfg)
	if err != nil {
		t.Fatalf("OpenStores: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	err = st.KV.Update(ctx, "flex-review-notes", func([]byte) ([]byte, error) { return []byte(`{"a":"b"}`), nil })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !mr.Exists(statePrefix + "flex-review-notes") {
		t.Fatalf("state key not namespaced; keys=%v", mr.Keys())
	}
}

func TestOpenStores_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenStores(context.Background(), shared.Config{StateBackend: shared.BackendRedis, RedisAddr: addr})
	if err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestOpenStores_Memory(t *testing.T) {
	st, err := OpenStores(context.Background(), shared.Config{StateBackend: shared.BackendMemory})
	if err != nil || st.KV == nil || st.Cache == nil {
		t.Fatalf("memory stores: %+v %v", st, err)
	}
	st.Close()
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(shared.Config{SourceMode: shared.SourceFile, MockDataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*mockfile.Source); !ok {
		t.Fatalf("file mode: got %T", src)
	}

	src, err = NewSource(shared.Config{SourceMode: shared.SourceHTTP, ReviewsBase: "http://localhost:8000", UpstreamRPS: 5})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*hostaway.Client); !ok {
		t.Fatalf("http mode: got %T", src)
	}
}
