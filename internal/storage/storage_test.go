package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedis("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

// exerciseKV runs the shared contract every backend must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := kv.Set(ctx, "device:1:completedLinks", []byte(`[]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := kv.Get(ctx, "device:1:completedLinks")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Get() = %q, want %q", got, `[]`)
	}

	if err := kv.Set(ctx, "device:1:completedLinks", []byte(`[{"key":"0xa"}]`)); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	got, _ = kv.Get(ctx, "device:1:completedLinks")
	if string(got) != `[{"key":"0xa"}]` {
		t.Errorf("Get() after overwrite = %q", got)
	}

	if err := kv.Remove(ctx, "device:1:completedLinks"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := kv.Get(ctx, "device:1:completedLinks"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrNotFound", err)
	}

	if err := kv.Remove(ctx, "never-set"); err != nil {
		t.Errorf("Remove(never-set) error = %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	value := []byte("abc")
	if err := m.Set(ctx, "k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'
	got, _ := m.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller slice: %q", got)
	}
}

func TestRedis(t *testing.T) {
	store, _ := setupTestRedis(t)
	defer store.Close()

	exerciseKV(t, store)

	if err := Ping(context.Background(), store); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestRedis_PrefixesKeys(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()

	if err := store.Set(context.Background(), "device:abc:celo-engage-link-supports", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("engagehub:device:abc:celo-engage-link-supports") {
		t.Errorf("expected prefixed key in redis, have %v", s.Keys())
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	addr := s.Addr()
	s.Close()

	if _, err := NewRedis("redis://" + addr); err == nil {
		t.Error("NewRedis() against a closed server returned nil error")
	}
}
