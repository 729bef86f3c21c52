// Package storage provides the key-value persistence behind per-device
// support state. Backends store opaque values; callers own the encoding.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("storage key not found")

// KV is the minimal persistence contract: get, set and remove by key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks kv when it supports it and succeeds otherwise.
func Ping(ctx context.Context, kv KV) error {
	if p, ok := kv.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
