// Package supports persists per-device support progress: the support counts
// object and the completed-links history, under the same storage keys and
// JSON field names the browser front end uses.
package supports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"engagehub/internal/feed"
	"engagehub/internal/storage"
)

// Storage keys shared with the browser front end.
const (
	CountsKey    = "celo-engage-link-supports"
	CompletedKey = "completedLinks"
)

// storedCompleted is the persisted shape of a completed link.
type storedCompleted struct {
	Key             string  `json:"key"`
	User            string  `json:"user"`
	Link            string  `json:"link"`
	TransactionHash *string `json:"transactionHash"`
	BlockNumber     uint64  `json:"blockNumber"`
	CompletedAt     int64   `json:"completedAt"`
}

// Store loads and saves support progress through a key-value backend.
type Store struct {
	kv  storage.KV
	now func() time.Time
}

// NewStore creates a Store over kv.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv, now: time.Now}
}

func deviceKey(device, key string) string {
	return "device:" + device + ":" + key
}

// read returns the raw value under key, with absence reported as nil.
func (s *Store) read(ctx context.Context, device, key string) ([]byte, error) {
	data, err := s.kv.Get(ctx, deviceKey(device, key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return data, nil
}

// LoadCounts returns the device's sanitized support counts. Malformed stored
// data is logged and treated as empty.
func (s *Store) LoadCounts(ctx context.Context, device string) (feed.SupportCounts, error) {
	data, err := s.read(ctx, device, CountsKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return feed.SupportCounts{}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("discarding malformed support counts", "device", device, "error", err)
		return feed.SupportCounts{}, nil
	}
	return feed.SanitizeCounts(raw), nil
}

// SaveCounts persists the device's support counts.
func (s *Store) SaveCounts(ctx context.Context, device string, counts feed.SupportCounts) error {
	if counts == nil {
		counts = feed.SupportCounts{}
	}
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("marshal support counts: %w", err)
	}
	if err := s.kv.Set(ctx, deviceKey(device, CountsKey), data); err != nil {
		return fmt.Errorf("save %s: %w", CountsKey, err)
	}
	return nil
}

// LoadCompleted returns the device's sanitized completed-links history.
// Malformed stored data is logged and treated as empty.
func (s *Store) LoadCompleted(ctx context.Context, device string) ([]feed.CompletedLinkEntry, error) {
	data, err := s.read(ctx, device, CompletedKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []feed.CompletedLinkEntry{}, nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("discarding malformed completed links", "device", device, "error", err)
		return []feed.CompletedLinkEntry{}, nil
	}
	return feed.SanitizeCompleted(raw, s.now()), nil
}

// SaveCompleted persists the device's completed-links history.
func (s *Store) SaveCompleted(ctx context.Context, device string, completed []feed.CompletedLinkEntry) error {
	out := make([]storedCompleted, len(completed))
	for i, c := range completed {
		out[i] = storedCompleted{
			Key:             c.Key,
			User:            c.User,
			Link:            c.Link,
			TransactionHash: c.TransactionHash,
			BlockNumber:     c.BlockNumber,
			CompletedAt:     c.CompletedAt,
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal completed links: %w", err)
	}
	if err := s.kv.Set(ctx, deviceKey(device, CompletedKey), data); err != nil {
		return fmt.Errorf("save %s: %w", CompletedKey, err)
	}
	return nil
}

// Load returns the device's full progress. Every completed key has its count
// pinned to the threshold; counts are re-saved when that changed anything.
func (s *Store) Load(ctx context.Context, device string) (*feed.Progress, error) {
	counts, err := s.LoadCounts(ctx, device)
	if err != nil {
		return nil, err
	}
	completed, err := s.LoadCompleted(ctx, device)
	if err != nil {
		return nil, err
	}

	p := &feed.Progress{Counts: counts, Completed: completed}
	if p.PinCompleted() {
		if err := s.SaveCounts(ctx, device, p.Counts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Save persists whichever parts of the progress a support changed.
func (s *Store) Save(ctx context.Context, device string, p *feed.Progress, r feed.SupportResult) error {
	if r.CountChanged || r.HistoryChanged {
		if err := s.SaveCounts(ctx, device, p.Counts); err != nil {
			return err
		}
	}
	if r.HistoryChanged {
		return s.SaveCompleted(ctx, device, p.Completed)
	}
	return nil
}

// Reset removes all of the device's stored progress.
func (s *Store) Reset(ctx context.Context, device string) error {
	for _, key := range []string{CountsKey, CompletedKey} {
		if err := s.kv.Remove(ctx, deviceKey(device, key)); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	return nil
}
