// Package hub owns the link feed state. A single Hub serializes every state
// transition: batch refreshes, live pushes and support actions.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"engagehub/internal/chain"
	"engagehub/internal/feed"
	"engagehub/internal/metrics"
	"engagehub/internal/supports"
)

// DefaultBatchSize is how many recent shares a refresh asks for.
const DefaultBatchSize = 40

var (
	// ErrUnknownLink is returned when supporting a key the hub has never seen.
	ErrUnknownLink = errors.New("link not found in feed")
	// ErrRefreshFailed wraps fetch errors from the link source.
	ErrRefreshFailed = errors.New("failed to refresh link feed")
)

// Options configures a Hub.
type Options struct {
	BatchSize      int
	RefreshTimeout time.Duration
}

// Hub is the feed controller.
type Hub struct {
	source   chain.LinkSource
	supports *supports.Store
	opts     Options
	now      func() time.Time

	mu          sync.Mutex
	entries     []feed.LinkEntry
	known       map[string]struct{}
	highlights  []string
	unseen      int
	lastErr     string
	refreshedAt time.Time

	// progressMu serializes read-modify-write of per-device progress.
	progressMu sync.Mutex
}

// New creates a Hub reading from source and persisting through store.
func New(source chain.LinkSource, store *supports.Store, opts Options) *Hub {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 15 * time.Second
	}
	return &Hub{
		source:   source,
		supports: store,
		opts:     opts,
		now:      time.Now,
		known:    make(map[string]struct{}),
	}
}

// Refresh replaces the feed with the source's recent shares. On failure the
// previous feed is kept and the error is recorded for the API to surface.
func (h *Hub) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.opts.RefreshTimeout)
	defer cancel()

	links, err := h.source.RecentLinks(ctx, h.opts.BatchSize)
	if err != nil {
		h.mu.Lock()
		h.lastErr = err.Error()
		h.mu.Unlock()
		metrics.RecordRefresh("error")
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.apply(feed.Merge(h.entries, links, feed.MergeOptions{Mode: feed.ModeReplace}, h.now()))
	h.lastErr = ""
	h.refreshedAt = h.now()
	metrics.RecordRefresh("ok")
	return nil
}

// Warm merges archived shares into the feed without marking them new.
func (h *Hub) Warm(ctx context.Context, archive chain.Archive) error {
	links, err := archive.RecentLinkShares(ctx, h.opts.BatchSize)
	if err != nil {
		return fmt.Errorf("warm feed from archive: %w", err)
	}
	h.Seed(links)
	return nil
}

// Seed merges links into the feed without marking them new.
func (h *Hub) Seed(links []feed.RawLink) {
	off := false
	h.mu.Lock()
	defer h.mu.Unlock()
	h.apply(feed.Merge(h.entries, links, feed.MergeOptions{TrackNew: &off}, h.now()))
}

// HandleLinkShared folds one live push into the feed. Pushes for keys already
// in the feed are ignored. It returns the keys that were new.
func (h *Hub) HandleLinkShared(raw feed.RawLink) []string {
	if raw.AddedAt == 0 {
		raw.AddedAt = feed.Millis(h.now())
	}
	entry, err := feed.Normalize(raw)
	if err != nil {
		metrics.RecordLiveLink("invalid")
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, seen := h.known[entry.Key]; seen {
		metrics.RecordLiveLink("duplicate")
		return nil
	}

	result := feed.Merge(h.entries, []feed.RawLink{raw}, feed.MergeOptions{Mode: feed.ModeMerge}, h.now())
	h.apply(result)
	for _, k := range result.NewKeys {
		h.highlights = appendUnique(h.highlights, k)
	}
	h.unseen += len(result.NewKeys)
	if len(result.NewKeys) > 0 {
		metrics.RecordLiveLink("added")
		slog.Info("new link detected on-chain", "key", entry.Key, "user", entry.User, "block", entry.BlockNumber)
	}
	return result.NewKeys
}

func (h *Hub) apply(result feed.MergeResult) {
	h.entries = result.Entries
	h.known = result.Known
}

// MarkSeen clears the unseen counter and pending highlights.
func (h *Hub) MarkSeen() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unseen = 0
	h.highlights = nil
}

// Entries returns a copy of the full feed, completed links included.
func (h *Hub) Entries() []feed.LinkEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]feed.LinkEntry(nil), h.entries...)
}

// Known reports whether key is in the feed's membership set.
func (h *Hub) Known(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.known[key]
	return ok
}

// Status returns the last refresh error, empty after a success, and when the
// feed was last refreshed.
func (h *Hub) Status() (lastErr string, refreshedAt time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastErr, h.refreshedAt
}

// Stats returns the feed gauges.
func (h *Hub) Stats() metrics.FeedStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return metrics.FeedStats{Entries: len(h.entries), Unseen: h.unseen}
}

func appendUnique(keys []string, key string) []string {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}
