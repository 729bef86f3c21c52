package hub

import (
	"context"
	"errors"
	"time"

	"engagehub/internal/feed"
	"engagehub/internal/metrics"
)

// Totals are the aggregate counts shown on badges and counters.
type Totals struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Unseen    int `json:"unseen"`
}

// View is one device's picture of the feed.
type View struct {
	Active      []feed.LinkEntry
	Completed   []feed.CompletedLinkEntry
	Counts      feed.SupportCounts
	Totals      Totals
	Highlights  []string
	LastError   string
	RefreshedAt time.Time
}

// Snapshot builds the device's view: the feed minus what the device has
// completed, its completed history, and its support counts.
func (h *Hub) Snapshot(ctx context.Context, device string) (*View, error) {
	progress, err := h.loadProgress(ctx, device)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	entries := h.entries
	view := &View{
		Highlights:  append([]string(nil), h.highlights...),
		LastError:   h.lastErr,
		RefreshedAt: h.refreshedAt,
	}
	view.Totals.Unseen = h.unseen
	h.mu.Unlock()

	view.Active = progress.Active(entries)
	view.Completed = progress.Completed
	view.Counts = progress.Counts
	view.Totals.Active = len(view.Active)
	view.Totals.Completed = len(view.Completed)
	return view, nil
}

// Completed returns the device's completed history, newest first.
func (h *Hub) Completed(ctx context.Context, device string) ([]feed.CompletedLinkEntry, error) {
	progress, err := h.loadProgress(ctx, device)
	if err != nil {
		return nil, err
	}
	return progress.Completed, nil
}

// loadProgress reads the device's progress under progressMu. Load may re-save
// pinned counts, which must not interleave with a concurrent support.
func (h *Hub) loadProgress(ctx context.Context, device string) (*feed.Progress, error) {
	h.progressMu.Lock()
	defer h.progressMu.Unlock()
	return h.supports.Load(ctx, device)
}

// RecordSupport adds one support from device to the link with key. Keys the
// hub has never seen and the device has not completed are rejected.
func (h *Hub) RecordSupport(ctx context.Context, device, key string) (feed.SupportResult, error) {
	if key == "" {
		return feed.SupportResult{}, feed.ErrEmptyKey
	}

	h.progressMu.Lock()
	defer h.progressMu.Unlock()

	progress, err := h.supports.Load(ctx, device)
	if err != nil {
		return feed.SupportResult{}, err
	}

	entries := h.Entries()
	if _, inFeed := feed.Find(entries, key); !inFeed && !progress.IsCompleted(key) {
		return feed.SupportResult{}, ErrUnknownLink
	}

	result := feed.RecordSupport(progress, entries, key, h.now())
	if err := h.supports.Save(ctx, device, progress, result); err != nil {
		return feed.SupportResult{}, err
	}

	switch {
	case result.Completed:
		metrics.RecordSupport("completed")
	case result.Changed():
		metrics.RecordSupport("counted")
	default:
		metrics.RecordSupport("noop")
	}
	return result, nil
}

// ResetSupports clears the device's counts and history.
func (h *Hub) ResetSupports(ctx context.Context, device string) error {
	h.progressMu.Lock()
	defer h.progressMu.Unlock()
	return h.supports.Reset(ctx, device)
}

// IsUnknown reports whether err means the link does not exist.
func IsUnknown(err error) bool {
	return errors.Is(err, ErrUnknownLink) || errors.Is(err, feed.ErrEmptyKey)
}
