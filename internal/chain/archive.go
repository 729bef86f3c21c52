package chain

import (
	"context"
	"log/slog"
	"time"

	"engagehub/internal/feed"
)

// Archiving wraps a LinkSource and copies every share it delivers into an
// Archive. Archive failures are logged and never fail the read.
type Archiving struct {
	LinkSource
	archive Archive
	now     func() time.Time
}

// WithArchive returns src wrapped so its shares are archived.
func WithArchive(src LinkSource, archive Archive) *Archiving {
	return &Archiving{LinkSource: src, archive: archive, now: time.Now}
}

// RecentLinks reads from the wrapped source and archives the result.
func (a *Archiving) RecentLinks(ctx context.Context, limit int) ([]feed.RawLink, error) {
	links, err := a.LinkSource.RecentLinks(ctx, limit)
	if err != nil {
		return nil, err
	}
	a.store(ctx, links)
	return links, nil
}

// OnLinkShared archives each pushed share before handing it on.
func (a *Archiving) OnLinkShared(ctx context.Context, handler func(feed.RawLink)) (Subscription, error) {
	return a.LinkSource.OnLinkShared(ctx, func(link feed.RawLink) {
		a.store(context.WithoutCancel(ctx), []feed.RawLink{link})
		handler(link)
	})
}

func (a *Archiving) store(ctx context.Context, links []feed.RawLink) {
	if len(links) == 0 {
		return
	}
	entries := feed.Merge(nil, links, feed.MergeOptions{Mode: feed.ModeReplace}, a.now()).Entries
	if err := a.archive.SaveLinkShares(ctx, entries); err != nil {
		slog.Error("failed to archive link shares", "count", len(entries), "error", err)
	}
}
