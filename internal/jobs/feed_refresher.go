// Package jobs runs the background loops that keep the feed current.
package jobs

import (
	"context"
	"log"
	"time"
)

// Refresher is the part of the hub the refresh loop drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// FeedRefresher periodically reloads the recent-link batch.
type FeedRefresher struct {
	hub      Refresher
	interval time.Duration
}

// NewFeedRefresher creates a new feed refresher.
func NewFeedRefresher(hub Refresher, interval time.Duration) *FeedRefresher {
	return &FeedRefresher{hub: hub, interval: interval}
}

// Start begins the refresh loop. It blocks until ctx is cancelled.
func (f *FeedRefresher) Start(ctx context.Context) {
	log.Printf("Feed refresher started (interval: %v)", f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Feed refresher stopped")
			return
		case <-ticker.C:
			f.refresh(ctx)
		}
	}
}

func (f *FeedRefresher) refresh(ctx context.Context) {
	if err := f.hub.Refresh(ctx); err != nil {
		// The hub keeps the previous feed; the next tick retries.
		log.Printf("Feed refresher: %v", err)
	}
}
