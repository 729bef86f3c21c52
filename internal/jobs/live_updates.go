package jobs

import (
	"context"
	"errors"
	"log"
	"time"

	"engagehub/internal/chain"
	"engagehub/internal/feed"
)

// LinkHandler receives live shares.
type LinkHandler interface {
	HandleLinkShared(raw feed.RawLink) []string
}

// LiveUpdates keeps a LinkShared subscription bound, rebinding after the
// source drops it.
type LiveUpdates struct {
	source      chain.LinkSource
	handler     LinkHandler
	rebindDelay time.Duration
}

// NewLiveUpdates creates a live update listener.
func NewLiveUpdates(source chain.LinkSource, handler LinkHandler, rebindDelay time.Duration) *LiveUpdates {
	return &LiveUpdates{source: source, handler: handler, rebindDelay: rebindDelay}
}

// Start binds the subscription and blocks until ctx is cancelled. Sources
// without push support are logged and skipped; the refresh loop still runs.
func (l *LiveUpdates) Start(ctx context.Context) {
	log.Println("Live updates started")

	for {
		sub, err := l.source.OnLinkShared(ctx, func(raw feed.RawLink) {
			l.handler.HandleLinkShared(raw)
		})
		switch {
		case errors.Is(err, chain.ErrLiveUnsupported):
			log.Println("Live updates: source has no push support, relying on refresh")
			return
		case err != nil:
			log.Printf("Live updates: subscribe failed: %v", err)
		default:
			err = l.wait(ctx, sub)
			if err == nil {
				log.Println("Live updates stopped")
				return
			}
			log.Printf("Live updates: subscription dropped: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Println("Live updates stopped")
			return
		case <-time.After(l.rebindDelay):
		}
	}
}

// wait blocks until the subscription fails or ctx ends. It returns nil only
// when ctx ended.
func (l *LiveUpdates) wait(ctx context.Context, sub chain.Subscription) error {
	defer sub.Unsubscribe()
	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-sub.Err():
		if !ok || err == nil {
			return errors.New("subscription closed")
		}
		return err
	}
}
