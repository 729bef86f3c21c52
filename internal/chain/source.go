// Package chain is the contract event layer: it delivers LinkShared records
// either as a batch of recent shares or as a live push subscription.
package chain

import (
	"context"
	"errors"

	"engagehub/internal/feed"
)

// ErrLiveUnsupported is returned by OnLinkShared when the source cannot push.
var ErrLiveUnsupported = errors.New("link source does not support live subscriptions")

// Subscription is a live LinkShared feed. Err delivers at most one error,
// after which the subscription is dead and must be rebound.
type Subscription interface {
	Unsubscribe()
	Err() <-chan error
}

// LinkSource supplies LinkShared records.
type LinkSource interface {
	// RecentLinks returns up to limit of the most recent shares.
	RecentLinks(ctx context.Context, limit int) ([]feed.RawLink, error)
	// OnLinkShared calls handler for every share pushed after it returns.
	OnLinkShared(ctx context.Context, handler func(feed.RawLink)) (Subscription, error)
}

// Archive stores reconciled shares so the feed can be warmed on restart.
type Archive interface {
	SaveLinkShares(ctx context.Context, entries []feed.LinkEntry) error
	RecentLinkShares(ctx context.Context, limit int) ([]feed.RawLink, error)
}
