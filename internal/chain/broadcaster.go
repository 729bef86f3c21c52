package chain

import (
	"context"
	"sync"

	"engagehub/internal/feed"
)

// Broadcaster is an in-process LinkSource. It serves a fixed set of recent
// links and fans published shares out to live subscribers. It backs the
// service when no RPC endpoint is configured.
type Broadcaster struct {
	mu     sync.Mutex
	recent []feed.RawLink
	subs   map[*broadcastSub]struct{}
	err    error
}

// NewBroadcaster creates a broadcaster that reports recent as its history.
func NewBroadcaster(recent []feed.RawLink) *Broadcaster {
	return &Broadcaster{
		recent: append([]feed.RawLink(nil), recent...),
		subs:   make(map[*broadcastSub]struct{}),
	}
}

// SeedLinks turns plain URLs into unconfirmed raw links from DefaultUser.
func SeedLinks(urls []string) []feed.RawLink {
	links := make([]feed.RawLink, 0, len(urls))
	for _, u := range urls {
		links = append(links, feed.RawLink{User: feed.DefaultUser, Link: u})
	}
	return links
}

// FailRecent makes RecentLinks return err until it is called again with nil.
func (b *Broadcaster) FailRecent(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// RecentLinks returns up to limit of the most recently published links.
func (b *Broadcaster) RecentLinks(_ context.Context, limit int) ([]feed.RawLink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	links := b.recent
	if limit > 0 && len(links) > limit {
		links = links[len(links)-limit:]
	}
	return append([]feed.RawLink(nil), links...), nil
}

// Publish records link as recent and delivers it to every subscriber.
func (b *Broadcaster) Publish(link feed.RawLink) {
	b.mu.Lock()
	b.recent = append(b.recent, link)
	subs := make([]*broadcastSub, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(link)
	}
}

// Drop kills every live subscription with err, as a closed socket would.
func (b *Broadcaster) Drop(err error) {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[*broadcastSub]struct{})
	b.mu.Unlock()

	for s := range subs {
		s.fail(err)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// OnLinkShared registers handler until the subscription is unsubscribed.
func (b *Broadcaster) OnLinkShared(_ context.Context, handler func(feed.RawLink)) (Subscription, error) {
	s := &broadcastSub{
		owner:   b,
		handler: handler,
		errc:    make(chan error, 1),
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

type broadcastSub struct {
	owner   *Broadcaster
	handler func(feed.RawLink)
	errc    chan error
	once    sync.Once
}

func (s *broadcastSub) Unsubscribe() {
	s.owner.mu.Lock()
	delete(s.owner.subs, s)
	s.owner.mu.Unlock()
	s.once.Do(func() { close(s.errc) })
}

func (s *broadcastSub) Err() <-chan error {
	return s.errc
}

func (s *broadcastSub) fail(err error) {
	s.once.Do(func() {
		s.errc <- err
		close(s.errc)
	})
}
