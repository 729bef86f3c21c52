// Package feed holds the pure state transitions behind the community link
// feed: key derivation, merging fetched or pushed shares into the feed, and
// advancing per-link support toward completion.
package feed

import (
	"errors"
	"strings"
	"time"
)

const (
	// CompletionThreshold is the support count at which a link is complete.
	CompletionThreshold = 3
	// MaxCompletedHistory caps the completed-links history.
	MaxCompletedHistory = 50
	// DefaultUser is recorded when a share arrives without a sender address.
	DefaultUser = "0x0"
)

// ErrEmptyKey is returned when a link carries neither a hash nor a usable URL.
var ErrEmptyKey = errors.New("link has no identifying key")

// RawLink is a link share as delivered by the contract event layer.
type RawLink struct {
	User            string `json:"user"`
	Link            string `json:"link"`
	TransactionHash string `json:"transactionHash,omitempty"`
	BlockNumber     uint64 `json:"blockNumber"`
	AddedAt         int64  `json:"addedAt,omitempty"`
}

// LinkEntry is one shared link in the feed. AddedAt is in Unix milliseconds
// and BlockNumber is zero while the share is unconfirmed.
type LinkEntry struct {
	Key             string  `json:"key"`
	User            string  `json:"user"`
	Link            string  `json:"link"`
	TransactionHash *string `json:"transactionHash"`
	BlockNumber     uint64  `json:"blockNumber"`
	AddedAt         int64   `json:"addedAt"`
}

// IsConfirmed reports whether the share has been mined.
func (e LinkEntry) IsConfirmed() bool {
	return e.BlockNumber > 0
}

// CompletedLinkEntry is a link that reached the completion threshold.
type CompletedLinkEntry struct {
	LinkEntry
	CompletedAt int64 `json:"completedAt"`
}

// SupportCounts maps a link key to its support count in [0, CompletionThreshold].
type SupportCounts map[string]int

// Normalize turns a raw share into a feed entry. AddedAt is carried over as
// given (zero when absent) so Merge can decide which timestamp wins.
func Normalize(raw RawLink) (LinkEntry, error) {
	link := strings.TrimSpace(raw.Link)
	hash := strings.TrimSpace(raw.TransactionHash)
	key := LinkKey(link, hash)
	if key == "" {
		return LinkEntry{}, ErrEmptyKey
	}

	user := strings.TrimSpace(raw.User)
	if user == "" {
		user = DefaultUser
	}

	entry := LinkEntry{
		Key:         key,
		User:        user,
		Link:        link,
		BlockNumber: raw.BlockNumber,
	}
	if hash != "" {
		entry.TransactionHash = &hash
	}
	if raw.AddedAt > 0 {
		entry.AddedAt = raw.AddedAt
	}
	return entry, nil
}

// Millis converts t to Unix milliseconds, the timestamp unit of every entry.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
