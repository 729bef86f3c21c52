package models

import (
	"time"

	"engagehub/internal/feed"
	"engagehub/internal/hub"
	"engagehub/internal/validation"
)

// LinkCard is one active feed entry as the rendering layer draws it.
type LinkCard struct {
	feed.LinkEntry
	Supports    int    `json:"supports"`
	Remaining   int    `json:"remaining"`
	Confirmed   bool   `json:"confirmed"`
	Highlighted bool   `json:"highlighted"`
	Safe        bool   `json:"safe"` // link uses http(s) and may be rendered as an anchor
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// CompletedCard is one completed-history entry.
type CompletedCard struct {
	feed.CompletedLinkEntry
	Safe        bool   `json:"safe"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// FeedResponse is the body of GET /api/feed.
type FeedResponse struct {
	Active      []LinkCard         `json:"active"`
	Completed   []CompletedCard    `json:"completed"`
	Counts      feed.SupportCounts `json:"counts"`
	Totals      hub.Totals         `json:"totals"`
	Highlights  []string           `json:"highlights"`
	LastError   string             `json:"lastError,omitempty"`
	RefreshedAt *time.Time         `json:"refreshedAt,omitempty"`
}

// SupportResponse is the body of POST /api/links/:key/support.
type SupportResponse struct {
	Key       string `json:"key"`
	Count     int    `json:"count"`
	Remaining int    `json:"remaining"`
	Completed bool   `json:"completed"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status      string     `json:"status"`
	Storage     string     `json:"storage"`
	FeedEntries int        `json:"feedEntries"`
	LastError   string     `json:"lastError,omitempty"`
	RefreshedAt *time.Time `json:"refreshedAt,omitempty"`
}

// TxURLFunc maps a transaction hash to an explorer page, or "".
type TxURLFunc func(hash string) string

// NewFeedResponse shapes a hub view for the API.
func NewFeedResponse(view *hub.View, txURL TxURLFunc) FeedResponse {
	highlighted := make(map[string]bool, len(view.Highlights))
	for _, k := range view.Highlights {
		highlighted[k] = true
	}

	resp := FeedResponse{
		Active:     make([]LinkCard, 0, len(view.Active)),
		Completed:  make([]CompletedCard, 0, len(view.Completed)),
		Counts:     view.Counts,
		Totals:     view.Totals,
		Highlights: view.Highlights,
		LastError:  view.LastError,
	}
	if resp.Counts == nil {
		resp.Counts = feed.SupportCounts{}
	}
	if resp.Highlights == nil {
		resp.Highlights = []string{}
	}
	if !view.RefreshedAt.IsZero() {
		at := view.RefreshedAt
		resp.RefreshedAt = &at
	}

	for _, e := range view.Active {
		count := view.Counts[e.Key]
		resp.Active = append(resp.Active, LinkCard{
			LinkEntry:   e,
			Supports:    count,
			Remaining:   Remaining(count),
			Confirmed:   e.IsConfirmed(),
			Highlighted: highlighted[e.Key],
			Safe:        isSafe(e.Link),
			ExplorerURL: explorerURL(e, txURL),
		})
	}
	for _, c := range view.Completed {
		resp.Completed = append(resp.Completed, NewCompletedCard(c, txURL))
	}
	return resp
}

// NewCompletedCard shapes one completed entry for the API.
func NewCompletedCard(c feed.CompletedLinkEntry, txURL TxURLFunc) CompletedCard {
	return CompletedCard{
		CompletedLinkEntry: c,
		Safe:               isSafe(c.Link),
		ExplorerURL:        explorerURL(c.LinkEntry, txURL),
	}
}

// NewSupportResponse shapes a support result for the API.
func NewSupportResponse(r feed.SupportResult) SupportResponse {
	return SupportResponse{
		Key:       r.Key,
		Count:     r.Count,
		Remaining: Remaining(r.Count),
		Completed: r.Completed,
	}
}

// Remaining is how many more supports a link needs to complete.
func Remaining(count int) int {
	if count >= feed.CompletionThreshold {
		return 0
	}
	if count < 0 {
		return feed.CompletionThreshold
	}
	return feed.CompletionThreshold - count
}

func isSafe(link string) bool {
	ok, _ := validation.ValidateURL(link)
	return ok
}

func explorerURL(e feed.LinkEntry, txURL TxURLFunc) string {
	if txURL == nil || e.TransactionHash == nil {
		return ""
	}
	return txURL(*e.TransactionHash)
}
