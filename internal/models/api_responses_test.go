package models

import (
	"encoding/json"
	"testing"
	"time"

	"engagehub/internal/feed"
	"engagehub/internal/hub"
)

func TestRemaining(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 3},
		{1, 2},
		{2, 1},
		{3, 0},
		{7, 0},
		{-1, 3},
	}
	for _, tt := range tests {
		if got := Remaining(tt.count); got != tt.want {
			t.Errorf("Remaining(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestNewFeedResponse(t *testing.T) {
	hash := "0xAbC"
	view := &hub.View{
		Active: []feed.LinkEntry{
			{Key: "0xabc", User: "0x1", Link: "https://a.example", TransactionHash: &hash, BlockNumber: 7},
			{Key: "javascript%3Aalert(1)", User: "0x0", Link: "javascript:alert(1)"},
		},
		Counts:     feed.SupportCounts{"0xabc": 2},
		Highlights: []string{"0xabc"},
		Totals:     hub.Totals{Active: 2},
	}
	txURL := func(h string) string { return "https://celoscan.io/tx/" + h }

	resp := NewFeedResponse(view, txURL)

	a := resp.Active[0]
	if a.Supports != 2 || a.Remaining != 1 || !a.Confirmed || !a.Highlighted || !a.Safe {
		t.Errorf("first card = %+v", a)
	}
	if a.ExplorerURL != "https://celoscan.io/tx/0xAbC" {
		t.Errorf("ExplorerURL = %q", a.ExplorerURL)
	}

	b := resp.Active[1]
	if b.Safe || b.Confirmed || b.Highlighted || b.ExplorerURL != "" || b.Remaining != 3 {
		t.Errorf("second card = %+v", b)
	}
	if resp.RefreshedAt != nil {
		t.Error("RefreshedAt set for a feed never refreshed")
	}
}

func TestFeedResponse_JSONShape(t *testing.T) {
	view := &hub.View{
		Completed:   []feed.CompletedLinkEntry{{LinkEntry: feed.LinkEntry{Key: "0xa", Link: "https://a.example"}, CompletedAt: 42}},
		RefreshedAt: time.UnixMilli(1_700_000_000_000).UTC(),
	}

	data, err := json.Marshal(NewFeedResponse(view, nil))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	for _, field := range []string{"active", "completed", "counts", "totals", "highlights", "refreshedAt"} {
		if _, ok := got[field]; !ok {
			t.Errorf("missing field %q in %s", field, data)
		}
	}
	completed := got["completed"].([]any)[0].(map[string]any)
	if completed["key"] != "0xa" || completed["completedAt"] != float64(42) {
		t.Errorf("completed entry = %v", completed)
	}
	if _, ok := completed["transactionHash"]; !ok {
		t.Error("transactionHash should be present as null")
	}
}

func TestNewSupportResponse(t *testing.T) {
	got := NewSupportResponse(feed.SupportResult{Key: "0xa", Count: 3, Completed: true})
	want := SupportResponse{Key: "0xa", Count: 3, Remaining: 0, Completed: true}
	if got != want {
		t.Errorf("NewSupportResponse() = %+v, want %+v", got, want)
	}
}
