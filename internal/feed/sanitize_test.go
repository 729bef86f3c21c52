package feed

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"
)

func TestSanitizeCounts(t *testing.T) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(`{
		"0xa": 1,
		"0xb": 2.9,
		"0xc": 7,
		"0xd": -1,
		"0xe": 0,
		"0xf": "2",
		"0x10": "many",
		"0x11": null,
		"0x12": {"count": 2},
		"0x13": "Infinity",
		"": 2
	}`), &raw); err != nil {
		t.Fatal(err)
	}

	got := SanitizeCounts(raw)
	want := SupportCounts{"0xa": 1, "0xb": 2, "0xc": 3, "0xf": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeCounts() = %v, want %v", got, want)
	}
}

func TestSanitizeCompleted(t *testing.T) {
	var raw []any
	if err := json.Unmarshal([]byte(`[
		{"key": "0xa", "user": "0x1", "link": "https://a.example", "transactionHash": "0xA", "blockNumber": 3, "completedAt": 100},
		{"key": "0xa", "user": "0x1", "link": "https://a.example", "transactionHash": "0xa", "blockNumber": 3, "completedAt": 900},
		{"user": "0x2", "link": "https://b.example", "completedAt": 500},
		{"user": "0x3", "link": "", "completedAt": 700},
		"garbage",
		{"user": "0x4", "link": "https://c.example", "completedAt": "bad"}
	]`), &raw); err != nil {
		t.Fatal(err)
	}

	got := SanitizeCompleted(raw, testNow)

	if len(got) != 3 {
		t.Fatalf("SanitizeCompleted() kept %d entries, want 3: %+v", len(got), got)
	}
	wantKeys := []string{LinkKey("https://c.example", ""), "0xa", LinkKey("https://b.example", "")}
	for i, k := range wantKeys {
		if got[i].Key != k {
			t.Errorf("entry %d key = %q, want %q", i, got[i].Key, k)
		}
	}
	if got[0].CompletedAt != testNow.UnixMilli() {
		t.Errorf("invalid completedAt = %d, want now", got[0].CompletedAt)
	}
	if got[1].CompletedAt != 900 {
		t.Errorf("duplicate kept completedAt %d, want most recent 900", got[1].CompletedAt)
	}
}

func TestSanitizeCompleted_Caps(t *testing.T) {
	raw := make([]any, 0, MaxCompletedHistory+10)
	for i := 0; i < MaxCompletedHistory+10; i++ {
		raw = append(raw, map[string]any{
			"link":        fmt.Sprintf("https://l%d.example", i),
			"completedAt": float64(1000 + i),
		})
	}

	got := SanitizeCompleted(raw, testNow)

	if len(got) != MaxCompletedHistory {
		t.Fatalf("len = %d, want %d", len(got), MaxCompletedHistory)
	}
	if got[len(got)-1].CompletedAt != 1010 {
		t.Errorf("oldest kept completedAt = %d, want 1010", got[len(got)-1].CompletedAt)
	}
}
