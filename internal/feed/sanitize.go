package feed

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SanitizeCounts coerces persisted counts into SupportCounts. Values that are
// not numbers, not finite, or not positive are dropped; the rest are floored
// and clamped to the threshold.
func SanitizeCounts(raw map[string]any) SupportCounts {
	counts := make(SupportCounts, len(raw))
	for key, value := range raw {
		if key == "" {
			continue
		}
		n, ok := toNumber(value)
		if !ok || n <= 0 {
			continue
		}
		counts[key] = int(math.Min(CompletionThreshold, math.Floor(n)))
	}
	return counts
}

// SanitizeCompleted rebuilds a persisted completed-links list. Items that do
// not normalize to a keyed entry are dropped, duplicates keep the most recent
// completedAt, and the result is sorted newest first and capped at
// MaxCompletedHistory. A missing or invalid completedAt becomes now.
func SanitizeCompleted(raw []any, now time.Time) []CompletedLinkEntry {
	byKey := make(map[string]int, len(raw))
	out := make([]CompletedLinkEntry, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry, err := Normalize(rawFromObject(obj))
		if err != nil {
			continue
		}
		completedAt := Millis(now)
		if n, ok := toNumber(obj["completedAt"]); ok && n > 0 {
			completedAt = int64(n)
		}
		if entry.AddedAt == 0 {
			entry.AddedAt = completedAt
		}

		c := CompletedLinkEntry{LinkEntry: entry, CompletedAt: completedAt}
		if i, seen := byKey[entry.Key]; seen {
			if c.CompletedAt > out[i].CompletedAt {
				out[i] = c
			}
			continue
		}
		byKey[entry.Key] = len(out)
		out = append(out, c)
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CompletedAt > out[b].CompletedAt
	})
	if len(out) > MaxCompletedHistory {
		out = out[:MaxCompletedHistory]
	}
	return out
}

func rawFromObject(obj map[string]any) RawLink {
	raw := RawLink{
		User:            stringField(obj, "user"),
		Link:            stringField(obj, "link"),
		TransactionHash: stringField(obj, "transactionHash"),
	}
	if raw.User == "" {
		raw.User = stringField(obj, "address")
	}
	if n, ok := toNumber(obj["blockNumber"]); ok && n > 0 {
		raw.BlockNumber = uint64(n)
	}
	if n, ok := toNumber(obj["addedAt"]); ok && n > 0 {
		raw.AddedAt = int64(n)
	}
	return raw
}

func stringField(obj map[string]any, name string) string {
	switch v := obj[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// toNumber mirrors the lenient numeric coercion the browser applied to
// stored values: numbers pass through, numeric strings are parsed.
func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
