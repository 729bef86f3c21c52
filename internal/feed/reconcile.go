package feed

import (
	"sort"
	"time"
)

// Mode selects what a merge starts from.
type Mode int

const (
	// ModeMerge folds incoming entries into the existing feed.
	ModeMerge Mode = iota
	// ModeReplace rebuilds the feed from the incoming entries alone.
	ModeReplace
)

// MergeOptions controls a single Merge call.
type MergeOptions struct {
	Mode Mode
	// TrackNew overrides the default of tracking new keys in ModeMerge only.
	TrackNew *bool
}

func (o MergeOptions) trackNew() bool {
	if o.TrackNew != nil {
		return *o.TrackNew
	}
	return o.Mode != ModeReplace
}

// MergeResult is the reconciled feed plus the bookkeeping derived from it.
type MergeResult struct {
	Entries []LinkEntry
	// NewKeys lists keys absent before the merge, in arrival order. Empty
	// unless tracking was enabled.
	NewKeys []string
	// Known is the membership set of every key in Entries.
	Known map[string]struct{}
	// Dropped counts incoming entries rejected for lacking a key.
	Dropped int
}

// Merge reconciles incoming shares with the existing feed. Entries are keyed
// by LinkKey; a repeated key takes the incoming fields but keeps the earlier
// AddedAt unless the incoming share supplies its own, and keeps the highest
// block number seen. The result is ordered by block number, then AddedAt,
// both descending, so unconfirmed entries (block 0) trail the confirmed ones.
func Merge(existing []LinkEntry, incoming []RawLink, opts MergeOptions, now time.Time) MergeResult {
	var base []LinkEntry
	if opts.Mode != ModeReplace {
		base = existing
	}

	byKey := make(map[string]int, len(base)+len(incoming))
	entries := make([]LinkEntry, 0, len(base)+len(incoming))
	for _, e := range base {
		if e.Key == "" {
			continue
		}
		if i, ok := byKey[e.Key]; ok {
			entries[i] = e
			continue
		}
		byKey[e.Key] = len(entries)
		entries = append(entries, e)
	}

	track := opts.trackNew()
	result := MergeResult{}
	for _, raw := range incoming {
		item, err := Normalize(raw)
		if err != nil {
			result.Dropped++
			continue
		}

		i, exists := byKey[item.Key]
		if item.AddedAt == 0 {
			if exists && entries[i].AddedAt > 0 {
				item.AddedAt = entries[i].AddedAt
			} else {
				item.AddedAt = Millis(now)
			}
		}

		if exists {
			// Block height only moves forward; a late or unconfirmed report
			// of the same share must not pull it back down the feed.
			if entries[i].BlockNumber > item.BlockNumber {
				item.BlockNumber = entries[i].BlockNumber
			}
			entries[i] = item
			continue
		}
		if track {
			result.NewKeys = append(result.NewKeys, item.Key)
		}
		byKey[item.Key] = len(entries)
		entries = append(entries, item)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].BlockNumber != entries[b].BlockNumber {
			return entries[a].BlockNumber > entries[b].BlockNumber
		}
		return entries[a].AddedAt > entries[b].AddedAt
	})

	result.Entries = entries
	result.Known = KeySet(entries)
	return result
}

// KeySet returns the membership set of the given entries' keys.
func KeySet(entries []LinkEntry) map[string]struct{} {
	known := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Key != "" {
			known[e.Key] = struct{}{}
		}
	}
	return known
}

// Find returns the entry with the given key.
func Find(entries []LinkEntry, key string) (LinkEntry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return LinkEntry{}, false
}
