package feed

import "time"

// Progress is one device's support state: counts per key and the history of
// links it has completed, newest first.
type Progress struct {
	Counts    SupportCounts
	Completed []CompletedLinkEntry
}

// NewProgress returns empty progress.
func NewProgress() *Progress {
	return &Progress{Counts: SupportCounts{}}
}

// Count returns the support count for key, zero when unknown.
func (p *Progress) Count(key string) int {
	if p == nil || p.Counts == nil {
		return 0
	}
	if n := p.Counts[key]; n > 0 {
		return n
	}
	return 0
}

// InHistory reports whether key is in the completed history.
func (p *Progress) InHistory(key string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Completed {
		if c.Key == key {
			return true
		}
	}
	return false
}

// IsCompleted reports whether key has reached the threshold.
func (p *Progress) IsCompleted(key string) bool {
	return p.Count(key) >= CompletionThreshold || p.InHistory(key)
}

// Active filters entries down to those this progress has not completed.
func (p *Progress) Active(entries []LinkEntry) []LinkEntry {
	active := make([]LinkEntry, 0, len(entries))
	for _, e := range entries {
		if e.Key != "" && !p.IsCompleted(e.Key) {
			active = append(active, e)
		}
	}
	return active
}

// PinCompleted sets the count of every completed key to the threshold and
// reports whether any count changed.
func (p *Progress) PinCompleted() bool {
	if p.Counts == nil {
		p.Counts = SupportCounts{}
	}
	changed := false
	for _, c := range p.Completed {
		if c.Key != "" && p.Counts[c.Key] != CompletionThreshold {
			p.Counts[c.Key] = CompletionThreshold
			changed = true
		}
	}
	return changed
}

// SupportResult describes the outcome of RecordSupport.
type SupportResult struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
	// Completed is true only on the call that moved the link into history.
	Completed bool `json:"completed"`
	// CountChanged and HistoryChanged tell the caller what must be persisted.
	CountChanged   bool `json:"-"`
	HistoryChanged bool `json:"-"`
}

// Changed reports whether anything needs persisting.
func (r SupportResult) Changed() bool {
	return r.CountChanged || r.HistoryChanged
}

// RecordSupport advances key's support count by one, clamped to the
// threshold. When the count reaches the threshold and the link is still in
// the active feed it moves to the head of the history, which is then capped
// at MaxCompletedHistory. A link already in history is left untouched.
func RecordSupport(p *Progress, feed []LinkEntry, key string, now time.Time) SupportResult {
	if p.Counts == nil {
		p.Counts = SupportCounts{}
	}

	current := p.Count(key)
	next := current + 1
	if next > CompletionThreshold {
		next = CompletionThreshold
	}

	result := SupportResult{Key: key, Count: next}
	if next != p.Counts[key] {
		p.Counts[key] = next
		result.CountChanged = true
	}

	if next < CompletionThreshold || p.InHistory(key) {
		return result
	}
	entry, ok := Find(feed, key)
	if !ok {
		return result
	}

	p.Completed = pushCompleted(p.Completed, CompletedLinkEntry{
		LinkEntry:   entry,
		CompletedAt: Millis(now),
	})
	result.Completed = true
	result.HistoryChanged = true
	return result
}

// pushCompleted inserts c at the head, removing any prior entry with the same
// key, and truncates to MaxCompletedHistory.
func pushCompleted(history []CompletedLinkEntry, c CompletedLinkEntry) []CompletedLinkEntry {
	out := make([]CompletedLinkEntry, 0, len(history)+1)
	out = append(out, c)
	for _, h := range history {
		if h.Key != c.Key {
			out = append(out, h)
		}
	}
	if len(out) > MaxCompletedHistory {
		out = out[:MaxCompletedHistory]
	}
	return out
}
