package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFeedCollector(t *testing.T) {
	c := &FeedCollector{stats: func() FeedStats { return FeedStats{Entries: 7, Unseen: 2} }}

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if n := testutil.CollectAndCount(c); n != 2 {
		t.Errorf("collected %d metrics, want 2", n)
	}
}

func TestRecordCounters(t *testing.T) {
	before := testutil.ToFloat64(supportsTotal.WithLabelValues("completed"))
	RecordSupport("completed")
	if got := testutil.ToFloat64(supportsTotal.WithLabelValues("completed")); got != before+1 {
		t.Errorf("supports completed = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(liveLinksTotal.WithLabelValues("duplicate"))
	RecordLiveLink("duplicate")
	if got := testutil.ToFloat64(liveLinksTotal.WithLabelValues("duplicate")); got != before+1 {
		t.Errorf("live duplicate = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(refreshesTotal.WithLabelValues("error"))
	RecordRefresh("error")
	if got := testutil.ToFloat64(refreshesTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("refresh error = %v, want %v", got, before+1)
	}
}
