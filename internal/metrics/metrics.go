package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// FeedStats is a point-in-time view of the feed for the collector.
type FeedStats struct {
	Entries int
	Unseen  int
}

var (
	feedEntriesDesc = prometheus.NewDesc(
		"engagehub_feed_entries",
		"Number of link entries currently in the feed",
		nil,
		nil,
	)
	feedUnseenDesc = prometheus.NewDesc(
		"engagehub_feed_unseen_links",
		"Number of live-pushed links not yet marked as seen",
		nil,
		nil,
	)

	supportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagehub_link_supports_total",
			Help: "Support actions by outcome",
		},
		[]string{"outcome"},
	)
	liveLinksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagehub_live_links_total",
			Help: "Live LinkShared pushes by outcome",
		},
		[]string{"outcome"},
	)
	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagehub_feed_refreshes_total",
			Help: "Full feed refreshes by outcome",
		},
		[]string{"outcome"},
	)
)

// FeedCollector is a custom Prometheus collector that reads feed gauges from
// the hub on each scrape.
type FeedCollector struct {
	stats func() FeedStats
}

// Describe sends the metric descriptors to the channel.
func (c *FeedCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- feedEntriesDesc
	ch <- feedUnseenDesc
}

// Collect emits the current feed gauges.
func (c *FeedCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(feedEntriesDesc, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(feedUnseenDesc, prometheus.GaugeValue, float64(s.Unseen))
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(stats func() FeedStats) {
	initOnce.Do(func() {
		prometheus.MustRegister(&FeedCollector{stats: stats}, supportsTotal, liveLinksTotal, refreshesTotal)
	})
}

// RecordSupport counts a support action: "counted", "completed" or "noop".
func RecordSupport(outcome string) {
	supportsTotal.WithLabelValues(outcome).Inc()
}

// RecordLiveLink counts a live push: "added", "duplicate" or "invalid".
func RecordLiveLink(outcome string) {
	liveLinksTotal.WithLabelValues(outcome).Inc()
}

// RecordRefresh counts a feed refresh: "ok" or "error".
func RecordRefresh(outcome string) {
	refreshesTotal.WithLabelValues(outcome).Inc()
}
