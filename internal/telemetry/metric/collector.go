package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreStats abstracts the store statistics we need. An interface keeps
// this package from importing the store package.
type StoreStats interface {
	// Len is the number of physically present keys, swept or not.
	Len() int
}

// Collector implements prometheus.Collector by pulling current values
// from the store on each scrape. The store already tracks these under
// its own lock; this just exposes them in Prometheus format.
type Collector struct {
	store     StoreStats
	startTime time.Time

	uptime    *prometheus.Desc
	keysTotal *prometheus.Desc
}

// NewCollector creates a Collector that reads live stats from store.
func NewCollector(store StoreStats, startTime time.Time) *Collector {
	return &Collector{
		store:     store,
		startTime: startTime,

		uptime:    prometheus.NewDesc(namespace+"_uptime_seconds", "Seconds since server start.", nil, nil),
		keysTotal: prometheus.NewDesc(namespace+"_keys_total", "Number of keys physically present in the store.", nil, nil),
	}
}

// Describe sends all descriptor definitions to the channel.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.uptime
	ch <- c.keysTotal
}

// Collect pulls current values and sends them as Prometheus metrics.
// This runs on every scrape, not on the hot command path.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, time.Since(c.startTime).Seconds())

	if c.store != nil {
		ch <- prometheus.MustNewConstMetric(c.keysTotal, prometheus.GaugeValue, float64(c.store.Len()))
	}
}
