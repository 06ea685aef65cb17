package gecho

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connsClosedDesc = prometheus.NewDesc(
		"gecho_connections_closed_total",
		"Number of client connections served to completion.",
		nil, nil,
	)
	receivedBytesDesc = prometheus.NewDesc(
		"gecho_received_bytes_total",
		"Bytes read from closed client connections.",
		nil, nil,
	)
	sentBytesDesc = prometheus.NewDesc(
		"gecho_sent_bytes_total",
		"Bytes echoed back on closed client connections.",
		nil, nil,
	)
)

// Collector exports Statistics to Prometheus.
type Collector struct {
	stats Statistics
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(stats Statistics) *Collector {
	return &Collector{stats: stats}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- connsClosedDesc
	ch <- receivedBytesDesc
	ch <- sentBytesDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(connsClosedDesc, prometheus.CounterValue, float64(snap.Conns))
	ch <- prometheus.MustNewConstMetric(receivedBytesDesc, prometheus.CounterValue, float64(snap.InBytes))
	ch <- prometheus.MustNewConstMetric(sentBytesDesc, prometheus.CounterValue, float64(snap.OutBytes))
}
