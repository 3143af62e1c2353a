//go:build exchangemetrics

package exchange

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports the counters tracked in counters.go as
// Prometheus metrics, the same Describe/Collect-on-scrape shape as the
// teacher's own PrometheusCollector over its buffer pool: metrics are
// computed from a snapshot taken at Collect time rather than
// incremented at each call site, so importing this file never forces a
// promauto global-registry call into the hot request path.
type PrometheusCollector struct {
	requests              *prometheus.Desc
	requestErrors         *prometheus.Desc
	resetsClean           *prometheus.Desc
	resetsClosing         *prometheus.Desc
	bodyBytesRead         *prometheus.Desc
	responseBytesWritten  *prometheus.Desc
	decompressionFailures *prometheus.Desc
}

// NewPrometheusCollector builds a collector exposing this package's
// Exchange counters under the "exchange" namespace.
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		requests:              prometheus.NewDesc("exchange_requests_total", "Total request heads successfully parsed", nil, nil),
		requestErrors:         prometheus.NewDesc("exchange_request_errors_total", "Total Wait() failures", nil, nil),
		resetsClean:           prometheus.NewDesc("exchange_resets_clean_total", "Total Reset() calls that kept the connection open", nil, nil),
		resetsClosing:         prometheus.NewDesc("exchange_resets_closing_total", "Total Reset() calls that closed the connection", nil, nil),
		bodyBytesRead:         prometheus.NewDesc("exchange_body_bytes_read_total", "Total decoded request body bytes read", nil, nil),
		responseBytesWritten:  prometheus.NewDesc("exchange_response_bytes_written_total", "Total response body bytes written", nil, nil),
		decompressionFailures: prometheus.NewDesc("exchange_decompression_failures_total", "Total request bodies that failed to decompress", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.requestErrors
	ch <- c.resetsClean
	ch <- c.resetsClosing
	ch <- c.bodyBytesRead
	ch <- c.responseBytesWritten
	ch <- c.decompressionFailures
}

// Collect implements prometheus.Collector.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	s := Counters()
	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(s.Requests))
	ch <- prometheus.MustNewConstMetric(c.requestErrors, prometheus.CounterValue, float64(s.RequestErrors))
	ch <- prometheus.MustNewConstMetric(c.resetsClean, prometheus.CounterValue, float64(s.ResetsClean))
	ch <- prometheus.MustNewConstMetric(c.resetsClosing, prometheus.CounterValue, float64(s.ResetsClosing))
	ch <- prometheus.MustNewConstMetric(c.bodyBytesRead, prometheus.CounterValue, float64(s.BodyBytesRead))
	ch <- prometheus.MustNewConstMetric(c.responseBytesWritten, prometheus.CounterValue, float64(s.ResponseBytesWritten))
	ch <- prometheus.MustNewConstMetric(c.decompressionFailures, prometheus.CounterValue, float64(s.DecompressionFailures))
}
