package exchange

import "sync/atomic"

// exchangeCounters are plain atomic counters updated unconditionally by
// Exchange, independent of whether Prometheus instrumentation
// (metrics.go, gated behind the exchangemetrics build tag) is compiled
// in — mirroring the teacher's split between buffer_pool.go's own
// metrics bookkeeping and buffer_pool_prometheus.go's optional export
// of it.
var globalCounters exchangeCounters

type exchangeCounters struct {
	requests              atomic.Uint64
	requestErrors         atomic.Uint64
	resetsClean           atomic.Uint64
	resetsClosing         atomic.Uint64
	bodyBytesRead         atomic.Uint64
	responseBytesWritten  atomic.Uint64
	decompressionFailures atomic.Uint64
}

// CounterSnapshot is a point-in-time read of the package's Exchange
// counters, for applications that want to expose them without pulling
// in Prometheus.
type CounterSnapshot struct {
	Requests              uint64
	RequestErrors          uint64
	ResetsClean            uint64
	ResetsClosing          uint64
	BodyBytesRead          uint64
	ResponseBytesWritten   uint64
	DecompressionFailures  uint64
}

// Counters returns a snapshot of the package-wide Exchange counters.
func Counters() CounterSnapshot {
	return CounterSnapshot{
		Requests:             globalCounters.requests.Load(),
		RequestErrors:        globalCounters.requestErrors.Load(),
		ResetsClean:          globalCounters.resetsClean.Load(),
		ResetsClosing:        globalCounters.resetsClosing.Load(),
		BodyBytesRead:        globalCounters.bodyBytesRead.Load(),
		ResponseBytesWritten: globalCounters.responseBytesWritten.Load(),
		DecompressionFailures: globalCounters.decompressionFailures.Load(),
	}
}
