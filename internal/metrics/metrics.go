package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects the process metrics exposed on /metrics. Loader metrics
// are written once per dataset load; HTTP metrics on every request.
type Registry struct {
	reg *prometheus.Registry

	RecordsLoaded  prometheus.Counter
	RecordsSkipped prometheus.Counter
	DatasetSize    prometheus.Gauge
	DatasetLoadSec prometheus.Histogram
	CacheHits      prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	recordsLoaded := prometheus.NewCounter(prometheus.CounterOpts{Name: "grocery_records_loaded_total"})
	recordsSkipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "grocery_records_skipped_total"})
	datasetSize := prometheus.NewGauge(prometheus.GaugeOpts{Name: "grocery_dataset_transactions"})
	datasetLoad := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "grocery_dataset_load_seconds",
		Buckets: prometheus.DefBuckets,
	})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Name: "grocery_dataset_cache_hits_total"})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "grocery_http_requests_total",
	}, []string{"method", "path", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grocery_http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	r.MustRegister(recordsLoaded, recordsSkipped, datasetSize, datasetLoad, cacheHits, httpRequests, httpDuration)
	return &Registry{
		reg:            r,
		RecordsLoaded:  recordsLoaded,
		RecordsSkipped: recordsSkipped,
		DatasetSize:    datasetSize,
		DatasetLoadSec: datasetLoad,
		CacheHits:      cacheHits,
		httpRequests:   httpRequests,
		httpDuration:   httpDuration,
	}
}

// ObserveDatasetLoad records one completed load. Cache hits count as loads
// too; they just land in the lowest latency buckets.
func (r *Registry) ObserveDatasetLoad(records, skipped int, duration time.Duration) {
	r.RecordsLoaded.Add(float64(records))
	r.RecordsSkipped.Add(float64(skipped))
	r.DatasetSize.Set(float64(records))
	r.DatasetLoadSec.Observe(duration.Seconds())
}

// ObserveHTTP records one served request. Routes here are fixed patterns,
// so the path label stays low-cardinality.
func (r *Registry) ObserveHTTP(method, path string, status int, duration time.Duration) {
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
