package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HandlerMetrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

type ServiceMetrics struct {
	MethodCount    *prometheus.CounterVec
	MethodDuration *prometheus.HistogramVec
	AdsSubmitted   prometheus.Counter
	ValidationFail prometheus.Counter
}

type RepositoryMetrics struct {
	QueryCount    *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	StoredAds     prometheus.Gauge
}

// NewHandlerMetrics registers on reg and serves /metrics from gatherer.
// Pass the same *prometheus.Registry for both in production.
func NewHandlerMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *HandlerMetrics {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_requests_total",
			Help: "Total number of HTTP requests handled by the handler layer.",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "handler_request_duration_seconds",
			Help:    "Histogram of response latency for handler in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	reg.MustRegister(requestCount, requestDuration)

	return &HandlerMetrics{
		RequestCount:    requestCount,
		RequestDuration: requestDuration,
		gatherer:        gatherer,
	}
}

func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	methodCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "service_methods_total",
			Help: "Total number of service methods executed.",
		},
		[]string{"method", "status"},
	)

	methodDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "service_method_duration_seconds",
			Help:    "Histogram of service method execution duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	adsSubmitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ads_submitted_total",
		Help: "Total number of ads accepted and persisted.",
	})

	validationFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ads_validation_failures_total",
		Help: "Total number of submissions rejected by validation.",
	})

	reg.MustRegister(methodCount, methodDuration, adsSubmitted, validationFail)

	return &ServiceMetrics{
		MethodCount:    methodCount,
		MethodDuration: methodDuration,
		AdsSubmitted:   adsSubmitted,
		ValidationFail: validationFail,
	}
}

func NewRepositoryMetrics(reg prometheus.Registerer) *RepositoryMetrics {
	queryCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_operations_total",
			Help: "Total number of storage operations executed.",
		},
		[]string{"operation", "status"},
	)

	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repository_operation_duration_seconds",
			Help:    "Histogram of storage operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	storedAds := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "repository_stored_ads",
		Help: "Number of ads in the store after the last load or save.",
	})

	reg.MustRegister(queryCount, queryDuration, storedAds)

	return &RepositoryMetrics{
		QueryCount:    queryCount,
		QueryDuration: queryDuration,
		StoredAds:     storedAds,
	}
}

func (hm *HandlerMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})
}
