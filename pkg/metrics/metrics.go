package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP 请求指标
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// 业务指标
	UploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_uploads_total",
			Help: "Total number of uploaded resources",
		},
	)

	DownloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_downloads_total",
			Help: "Total number of resource downloads",
		},
	)

	RatingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "resource_ratings_total",
			Help: "Total number of submitted ratings",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		UploadsTotal,
		DownloadsTotal,
		RatingsTotal,
	)
}

// RecordRequest 记录请求指标的助手函数
func RecordRequest(method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, status).Inc()
	RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
