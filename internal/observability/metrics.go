package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_http_requests_total",
			Help: "Total number of HTTP requests processed by the demo server.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demo_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	providerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_provider_requests_total",
			Help: "Total number of calls made to the payment provider.",
		},
		[]string{"endpoint", "status"},
	)
	providerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demo_provider_request_duration_seconds",
			Help:    "Payment provider call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	pushActiveClients = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "demo_push_active_clients",
			Help: "Number of connected push subscribers.",
		},
		[]string{"transport"},
	)
	pushEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_push_events_total",
			Help: "Total number of push subscriber lifecycle events.",
		},
		[]string{"transport", "event"},
	)
	broadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_broadcasts_total",
			Help: "Total number of events fanned out to push subscribers.",
		},
		[]string{"event"},
	)
	logEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demo_log_evictions_total",
			Help: "Total number of entries evicted from bounded log buffers.",
		},
		[]string{"log"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "demo_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	amqpPublishDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "demo_amqp_publish_dropped_total",
			Help: "Total number of events dropped before publishing because the queue was full.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		providerRequestsTotal,
		providerRequestDuration,
		pushActiveClients,
		pushEventsTotal,
		broadcastsTotal,
		logEvictionsTotal,
		amqpPublishErrorsTotal,
		amqpPublishDroppedTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveProviderCall records one outbound provider call. status 0 means the
// call failed before a response arrived.
func ObserveProviderCall(endpoint string, status int, elapsed time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	providerRequestsTotal.WithLabelValues(endpoint, label).Inc()
	providerRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func IncPushActive(transport string) {
	pushActiveClients.WithLabelValues(transport).Inc()
}

func DecPushActive(transport string) {
	pushActiveClients.WithLabelValues(transport).Dec()
}

func IncPushEvent(transport, event string) {
	pushEventsTotal.WithLabelValues(transport, event).Inc()
}

func IncBroadcast(event string) {
	broadcastsTotal.WithLabelValues(event).Inc()
}

func IncLogEviction(log string) {
	logEvictionsTotal.WithLabelValues(log).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncAMQPPublishDropped() {
	amqpPublishDroppedTotal.Inc()
}
