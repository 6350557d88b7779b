package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cuidotecas"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	NotificationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "notifications_created_total", Help: "Notification rows inserted",
	}, []string{"type"})
	NotificationsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "notifications_failed_total", Help: "Notification inserts that failed and were dropped",
	}, []string{"type"})
	NotificationsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "notifications_published_total", Help: "Notifications handed to the delivery queue",
	})
	WorkflowTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "workflow_transitions_total", Help: "Committed workflow operations",
	}, []string{"component", "action"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration,
		NotificationsCreated, NotificationsFailed, NotificationsPublished,
		WorkflowTransitions, DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func RecordTransition(component, action string) {
	WorkflowTransitions.WithLabelValues(component, action).Inc()
}

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
