/*-------------------------------------------------------------------------
 *
 * prometheus.go
 *    Prometheus metrics for AccessAgent
 *
 * Copyright (c) 2024-2026, AccessDesk, Inc. <support@accessdesk.io>
 *
 * IDENTIFICATION
 *    AccessAgent/internal/metrics/prometheus.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Request metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessagent_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessagent_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	/* Elevation lifecycle metrics */
	intakeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessagent_elevation_intake_total",
			Help: "Total number of elevation intake attempts",
		},
		[]string{"outcome"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessagent_elevation_resolutions_total",
			Help: "Total number of approval resolutions",
		},
		[]string{"channel", "decision", "outcome"},
	)

	pendingRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accessagent_pending_requests",
			Help: "Number of pending elevation requests in the ledger",
		},
	)

	expiredRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accessagent_expired_requests_total",
			Help: "Total number of pending requests dropped by TTL expiry",
		},
	)

	/* Collaborator metrics */
	grantExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessagent_grant_executions_total",
			Help: "Total number of directory grant executions",
		},
		[]string{"mode", "status"},
	)

	grantExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessagent_grant_execution_duration_seconds",
			Help:    "Directory grant execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"mode"},
	)

	ticketOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessagent_ticket_operations_total",
			Help: "Total number of ticketing operations",
		},
		[]string{"operation", "status"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessagent_notifications_total",
			Help: "Total number of approval notification deliveries",
		},
		[]string{"channel", "status"},
	)
)

/* RecordHTTPRequest records an HTTP request */
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	/* Convert status code to status class for better PromQL queries */
	statusClass := "unknown"
	if status >= 200 && status < 300 {
		statusClass = "2xx"
	} else if status >= 300 && status < 400 {
		statusClass = "3xx"
	} else if status >= 400 && status < 500 {
		statusClass = "4xx"
	} else if status >= 500 {
		statusClass = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, statusClass).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

/* RecordIntake records an elevation intake outcome */
func RecordIntake(outcome string) {
	intakeTotal.WithLabelValues(outcome).Inc()
}

/* RecordResolution records an approval resolution */
func RecordResolution(channel, decision, outcome string) {
	resolutionsTotal.WithLabelValues(channel, decision, outcome).Inc()
}

/* SetPendingRequests records the current ledger size */
func SetPendingRequests(n int) {
	pendingRequests.Set(float64(n))
}

/* RecordExpiredRequests records requests dropped by the expiry sweep */
func RecordExpiredRequests(n int) {
	if n > 0 {
		expiredRequestsTotal.Add(float64(n))
	}
}

/* RecordGrantExecution records a directory grant execution */
func RecordGrantExecution(mode, status string, duration time.Duration) {
	grantExecutionsTotal.WithLabelValues(mode, status).Inc()
	grantExecutionDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

/* RecordTicketOperation records a ticketing operation */
func RecordTicketOperation(operation, status string) {
	ticketOpsTotal.WithLabelValues(operation, status).Inc()
}

/* RecordNotification records an approval prompt delivery attempt */
func RecordNotification(channel, status string) {
	notificationsTotal.WithLabelValues(channel, status).Inc()
}

/* Handler returns the Prometheus metrics handler */
func Handler() http.Handler {
	return promhttp.Handler()
}
