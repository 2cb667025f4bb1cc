package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	// ObserverVec so the per-service curry below type-checks.
	HTTPRequestDurationSeconds prometheus.ObserverVec = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	DevicesPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devices_published_total",
			Help: "Device key publications, by result.",
		},
		[]string{"service", "result"},
	)

	KeyFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "key_fetches_total",
			Help: "Recipient key fan-out fetches, by result.",
		},
		[]string{"service", "result"},
	)

	EnvelopesSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envelopes_submitted_total",
			Help: "Encrypted envelope submissions, by result.",
		},
		[]string{"service", "result"},
	)

	AuthenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authentication_attempts_total",
			Help: "Bearer token validations, by result.",
		},
		[]string{"service", "result"},
	)
)

func MustRegister(serviceName string) {
	labels := prometheus.Labels{"service": serviceName}

	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(labels)
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(labels)
	DevicesPublishedTotal = DevicesPublishedTotal.MustCurryWith(labels)
	KeyFetchesTotal = KeyFetchesTotal.MustCurryWith(labels)
	EnvelopesSubmittedTotal = EnvelopesSubmittedTotal.MustCurryWith(labels)
	AuthenticationAttemptsTotal = AuthenticationAttemptsTotal.MustCurryWith(labels)

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		DevicesPublishedTotal,
		KeyFetchesTotal,
		EnvelopesSubmittedTotal,
		AuthenticationAttemptsTotal,
	)
}
