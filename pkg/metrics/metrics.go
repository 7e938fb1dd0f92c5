package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "knowledge_copilot", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "knowledge_copilot", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "knowledge_copilot", Name: "auth_failures_total", Help: "Number of rejected bearer tokens by reason."},
		[]string{"reason"},
	)
	DocumentUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "knowledge_copilot", Name: "document_uploads_total", Help: "Number of document uploads by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AuthFailures)
	reg.MustRegister(DocumentUploads)
}
