package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "resume_analyzer"

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of resume analyses",
		},
		[]string{"status"},
	)

	ExtractionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_errors_total",
			Help:      "Document extraction failures by format and reason",
		},
		[]string{"format", "reason"},
	)

	MatchScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_score",
			Help:      "Distribution of resume to job fit scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
	)

	FeedbackRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_requests_total",
			Help:      "Feedback generation requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	FeedbackRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feedback_request_duration_seconds",
			Help:      "Feedback generation duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	FeedbackFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_fallbacks_total",
			Help:      "Times a remote feedback provider failed and the fallback answered",
		},
		[]string{"from", "to"},
	)
)

func init() {
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(ExtractionErrorsTotal)
	prometheus.MustRegister(MatchScore)
	prometheus.MustRegister(FeedbackRequestsTotal)
	prometheus.MustRegister(FeedbackRequestDuration)
	prometheus.MustRegister(FeedbackFallbacksTotal)
}
