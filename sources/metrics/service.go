package metrics

import (
	"time"

	"steinberg/sources/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsService struct {
	log *tracing.Logger
}

var (
	exchangesHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_exchanges_handled_total",
			Help: "Total number of chat exchanges handled",
		},
		[]string{"status"},
	)

	quotaBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_quota_blocked_total",
			Help: "Total number of sends blocked by the daily quota",
		},
		[]string{"tier"},
	)

	quotaUnlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_quota_unlocks_total",
			Help: "Total number of quota tier changes",
		},
		[]string{"kind"},
	)

	tokenUsage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_token_usage_total",
			Help: "Total number of tokens used",
		},
		[]string{"model", "type"},
	)

	costUsage = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_cost_usage_total",
			Help: "Total cost incurred",
		},
		[]string{"model", "type"},
	)

	advisorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "steinberg_advisor_request_duration_seconds",
			Help:    "Duration of advisor upstream requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	streamIncrements = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "steinberg_stream_increments",
			Help:    "Number of published increments per streamed exchange",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	compactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_compactions_total",
			Help: "Total number of history compaction attempts",
		},
		[]string{"status"},
	)

	languagesDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_languages_detected_total",
			Help: "Total number of languages detected",
		},
		[]string{"lang"},
	)

	feedbacksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steinberg_feedbacks_received_total",
			Help: "Total number of feedbacks received",
		},
		[]string{"type"},
	)

	statsTotalCost = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "steinberg_stats_total_cost",
			Help: "Total cost recorded on the exchange ledger",
		},
	)

	statsFeedbackHelpful = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "steinberg_stats_feedback_helpful",
			Help: "Total helpful feedback recorded",
		},
	)

	statsFeedbackUnhelpful = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "steinberg_stats_feedback_unhelpful",
			Help: "Total unhelpful feedback recorded",
		},
	)
)

func init() {
	prometheus.MustRegister(exchangesHandled)
	prometheus.MustRegister(quotaBlocked)
	prometheus.MustRegister(quotaUnlocks)
	prometheus.MustRegister(tokenUsage)
	prometheus.MustRegister(costUsage)
	prometheus.MustRegister(advisorRequestDuration)
	prometheus.MustRegister(streamIncrements)
	prometheus.MustRegister(compactions)
	prometheus.MustRegister(languagesDetected)
	prometheus.MustRegister(feedbacksReceived)
	prometheus.MustRegister(statsTotalCost)
	prometheus.MustRegister(statsFeedbackHelpful)
	prometheus.MustRegister(statsFeedbackUnhelpful)
}

func NewMetricsService(log *tracing.Logger) *MetricsService {
	return &MetricsService{
		log: log,
	}
}

func (s *MetricsService) RecordExchange(status string) {
	exchangesHandled.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordQuotaBlocked(tier string) {
	quotaBlocked.WithLabelValues(tier).Inc()
}

func (s *MetricsService) RecordQuotaUnlock(kind string) {
	quotaUnlocks.WithLabelValues(kind).Inc()
}

func (s *MetricsService) RecordUsage(tokens int, cost float64, model string, usageType string) {
	tokenUsage.WithLabelValues(model, usageType).Add(float64(tokens))
	costUsage.WithLabelValues(model, usageType).Add(cost)
}

func (s *MetricsService) RecordAdvisorDuration(model string, duration time.Duration) {
	advisorRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

func (s *MetricsService) RecordStreamIncrements(count int) {
	streamIncrements.Observe(float64(count))
}

func (s *MetricsService) RecordCompaction(status string) {
	compactions.WithLabelValues(status).Inc()
}

func (s *MetricsService) RecordLanguageDetected(lang string) {
	languagesDetected.WithLabelValues(lang).Inc()
}

func (s *MetricsService) RecordFeedback(feedbackType string) {
	feedbacksReceived.WithLabelValues(feedbackType).Inc()
}

func (s *MetricsService) SetTotalCost(cost float64) {
	statsTotalCost.Set(cost)
}

func (s *MetricsService) SetFeedbackStats(helpful, unhelpful float64) {
	statsFeedbackHelpful.Set(helpful)
	statsFeedbackUnhelpful.Set(unhelpful)
}
