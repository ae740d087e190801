package collector

import (
	"context"
	"time"

	"steinberg/sources/metrics"
	"steinberg/sources/repository"
	"steinberg/sources/tracing"

	"go.uber.org/fx"
)

type StatsCollector struct {
	log       *tracing.Logger
	metrics   *metrics.MetricsService
	exchanges *repository.ExchangesRepository
	feedbacks *repository.FeedbacksRepository
}

func NewStatsCollector(
	lc fx.Lifecycle,
	log *tracing.Logger,
	metrics *metrics.MetricsService,
	exchanges *repository.ExchangesRepository,
	feedbacks *repository.FeedbacksRepository,
) *StatsCollector {
	s := &StatsCollector{
		log:       log,
		metrics:   metrics,
		exchanges: exchanges,
		feedbacks: feedbacks,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.start()
			return nil
		},
	})

	return s
}

func (s *StatsCollector) start() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.collectStats()

	for range ticker.C {
		s.collectStats()
	}
}

func (s *StatsCollector) collectStats() {
	if cost, err := s.exchanges.GetTotalCost(s.log); err == nil {
		s.metrics.SetTotalCost(cost.InexactFloat64())
	} else {
		s.log.E("Failed to collect total cost stats", tracing.InnerError, err)
	}

	if helpful, unhelpful, err := s.feedbacks.GetFeedbackStats(s.log); err == nil {
		s.metrics.SetFeedbackStats(float64(helpful), float64(unhelpful))
	} else {
		s.log.E("Failed to collect feedback stats", tracing.InnerError, err)
	}
}
