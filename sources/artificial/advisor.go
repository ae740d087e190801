package artificial

import (
	"context"
	"time"

	"steinberg/sources/balancer"
	"steinberg/sources/configuration"
	"steinberg/sources/metrics"
	"steinberg/sources/tracing"
)

// Advisor produces consulting responses in the Steinberg Hospitality
// Analytics voice. Providers are picked by weight, failed attempts are
// retried with exponential backoff.
type Advisor struct {
	balancer *balancer.AIBalancer
	config   *AIConfig
	yaml     *configuration.Config
	metrics  *metrics.MetricsService
}

func NewAdvisor(bal *balancer.AIBalancer, config *AIConfig, yaml *configuration.Config, metrics *metrics.MetricsService) *Advisor {
	return &Advisor{balancer: bal, config: config, yaml: yaml, metrics: metrics}
}

func (x *Advisor) Respond(ctx context.Context, log *tracing.Logger, exchange *balancer.Exchange) (*balancer.Result, error) {
	prompt := x.prompt()

	var result *balancer.Result
	var err error

	started := time.Now()

	for attempt := 0; attempt < x.config.MaxRetries; attempt++ {
		provider := x.balancer.GetNeuroProvider()

		result, err = provider.Respond(ctx, log, prompt, exchange)
		if err == nil {
			break
		}

		log.E("Failed to get advisor response", tracing.AiAttempt, attempt+1, tracing.InnerError, err)

		if attempt < x.config.MaxRetries-1 {
			delay := x.config.BackoffDelay * time.Duration(1<<attempt)
			log.W("Retrying advisor response", tracing.AiAttempt, attempt+1, tracing.AiBackoff, delay)
			time.Sleep(delay)
		}
	}

	if err != nil {
		return nil, err
	}

	x.metrics.RecordAdvisorDuration(result.Model, time.Since(started))
	return result, nil
}

// RespondStream retries only until the first delta is emitted, a stream that
// already reached the widget cannot be restarted.
func (x *Advisor) RespondStream(ctx context.Context, log *tracing.Logger, exchange *balancer.Exchange, emit func(delta string)) (*balancer.Result, error) {
	prompt := x.prompt()

	var result *balancer.Result
	var err error

	started := time.Now()

	for attempt := 0; attempt < x.config.MaxRetries; attempt++ {
		provider := x.balancer.GetNeuroProvider()

		emitted := false
		result, err = provider.RespondStream(ctx, log, prompt, exchange, func(delta string) {
			emitted = true
			emit(delta)
		})
		if err == nil || emitted {
			break
		}

		log.E("Failed to stream advisor response", tracing.AiAttempt, attempt+1, tracing.InnerError, err)

		if attempt < x.config.MaxRetries-1 {
			delay := x.config.BackoffDelay * time.Duration(1<<attempt)
			log.W("Retrying advisor stream", tracing.AiAttempt, attempt+1, tracing.AiBackoff, delay)
			time.Sleep(delay)
		}
	}

	if err != nil {
		return nil, err
	}

	x.metrics.RecordAdvisorDuration(result.Model, time.Since(started))
	return result, nil
}

func (x *Advisor) prompt() string {
	if x.yaml.AI.Prompts.Advisor != "" {
		return x.yaml.AI.Prompts.Advisor
	}
	return DefaultAdvisorPrompt
}
