package balancer

import (
	"context"

	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"github.com/mr-karan/balance"
	"github.com/shopspring/decimal"
)

type Exchange struct {
	Message string
	Files   []FilePart
	Locale  string
	History []platform.WireMessage
}

type FilePart struct {
	Data     string
	MimeType string
	Name     string
}

type Result struct {
	Text   string
	Tokens int
	Cost   decimal.Decimal
	Model  string
}

type NeuroProvider interface {
	Respond(ctx context.Context, log *tracing.Logger, prompt string, exchange *Exchange) (*Result, error)
	RespondStream(ctx context.Context, log *tracing.Logger, prompt string, exchange *Exchange, emit func(delta string)) (*Result, error)
}

type AIBalancer struct {
	balancer  *balance.Balance
	providers map[string]NeuroProvider
}

func NewAIBalancer(config *AIBalancerConfig, providers map[string]NeuroProvider) *AIBalancer {
	b := balance.NewBalance()

	for provider, weight := range config.Weights {
		b.Add(provider, weight)
	}

	return &AIBalancer{balancer: b, providers: providers}
}

func (x *AIBalancer) GetNeuroProvider() NeuroProvider {
	return x.GetNeuroProviderByName(x.balancer.Get())
}

func (x *AIBalancer) GetNeuroProviderByName(name string) NeuroProvider {
	return x.providers[name]
}
