package artificial

import (
	"steinberg/sources/balancer"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"artificial",
	fx.Provide(
		NewAIConfig,
		NewOpenRouterClient,
		NewOpenAIClient,
		NewOpenRouterProvider,
		NewOpenAIProvider,
		NewNeuroProvidersMap,
		NewAdvisor,
		NewSummarizer,
	),
)

func NewNeuroProvidersMap(openrouter *OpenRouterProvider, openai *OpenAIProvider) map[string]balancer.NeuroProvider {
	return map[string]balancer.NeuroProvider{"openrouter": openrouter, "openai": openai}
}
