package balancer

import "steinberg/sources/platform"

type AIBalancerConfig struct {
	Weights map[string]int
}

func NewAIBalancerConfig() *AIBalancerConfig {
	return &AIBalancerConfig{Weights: map[string]int{
		"openrouter": platform.GetAsInt("AI_OPENROUTER_WEIGHT", 80),
		"openai":     platform.GetAsInt("AI_OPENAI_WEIGHT", 20),
	}}
}
