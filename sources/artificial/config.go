package artificial

import (
	"time"

	"steinberg/sources/platform"
)

type AIConfig struct {
	OpenRouterToken string
	OpenAIToken     string

	AdvisorPrimaryModel   string
	AdvisorFallbackModels []string
	AdvisorTemperature    float32
	AdvisorTopP           float32
	AdvisorMaxTokens      int

	OpenAIAdvisorModel string

	SummarizerModel       string
	SummarizerTemperature float32
	SummarizerMaxTokens   int

	MaxRetries   int
	BackoffDelay time.Duration
}

func NewAIConfig() *AIConfig {
	return &AIConfig{
		OpenRouterToken: platform.Get("OPENROUTER_API_KEY", ""),
		OpenAIToken:     platform.Get("OPENAI_API_KEY", ""),

		AdvisorPrimaryModel:   platform.Get("ADVISOR_PRIMARY_MODEL", "google/gemini-2.5-flash"),
		AdvisorFallbackModels: platform.GetAsSlice("ADVISOR_FALLBACK_MODELS", []string{"openai/gpt-4o-mini", "anthropic/claude-3.5-haiku"}),
		AdvisorTemperature:    float32(platform.GetDecimal("ADVISOR_TEMPERATURE", "0.2").InexactFloat64()),
		AdvisorTopP:           float32(platform.GetDecimal("ADVISOR_TOP_P", "0.8").InexactFloat64()),
		AdvisorMaxTokens:      platform.GetAsInt("ADVISOR_MAX_TOKENS", 4096),

		OpenAIAdvisorModel: platform.Get("ADVISOR_OPENAI_MODEL", "gpt-4o"),

		SummarizerModel:       platform.Get("SUMMARIZER_MODEL", "gpt-4o-mini"),
		SummarizerTemperature: float32(platform.GetDecimal("SUMMARIZER_TEMPERATURE", "0.3").InexactFloat64()),
		SummarizerMaxTokens:   platform.GetAsInt("SUMMARIZER_MAX_TOKENS", 500),

		MaxRetries:   platform.GetAsInt("ADVISOR_MAX_RETRIES", 3),
		BackoffDelay: platform.GetAsDuration("ADVISOR_BACKOFF_DELAY", "500ms"),
	}
}
