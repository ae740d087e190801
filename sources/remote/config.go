package remote

import (
	"steinberg/sources/configuration"
	"steinberg/sources/platform"
)

// The advisor endpoints live in the same deployment, so the default base URL
// is the service's own public host.
type AdvisorEndpointConfig struct {
	BaseURL string
}

func NewAdvisorEndpointConfig(config *configuration.Config) *AdvisorEndpointConfig {
	return &AdvisorEndpointConfig{
		BaseURL: platform.Get("ADVISOR_BASE_URL", config.Service.PublicHost),
	}
}

func (c *AdvisorEndpointConfig) ChatURL() string {
	return c.BaseURL + "/api/chat"
}

func (c *AdvisorEndpointConfig) SummarizeURL() string {
	return c.BaseURL + "/api/summarize"
}
