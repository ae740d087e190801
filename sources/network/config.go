package network

import (
	"steinberg/sources/platform"
)

type EgressConfig struct {
	ProxyEnabled   bool
	ProxyAddress   string
	ProxyUser      string
	ProxyPass      string
	TimeoutSeconds int
}

func NewEgressConfig() *EgressConfig {
	return &EgressConfig{
		ProxyEnabled:   platform.GetAsBool("PROXY_ENABLED", false),
		ProxyAddress:   platform.Get("PROXY_ADDRESS", "localhost:9050"),
		ProxyUser:      platform.Get("PROXY_USER", ""),
		ProxyPass:      platform.Get("PROXY_PASS", ""),
		TimeoutSeconds: platform.GetAsInt("EGRESS_TIMEOUT_SECONDS", 120),
	}
}
