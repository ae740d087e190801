package external

import (
	"steinberg/sources/configuration"
	"steinberg/sources/platform"
)

type OutsidersConfig struct {
	StartupPort            int
	SystemMetricsPort      int
	ApplicationMetricsPort int
}

func NewOutsidersConfig(config *configuration.Config) *OutsidersConfig {
	return &OutsidersConfig{
		StartupPort:            config.Service.HealthPort,
		SystemMetricsPort:      platform.GetAsInt("OUTSIDERS_SYSTEM_METRICS_PORT", 10001),
		ApplicationMetricsPort: config.Service.MetricsPort,
	}
}
