package throttler

import (
	"time"

	"steinberg/sources/platform"
)

type ThrottlerConfig struct {
	// InflightTTL caps how long an abandoned in-flight marker can block a
	// session if a replica dies mid-exchange.
	InflightTTL time.Duration
}

func NewThrottlerConfig() *ThrottlerConfig {
	return &ThrottlerConfig{InflightTTL: platform.GetAsDuration("SEND_INFLIGHT_TTL", "2m")}
}
