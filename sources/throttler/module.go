package throttler

import (
	"steinberg/sources/session"

	"go.uber.org/fx"
)

var Module = fx.Module("throttler",
	fx.Provide(
		NewThrottlerConfig,
		NewThrottler,
		func(t *Throttler) session.Guard { return t },
	),
)
