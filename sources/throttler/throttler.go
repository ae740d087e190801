package throttler

import (
	"context"
	"fmt"
	"time"

	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"github.com/redis/go-redis/v9"
)

// Throttler is the per-session in-flight guard: one exchange at a time,
// enforced through Redis so it holds across replicas. Redis failures fail
// open, an unreachable store must not freeze every visitor.
type Throttler struct {
	client *redis.Client
	config *ThrottlerConfig
	ctx    context.Context
}

func NewThrottler(client *redis.Client, config *ThrottlerConfig) *Throttler {
	return &Throttler{client: client, config: config, ctx: context.Background()}
}

func (x *Throttler) key(session string) string {
	return fmt.Sprintf("inflight:%s", session)
}

func (x *Throttler) TryAcquire(logger *tracing.Logger, session string) bool {
	ctx, cancel := platform.ContextTimeout(x.ctx)
	defer cancel()

	success, err := x.client.SetNX(ctx, x.key(session), time.Now().Unix(), x.config.InflightTTL).Result()
	if err != nil {
		logger.E("Error setting inflight key", tracing.InnerError, err, tracing.SessionId, session)
		return true
	}

	return success
}

func (x *Throttler) Release(logger *tracing.Logger, session string) {
	ctx, cancel := platform.ContextTimeout(x.ctx)
	defer cancel()

	if err := x.client.Del(ctx, x.key(session)).Err(); err != nil {
		logger.E("Error releasing inflight key", tracing.InnerError, err, tracing.SessionId, session)
	}
}
