package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"steinberg/sources/configuration"
	"steinberg/sources/platform"
	"steinberg/sources/tracing"

	"github.com/redis/go-redis/v9"
)

const quotaCountTTL = 48 * time.Hour

type QuotaStatus struct {
	Used      int                `json:"used"`
	Cap       int                `json:"cap"`
	Remaining int                `json:"remaining"`
	Tier      platform.QuotaTier `json:"tier"`
	Blocked   bool               `json:"blocked"`
}

// QuotaRepository tracks the per-visitor daily message allowance. Counts are
// keyed by calendar date, so the rollover to a fresh day needs no reset job:
// yesterday's key is simply never read again and expires on its own.
type QuotaRepository struct {
	redis  *redis.Client
	config *configuration.Config
}

func NewQuotaRepository(redis *redis.Client, config *configuration.Config) *QuotaRepository {
	return &QuotaRepository{redis: redis, config: config}
}

func (x *QuotaRepository) countKey(session string, day time.Time) string {
	return fmt.Sprintf("quota:count:%s:%s", session, day.Format("2006-01-02"))
}

func (x *QuotaRepository) tierKey(session string) string {
	return fmt.Sprintf("quota:tier:%s", session)
}

func (x *QuotaRepository) vipKey(session string) string {
	return fmt.Sprintf("quota:vip:%s", session)
}

// Status reads today's usage and resolves the visitor tier. Redis failures
// fail open: a visitor is never blocked because infrastructure is down.
func (x *QuotaRepository) Status(logger *tracing.Logger, session string) *QuotaStatus {
	defer tracing.ProfilePoint(logger, "Quota status completed", "repository.quota.status", tracing.SessionId, session)()

	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	tier := x.resolveTier(ctx, logger, session)
	if tier == platform.TierVIP {
		return &QuotaStatus{Used: 0, Cap: 0, Remaining: 0, Tier: tier, Blocked: false}
	}

	cap := x.capFor(tier)

	used, err := x.redis.Get(ctx, x.countKey(session, time.Now())).Int()
	if err != nil && err != redis.Nil {
		logger.W("Failed to read quota count, failing open", tracing.InnerError, err, tracing.SessionId, session)
		return &QuotaStatus{Used: 0, Cap: cap, Remaining: cap, Tier: tier, Blocked: false}
	}

	return &QuotaStatus{
		Used:      used,
		Cap:       cap,
		Remaining: remainingOf(used, cap),
		Tier:      tier,
		Blocked:   used >= cap,
	}
}

// Charge records one consumed exchange. Callers invoke it only after the
// advisor answered successfully; VIP sessions are never counted.
func (x *QuotaRepository) Charge(logger *tracing.Logger, session string) {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	if x.isVIP(ctx, session) {
		logger.D("quota_charge_skipped_vip", tracing.SessionId, session)
		return
	}

	key := x.countKey(session, time.Now())
	pipe := x.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, quotaCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.E("Failed to charge quota", tracing.InnerError, err, tracing.SessionId, session)
		return
	}

	logger.I("quota_charged", tracing.SessionId, session, tracing.QuotaUsed, incr.Val())
}

// GrantPartnerTier raises the visitor to the partner cap and credits back the
// difference between the caps against today's count, clamped at zero. A
// second grant is a no-op.
func (x *QuotaRepository) GrantPartnerTier(logger *tracing.Logger, session string) (*QuotaStatus, error) {
	defer tracing.ProfilePoint(logger, "Quota partner grant completed", "repository.quota.grant", tracing.SessionId, session)()

	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	tier, err := x.redis.Get(ctx, x.tierKey(session)).Result()
	if err != nil && err != redis.Nil {
		logger.E("Failed to read quota tier", tracing.InnerError, err, tracing.SessionId, session)
		return nil, err
	}
	if tier == platform.TierPartner {
		logger.I("quota_partner_grant_repeated", tracing.SessionId, session)
		return x.Status(logger, session), nil
	}

	countKey := x.countKey(session, time.Now())
	used, err := x.redis.Get(ctx, countKey).Int()
	if err != nil && err != redis.Nil {
		logger.E("Failed to read quota count", tracing.InnerError, err, tracing.SessionId, session)
		return nil, err
	}

	credited := creditUnlock(used, x.config.Quota.UnlockOffset)

	pipe := x.redis.TxPipeline()
	pipe.Set(ctx, x.tierKey(session), platform.TierPartner, 0)
	pipe.Set(ctx, countKey, credited, quotaCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.E("Failed to grant partner tier", tracing.InnerError, err, tracing.SessionId, session)
		return nil, err
	}

	logger.I("quota_partner_granted", tracing.SessionId, session, tracing.QuotaUsed, credited)
	return x.Status(logger, session), nil
}

// RedeemVIP compares the submitted code against the configured secret,
// case-insensitively, and marks the session VIP on match.
func (x *QuotaRepository) RedeemVIP(logger *tracing.Logger, session string, code string) (bool, error) {
	ctx, cancel := platform.ContextTimeout(context.Background())
	defer cancel()

	if !strings.EqualFold(strings.TrimSpace(code), x.config.Quota.VIPCode) {
		logger.I("quota_vip_rejected", tracing.SessionId, session)
		return false, nil
	}

	if err := x.redis.Set(ctx, x.vipKey(session), "1", 0).Err(); err != nil {
		logger.E("Failed to mark session VIP", tracing.InnerError, err, tracing.SessionId, session)
		return false, err
	}

	logger.I("quota_vip_granted", tracing.SessionId, session)
	return true, nil
}

func (x *QuotaRepository) resolveTier(ctx context.Context, logger *tracing.Logger, session string) platform.QuotaTier {
	if x.isVIP(ctx, session) {
		return platform.TierVIP
	}

	tier, err := x.redis.Get(ctx, x.tierKey(session)).Result()
	if err != nil && err != redis.Nil {
		logger.W("Failed to read quota tier, assuming discovery", tracing.InnerError, err, tracing.SessionId, session)
	}
	if tier == platform.TierPartner {
		return platform.TierPartner
	}
	return platform.TierDiscovery
}

func (x *QuotaRepository) isVIP(ctx context.Context, session string) bool {
	val, err := x.redis.Exists(ctx, x.vipKey(session)).Result()
	return err == nil && val > 0
}

func (x *QuotaRepository) capFor(tier platform.QuotaTier) int {
	if tier == platform.TierPartner {
		return x.config.Quota.PartnerCap
	}
	return x.config.Quota.DiscoveryCap
}

func remainingOf(used, cap int) int {
	if used >= cap {
		return 0
	}
	return cap - used
}

func creditUnlock(used, offset int) int {
	if used <= offset {
		return 0
	}
	return used - offset
}
