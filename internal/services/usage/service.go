package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/rules"
	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
	pgrepo "github.com/YDX64/2sweetyxxx-sub005/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("invalid usage request")
	ErrUserNotFound = errors.New("user not found")
)

// TooFastError reports a burst-throttle rejection, separate from the
// daily quota decision.
type TooFastError struct {
	RetryAfterSec int64
}

func (e *TooFastError) Error() string {
	return fmt.Sprintf("too fast, retry after %d seconds", e.RetryAfterSec)
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tooFast *TooFastError
	if errors.As(err, &tooFast) {
		return tooFast, true
	}
	return nil, false
}

type ProfileStore interface {
	Ensure(ctx context.Context, userID int64, displayName, dayKey string) error
	GetUsage(ctx context.Context, userID int64) (model.UsageRecord, error)
	SetTier(ctx context.Context, userID int64, tier tiers.Tier) (bool, error)
}

type QuotaStore interface {
	ConsumeLikeWithLimit(ctx context.Context, userID int64, dayKey string, limit int) (int, error)
	ConsumeSuperLikeWithLimit(ctx context.Context, userID int64, dayKey string, limit int) (int, error)
	ConsumeBoostWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey string, limit int) (int, error)
}

type BoostStore interface {
	CreateActivation(ctx context.Context, tx pgx.Tx, activation model.BoostActivation) error
	ActiveUntil(ctx context.Context, userID int64, at time.Time) (*time.Time, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, userID int64, action string) (int64, bool, error)
}

type Dependencies struct {
	Pool     *pgxpool.Pool
	Profiles ProfileStore
	Quotas   QuotaStore
	Boosts   BoostStore
	Limiter  RateLimiter
}

type Config struct {
	ResetTimezone string
	BoostDuration time.Duration
}

// Service gates paid actions against tier entitlements and daily
// counters. Every consume goes through a single guarded update in the
// quota store, so two racing requests for the last slot cannot both
// win.
type Service struct {
	pool     *pgxpool.Pool
	profiles ProfileStore
	quotas   QuotaStore
	boosts   BoostStore
	limiter  RateLimiter

	boostDuration time.Duration
	loc           *time.Location
	now           func() time.Time
	withTx        func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

func NewService(deps Dependencies, cfg Config) (*Service, error) {
	if deps.Profiles == nil || deps.Quotas == nil {
		return nil, fmt.Errorf("usage service requires profile and quota stores")
	}

	loc := time.UTC
	if cfg.ResetTimezone != "" {
		parsed, err := time.LoadLocation(cfg.ResetTimezone)
		if err != nil {
			return nil, fmt.Errorf("load reset timezone %q: %w", cfg.ResetTimezone, err)
		}
		loc = parsed
	}

	boostDuration := cfg.BoostDuration
	if boostDuration <= 0 {
		boostDuration = 30 * time.Minute
	}

	service := &Service{
		pool:          deps.Pool,
		profiles:      deps.Profiles,
		quotas:        deps.Quotas,
		boosts:        deps.Boosts,
		limiter:       deps.Limiter,
		boostDuration: boostDuration,
		loc:           loc,
		now:           time.Now,
	}
	service.withTx = func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, service.pool, fn)
	}

	return service, nil
}

// Location reports the timezone daily counters reset in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Counter is one action's daily ledger. Remaining is -1 when the tier
// is unlimited.
type Counter struct {
	Used      int
	Limit     int
	Remaining int
}

type Snapshot struct {
	UserID           int64
	Tier             tiers.Tier
	Likes            Counter
	SuperLikes       Counter
	Boosts           Counter
	ResetAt          time.Time
	BoostActiveUntil *time.Time
}

// Outcome is the full result of a gated action request: the decision,
// the usage picture after the request, and the boost activation id when
// one was created.
type Outcome struct {
	Decision rules.Decision
	Usage    Snapshot
	BoostID  string
}

// RequestAction checks and, when allowed, performs one gated action.
// The decision's Remaining is the pre-action value, so a user with one
// slot left sees remaining 1 on the request that consumes it.
func (s *Service) RequestAction(ctx context.Context, userID int64, rawAction string) (Outcome, error) {
	if userID <= 0 {
		return Outcome{}, ErrValidation
	}

	action, err := rules.ParseAction(rawAction)
	if err != nil {
		return Outcome{}, err
	}

	now := s.now()
	record, err := s.profiles.GetUsage(ctx, userID)
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return Outcome{
			Decision: rules.Decision{Reason: rules.ReasonUserNotFound},
			Usage:    s.defaultSnapshot(userID, now),
		}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("load usage for decision: %w", err)
	}

	record = rules.ApplyRollover(record, now, s.loc)
	decision := rules.CanPerform(record, record.Tier, action)

	if action.Kind == rules.ActionFeature {
		outcome := Outcome{Decision: decision}
		outcome.Usage, err = s.buildSnapshot(ctx, record, now)
		return outcome, err
	}

	if s.limiter != nil && (action.Kind == rules.ActionLike || action.Kind == rules.ActionSuperLike) {
		retryAfterSec, allowed, limitErr := s.limiter.Allow(ctx, userID, string(action.Kind))
		if limitErr != nil {
			return Outcome{}, fmt.Errorf("rate check: %w", limitErr)
		}
		if !allowed {
			return Outcome{}, &TooFastError{RetryAfterSec: retryAfterSec}
		}
	}

	if !decision.Allowed {
		outcome := Outcome{Decision: decision}
		outcome.Usage, err = s.buildSnapshot(ctx, record, now)
		return outcome, err
	}

	limits := tiers.GetLimits(record.Tier)
	dayKey := rules.DayKey(now, s.loc)
	boostID := ""

	switch action.Kind {
	case rules.ActionLike:
		if limits.DailyLikes != tiers.Unlimited {
			used, consumeErr := s.quotas.ConsumeLikeWithLimit(ctx, userID, dayKey, limits.DailyLikes)
			if errors.Is(consumeErr, pgrepo.ErrLimitReached) {
				decision = s.denyLimitReached(record)
			} else if consumeErr != nil {
				return Outcome{}, fmt.Errorf("consume like: %w", consumeErr)
			} else {
				record.LikesUsed = used
			}
		}
	case rules.ActionSuperLike:
		if limits.DailySuperLikes != tiers.Unlimited {
			used, consumeErr := s.quotas.ConsumeSuperLikeWithLimit(ctx, userID, dayKey, limits.DailySuperLikes)
			if errors.Is(consumeErr, pgrepo.ErrLimitReached) {
				decision = s.denyLimitReached(record)
			} else if consumeErr != nil {
				return Outcome{}, fmt.Errorf("consume super like: %w", consumeErr)
			} else {
				record.SuperLikesUsed = used
			}
		}
	case rules.ActionBoost:
		activation := model.BoostActivation{
			ID:          uuid.NewString(),
			UserID:      userID,
			ActiveUntil: now.Add(s.boostDuration),
			CreatedAt:   now,
		}

		txErr := s.withTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
			if limits.DailyBoosts != tiers.Unlimited {
				used, consumeErr := s.quotas.ConsumeBoostWithLimit(txCtx, tx, userID, dayKey, limits.DailyBoosts)
				if consumeErr != nil {
					return consumeErr
				}
				record.BoostsUsed = used
			}
			if s.boosts != nil {
				return s.boosts.CreateActivation(txCtx, tx, activation)
			}
			return nil
		})
		if errors.Is(txErr, pgrepo.ErrLimitReached) {
			decision = s.denyLimitReached(record)
		} else if txErr != nil {
			return Outcome{}, fmt.Errorf("activate boost: %w", txErr)
		} else {
			boostID = activation.ID
		}
	}

	outcome := Outcome{Decision: decision, BoostID: boostID}
	outcome.Usage, err = s.buildSnapshot(ctx, record, now)
	return outcome, err
}

// GetSnapshot reports current usage. Users the store has never seen
// read as a fresh free-tier profile rather than an error.
func (s *Service) GetSnapshot(ctx context.Context, userID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, ErrValidation
	}

	now := s.now()
	record, err := s.profiles.GetUsage(ctx, userID)
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return s.defaultSnapshot(userID, now), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load usage snapshot: %w", err)
	}

	record = rules.ApplyRollover(record, now, s.loc)
	return s.buildSnapshot(ctx, record, now)
}

func (s *Service) EnsureProfile(ctx context.Context, userID int64, displayName string) error {
	if userID <= 0 {
		return ErrValidation
	}
	return s.profiles.Ensure(ctx, userID, displayName, rules.DayKey(s.now(), s.loc))
}

// SetTier assigns a purchasable tier. Staff tiers are managed out of
// band and rejected here.
func (s *Service) SetTier(ctx context.Context, userID int64, rawTier string) (tiers.Tier, error) {
	if userID <= 0 {
		return "", ErrValidation
	}

	tier := tiers.Parse(rawTier)
	if string(tier) != rawTier || !tiers.IsPublic(tier) {
		return "", ErrValidation
	}

	updated, err := s.profiles.SetTier(ctx, userID, tier)
	if err != nil {
		return "", fmt.Errorf("set tier: %w", err)
	}
	if !updated {
		return "", ErrUserNotFound
	}

	return tier, nil
}

// denyLimitReached shapes the decision for a consume that lost the
// guard: another request took the last slot between the read and the
// update. Indistinguishable from an ordinary limit hit on purpose.
func (s *Service) denyLimitReached(record model.UsageRecord) rules.Decision {
	suggested, _ := tiers.NextTier(record.Tier)
	return rules.Decision{
		Allowed:          false,
		Remaining:        0,
		SuggestedUpgrade: suggested,
		Reason:           rules.ReasonDailyLimit,
	}
}

func (s *Service) buildSnapshot(ctx context.Context, record model.UsageRecord, now time.Time) (Snapshot, error) {
	snapshot := Snapshot{
		UserID:     record.UserID,
		Tier:       record.Tier,
		Likes:      buildCounter(record.LikesUsed, tiers.GetLimits(record.Tier).DailyLikes),
		SuperLikes: buildCounter(record.SuperLikesUsed, tiers.GetLimits(record.Tier).DailySuperLikes),
		Boosts:     buildCounter(record.BoostsUsed, tiers.GetLimits(record.Tier).DailyBoosts),
		ResetAt:    rules.NextResetAt(now, s.loc),
	}

	if s.boosts != nil {
		activeUntil, err := s.boosts.ActiveUntil(ctx, record.UserID, now)
		if err != nil {
			return Snapshot{}, fmt.Errorf("load boost state: %w", err)
		}
		snapshot.BoostActiveUntil = activeUntil
	}

	return snapshot, nil
}

func (s *Service) defaultSnapshot(userID int64, now time.Time) Snapshot {
	limits := tiers.GetLimits(tiers.TierFree)
	return Snapshot{
		UserID:     userID,
		Tier:       tiers.TierFree,
		Likes:      buildCounter(0, limits.DailyLikes),
		SuperLikes: buildCounter(0, limits.DailySuperLikes),
		Boosts:     buildCounter(0, limits.DailyBoosts),
		ResetAt:    rules.NextResetAt(now, s.loc),
	}
}

func buildCounter(used, limit int) Counter {
	counter := Counter{Used: used, Limit: limit}
	if limit == tiers.Unlimited {
		counter.Remaining = rules.RemainingUnlimited
		return counter
	}
	counter.Remaining = limit - used
	if counter.Remaining < 0 {
		counter.Remaining = 0
	}
	return counter
}
