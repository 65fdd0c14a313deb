package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrLimitReached = errors.New("daily limit reached")

// UsageRepo mutates the daily counter columns on profiles. Every consume
// is a single guarded UPDATE that folds the day rollover and the limit
// check into one statement, so two concurrent requests can never both
// pass the check at the last remaining use: the row lock serializes them
// and the WHERE guard fails the loser.
type UsageRepo struct {
	pool *pgxpool.Pool
}

func NewUsageRepo(pool *pgxpool.Pool) *UsageRepo {
	return &UsageRepo{pool: pool}
}

func (r *UsageRepo) ConsumeLikeWithLimit(ctx context.Context, userID int64, dayKey string, limit int) (int, error) {
	if err := validateConsume(userID, dayKey, limit); err != nil {
		return 0, err
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var used int
	err := r.pool.QueryRow(ctx, `
UPDATE profiles
SET
	daily_likes_used = CASE WHEN last_reset_date < $2::date THEN 1 ELSE daily_likes_used + 1 END,
	daily_super_likes_used = CASE WHEN last_reset_date < $2::date THEN 0 ELSE daily_super_likes_used END,
	daily_boosts_used = CASE WHEN last_reset_date < $2::date THEN 0 ELSE daily_boosts_used END,
	last_reset_date = $2::date,
	updated_at = NOW()
WHERE user_id = $1
	AND (last_reset_date < $2::date OR daily_likes_used < $3)
RETURNING daily_likes_used
`, userID, dayKey, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLimitReached
		}
		return 0, fmt.Errorf("consume like quota: %w", err)
	}

	return used, nil
}

func (r *UsageRepo) ConsumeSuperLikeWithLimit(ctx context.Context, userID int64, dayKey string, limit int) (int, error) {
	if err := validateConsume(userID, dayKey, limit); err != nil {
		return 0, err
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var used int
	err := r.pool.QueryRow(ctx, `
UPDATE profiles
SET
	daily_super_likes_used = CASE WHEN last_reset_date < $2::date THEN 1 ELSE daily_super_likes_used + 1 END,
	daily_likes_used = CASE WHEN last_reset_date < $2::date THEN 0 ELSE daily_likes_used END,
	daily_boosts_used = CASE WHEN last_reset_date < $2::date THEN 0 ELSE daily_boosts_used END,
	last_reset_date = $2::date,
	updated_at = NOW()
WHERE user_id = $1
	AND (last_reset_date < $2::date OR daily_super_likes_used < $3)
RETURNING daily_super_likes_used
`, userID, dayKey, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLimitReached
		}
		return 0, fmt.Errorf("consume super like quota: %w", err)
	}

	return used, nil
}

// ConsumeBoostWithLimit runs inside the caller's transaction so the
// counter increment and the boost activation insert commit together.
func (r *UsageRepo) ConsumeBoostWithLimit(ctx context.Context, tx pgx.Tx, userID int64, dayKey string, limit int) (int, error) {
	if err := validateConsume(userID, dayKey, limit); err != nil {
		return 0, err
	}
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	var used int
	err := tx.QueryRow(ctx, `
UPDATE profiles
SET
	daily_boosts_used = CASE WHEN last_reset_date < $2::date THEN 1 ELSE daily_boosts_used + 1 END,
	daily_likes_used = CASE WHEN last_reset_date < $2::date THEN 0 ELSE daily_likes_used END,
	daily_super_likes_used = CASE WHEN last_reset_date < $2::date THEN 0 ELSE daily_super_likes_used END,
	last_reset_date = $2::date,
	updated_at = NOW()
WHERE user_id = $1
	AND (last_reset_date < $2::date OR daily_boosts_used < $3)
RETURNING daily_boosts_used
`, userID, dayKey, limit).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLimitReached
		}
		return 0, fmt.Errorf("consume boost quota: %w", err)
	}

	return used, nil
}

// ResetExpired is the sweep: zero all counters whose reset date fell
// behind the current day key. Idempotent, running it twice in one day
// touches zero rows the second time.
func (r *UsageRepo) ResetExpired(ctx context.Context, dayKey string) (int64, error) {
	if strings.TrimSpace(dayKey) == "" {
		return 0, fmt.Errorf("day key is required")
	}
	if r.pool == nil {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET
	daily_likes_used = 0,
	daily_super_likes_used = 0,
	daily_boosts_used = 0,
	last_reset_date = $1::date,
	updated_at = NOW()
WHERE last_reset_date < $1::date
`, dayKey)
	if err != nil {
		return 0, fmt.Errorf("reset expired usage counters: %w", err)
	}

	return result.RowsAffected(), nil
}

func validateConsume(userID int64, dayKey string, limit int) error {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" || limit <= 0 {
		return fmt.Errorf("invalid quota consume payload")
	}
	return nil
}
