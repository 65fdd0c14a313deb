package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo owns the profiles table. Usage counters live as columns on
// the same row (user_id, display_name, tier, daily_likes_used,
// daily_super_likes_used, daily_boosts_used, last_reset_date DATE,
// created_at, updated_at); UsageRepo mutates the counter columns.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Ensure creates the profile row if it does not exist yet. The usage
// record is born implicitly here: free tier, zero counters, reset date =
// today in the reference timezone.
func (r *ProfileRepo) Ensure(ctx context.Context, userID int64, displayName, dayKey string) error {
	if userID <= 0 || strings.TrimSpace(dayKey) == "" {
		return fmt.Errorf("invalid profile ensure payload")
	}
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO profiles (
	user_id,
	display_name,
	tier,
	daily_likes_used,
	daily_super_likes_used,
	daily_boosts_used,
	last_reset_date,
	created_at,
	updated_at
) VALUES ($1, $2, 'free', 0, 0, 0, $3::date, NOW(), NOW())
ON CONFLICT (user_id) DO NOTHING
`, userID, strings.TrimSpace(displayName), dayKey); err != nil {
		return fmt.Errorf("ensure profile row: %w", err)
	}

	return nil
}

// GetUsage loads the raw usage record. Counters are returned as stored;
// the caller applies the day-rollover view before gating on them.
func (r *ProfileRepo) GetUsage(ctx context.Context, userID int64) (model.UsageRecord, error) {
	if userID <= 0 {
		return model.UsageRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return model.UsageRecord{}, ErrProfileNotFound
	}

	var (
		rec  model.UsageRecord
		tier string
	)
	err := r.pool.QueryRow(ctx, `
SELECT
	user_id,
	tier,
	daily_likes_used,
	daily_super_likes_used,
	daily_boosts_used,
	last_reset_date
FROM profiles
WHERE user_id = $1
LIMIT 1
`, userID).Scan(
		&rec.UserID,
		&tier,
		&rec.LikesUsed,
		&rec.SuperLikesUsed,
		&rec.BoostsUsed,
		&rec.LastResetDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UsageRecord{}, ErrProfileNotFound
		}
		return model.UsageRecord{}, fmt.Errorf("get usage record: %w", err)
	}

	rec.Tier = tiers.Parse(tier)
	return rec, nil
}

// SetTier updates the stored tier. Counters are intentionally left
// untouched: after a downgrade the gate clamps remaining to zero instead
// of rewriting history.
func (r *ProfileRepo) SetTier(ctx context.Context, userID int64, tier tiers.Tier) (bool, error) {
	if userID <= 0 || tier == "" {
		return false, fmt.Errorf("invalid tier update payload")
	}
	if r.pool == nil {
		return false, nil
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET
	tier = $2,
	updated_at = NOW()
WHERE user_id = $1
`, userID, string(tier))
	if err != nil {
		return false, fmt.Errorf("update profile tier: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
