package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
)

// BoostRepo stores boost activation windows (boost_activations: id,
// user_id, active_until, created_at).
type BoostRepo struct {
	pool *pgxpool.Pool
}

func NewBoostRepo(pool *pgxpool.Pool) *BoostRepo {
	return &BoostRepo{pool: pool}
}

func (r *BoostRepo) CreateActivation(ctx context.Context, tx pgx.Tx, activation model.BoostActivation) error {
	if strings.TrimSpace(activation.ID) == "" || activation.UserID <= 0 || activation.ActiveUntil.IsZero() {
		return fmt.Errorf("invalid boost activation payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO boost_activations (
	id,
	user_id,
	active_until,
	created_at
) VALUES ($1, $2, $3, NOW())
`, activation.ID, activation.UserID, activation.ActiveUntil.UTC()); err != nil {
		return fmt.Errorf("create boost activation: %w", err)
	}

	return nil
}

// ActiveUntil returns the end of the latest boost window still running
// at the given instant, or nil when no boost is active.
func (r *BoostRepo) ActiveUntil(ctx context.Context, userID int64, at time.Time) (*time.Time, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return nil, nil
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var until time.Time
	err := r.pool.QueryRow(ctx, `
SELECT active_until
FROM boost_activations
WHERE user_id = $1 AND active_until > $2
ORDER BY active_until DESC
LIMIT 1
`, userID, at.UTC()).Scan(&until)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active boost window: %w", err)
	}

	until = until.UTC()
	return &until, nil
}
