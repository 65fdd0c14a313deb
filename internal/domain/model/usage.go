package model

import (
	"time"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
)

// UsageRecord is the per-user daily counter state. It lives as columns on
// the profiles row, one record per user, and is the only mutable state the
// action gate reads.
type UsageRecord struct {
	UserID         int64
	Tier           tiers.Tier
	LikesUsed      int
	SuperLikesUsed int
	BoostsUsed     int
	// LastResetDate is a calendar date (midnight in the reference
	// timezone), not a timestamp.
	LastResetDate time.Time
}

// BoostActivation is one purchased/consumed boost window.
type BoostActivation struct {
	ID          string
	UserID      int64
	ActiveUntil time.Time
	CreatedAt   time.Time
}
