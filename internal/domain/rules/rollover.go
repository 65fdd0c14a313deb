package rules

import (
	"time"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
)

// Daily limits reset at midnight of one fixed reference timezone. The
// same DayKey is used for the read-side view, the guarded SQL consume and
// the sweep job, so every code path agrees on what "today" means.

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

func NextResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.UTC()
}

// ApplyRollover returns the record as it should be seen "now": if the
// stored reset date is from an earlier calendar day, all three counters
// read as zero and the reset date advances. Applying it twice within the
// same day is a no-op. A reset date at or past today is left alone —
// the same strictly-earlier comparison the SQL consume guard uses, so
// the view and the write side can never disagree after a clock step.
func ApplyRollover(rec model.UsageRecord, now time.Time, loc *time.Location) model.UsageRecord {
	if loc == nil {
		loc = time.UTC
	}
	if DayKey(rec.LastResetDate, loc) >= DayKey(now, loc) {
		return rec
	}

	rec.LikesUsed = 0
	rec.SuperLikesUsed = 0
	rec.BoostsUsed = 0
	rec.LastResetDate = midnight(now, loc)
	return rec
}

func midnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
