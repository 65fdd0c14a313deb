package rules

import (
	"errors"
	"strings"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
)

type ActionKind string

const (
	ActionLike      ActionKind = "like"
	ActionSuperLike ActionKind = "super_like"
	ActionBoost     ActionKind = "boost"
	ActionFeature   ActionKind = "feature"
)

const featurePrefix = "feature:"

var ErrUnsupportedAction = errors.New("unsupported action")

type Action struct {
	Kind    ActionKind
	Feature tiers.Feature
}

// ParseAction accepts "like", "super_like", "boost" and "feature:<name>".
func ParseAction(raw string) (Action, error) {
	value := strings.ToLower(strings.TrimSpace(raw))

	if name, ok := strings.CutPrefix(value, featurePrefix); ok {
		feature := tiers.Feature(strings.TrimSpace(name))
		if !tiers.KnownFeature(feature) {
			return Action{}, ErrUnsupportedAction
		}
		return Action{Kind: ActionFeature, Feature: feature}, nil
	}

	switch ActionKind(value) {
	case ActionLike, ActionSuperLike, ActionBoost:
		return Action{Kind: ActionKind(value)}, nil
	default:
		return Action{}, ErrUnsupportedAction
	}
}

func (a Action) String() string {
	if a.Kind == ActionFeature {
		return featurePrefix + string(a.Feature)
	}
	return string(a.Kind)
}

type Reason string

const (
	ReasonOK             Reason = "ok"
	ReasonDailyLimit     Reason = "daily_limit_reached"
	ReasonFeatureUpgrade Reason = "feature_requires_upgrade"
	ReasonUserNotFound   Reason = "user_not_found"
)

// RemainingUnlimited marks "no cap" in decision and snapshot payloads.
const RemainingUnlimited = -1

type Decision struct {
	Allowed          bool
	Remaining        int
	SuggestedUpgrade tiers.Tier
	Reason           Reason
}

// CanPerform is the stateless action gate. The caller must have applied
// the day rollover to rec before evaluating; the gate itself never
// mutates anything.
func CanPerform(rec model.UsageRecord, tier tiers.Tier, action Action) Decision {
	if action.Kind == ActionFeature {
		if tiers.HasFeature(tier, action.Feature) {
			return Decision{Allowed: true, Remaining: RemainingUnlimited, Reason: ReasonOK}
		}
		return Decision{
			Allowed:          false,
			Remaining:        0,
			SuggestedUpgrade: tiers.FeatureUpgradeTier(action.Feature),
			Reason:           ReasonFeatureUpgrade,
		}
	}

	limit := limitFor(tier, action.Kind)
	if limit == tiers.Unlimited {
		return Decision{Allowed: true, Remaining: RemainingUnlimited, Reason: ReasonOK}
	}

	used := usedFor(rec, action.Kind)
	if used < limit {
		return Decision{Allowed: true, Remaining: limit - used, Reason: ReasonOK}
	}

	decision := Decision{Allowed: false, Remaining: 0, Reason: ReasonDailyLimit}
	if next, ok := tiers.NextTier(tier); ok {
		decision.SuggestedUpgrade = next
	}
	return decision
}

// Remaining reports how many uses are left for the action, clamped at
// zero so a mid-day tier downgrade can never produce a negative value.
func Remaining(rec model.UsageRecord, tier tiers.Tier, kind ActionKind) int {
	limit := limitFor(tier, kind)
	if limit == tiers.Unlimited {
		return RemainingUnlimited
	}
	left := limit - usedFor(rec, kind)
	if left < 0 {
		left = 0
	}
	return left
}

func limitFor(tier tiers.Tier, kind ActionKind) int {
	limits := tiers.GetLimits(tier)
	switch kind {
	case ActionLike:
		return limits.DailyLikes
	case ActionSuperLike:
		return limits.DailySuperLikes
	case ActionBoost:
		return limits.DailyBoosts
	default:
		return 0
	}
}

func usedFor(rec model.UsageRecord, kind ActionKind) int {
	switch kind {
	case ActionLike:
		return rec.LikesUsed
	case ActionSuperLike:
		return rec.SuperLikesUsed
	case ActionBoost:
		return rec.BoostsUsed
	default:
		return 0
	}
}
