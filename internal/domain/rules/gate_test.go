package rules

import (
	"errors"
	"testing"
	"time"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
)

func record(tier tiers.Tier, likes, superLikes, boosts int) model.UsageRecord {
	return model.UsageRecord{
		UserID:         7,
		Tier:           tier,
		LikesUsed:      likes,
		SuperLikesUsed: superLikes,
		BoostsUsed:     boosts,
		LastResetDate:  time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		raw  string
		want Action
	}{
		{"like", Action{Kind: ActionLike}},
		{" SUPER_LIKE ", Action{Kind: ActionSuperLike}},
		{"boost", Action{Kind: ActionBoost}},
		{"feature:advanced_filters", Action{Kind: ActionFeature, Feature: tiers.FeatureAdvancedFilters}},
	}
	for _, tc := range cases {
		got, err := ParseAction(tc.raw)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAction(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{"", "poke", "feature:", "feature:time_travel"} {
		if _, err := ParseAction(raw); !errors.Is(err, ErrUnsupportedAction) {
			t.Fatalf("ParseAction(%q) should be unsupported, got %v", raw, err)
		}
	}
}

func TestCanPerformCountedAction(t *testing.T) {
	decision := CanPerform(record(tiers.TierFree, 4, 0, 0), tiers.TierFree, Action{Kind: ActionLike})
	if !decision.Allowed || decision.Remaining != 6 || decision.Reason != ReasonOK {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestCanPerformBoundary(t *testing.T) {
	// One below the limit still passes.
	decision := CanPerform(record(tiers.TierFree, 9, 0, 0), tiers.TierFree, Action{Kind: ActionLike})
	if !decision.Allowed || decision.Remaining != 1 {
		t.Fatalf("expected allow with remaining 1, got %+v", decision)
	}

	// At the limit it does not.
	decision = CanPerform(record(tiers.TierFree, 10, 0, 0), tiers.TierFree, Action{Kind: ActionLike})
	if decision.Allowed {
		t.Fatalf("expected deny at the limit, got %+v", decision)
	}
	if decision.Reason != ReasonDailyLimit || decision.SuggestedUpgrade != tiers.TierSilver {
		t.Fatalf("unexpected deny shape: %+v", decision)
	}
}

func TestCanPerformUnlimitedSentinel(t *testing.T) {
	// Counter way past any real limit must not matter on unlimited tiers.
	decision := CanPerform(record(tiers.TierPlatinum, 5000, 0, 0), tiers.TierPlatinum, Action{Kind: ActionLike})
	if !decision.Allowed || decision.Remaining != RemainingUnlimited {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestCanPerformTopTierDenyHasNoSuggestion(t *testing.T) {
	decision := CanPerform(record(tiers.TierPlatinum, 0, 0, 5), tiers.TierPlatinum, Action{Kind: ActionBoost})
	if decision.Allowed {
		t.Fatalf("platinum boost cap is 5, got %+v", decision)
	}
	if decision.SuggestedUpgrade != "" {
		t.Fatalf("no upgrade path past platinum, got %q", decision.SuggestedUpgrade)
	}
}

func TestCanPerformFeature(t *testing.T) {
	decision := CanPerform(record(tiers.TierFree, 0, 0, 0), tiers.TierFree, Action{Kind: ActionFeature, Feature: tiers.FeatureSeeWhoLikesYou})
	if decision.Allowed {
		t.Fatal("free must not see who likes them")
	}
	if decision.Reason != ReasonFeatureUpgrade || decision.SuggestedUpgrade != tiers.TierGold {
		t.Fatalf("unexpected deny shape: %+v", decision)
	}

	decision = CanPerform(record(tiers.TierGold, 0, 0, 0), tiers.TierGold, Action{Kind: ActionFeature, Feature: tiers.FeatureSeeWhoLikesYou})
	if !decision.Allowed {
		t.Fatalf("gold must pass, got %+v", decision)
	}
}

func TestRemainingClampsAfterDowngrade(t *testing.T) {
	// 40 likes used on a former silver account, now free with a cap of 10.
	if got := Remaining(record(tiers.TierFree, 40, 0, 0), tiers.TierFree, ActionLike); got != 0 {
		t.Fatalf("expected clamped 0, got %d", got)
	}
	if got := Remaining(record(tiers.TierGold, 40, 0, 0), tiers.TierGold, ActionLike); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	if got := Remaining(record(tiers.TierPlatinum, 40, 0, 0), tiers.TierPlatinum, ActionLike); got != RemainingUnlimited {
		t.Fatalf("expected unlimited, got %d", got)
	}
}
