package tiers

import "strings"

type Tier string

const (
	TierFree      Tier = "free"
	TierSilver    Tier = "silver"
	TierGold      Tier = "gold"
	TierPlatinum  Tier = "platinum"
	TierModerator Tier = "moderator"
	TierAdmin     Tier = "admin"
)

// Unlimited is the catalog sentinel for "no numeric cap". The gate must
// treat it as always-allowed and never compare it against usage.
const Unlimited = 999

type Feature string

const (
	FeatureAdvancedFilters   Feature = "advanced_filters"
	FeatureSeeWhoLikesYou    Feature = "see_who_likes_you"
	FeatureMultiLanguageChat Feature = "multi_language_chat"
)

type Limits struct {
	DailyLikes      int
	DailySuperLikes int
	DailyBoosts     int
}

type Entry struct {
	Name         Tier
	Limits       Limits
	Features     []Feature
	DisplayPrice string
}

// upgradeOrder is the public purchase ladder. Staff tiers sit outside it.
var upgradeOrder = []Tier{TierFree, TierSilver, TierGold, TierPlatinum}

var catalog = map[Tier]Entry{
	TierFree: {
		Name:         TierFree,
		Limits:       Limits{DailyLikes: 10, DailySuperLikes: 1, DailyBoosts: 0},
		DisplayPrice: "$0",
	},
	TierSilver: {
		Name:         TierSilver,
		Limits:       Limits{DailyLikes: 50, DailySuperLikes: 5, DailyBoosts: 1},
		Features:     []Feature{FeatureAdvancedFilters},
		DisplayPrice: "$9.99/mo",
	},
	TierGold: {
		Name:         TierGold,
		Limits:       Limits{DailyLikes: 100, DailySuperLikes: 10, DailyBoosts: 2},
		Features:     []Feature{FeatureAdvancedFilters, FeatureSeeWhoLikesYou},
		DisplayPrice: "$19.99/mo",
	},
	TierPlatinum: {
		Name:         TierPlatinum,
		Limits:       Limits{DailyLikes: Unlimited, DailySuperLikes: Unlimited, DailyBoosts: 5},
		Features:     []Feature{FeatureAdvancedFilters, FeatureSeeWhoLikesYou, FeatureMultiLanguageChat},
		DisplayPrice: "$29.99/mo",
	},
	TierModerator: {
		Name:     TierModerator,
		Limits:   Limits{DailyLikes: Unlimited, DailySuperLikes: Unlimited, DailyBoosts: Unlimited},
		Features: []Feature{FeatureAdvancedFilters, FeatureSeeWhoLikesYou, FeatureMultiLanguageChat},
	},
	TierAdmin: {
		Name:     TierAdmin,
		Limits:   Limits{DailyLikes: Unlimited, DailySuperLikes: Unlimited, DailyBoosts: Unlimited},
		Features: []Feature{FeatureAdvancedFilters, FeatureSeeWhoLikesYou, FeatureMultiLanguageChat},
	},
}

// featureUpgrade is the static per-feature suggested tier: the cheapest
// public tier whose plan carries the flag.
var featureUpgrade = map[Feature]Tier{
	FeatureAdvancedFilters:   TierSilver,
	FeatureSeeWhoLikesYou:    TierGold,
	FeatureMultiLanguageChat: TierPlatinum,
}

// Parse maps a stored tier value to a catalog tier. Unknown or empty
// values fall back to free so degraded or anonymous sessions always get
// a safe default instead of an error.
func Parse(raw string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := catalog[t]; ok {
		return t
	}
	return TierFree
}

func Get(t Tier) Entry {
	if entry, ok := catalog[t]; ok {
		return entry
	}
	return catalog[TierFree]
}

func GetLimits(t Tier) Limits {
	return Get(t).Limits
}

func HasFeature(t Tier, f Feature) bool {
	for _, have := range Get(t).Features {
		if have == f {
			return true
		}
	}
	return false
}

// KnownFeature reports whether the flag exists in the catalog at all.
func KnownFeature(f Feature) bool {
	_, ok := featureUpgrade[f]
	return ok
}

// FeatureUpgradeTier returns the suggested tier for a locked feature, or
// empty when the flag is unknown.
func FeatureUpgradeTier(f Feature) Tier {
	return featureUpgrade[f]
}

// NextTier walks one step up the fixed free<silver<gold<platinum ordering.
// Platinum and staff tiers have nothing to upgrade to.
func NextTier(t Tier) (Tier, bool) {
	for i, cur := range upgradeOrder {
		if cur == t && i+1 < len(upgradeOrder) {
			return upgradeOrder[i+1], true
		}
	}
	return "", false
}

// IsPublic reports whether the tier is purchasable (part of the ladder).
func IsPublic(t Tier) bool {
	for _, cur := range upgradeOrder {
		if cur == t {
			return true
		}
	}
	return false
}

// PublicEntries lists the purchase ladder in ascending order.
func PublicEntries() []Entry {
	entries := make([]Entry, 0, len(upgradeOrder))
	for _, t := range upgradeOrder {
		entries = append(entries, catalog[t])
	}
	return entries
}
