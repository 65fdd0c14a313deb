package dto

type TierResponse struct {
	Name            string   `json:"name"`
	DailyLikes      int      `json:"daily_likes"`
	DailySuperLikes int      `json:"daily_super_likes"`
	DailyBoosts     int      `json:"daily_boosts"`
	Features        []string `json:"features"`
	DisplayPrice    string   `json:"display_price,omitempty"`
}

type TierListResponse struct {
	Tiers []TierResponse `json:"tiers"`
}

type TierChangeRequest struct {
	Tier string `json:"tier"`
}

type TierChangeResponse struct {
	Tier string `json:"tier"`
}
