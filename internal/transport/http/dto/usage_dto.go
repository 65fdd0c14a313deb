package dto

import "time"

type CounterResponse struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

type UsageResponse struct {
	UserID           int64           `json:"user_id"`
	Tier             string          `json:"tier"`
	Likes            CounterResponse `json:"likes"`
	SuperLikes       CounterResponse `json:"super_likes"`
	Boosts           CounterResponse `json:"boosts"`
	ResetAt          time.Time       `json:"reset_at"`
	BoostActiveUntil *time.Time      `json:"boost_active_until,omitempty"`
}
