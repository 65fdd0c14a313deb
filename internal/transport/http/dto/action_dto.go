package dto

type ActionRequest struct {
	Action string `json:"action"`
}

type ActionResponse struct {
	Allowed          bool          `json:"allowed"`
	Remaining        int           `json:"remaining"`
	Reason           string        `json:"reason"`
	SuggestedUpgrade string        `json:"suggested_upgrade,omitempty"`
	BoostID          string        `json:"boost_id,omitempty"`
	Usage            UsageResponse `json:"usage"`
}
