package dto

type ProfileCreateRequest struct {
	DisplayName string `json:"display_name"`
}
