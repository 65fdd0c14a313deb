package handlers

import (
	"errors"
	"net/http"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
	"github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/dto"
	httperrors "github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/errors"
)

type TierHandler struct {
	service *usagesvc.Service
}

func NewTierHandler(service *usagesvc.Service) *TierHandler {
	return &TierHandler{service: service}
}

// List returns the purchasable catalog. No auth: the paywall screen
// renders before login.
func (h *TierHandler) List(w http.ResponseWriter, _ *http.Request) {
	entries := tiers.PublicEntries()
	payload := dto.TierListResponse{Tiers: make([]dto.TierResponse, 0, len(entries))}
	for _, entry := range entries {
		payload.Tiers = append(payload.Tiers, mapTierEntry(entry))
	}

	httperrors.Write(w, http.StatusOK, payload)
}

func (h *TierHandler) Change(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USAGE_SERVICE_UNAVAILABLE", "usage service is unavailable")
		return
	}

	var req dto.TierChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	tier, err := h.service.SetTier(r.Context(), identity.UserID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, usagesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "unknown or non-purchasable tier")
		case errors.Is(err, usagesvc.ErrUserNotFound):
			writeNotFound(w, "USER_NOT_FOUND", "user profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to change tier")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TierChangeResponse{Tier: string(tier)})
}

func mapTierEntry(entry tiers.Entry) dto.TierResponse {
	features := make([]string, 0, len(entry.Features))
	for _, feature := range entry.Features {
		features = append(features, string(feature))
	}

	return dto.TierResponse{
		Name:            string(entry.Name),
		DailyLikes:      entry.Limits.DailyLikes,
		DailySuperLikes: entry.Limits.DailySuperLikes,
		DailyBoosts:     entry.Limits.DailyBoosts,
		Features:        features,
		DisplayPrice:    entry.DisplayPrice,
	}
}
