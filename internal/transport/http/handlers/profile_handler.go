package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
	"github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/dto"
	httperrors "github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *usagesvc.Service
}

func NewProfileHandler(service *usagesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Handle creates the caller's profile row if it does not exist yet and
// returns the resulting usage snapshot. Safe to call repeatedly.
func (h *ProfileHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USAGE_SERVICE_UNAVAILABLE", "usage service is unavailable")
		return
	}

	var req dto.ProfileCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := h.service.EnsureProfile(r.Context(), identity.UserID, req.DisplayName); err != nil {
		if errors.Is(err, usagesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid profile request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to create profile")
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load usage")
		return
	}

	httperrors.Write(w, http.StatusOK, mapSnapshot(snapshot))
}
