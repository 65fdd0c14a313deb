package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
	httperrors "github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/errors"
)

type UsageHandler struct {
	service *usagesvc.Service
}

func NewUsageHandler(service *usagesvc.Service) *UsageHandler {
	return &UsageHandler{service: service}
}

func (h *UsageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USAGE_SERVICE_UNAVAILABLE", "usage service is unavailable")
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, usagesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid usage request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load usage")
		return
	}

	httperrors.Write(w, http.StatusOK, mapSnapshot(snapshot))
}
