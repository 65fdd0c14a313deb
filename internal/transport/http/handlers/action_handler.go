package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/rules"
	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
	"github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/dto"
	httperrors "github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/errors"
)

type ActionHandler struct {
	service *usagesvc.Service
}

func NewActionHandler(service *usagesvc.Service) *ActionHandler {
	return &ActionHandler{service: service}
}

func (h *ActionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "USAGE_SERVICE_UNAVAILABLE", "usage service is unavailable")
		return
	}

	var req dto.ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	outcome, err := h.service.RequestAction(r.Context(), identity.UserID, req.Action)
	if err != nil {
		if tooFast, ok := usagesvc.IsTooFast(err); ok {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_FAST",
				Message:       "slow down",
				RetryAfterSec: tooFast.RetryAfterSec,
			})
			return
		}
		switch {
		case errors.Is(err, rules.ErrUnsupportedAction):
			writeBadRequest(w, "UNSUPPORTED_ACTION", "unsupported action type")
		case errors.Is(err, usagesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid action request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process action")
		}
		return
	}

	status := http.StatusOK
	if outcome.Decision.Reason == rules.ReasonUserNotFound {
		status = http.StatusNotFound
	}

	httperrors.Write(w, status, mapOutcome(outcome))
}

func mapOutcome(outcome usagesvc.Outcome) dto.ActionResponse {
	return dto.ActionResponse{
		Allowed:          outcome.Decision.Allowed,
		Remaining:        outcome.Decision.Remaining,
		Reason:           string(outcome.Decision.Reason),
		SuggestedUpgrade: string(outcome.Decision.SuggestedUpgrade),
		BoostID:          outcome.BoostID,
		Usage:            mapSnapshot(outcome.Usage),
	}
}

func mapSnapshot(snapshot usagesvc.Snapshot) dto.UsageResponse {
	return dto.UsageResponse{
		UserID:           snapshot.UserID,
		Tier:             string(snapshot.Tier),
		Likes:            mapCounter(snapshot.Likes),
		SuperLikes:       mapCounter(snapshot.SuperLikes),
		Boosts:           mapCounter(snapshot.Boosts),
		ResetAt:          snapshot.ResetAt.UTC(),
		BoostActiveUntil: snapshot.BoostActiveUntil,
	}
}

func mapCounter(counter usagesvc.Counter) dto.CounterResponse {
	return dto.CounterResponse{
		Used:      counter.Used,
		Limit:     counter.Limit,
		Remaining: counter.Remaining,
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
