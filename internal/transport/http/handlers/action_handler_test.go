package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/model"
	"github.com/YDX64/2sweetyxxx-sub005/internal/domain/tiers"
	pgrepo "github.com/YDX64/2sweetyxxx-sub005/internal/repo/postgres"
	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
	"github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/dto"
)

type handlerTestStore struct {
	records map[int64]model.UsageRecord
}

func newHandlerTestStore(records ...model.UsageRecord) *handlerTestStore {
	store := &handlerTestStore{records: map[int64]model.UsageRecord{}}
	for _, rec := range records {
		store.records[rec.UserID] = rec
	}
	return store
}

func (s *handlerTestStore) Ensure(_ context.Context, userID int64, _ string, dayKey string) error {
	if _, ok := s.records[userID]; !ok {
		day, _ := time.ParseInLocation("2006-01-02", dayKey, time.UTC)
		s.records[userID] = model.UsageRecord{UserID: userID, Tier: tiers.TierFree, LastResetDate: day}
	}
	return nil
}

func (s *handlerTestStore) GetUsage(_ context.Context, userID int64) (model.UsageRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return model.UsageRecord{}, pgrepo.ErrProfileNotFound
	}
	return rec, nil
}

func (s *handlerTestStore) SetTier(_ context.Context, userID int64, tier tiers.Tier) (bool, error) {
	rec, ok := s.records[userID]
	if !ok {
		return false, nil
	}
	rec.Tier = tier
	s.records[userID] = rec
	return true, nil
}

func (s *handlerTestStore) consume(userID int64, dayKey string, limit int, bump func(*model.UsageRecord) *int) (int, error) {
	rec := s.records[userID]
	if rec.LastResetDate.Format("2006-01-02") < dayKey {
		rec.LikesUsed, rec.SuperLikesUsed, rec.BoostsUsed = 0, 0, 0
		day, _ := time.ParseInLocation("2006-01-02", dayKey, time.UTC)
		rec.LastResetDate = day
	}
	target := bump(&rec)
	if *target >= limit {
		return 0, pgrepo.ErrLimitReached
	}
	*target++
	s.records[userID] = rec
	return *target, nil
}

func (s *handlerTestStore) ConsumeLikeWithLimit(_ context.Context, userID int64, dayKey string, limit int) (int, error) {
	return s.consume(userID, dayKey, limit, func(rec *model.UsageRecord) *int { return &rec.LikesUsed })
}

func (s *handlerTestStore) ConsumeSuperLikeWithLimit(_ context.Context, userID int64, dayKey string, limit int) (int, error) {
	return s.consume(userID, dayKey, limit, func(rec *model.UsageRecord) *int { return &rec.SuperLikesUsed })
}

func (s *handlerTestStore) ConsumeBoostWithLimit(_ context.Context, _ pgx.Tx, userID int64, dayKey string, limit int) (int, error) {
	return s.consume(userID, dayKey, limit, func(rec *model.UsageRecord) *int { return &rec.BoostsUsed })
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(context.Context, int64, string) (int64, bool, error) {
	return 0, true, nil
}

type blockedLimiter struct {
	retryAfterSec int64
}

func (l blockedLimiter) Allow(context.Context, int64, string) (int64, bool, error) {
	return l.retryAfterSec, false, nil
}

func newHandlerTestService(t *testing.T, store *handlerTestStore, limiter usagesvc.RateLimiter) *usagesvc.Service {
	t.Helper()

	svc, err := usagesvc.NewService(usagesvc.Dependencies{
		Profiles: store,
		Quotas:   store,
		Limiter:  limiter,
	}, usagesvc.Config{ResetTimezone: "UTC"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func authedRequest(method, path, body string, userID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: userID, Role: "USER"}))
}

func todayRecord(userID int64, tier tiers.Tier, likesUsed int) model.UsageRecord {
	today := time.Now().UTC()
	return model.UsageRecord{
		UserID:        userID,
		Tier:          tier,
		LikesUsed:     likesUsed,
		LastResetDate: time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
	}
}

func TestActionAllowsAndCountsLike(t *testing.T) {
	store := newHandlerTestStore(todayRecord(7001, tiers.TierFree, 0))
	handler := NewActionHandler(newHandlerTestService(t, store, allowAllLimiter{}))

	rr := httptest.NewRecorder()
	handler.Handle(rr, authedRequest(http.MethodPost, "/v1/actions", `{"action":"like"}`, 7001))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload dto.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Allowed || payload.Reason != "ok" {
		t.Fatalf("expected allow, got %+v", payload)
	}
	if payload.Remaining != 10 {
		t.Fatalf("expected pre-action remaining 10, got %d", payload.Remaining)
	}
	if payload.Usage.Likes.Used != 1 {
		t.Fatalf("expected 1 like used, got %d", payload.Usage.Likes.Used)
	}
}

func TestActionDeniesAtLimitWithUpgradeHint(t *testing.T) {
	store := newHandlerTestStore(todayRecord(7001, tiers.TierFree, 10))
	handler := NewActionHandler(newHandlerTestService(t, store, allowAllLimiter{}))

	rr := httptest.NewRecorder()
	handler.Handle(rr, authedRequest(http.MethodPost, "/v1/actions", `{"action":"like"}`, 7001))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload dto.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Allowed {
		t.Fatal("expected deny at the limit")
	}
	if payload.Reason != "daily_limit_reached" {
		t.Fatalf("unexpected reason: %q", payload.Reason)
	}
	if payload.SuggestedUpgrade != "silver" {
		t.Fatalf("unexpected upgrade hint: %q", payload.SuggestedUpgrade)
	}
}

func TestActionUnknownUserReturns404Decision(t *testing.T) {
	store := newHandlerTestStore()
	handler := NewActionHandler(newHandlerTestService(t, store, allowAllLimiter{}))

	rr := httptest.NewRecorder()
	handler.Handle(rr, authedRequest(http.MethodPost, "/v1/actions", `{"action":"like"}`, 404))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}

	var payload dto.ActionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Allowed || payload.Reason != "user_not_found" {
		t.Fatalf("expected user_not_found decision, got %+v", payload)
	}
}

func TestActionRejectsUnsupportedType(t *testing.T) {
	store := newHandlerTestStore(todayRecord(7001, tiers.TierFree, 0))
	handler := NewActionHandler(newHandlerTestService(t, store, allowAllLimiter{}))

	rr := httptest.NewRecorder()
	handler.Handle(rr, authedRequest(http.MethodPost, "/v1/actions", `{"action":"poke"}`, 7001))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestActionRequiresAuth(t *testing.T) {
	store := newHandlerTestStore()
	handler := NewActionHandler(newHandlerTestService(t, store, allowAllLimiter{}))

	rr := httptest.NewRecorder()
	handler.Handle(rr, httptest.NewRequest(http.MethodPost, "/v1/actions", strings.NewReader(`{"action":"like"}`)))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestActionThrottledReturns429(t *testing.T) {
	store := newHandlerTestStore(todayRecord(7001, tiers.TierFree, 0))
	handler := NewActionHandler(newHandlerTestService(t, store, blockedLimiter{retryAfterSec: 9}))

	rr := httptest.NewRecorder()
	handler.Handle(rr, authedRequest(http.MethodPost, "/v1/actions", `{"action":"like"}`, 7001))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_FAST" || payload.RetryAfterSec != 9 {
		t.Fatalf("unexpected throttle payload: %+v", payload)
	}
}
