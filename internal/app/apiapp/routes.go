package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
	"github.com/YDX64/2sweetyxxx-sub005/internal/transport/http/handlers"
)

type Dependencies struct {
	UsageService *usagesvc.Service
	JWTManager   *authsvc.JWTManager
	Logger       *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	tierHandler := handlers.NewTierHandler(deps.UsageService)
	profileHandler := handlers.NewProfileHandler(deps.UsageService)
	usageHandler := handlers.NewUsageHandler(deps.UsageService)
	actionHandler := handlers.NewActionHandler(deps.UsageService)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)
	r.Get("/v1/tiers", tierHandler.List)
	r.With(authMW).Post("/v1/profile", profileHandler.Handle)
	r.With(authMW).Get("/v1/usage", usageHandler.Handle)
	r.With(authMW).Post("/v1/actions", actionHandler.Handle)
	r.With(authMW).Post("/v1/tier", tierHandler.Change)
}
