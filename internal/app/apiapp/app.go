package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/YDX64/2sweetyxxx-sub005/internal/config"
	"github.com/YDX64/2sweetyxxx-sub005/internal/jobs/resetsweep"
	pgrepo "github.com/YDX64/2sweetyxxx-sub005/internal/repo/postgres"
	redrepo "github.com/YDX64/2sweetyxxx-sub005/internal/repo/redis"
	authsvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/auth"
	ratesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/rate"
	usagesvc "github.com/YDX64/2sweetyxxx-sub005/internal/services/usage"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	httpRouter http.Handler
	sweep      *resetsweep.Job
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN, int32(cfg.Postgres.MaxConns)); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	profileRepo := pgrepo.NewProfileRepo(pool)
	usageRepo := pgrepo.NewUsageRepo(pool)
	boostRepo := pgrepo.NewBoostRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.RatePerMinute,
		cfg.Limits.RatePer10Seconds,
	)

	usageService, err := usagesvc.NewService(usagesvc.Dependencies{
		Pool:     pool,
		Profiles: profileRepo,
		Quotas:   usageRepo,
		Boosts:   boostRepo,
		Limiter:  rateLimiter,
	}, usagesvc.Config{
		ResetTimezone: cfg.Limits.ResetTimezone,
		BoostDuration: cfg.Limits.BoostDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("init usage service: %w", err)
	}

	sweep := resetsweep.NewJob(usageRepo, usageService.Location(), cfg.Limits.SweepInterval, log)

	RegisterRoutes(r, Dependencies{
		UsageService: usageService,
		JWTManager:   jwtManager,
		Logger:       log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		httpRouter: r,
		sweep:      sweep,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func (a *App) Sweep() *resetsweep.Job {
	return a.sweep
}
