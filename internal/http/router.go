package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rickmoura/gastoshub/internal/auth"
	"github.com/rickmoura/gastoshub/internal/config"
	"github.com/rickmoura/gastoshub/internal/http/handlers"
	"github.com/rickmoura/gastoshub/internal/http/middlewares"
	"github.com/rickmoura/gastoshub/internal/http/render"
	"github.com/rickmoura/gastoshub/internal/i18n"
	"github.com/rickmoura/gastoshub/internal/observability"
	"github.com/rickmoura/gastoshub/internal/ratelimit"
	"github.com/rickmoura/gastoshub/internal/repo/postgres"
	"github.com/rickmoura/gastoshub/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) (*gin.Engine, error) {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtManager, err := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)

	if err != nil {
		return nil, err
	}

	r := gin.New()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	renderer := render.New(i18n.New(cfg.Locale))

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("gastoshub-api"))
	r.Use(prom.GinHandleMiddleware())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	}

	// wire up store, service and the auth gate

	usersRepo := postgres.NewUsersRepo(pool, prom)
	accounts := service.NewAccount(usersRepo, jwtManager, log)
	gate := middlewares.NewAuthMiddleware(jwtManager, accounts, renderer, prom)

	// the gate runs on every request; public routes just pass through it
	r.Use(gate.Authenticate())

	// health + metrics

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// login attempts are throttled per client IP

	var loginLimiter ratelimit.Limiter

	if cfg.RedisAddr != "" {
		loginLimiter = ratelimit.NewRedis(ratelimit.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 10, time.Minute)
	} else {
		loginLimiter = ratelimit.NewMemory(10, time.Minute)
	}

	usersHandler := handlers.NewUsersHandler(accounts, renderer, prom)

	usuario := r.Group("/usuario")
	{
		usuario.POST("/login", middlewares.RateLimit(loginLimiter, middlewares.KeyByIP), usersHandler.Login)
		usuario.POST("/save", usersHandler.Save)
		usuario.PUT("/update", gate.RequireAuth(), usersHandler.Update)
		usuario.GET("/:idUsuario", gate.RequireAuth(), usersHandler.FindByID)
		usuario.DELETE("/delete/:id", gate.RequireAuth(), usersHandler.DeleteByID)
	}

	return r, nil
}
