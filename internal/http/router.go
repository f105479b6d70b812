package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/auth"
	"github.com/Nmomos/hedgehog-reservation/internal/config"
	"github.com/Nmomos/hedgehog-reservation/internal/http/handlers"
	"github.com/Nmomos/hedgehog-reservation/internal/http/middlewares"
	"github.com/Nmomos/hedgehog-reservation/internal/observability"
	"github.com/Nmomos/hedgehog-reservation/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires middleware, repositories and handlers. rdb may be nil, in
// which case the credential rate limiter is disabled.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// metrics registry local to this router instance
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(otelgin.Middleware("hedgehog-api"))
	r.Use(prom.GinHandleMiddleware())

	// health + metrics
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	hedgehogsRepo := postgres.NewHedgehogsRepo(pool, prom)
	profilesRepo := postgres.NewProfilesRepo(pool, prom)

	jwtManager := auth.NewManager(
		cfg.JWTSecret,
		cfg.JWTIssuer,
		cfg.JWTAudience,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
	)

	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	// 10 attempts per minute per IP on credential endpoints
	limiter := middlewares.NewRateLimiter(rdb, 10, time.Minute, "rl:auth")

	usersHandler := handlers.NewUsersHandler(usersRepo, profilesRepo, jwtManager, prom)
	hedgehogsHandler := handlers.NewHedgehogsHandler(hedgehogsRepo)
	profilesHandler := handlers.NewProfilesHandler(profilesRepo)

	requireJSON := middlewares.RequireJSON()
	requireAuth := authMW.RequireAuth()

	// users
	r.POST("/users/", limiter.Middleware(middlewares.KeyByIP), requireJSON, usersHandler.Register)
	r.POST("/users/login/token/", limiter.Middleware(middlewares.KeyByIP), usersHandler.Login)
	r.GET("/users/me/", requireAuth, usersHandler.Me)

	// hedgehogs
	r.POST("/hedgehogs/", requireAuth, requireJSON, hedgehogsHandler.CreateHedgehog)
	r.GET("/hedgehogs/", requireAuth, hedgehogsHandler.ListMyHedgehogs)
	r.GET("/hedgehogs/:id/", requireAuth, hedgehogsHandler.GetHedgehogByID)
	r.PUT("/hedgehogs/:id/", requireAuth, requireJSON, hedgehogsHandler.RequireOwnership(), hedgehogsHandler.UpdateHedgehog)
	r.DELETE("/hedgehogs/:id/", requireAuth, hedgehogsHandler.RequireOwnership(), hedgehogsHandler.DeleteHedgehog)

	// profiles
	r.GET("/profiles/:username/", requireAuth, profilesHandler.GetProfileByUsername)
	r.PUT("/profiles/me/", requireAuth, requireJSON, profilesHandler.UpdateOwnProfile)

	return r
}
