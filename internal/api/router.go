// Package api wires together all HTTP routes for the team tool dashboard.
//
// Route grouping philosophy:
//   - /api/v1/auth/ carries the two-step login flow. It is unauthenticated by
//     nature and sits behind the strict rate-limit tier, since a six-digit
//     code survives very few guesses per minute.
//   - Everything else under /api/v1/ requires a valid session token; the
//     /api/v1/admin/ subtree additionally requires the owner role.
//
// Middleware ordering is deliberate: Security -> RateLimit -> Auth -> RBAC ->
// Audit, so unauthenticated floods are shed before any token work and audit
// entries carry the authenticated identity.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/toolvault/toolvault/internal/api/accounts"
	"github.com/toolvault/toolvault/internal/api/admin"
	"github.com/toolvault/toolvault/internal/api/catalog"
	"github.com/toolvault/toolvault/internal/audit"
	"github.com/toolvault/toolvault/internal/auth"
	"github.com/toolvault/toolvault/internal/config"
	"github.com/toolvault/toolvault/internal/db/repositories"
	"github.com/toolvault/toolvault/internal/jobs"
	"github.com/toolvault/toolvault/internal/middleware"
	"github.com/toolvault/toolvault/internal/safego"
)

// BackgroundServices holds references to background jobs and resources that
// must be stopped during graceful shutdown. The caller (cmd/server) is
// responsible for calling Shutdown() when the process receives a termination
// signal.
type BackgroundServices struct {
	sweeper      *jobs.LoginCodeSweeper
	rateLimiters []*middleware.RateLimiter
	redisClient  *redis.Client
	auditMirror  audit.Mirror
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.sweeper != nil {
		bg.sweeper.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.redisClient != nil {
		if err := bg.redisClient.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}
	if bg.auditMirror != nil {
		if err := bg.auditMirror.Close(); err != nil {
			slog.Error("failed to close audit mirror", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices, error) {
	router := gin.New()
	bg := &BackgroundServices{}

	// Repositories share the one pool.
	profileRepo := repositories.NewProfileRepository(db)
	codeRepo := repositories.NewLoginCodeRepository(db)
	toolRepo := repositories.NewToolRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Audit trail, optionally mirrored to a local JSONL file.
	var mirror audit.Mirror
	if cfg.Audit.Mirror.Enabled {
		fm, err := audit.NewFileMirror(cfg.Audit.Mirror.Path, cfg.Audit.Mirror.MaxSizeMB, cfg.Audit.Mirror.MaxBackups)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit mirror: %w", err)
		}
		mirror = fm
		bg.auditMirror = fm
	}
	recorder := audit.NewRecorder(auditRepo, mirror)

	loginService := auth.NewLoginService(
		profileRepo, codeRepo, nil,
		cfg.Auth.LoginCodeTTL, cfg.Auth.SessionTTL,
	)

	authHandlers := accounts.NewAuthHandlers(loginService)
	profileHandlers := accounts.NewProfileHandlers(profileRepo)
	categoryHandlers := catalog.NewCategoryHandlers(categoryRepo)
	toolHandlers := catalog.NewToolHandlers(toolRepo, recorder, cfg.Cache.TTL)
	ratingHandlers := catalog.NewRatingHandlers(ratingRepo, toolRepo)
	commentHandlers := catalog.NewCommentHandlers(commentRepo, toolRepo)
	activityHandlers := admin.NewActivityHandlers(auditRepo)
	statsHandlers := admin.NewStatsHandler(sqlx.NewDb(db, "postgres"))

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.Telemetry.Enabled {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/version", versionHandler())

	// Rate limiting tiers. The auth tier is strict; everything else gets the
	// general tier. With a Redis address configured the limits hold across
	// replicas; otherwise each process keeps its own buckets.
	generalCfg := middleware.DefaultRateLimitConfig()
	authCfg := middleware.AuthRateLimitConfig()
	if cfg.Security.RateLimiting.RequestsPerMinute > 0 {
		generalCfg.RequestsPerMinute = cfg.Security.RateLimiting.RequestsPerMinute
	}
	if cfg.Security.RateLimiting.Burst > 0 {
		generalCfg.BurstSize = cfg.Security.RateLimiting.Burst
	}

	generalLimit := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	authLimit := generalLimit
	if cfg.Security.RateLimiting.Enabled {
		if cfg.Security.RateLimiting.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Security.RateLimiting.RedisAddr,
				Password: cfg.Security.RateLimiting.RedisPassword,
				DB:       cfg.Security.RateLimiting.RedisDB,
			})
			bg.redisClient = rdb
			generalLimit = middleware.RedisRateLimitMiddleware(rdb, generalCfg)
			authLimit = middleware.RedisRateLimitMiddleware(rdb, authCfg)
		} else {
			generalLimiter := middleware.NewRateLimiter(generalCfg)
			authLimiter := middleware.NewRateLimiter(authCfg)
			bg.rateLimiters = append(bg.rateLimiters, generalLimiter, authLimiter)
			generalLimit = middleware.RateLimitMiddleware(generalLimiter)
			authLimit = middleware.RateLimitMiddleware(authLimiter)
		}
	}

	auditMW := gin.HandlerFunc(func(c *gin.Context) { c.Next() })
	if cfg.Audit.Enabled {
		auditMW = middleware.AuditMiddleware(recorder)
	}

	v1 := router.Group("/api/v1")

	// Login flow: unauthenticated, strict tier, audited (the login handlers
	// stage their own identity since no token exists yet).
	authRoutes := v1.Group("/auth", authLimit, auditMW)
	{
		authRoutes.POST("/login", authHandlers.Login)
		authRoutes.POST("/verify", authHandlers.VerifyCode)
		authRoutes.POST("/resend", authHandlers.ResendCode)
		authRoutes.POST("/cancel", authHandlers.Cancel)
	}

	// Everything below requires a session token.
	authed := v1.Group("", generalLimit, middleware.AuthMiddleware(profileRepo), auditMW)
	{
		authed.POST("/auth/logout", authHandlers.Logout)

		authed.GET("/profiles/me", profileHandlers.GetMe)
		authed.PUT("/profiles/me", profileHandlers.UpdateMe)
		authed.PUT("/profiles/me/two-factor", profileHandlers.SetTwoFactor)
		authed.GET("/roles", profileHandlers.ListRoles)

		authed.GET("/categories", categoryHandlers.List)
		authed.POST("/categories", categoryHandlers.Create)
		authed.PUT("/categories/:id", categoryHandlers.Update)
		authed.DELETE("/categories/:id", categoryHandlers.Delete)

		authed.GET("/tools", toolHandlers.List)
		authed.POST("/tools", toolHandlers.Create)
		authed.GET("/tools/:id", toolHandlers.Get)
		authed.PUT("/tools/:id", toolHandlers.Update)
		authed.DELETE("/tools/:id", toolHandlers.Delete)

		authed.PUT("/tools/:id/rating", ratingHandlers.Rate)
		authed.DELETE("/tools/:id/rating", ratingHandlers.Unrate)

		authed.GET("/tools/:id/comments", commentHandlers.List)
		authed.POST("/tools/:id/comments", commentHandlers.Create)
		authed.PUT("/comments/:id", commentHandlers.Update)
		authed.DELETE("/comments/:id", commentHandlers.Delete)

		// Owner-only surface.
		owner := authed.Group("/admin", middleware.RequireOwner())
		{
			owner.GET("/tools/pending", toolHandlers.ListPending)
			owner.POST("/tools/:id/approve", toolHandlers.Approve)
			owner.POST("/tools/:id/reject", toolHandlers.Reject)
			owner.GET("/activity", activityHandlers.ListActivity)
			owner.GET("/stats", statsHandlers.GetDashboardStats)
		}
	}

	// Background jobs.
	sweeper := jobs.NewLoginCodeSweeper(codeRepo, cfg.Auth.LoginCodeSweepInterval)
	bg.sweeper = sweeper
	safego.Go(func() { sweeper.Start(context.Background()) })

	return router, bg, nil
}

// healthCheckHandler returns the health status of the service.
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured request logging.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if cfg.Logging.Format == "json" {
			logJSON(c, latency, path, query)
		} else {
			logText(c, latency, path, query)
		}
	}
}

// logJSON logs a request as a JSON-structured slog record.
func logJSON(c *gin.Context, latency time.Duration, path, query string) {
	requestID, _ := c.Get(middleware.RequestIDKey)
	slog.LogAttrs(
		c.Request.Context(),
		slog.LevelInfo,
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("status", c.Writer.Status()),
		slog.Int("size", c.Writer.Size()),
		slog.Duration("latency", latency),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", fmt.Sprintf("%v", requestID)),
		slog.String("user_agent", c.Request.UserAgent()),
	)
}

// logText logs a request as a human-readable slog text record.
func logText(c *gin.Context, latency time.Duration, path, query string) {
	// reuse the same structured output; slog will emit text format when the
	// global handler is a TextHandler (configured in telemetry.SetupLogger).
	logJSON(c, latency, path, query)
}

// CORSMiddleware handles CORS for the dashboard frontend.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				// Browsers reject "*" combined with credentials, so the
				// credentials header is only sent for a concrete origin.
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
