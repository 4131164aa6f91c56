// Package httpapi wires the HTTP transport (Gin) to the application
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging, panic recovery,
// metrics, compression, CORS, security headers, rate limiting, and the
// optional session auth gate.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/mkarlin/gimmie/internal/config"
	"github.com/mkarlin/gimmie/internal/http/handlers"
	"github.com/mkarlin/gimmie/internal/http/middleware"
	"github.com/mkarlin/gimmie/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per session/IP)
//  8. CORS, security headers, gzip
//
// Session auth and CSRF protection apply only to the API group, and only
// when enabled in config; /health and /metrics stay open for probes and
// scrapers.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Imports are the largest legitimate payloads; 1 MiB covers thousands of
	// items.
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP())
	r.Use(rl.Handler())

	useCORS(r, cfg)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db
	listSvc := services.NewListService(db)
	archiveSvc := services.NewArchiveService(db, listSvc)
	transferSvc := services.NewTransferService(db, listSvc)
	h := handlers.New(listSvc, archiveSvc, transferSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)

	if cfg.Auth.Enabled {
		ah := handlers.NewAuthHandlers(cfg.Auth)
		api.POST("/auth/login", ah.Login)
		api.POST("/auth/logout", ah.Logout)

		api.Use(
			middleware.SessionAuth(cfg.Auth.SessionSecret, cfg.Auth.CookieName),
			middleware.CSRF(),
		)
	}

	{
		// Live list
		api.GET("/items", h.ListItems)
		api.POST("/items", h.CreateItem)
		api.PUT("/items/:id", h.UpdateItem)
		api.DELETE("/items/:id", h.DeleteItem)
		api.POST("/items/:id/complete", h.CompleteItem)
		api.POST("/items/:id/move", h.MoveItem)

		// Archive
		api.GET("/archive", h.ListArchive)
		api.POST("/archive/:id/restore", h.RestoreItem)

		// Transfer
		api.GET("/export", h.ExportItems)
		api.POST("/import", h.ImportItems)
	}
}

// useCORS installs the CORS posture: allow-all when no origins are
// configured, strict allowlist otherwise. Credentials are only allowed with
// an explicit allowlist, which the session cookie requires.
func useCORS(r *gin.Engine, cfg config.Config) {
	methods := []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", "X-CSRF-Token"}
	expose := []string{"X-Request-ID", "Content-Length", "Content-Disposition"}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     headers,
			ExposeHeaders:    expose,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    expose,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody caps the request body for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
