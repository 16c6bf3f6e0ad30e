// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, admin auth, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - JSON routes for the site, server-rendered pages for the owner
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/resume-gate/internal/config"
	_ "github.com/tbourn/resume-gate/internal/docs" // swagger spec registration
	"github.com/tbourn/resume-gate/internal/http/handlers"
	"github.com/tbourn/resume-gate/internal/http/middleware"
	"github.com/tbourn/resume-gate/internal/mail"
	"github.com/tbourn/resume-gate/internal/repo"
	"github.com/tbourn/resume-gate/internal/services"
)

const (
	pathHealth   = "/health"
	pathMetrics  = "/metrics"
	pathDownload = "/api/download-resume"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. Services are built from the store, the mail sender and cfg.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip (skips the PDF and /metrics)
//  7. Metrics
//  8. Rate limiter (per route and admin/IP)
//  9. CORS and Security headers
//
// The returned service owns the background download alerts; callers wait
// on it during shutdown.
func RegisterRoutes(r *gin.Engine, store repo.RequestStore, sender mail.Sender, cfg config.Config) *services.RequestService {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction; decision tokens never reach logs
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskParams: []string{"token"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))

	// 6) Compression for JSON and pages
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{pathMetrics, pathDownload})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics(pathMetrics))
	r.GET(pathMetrics, gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per route and admin/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst,
		middleware.PerRoute(middleware.KeyByAdminOrIP()), pathHealth, pathMetrics)
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET(pathHealth, func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h, reqSvc := newHandlers(store, sender, cfg)
	adminAuth := middleware.AdminAuth(cfg.Admin.User, cfg.Admin.PasswordHash)

	// Public API
	api := r.Group("/api")
	{
		api.POST("/download-request", h.SubmitDownloadRequest)
		api.GET("/download-request", adminAuth, h.ListDownloadRequests)
		api.POST("/contact", h.SendContact)
	}
	r.GET(pathDownload, middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
	}), h.DownloadResume)

	// Owner-facing pages opened from email links
	admin := r.Group("/admin", middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
		CSP:        middleware.PageCSP,
	}))
	admin.GET("", adminAuth, h.AdminDashboard)
	admin.GET("/approve-download", h.DecideDownloadRequest)

	return reqSvc
}

// newHandlers builds the service graph: store and sender → notifier →
// request/contact services → handlers.
func newHandlers(store repo.RequestStore, sender mail.Sender, cfg config.Config) (*handlers.Handlers, *services.RequestService) {
	notifier := mail.NewNotifier(sender, cfg)
	reqSvc := services.NewRequestService(store, notifier, services.NewLinkBuilder(cfg.Links), cfg.Resume.Path)
	contactSvc := services.NewContactService(notifier)
	return handlers.New(reqSvc, contactSvc, handlers.Options{ResumeFilename: cfg.Resume.Filename}), reqSvc
}

// corsMiddleware returns the CORS chain. With no allowlist every origin is
// accepted without credentials; otherwise allowed origins are echoed.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	methods := []string{"GET", "POST", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", "Authorization"}
	expose := []string{"X-Request-ID", "Content-Length", "Content-Disposition", "ETag"}

	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps simple health checks).
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     headers,
				ExposeHeaders:    expose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     methods,
			AllowHeaders:     headers,
			ExposeHeaders:    expose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
