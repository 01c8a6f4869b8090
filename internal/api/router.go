package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/contactdesk/leadgate/internal/api/handler"
	"github.com/contactdesk/leadgate/internal/api/middleware"
	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Log        zerolog.Logger
	Auth       ports.AuthService
	Leads      ports.LeadService
	Tokens     ports.TokenVerifier
	Identities ports.IdentityResolver

	// HealthChecks are run by GET /health/ready.
	HealthChecks map[string]handler.DependencyCheck

	// ContactRateLimit is the number of contact submissions allowed per
	// client IP and minute; 0 disables the limit. ContactLimiterStore
	// overrides the in-process store, e.g. with the Redis one.
	ContactRateLimit    int
	ContactLimiterStore echomiddleware.RateLimiterStore

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// AccessRules is the route table enforced by the guard. Anything not listed
// requires an authenticated principal.
func AccessRules() []middleware.Rule {
	return []middleware.Rule{
		{Method: http.MethodPost, Pattern: "/auth/register", Policy: middleware.Public()},
		{Method: http.MethodPost, Pattern: "/auth/login", Policy: middleware.Public()},
		{Method: http.MethodPost, Pattern: "/api/contact", Policy: middleware.Public()},
		{Pattern: "/api/admin/**", Policy: middleware.Role(domain.RoleAdmin)},

		{Pattern: "/public", Policy: middleware.Public()},
		{Pattern: "/private", Policy: middleware.Authenticated()},
		{Pattern: "/admin", Policy: middleware.Role(domain.RoleAdmin)},

		{Pattern: "/health/**", Policy: middleware.Public()},
		{Pattern: "/metrics", Policy: middleware.Public()},
		{Pattern: "/swagger/**", Policy: middleware.Public()},
	}
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	guard, err := middleware.NewGuard(AccessRules(), d.Log.With().Str("component", "guard").Logger())
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "leadgate",
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Authenticate(d.Tokens, d.Identities, d.Log.With().Str("component", "auth").Logger()))
	e.Use(guard.Middleware())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	leadHandler := handler.NewLeadHandler(d.Leads)
	demoHandler := handler.NewDemoHandler()
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Contact form ---
	var contactMW []echo.MiddlewareFunc
	if limiter := contactLimiter(d); limiter != nil {
		contactMW = append(contactMW, limiter)
	}
	e.POST("/api/contact", leadHandler.Contact, contactMW...)

	// --- Lead administration ---
	admin := e.Group("/api/admin/leads")
	admin.GET("", leadHandler.List)
	admin.GET("/stats", leadHandler.Stats)
	admin.GET("/:id", leadHandler.Get)
	admin.PUT("/:id/status", leadHandler.UpdateStatus)
	admin.DELETE("/:id", leadHandler.Delete)

	// --- One route per access policy ---
	e.GET("/public", demoHandler.Public)
	e.GET("/private", demoHandler.Private)
	e.GET("/admin", demoHandler.Admin)

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func contactLimiter(d Deps) echo.MiddlewareFunc {
	if d.ContactRateLimit <= 0 {
		return nil
	}
	store := d.ContactLimiterStore
	if store == nil {
		store = echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(d.ContactRateLimit) / time.Minute.Seconds()),
			Burst:     d.ContactRateLimit,
			ExpiresIn: 3 * time.Minute,
		})
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, _ string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many contact requests, try again later").SetInternal(err)
		},
	})
}
