package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	agenttoolsH "github.com/jefersonOS/barber-pro/internal/handler/agenttools"
	appointmentH "github.com/jefersonOS/barber-pro/internal/handler/appointment"
	authH "github.com/jefersonOS/barber-pro/internal/handler/auth"
	catalogH "github.com/jefersonOS/barber-pro/internal/handler/catalog"
	healthH "github.com/jefersonOS/barber-pro/internal/handler/health"
	internalH "github.com/jefersonOS/barber-pro/internal/handler/internalapi"
	paymentH "github.com/jefersonOS/barber-pro/internal/handler/payment"
	prometheusH "github.com/jefersonOS/barber-pro/internal/handler/prometheus"
	"github.com/jefersonOS/barber-pro/internal/middleware"
	"github.com/jefersonOS/barber-pro/pkg/logger"
)

type Config struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RequestTimeout   time.Duration
	CORS             middleware.CORSConfig
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware

	healthH      *healthH.Handler
	authHandler  *authH.Handler
	catalogH     *catalogH.Handler
	appointmentH *appointmentH.Handler
	paymentH     *paymentH.Handler
	internalH    *internalH.Handler
	agenttoolsH  *agenttoolsH.Handler
	metricsH     *prometheusH.Handler
}

func NewRouter(
	l *logger.Logger,
	auth *middleware.AuthMiddleware,
	health *healthH.Handler,
	authHandler *authH.Handler,
	catalog *catalogH.Handler,
	appointment *appointmentH.Handler,
	payment *paymentH.Handler,
	internal *internalH.Handler,
	agenttools *agenttoolsH.Handler,
	metrics *prometheusH.Handler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		healthH:      health,
		authHandler:  authHandler,
		catalogH:     catalog,
		appointmentH: appointment,
		paymentH:     payment,
		internalH:    internal,
		agenttoolsH:  agenttools,
		metricsH:     metrics,
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(l),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		metrics.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.RequestTimeout}),
		middleware.CORS(cfg.CORS),
	)

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  cfg.RateLimit,
			Burst: cfg.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metricsH.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)

	// Public surfaces: login, the Stripe webhook (authenticated by its
	// signature) and the secret-gated machine endpoints.
	r.authHandler.RegisterRoutes(api)
	r.internalH.RegisterRoutes(api)
	r.agenttoolsH.RegisterRoutes(api)

	// Tenant-scoped staff surfaces.
	r.catalogH.RegisterRoutes(api, r.auth)
	r.appointmentH.RegisterRoutes(api, r.auth)
	r.paymentH.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
