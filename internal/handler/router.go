package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/Little-pure-light/language-Model/internal/metrics"
)

// Options configures the router.
type Options struct {
	ServiceName string
	// Gatherer backs /metrics; nil omits the route.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	// RateLimit is requests per second on /api; zero disables limiting.
	RateLimit float64
	RateBurst int
	// AllowedOrigins lists CORS origins; empty or "*" allows any origin.
	AllowedOrigins []string
	HealthChecks   []HealthCheck
}

// NewRouter registers every route.
func NewRouter(companion Companion, opts Options) *gin.Engine {
	if opts.ServiceName == "" {
		opts.ServiceName = "chenguang"
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	router.Use(otelgin.Middleware(opts.ServiceName))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "XiaoChenGuang AI Soul System API", "status": "running"})
	})
	router.GET("/health", Health(opts.HealthChecks))
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	if opts.RateLimit > 0 {
		api.Use(RateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.RateBurst, 1))))
	}
	{
		api.POST("/chat", HandleChat(companion, opts.Metrics))
		api.GET("/memories/:conversation_id", ListMemories(companion))
		api.GET("/emotional-states/:user_id", ListEmotionalStates(companion))
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// RateLimit rejects requests once the shared token bucket is empty.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
