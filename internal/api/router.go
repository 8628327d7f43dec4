package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nekogravitycat/sport-hall-booking/internal/auth"
	"github.com/nekogravitycat/sport-hall-booking/internal/booking"
	bookingHttp "github.com/nekogravitycat/sport-hall-booking/internal/booking/http"
	"github.com/nekogravitycat/sport-hall-booking/internal/metrics"
	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
	resHttp "github.com/nekogravitycat/sport-hall-booking/internal/resource/http"
	"github.com/nekogravitycat/sport-hall-booking/internal/sport"
	sportHttp "github.com/nekogravitycat/sport-hall-booking/internal/sport/http"
	"github.com/nekogravitycat/sport-hall-booking/internal/timeslot"
	slotHttp "github.com/nekogravitycat/sport-hall-booking/internal/timeslot/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	Logger         *slog.Logger
	SportService   sport.Service
	ResService     resource.Service
	SlotService    timeslot.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, logging, metrics, auth) and registering routes for every module.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	// Global Middleware:
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - RequestLogger: One structured log line per request.
	// - metrics.Middleware: Request count and latency per route template.
	r.Use(gin.Recovery(), RequestLogger(log), metrics.Middleware())

	// Configure CORS (Cross-Origin Resource Sharing).
	// Without configured origins only same-origin requests are served.
	if origins := allowedOrigins(cfg.IsProduction, cfg.ProdOrigins); len(origins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = origins
		config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		r.Use(cors.New(config))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks that the token carries the admin claim.
	adminMiddleware := auth.RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	sportHandler := sportHttp.NewHandler(cfg.SportService)
	resHandler := resHttp.NewHandler(cfg.ResService)
	slotHandler := slotHttp.NewHandler(cfg.SlotService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		sportHttp.RegisterRoutes(v1, sportHandler, authMiddleware, adminMiddleware)
		resHttp.RegisterRoutes(v1, resHandler, authMiddleware, adminMiddleware)
		slotHttp.RegisterRoutes(v1, slotHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000", // Web client
			"http://localhost:8081", // Swagger
		}
	}
	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
