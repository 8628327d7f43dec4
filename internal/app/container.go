package app

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/sport-hall-booking/internal/api"
	"github.com/nekogravitycat/sport-hall-booking/internal/auth"
	"github.com/nekogravitycat/sport-hall-booking/internal/booking"
	"github.com/nekogravitycat/sport-hall-booking/internal/resource"
	"github.com/nekogravitycat/sport-hall-booking/internal/sport"
	"github.com/nekogravitycat/sport-hall-booking/internal/timeslot"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	Logger       *slog.Logger
	// Location decides which calendar day counts as today.
	Location  *time.Location
	Publisher booking.Publisher
	// DayCache enables the in-memory availability cache. Leave it off when
	// several processes share the database.
	DayCache bool
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	SlotService    timeslot.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// Sport Module
	sportRepo := sport.NewPgxRepository(cfg.DBPool)
	sportService := sport.NewService(sportRepo)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo, sportService)

	// TimeSlot Module
	slotRepo := timeslot.NewPgxRepository(cfg.DBPool)
	slotService := timeslot.NewService(slotRepo)

	// Booking Module
	opts := []booking.Option{}
	if cfg.Logger != nil {
		opts = append(opts, booking.WithLogger(cfg.Logger))
	}
	if cfg.Location != nil {
		opts = append(opts, booking.WithLocation(cfg.Location))
	}
	if cfg.Publisher != nil {
		opts = append(opts, booking.WithPublisher(cfg.Publisher))
	}
	if cfg.DayCache {
		opts = append(opts, booking.WithDayCache(true))
	}
	ledger := booking.NewPgxLedger(cfg.DBPool)
	bookingService := booking.NewService(ledger, resService, sportService, slotService, opts...)

	// API Router Config
	routerParams := api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Logger:         cfg.Logger,
		SportService:   sportService,
		ResService:     resService,
		SlotService:    slotService,
		BookingService: bookingService,
		JWTManager:     jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		SlotService:    slotService,
		BookingService: bookingService,
	}
}
