package di

import (
	"time"

	"github.com/Winan03/AeroFlash-app/internal/handler"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/pkg/database"
	"github.com/Winan03/AeroFlash-app/pkg/docstore"
	pkgredis "github.com/Winan03/AeroFlash-app/pkg/redis"
)

// Container holds all dependencies of the API server
type Container struct {
	// Infrastructure
	Store docstore.Store
	Redis *pkgredis.Client
	DB    *database.PostgresDB

	// Repositories
	FlightRepo  repository.FlightRepository
	TicketRepo  repository.TicketRepository
	Inventory   repository.SeatInventory
	SessionRepo repository.SessionRepository
	OutboxRepo  repository.OutboxRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	FlightService      service.FlightService
	ReservationService service.ReservationService
	StatsService       service.StatsService
	AuthService        service.AuthService

	// Handlers
	HealthHandler *handler.HealthHandler
	FlightHandler *handler.FlightHandler
	TicketHandler *handler.TicketHandler
	StatsHandler  *handler.StatsHandler
	AuthHandler   *handler.AuthHandler
}

// ContainerConfig contains configuration for building the container.
// DB may be nil, in which case ticket events are not recorded.
type ContainerConfig struct {
	Store             docstore.Store
	Redis             *pkgredis.Client
	DB                *database.PostgresDB
	FastPathEnabled   bool
	TicketTopic       string
	Location          *time.Location
	AuthConfig        *service.AuthServiceConfig
	ReservationConfig *service.ReservationServiceConfig
	SecureCookie      bool
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		Store: cfg.Store,
		Redis: cfg.Redis,
		DB:    cfg.DB,
	}

	// Initialize repositories
	c.FlightRepo = repository.NewDocstoreFlightRepository(c.Store)
	c.TicketRepo = repository.NewDocstoreTicketRepository(c.Store)
	c.SessionRepo = repository.NewRedisSessionRepository(c.Redis)
	if cfg.FastPathEnabled {
		c.Inventory = repository.NewRedisSeatInventory(c.Redis)
	}

	if c.DB != nil {
		c.OutboxRepo = repository.NewPostgresOutboxRepository(c.DB.Pool())
		c.EventPublisher = service.NewOutboxEventPublisher(c.OutboxRepo, cfg.TicketTopic)
	} else {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	// Initialize services
	c.FlightService = service.NewFlightService(c.FlightRepo, c.Inventory)
	c.ReservationService = service.NewReservationService(
		c.FlightRepo,
		c.TicketRepo,
		c.Inventory,
		c.EventPublisher,
		cfg.ReservationConfig,
	)
	c.StatsService = service.NewStatsService(c.FlightRepo, c.TicketRepo, cfg.Location)
	c.AuthService = service.NewAuthService(c.SessionRepo, cfg.AuthConfig)

	// Initialize handlers
	components := map[string]handler.HealthChecker{
		"docstore": c.Store,
		"redis":    c.Redis,
		"postgres": nil,
	}
	if c.DB != nil {
		components["postgres"] = c.DB
	}
	c.HealthHandler = handler.NewHealthHandler(components)
	c.FlightHandler = handler.NewFlightHandler(c.FlightService)
	c.TicketHandler = handler.NewTicketHandler(c.ReservationService)
	c.StatsHandler = handler.NewStatsHandler(c.StatsService)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, &handler.AuthHandlerConfig{SecureCookie: cfg.SecureCookie})

	return c
}
