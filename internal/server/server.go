package server

import (
	"context"
	"time"

	"backend-safewalk/internal/auth"
	"backend-safewalk/internal/config"
	"backend-safewalk/internal/emergency"
	"backend-safewalk/internal/location"
	"backend-safewalk/internal/metrics"
	"backend-safewalk/internal/places"
	"backend-safewalk/internal/safety"
	"backend-safewalk/internal/sharing"
	"backend-safewalk/internal/storage"
	"backend-safewalk/internal/stream"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const sweepInterval = time.Minute

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *sharing.Store

	sweeperCancel context.CancelFunc
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   stream.NewHub(redisClient),
		Sessions: sharing.NewStore(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.sweeperCancel = cancel
	go s.Sessions.RunSweeper(ctx, sweepInterval)

	registerRoutes(s)
	return s
}

// Close stops the background session sweeper.
func (s *Server) Close() {
	s.sweeperCancel()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	s.App.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	finder := places.NewOverpassClient(s.Cfg.OverpassURL, nil, collector)
	notifier := emergency.LogNotifier{}

	locationSvc := location.NewService(s.DB, s.Stream, s.Sessions, collector, s.Cfg.LocationRetentionDays)
	safetySvc := safety.NewService(s.DB, finder, s.Cfg.NightStartHour, s.Cfg.NightEndHour)
	emergencySvc := emergency.NewService(s.DB, notifier, collector, s.Cfg.MaxEmergencyContacts)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB), jwtMiddleware)
	sharing.RegisterRoutes(s.App.Group("/sharing"), s.Sessions, s.DB, collector, jwtMiddleware)
	location.RegisterRoutes(s.App.Group("/locations"), locationSvc, jwtMiddleware)
	safety.RegisterRoutes(s.App.Group("/safety"), safetySvc, jwtMiddleware)
	emergency.RegisterRoutes(s.App.Group("/emergency"), emergencySvc, jwtMiddleware)
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB, s.Cfg.AudioDir), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.Sessions)
}
