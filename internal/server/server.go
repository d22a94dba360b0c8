package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ianwelles/NihonGo-sub000/internal/auth"
	"github.com/ianwelles/NihonGo-sub000/internal/config"
	"github.com/ianwelles/NihonGo-sub000/internal/detect"
	"github.com/ianwelles/NihonGo-sub000/internal/export"
	"github.com/ianwelles/NihonGo-sub000/internal/ingest"
	"github.com/ianwelles/NihonGo-sub000/internal/popup"
	"github.com/ianwelles/NihonGo-sub000/internal/stream"
	"github.com/ianwelles/NihonGo-sub000/internal/trip"
	"github.com/ianwelles/NihonGo-sub000/internal/view"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Store    *trip.Store
	Views    *view.Service
	Detector *detect.Detector

	loader *ingest.Loader
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	store := trip.NewStore()
	detector := detect.New(cfg.CitySnapRadiusKm, cfg.CityZoomIn, cfg.CityZoomOut)
	monitor := popup.NewMonitor(cfg.PopupMinVisible)
	hub := stream.NewHub(redisClient)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   hub,
		Store:    store,
		Views:    view.NewService(store, hub, detector, monitor, time.Duration(cfg.SessionTTLMin)*time.Minute),
		Detector: detector,
		loader:   ingest.NewLoader(snapshotSource(cfg, db), time.Duration(cfg.SnapshotTimeoutSec)*time.Second),
	}

	registerRoutes(s)
	return s
}

// snapshotSource picks the ingestion source: the trip database when one is
// connected, a remote JSON snapshot when configured, otherwise nil so the
// loader serves the bundled fallback.
func snapshotSource(cfg config.Config, db *pgxpool.Pool) ingest.Source {
	if db != nil {
		return ingest.NewPostgresSource(db)
	}
	if cfg.SnapshotURL != "" {
		return ingest.NewHTTPSource(cfg.SnapshotURL)
	}
	return nil
}

// Reload runs ingestion and swaps the snapshot in place. Open view sessions
// are recomputed against the new data and pushed a fresh update.
func (s *Server) Reload(ctx context.Context) error {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		s.Store.Fail(err.Error())
		return err
	}
	s.Store.Replace(snap)
	s.Detector.Rebuild(s.Store.Snapshot())
	s.Views.RefreshAll()
	return nil
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.Cfg.TripPasswordHash, s.Redis))
	trip.RegisterRoutes(s.App.Group("/trip"), s.Store, s.Reload, jwtMiddleware)
	export.RegisterRoutes(s.App.Group("/trip"), s.Store, jwtMiddleware)
	view.RegisterRoutes(s.App.Group("/view"), s.Views, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
