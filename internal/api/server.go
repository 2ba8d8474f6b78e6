package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"citypulse/internal/cache"
	"citypulse/internal/clock"
	"citypulse/internal/config"
	"citypulse/internal/database"
	"citypulse/internal/engine"
	"citypulse/internal/handlers"
	"citypulse/internal/logger"
	"citypulse/internal/messaging"
	"citypulse/internal/metrics"
	"citypulse/internal/middleware"
	"citypulse/internal/models"
	"citypulse/internal/repository"
	"citypulse/internal/search"
	"citypulse/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server представляет HTTP сервер API
type Server struct {
	router *gin.Engine
	config *config.Config
	db     *database.DB
	nats   *messaging.NATSClient
	valkey *cache.ValkeyClient
	store  *store.EventStore
	engine *engine.Engine
	guard  *engine.Guard
	repos  *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Создаем репозитории
	repos := repository.NewRepositories(db)

	// Подключаемся к NATS
	var natsClient *messaging.NATSClient
	if cfg.NATSEnabled {
		natsClient, err = messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", "error", err)
		}
	}

	clk := clock.NewSystem()
	ctx := context.Background()

	// Включенность уведомлений переживает перезапуск
	enabled, err := repos.Preferences.GetBool(ctx, repository.PrefNotificationsEnabled, cfg.NotificationsEnabled)
	if err != nil {
		slog.Error("Failed to load notification preference, using config default", "error", err)
		enabled = cfg.NotificationsEnabled
	}

	notifier, err := engine.NewNotifier(ctx, repos.Ledger, &notificationSink{nats: natsClient}, clk, cfg.ProximityRadiusMeters, enabled)
	if err != nil {
		// The notifier still works; it just starts with an empty ledger
		// and may re-notify events that were already announced.
		slog.Error("Failed to restore notification ledger", "error", err)
	}

	eventStore := store.New()
	eng := engine.New(eventStore, clk, notifier)
	guard := engine.NewGuard(eventStore, repos.Reservations, &seatPublisher{nats: natsClient}, clk)

	// Elasticsearch для глубокого поиска (опционально)
	var searcher handlers.Searcher
	if cfg.Elasticsearch.Enabled {
		esClient, esErr := search.NewElasticsearchClient(cfg.Elasticsearch)
		if esErr != nil {
			logger.Fatal("Failed to connect to Elasticsearch", "error", esErr)
		}
		searcher = esClient

		// Каждый снапшот переиндексируется целиком
		eventStore.Subscribe(func(events []models.Event) {
			if indexErr := esClient.IndexSnapshot(context.Background(), events); indexErr != nil {
				slog.Error("Failed to index snapshot", "error", indexErr)
			}
		})
	}

	// Valkey кэш производных представлений (опционально)
	var valkeyClient *cache.ValkeyClient
	if cfg.Valkey.Enabled {
		valkeyClient, err = cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Error("Failed to connect to Valkey, serving without cache", "error", err)
			valkeyClient = nil
		}
	}

	// Подписываемся на снапшоты из фида
	if natsClient != nil {
		_, err = natsClient.SubscribeSnapshots(func(msg models.SnapshotMessage) {
			eventStore.ReplaceAll(msg.Events)
			metrics.SnapshotsReceived.Inc()
			slog.Info("Applied event snapshot from feed",
				"count", len(msg.Events), "published_at", msg.PublishedAt)
		})
		if err != nil {
			logger.Fatal("Failed to subscribe to snapshot feed", "error", err)
		}
	}

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	// Создаем сервер
	server := &Server{
		router: router,
		config: cfg,
		db:     db,
		nats:   natsClient,
		valkey: valkeyClient,
		store:  eventStore,
		engine: eng,
		guard:  guard,
		repos:  repos,
	}

	server.setupRoutes(searcher)

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes(searcher handlers.Searcher) {
	h := handlers.NewHandlers(s.engine, s.guard, s.store, searcher, s.repos.Preferences, s.valkey)

	api := s.router.Group("/api")
	{
		// Derived views
		views := api.Group("/views")
		{
			views.GET("/trending", h.Trending)
			views.GET("/all", h.AllEvents)
			views.GET("/nearyou", h.NearYou)
			views.GET("/calendar", h.Calendar)
			views.GET("/map", h.MapPins)
		}

		// Session inputs
		api.PUT("/criteria", h.UpdateCriteria)
		api.POST("/location", h.UpdateLocation)

		// Event feed (HTTP ingestion path, mirrors the NATS feed)
		api.POST("/events/snapshot", h.IngestSnapshot)

		// Deep search
		api.GET("/search", h.Search)

		// Reservations
		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.CreateReservation)
			reservations.GET("", h.ListReservations)
		}

		// Notifications
		notifications := api.Group("/notifications")
		{
			notifications.POST("/reset", h.ResetNotifications)
			notifications.PUT("/enabled", h.SetNotificationsEnabled)
		}
	}

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// Prometheus metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	snapVer, _ := s.engine.Versions()
	c.JSON(status, gin.H{
		"status":           dbHealth.Status,
		"service":          "citypulse-api",
		"database":         dbHealth,
		"snapshot_version": snapVer,
		"events":           len(s.store.All()),
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

// notificationSink delivers proximity notification intents. With NATS
// connected the intent goes out on the wire for push delivery; without
// it the log line is the delivery.
type notificationSink struct {
	nats *messaging.NATSClient
}

func (s *notificationSink) Emit(n models.NearbyNotification) {
	metrics.NotificationsEmitted.Inc()

	slog.Info("Nearby event notification",
		"event_id", n.Event.ID,
		"title", n.Event.Title,
		"distance", n.DistanceText)

	if s.nats != nil {
		if err := s.nats.PublishNearby(n); err != nil {
			slog.Error("Failed to publish nearby notification", "error", err, "event_id", n.Event.ID)
		}
	}
}

// seatPublisher reconciles booked-seat counts with the authoritative
// store. The local snapshot is already adjusted optimistically; the feed
// delivers the confirmed count with the next snapshot.
type seatPublisher struct {
	nats *messaging.NATSClient
}

func (p *seatPublisher) IncrementBookedSeats(_ context.Context, eventID string, delta int) error {
	if p.nats == nil {
		slog.Debug("Seat adjustment kept local, NATS disabled", "event_id", eventID, "delta", delta)
		return nil
	}

	return p.nats.PublishSeatsBooked(models.SeatsBookedMessage{
		EventID:   eventID,
		Delta:     delta,
		Timestamp: time.Now(),
	})
}
