package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kassa/internal/cache"
	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/engine"
	"kassa/internal/handlers"
	"kassa/internal/logger"
	"kassa/internal/messaging"
	"kassa/internal/metrics"
	"kassa/internal/middleware"
	"kassa/internal/repository"
	"kassa/internal/search"
	"kassa/internal/service"
	"kassa/internal/store"

	"github.com/gin-gonic/gin"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	engine   *engine.Engine
	store    *store.Store
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера. Движок бронирования работает
// в памяти; база данных, NATS, Valkey и Elasticsearch подключаются по
// возможности, их отсутствие снижает функциональность, но не валит сервис.
func NewServer(cfg *config.Config) *Server {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Снимки состояния на диске
	st, err := store.New(cfg.Store)
	if err != nil {
		logger.Fatal("Failed to open snapshot store", "dir", cfg.Store.Dir, "error", err)
	}

	// Движок бронирования, восстановленный из последнего снимка
	eng := engine.New(engine.NewRegistry())
	restoreSnapshot(eng, st)

	// Справочник пользователей (опционально)
	var db *database.DB
	var repos *repository.Repositories
	db, err = database.Connect(cfg.Database)
	if err != nil {
		slog.Warn("User directory unavailable, basic auth degrades to pass-through", "error", err)
		db = nil
	} else {
		if err := db.RunMigrations(); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}
		repos = repository.NewRepositories(db)
	}

	// NATS (опционально)
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS unavailable, domain events will not be published", "error", err)
		natsClient = nil
	}

	// Valkey (опционально)
	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, seat views will not be cached", "error", err)
		valkeyClient = nil
	}

	// Elasticsearch (опционально)
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, booking search disabled", "error", err)
		esClient = nil
	}

	services := service.NewServices(service.Deps{
		Engine: eng,
		Store:  st,
		NATS:   natsClient,
		Valkey: valkeyClient,
		Search: esClient,
	})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(metrics.Middleware())

	server := &Server{
		router:   router,
		config:   cfg,
		engine:   eng,
		store:    st,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()
	return server
}

// restoreSnapshot загружает последний снимок состояния в движок
func restoreSnapshot(eng *engine.Engine, st *store.Store) {
	configs, err := st.LoadEvents()
	if err != nil {
		logger.Fatal("Failed to load events snapshot", "error", err)
	}
	for _, cfg := range configs {
		if _, err := eng.CreateEvent(cfg); err != nil {
			slog.Warn("Skipping invalid persisted event", "name", cfg.Name, "error", err)
		}
	}

	bookings, err := st.LoadBookings()
	if err != nil {
		logger.Fatal("Failed to load bookings snapshot", "error", err)
	}
	restored := 0
	for _, b := range bookings {
		if err := eng.RestoreBooking(b); err != nil {
			slog.Warn("Skipping unrestorable booking row",
				"booking_id", b.BookingID, "seat", b.Seat.Label(), "error", err)
			continue
		}
		restored++
	}

	slog.Info("Restored snapshot", "events", len(configs), "bookings", restored)
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	// Обязательная Basic Auth для всех API роутов
	var userRepo *repository.UserRepository
	if s.repos != nil {
		userRepo = s.repos.Users
	}
	api.Use(middleware.BasicAuth(userRepo))
	{
		events := api.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/analytics", h.EventAnalytics)
			events.GET("/:id", h.GetEvent)
			events.PATCH("/:id/price", h.ChangeEventPrice)
			events.DELETE("/:id", h.DeleteEvent)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.POST("/quote", h.QuoteBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/search", h.SearchBookings)
			bookings.PATCH("/cancel", h.CancelBookings)
			bookings.PATCH("/:id/cancel", h.CancelBookingByID)
		}

		seats := api.Group("/seats")
		{
			seats.GET("", h.GetSeatMap)
			seats.GET("/availability", h.GetAvailability)
		}

		api.GET("/waitlist", h.GetWaitlist)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metrics.Handler())
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"service": "kassa-api",
		"version": "1.0.0",
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		check := s.db.HealthCheck(ctx)
		resp["database"] = check
		if check.Status != "healthy" {
			resp["status"] = "degraded"
		}
	}

	c.JSON(http.StatusOK, resp)
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

// Cleanup закрывает соединения и пишет финальный снимок
func (s *Server) Cleanup() error {
	configs, bookings := s.engine.ExportState()
	if err := s.store.SaveEvents(configs); err != nil {
		slog.Error("Failed to save final events snapshot", "error", err)
	}
	if err := s.store.SaveBookings(bookings); err != nil {
		slog.Error("Failed to save final bookings snapshot", "error", err)
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
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
