package main

import (
	"log"
	"net/http"
	"time"

	"healjai/backend/internal/api/handler"
	"healjai/backend/internal/config"
	"healjai/backend/internal/healjai"
	"healjai/backend/internal/localization"
	"healjai/backend/internal/models"
	"healjai/backend/internal/profanity"
	"healjai/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPersistedBackend connects PostgreSQL and Redis, runs migrations and
// returns the storage service backing all three core interfaces.
func setupPersistedBackend(cfg config.Config) *storage.Service {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	svc := storage.NewService(db, rdb)
	if _, err := rdb.Ping(svc.Ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Participant{},
		&models.ChatRoom{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return svc
}

func main() {
	log.Println("Starting Healjai Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	loc, err := localization.NewLocalizer()
	if err != nil {
		log.Fatalf("Failed to load locales: %v", err)
	}
	guard := profanity.NewGuard()
	hub := healjai.NewHub()

	// The backing store and the notification path are selected together:
	// in-memory state notifies the hub directly, the persisted backend
	// publishes through Redis so every process fans out its own clients.
	var (
		registry healjai.ParticipantRegistry
		queue    healjai.MatchQueue
		rooms    healjai.RoomManager
		notifier healjai.Notifier
	)
	switch cfg.StoreBackend {
	case "postgres":
		svc := setupPersistedBackend(cfg)
		registry, queue, rooms = svc, svc, svc
		notifier = healjai.NewPublishNotifier(svc)
		hub.RelayEvents(svc.SubscribeEvents())
	case "memory":
		registry = healjai.NewMemoryRegistry()
		queue = healjai.NewMemoryQueue()
		rooms = healjai.NewMemoryRooms()
		notifier = hub
	default:
		log.Fatalf("Unknown STORE_BACKEND %q (want memory or postgres)", cfg.StoreBackend)
	}

	closureText := loc.GetString(cfg.Lang, "system.partner_left")
	coordinator := healjai.NewCoordinator(registry, queue, rooms, guard, notifier, closureText)

	hub.SetMessageSink(func(roomID, participantID, content string) {
		if _, err := coordinator.Send(roomID, participantID, content); err != nil {
			log.Printf("ws send from %s to room %s failed: %v", participantID, roomID, err)
		}
	})
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(coordinator, hub, loc, []byte(cfg.JWTSecret), cfg.Lang)

	api := r.Group("/api/healjai")
	{
		api.POST("/join", h.Join)
		api.GET("/status/:participantID", h.Status)
		api.DELETE("/queue/:participantID", h.CancelSearch)
		api.GET("/rooms/:roomID", h.RoomData)
		api.POST("/rooms/:roomID/messages", h.SendMessage)
		api.GET("/rooms/:roomID/messages", h.GetMessages)
		api.POST("/rooms/:roomID/leave", h.Leave)
	}
	r.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
