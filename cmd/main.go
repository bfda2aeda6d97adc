package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"studybuddy/backend/internal/api/handler"
	"studybuddy/backend/internal/api/middleware"
	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/presence"
	"studybuddy/backend/internal/roomhub"
	"studybuddy/backend/internal/storage"
)

func setupDependencies() (*gorm.DB, *redis.Client) {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=user password=password dbname=studybuddydb port=5432 sslmode=disable"
	}

	// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey,
	// which the storage layer relies on for duplicate usernames.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Message{},
		&models.RoomPresence{},
		&models.Note{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting StudyBuddy Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set!")
	}

	db, rdb := setupDependencies()
	s := storage.NewStorageService(db, rdb)

	hub := roomhub.NewHub(s)
	h := handler.NewHandler(s, hub, []byte(jwtSecret))

	ctx := context.Background()
	go hub.Run(ctx)
	go presence.NewService(s).RunJanitor(ctx, config.PresencePurgeTick)

	r := gin.Default()

	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)

	api := r.Group("/api", middleware.Auth([]byte(jwtSecret)))
	{
		api.GET("/rooms", h.ListRooms)
		api.POST("/rooms", h.CreateRoom)
		api.POST("/rooms/join", h.JoinRoom)
		api.GET("/rooms/:id", h.RoomDetail)
		api.POST("/rooms/:id/delete", h.DeleteRoom)
		api.POST("/rooms/:id/privacy", h.SetPrivacy)

		api.GET("/rooms/:id/timer", h.TimerState)
		api.POST("/rooms/:id/timer/start", h.TimerStart)
		api.POST("/rooms/:id/timer/pause", h.TimerPause)
		api.POST("/rooms/:id/timer/reset", h.TimerReset)

		api.GET("/rooms/:id/messages", h.ListMessages)
		api.POST("/rooms/:id/messages", h.SendMessage)
		api.POST("/messages/:id/delete", h.DeleteMessage)

		api.GET("/rooms/:id/presence", h.RoomPresence)

		api.GET("/notes", h.ListNotes)
		api.POST("/notes", h.CreateNote)
		api.POST("/notes/:id", h.UpdateNote)
		api.POST("/notes/:id/delete", h.DeleteNote)
	}

	ws := r.Group("/ws", middleware.Auth([]byte(jwtSecret)))
	{
		ws.GET("/rooms/:id", h.ServeRoomSocket)
	}

	server := &http.Server{
		Addr:           ":8080",
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
