package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"khawater/auth"
	"khawater/chat"
	"khawater/database"
	"khawater/handlers"
	"khawater/moderation"
	"khawater/notify"
	"khawater/routes"
	"khawater/session"
	"khawater/social"
	"khawater/store"
	"khawater/websocket"
)

func main() {
	log.Println("Starting Khawater backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.ConnectMongo(); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}

	st := store.NewMongoStore(database.Database())

	// ===== CORE ENGINES =====
	notifier := notify.New(st)
	authSvc := auth.New(st, jwtSecret)

	// The tracker ensures the profile document on every sign-in and keeps
	// presence current.
	tracker := session.NewTracker(st, authSvc)
	tracker.Start(context.Background())

	handlers.Configure(handlers.Deps{
		Store:  st,
		Auth:   authSvc,
		Social: social.New(st, notifier),
		Chats:  chat.New(st),
		Notifs: notifier,
		Mod:    moderation.New(st, os.Getenv("ADMIN_EMAIL")),
	})

	// ===== GIN MODE =====
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRouter(authSvc)

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "Khawater backend running", "service": "healthy"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// ===== WEBSOCKET =====
	wsManager := websocket.NewManager(st, authSvc)
	go wsManager.Start()

	router.GET("/ws", func(c *gin.Context) {
		websocket.Handler(wsManager)(c.Writer, c.Request)
	})

	// ===== SERVER =====
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}
	tracker.Shutdown(shutdownCtx)
	if err := database.DisconnectMongo(); err != nil {
		log.Println("MongoDB disconnect error: ", err)
	}

	log.Println("Server stopped")
}
