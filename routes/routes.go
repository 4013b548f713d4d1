package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"khawater/auth"
	"khawater/handlers"
	"khawater/middleware"
)

func SetupRouter(svc *auth.Service) *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Khawater API is running",
			"time":    time.Now().Unix(),
			"ws":      "WebSocket available at /ws",
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:5500", "http://127.0.0.1:5500", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes, rate limited against brute force
	authLimiter := middleware.NewIPRateLimiter(10, time.Minute)
	router.POST("/api/signup", middleware.RateLimit(authLimiter), handlers.Signup)
	router.POST("/api/login", middleware.RateLimit(authLimiter), handlers.Login)

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(svc))

	// Profile
	protected.GET("/me", handlers.GetMyProfile)
	protected.PUT("/me/bio", handlers.UpdateBio)
	protected.PUT("/me/status", handlers.UpdatePresence)
	protected.GET("/user/:id", handlers.GetUser)
	protected.GET("/user/:id/posts", handlers.GetUserPosts)
	protected.GET("/search", handlers.SearchUsers)

	// Posts
	protected.POST("/post", handlers.CreatePost)
	protected.GET("/feed", handlers.GetFeed)
	protected.GET("/trending", handlers.GetTrending)
	protected.POST("/like", handlers.ToggleLike)
	protected.POST("/comment", handlers.AddComment)
	protected.POST("/save", handlers.ToggleSave)

	// Follow graph
	protected.POST("/follow", handlers.ToggleFollow)

	// Chats
	protected.GET("/chats", handlers.GetChatList)
	protected.POST("/chats", handlers.StartChat)
	protected.POST("/message", handlers.SendMessage)
	protected.GET("/messages/:chatId", handlers.GetMessages)

	// Notifications
	protected.GET("/notifications", handlers.GetNotifications)
	protected.POST("/notifications/:id/read", handlers.MarkNotificationRead)

	// Moderation
	protected.GET("/admin/users", handlers.AdminListUsers)
	protected.PUT("/admin/user/:id/verify", handlers.AdminVerifyUser)
	protected.DELETE("/admin/user/:id", handlers.AdminDeleteUser)
	protected.DELETE("/admin/post/:id", handlers.AdminDeletePost)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
