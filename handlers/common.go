package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"khawater/auth"
	"khawater/chat"
	"khawater/models"
	"khawater/moderation"
	"khawater/notify"
	"khawater/social"
	"khawater/store"
)

const requestTimeout = 10 * time.Second

// Deps are the core engines the handlers delegate to.
type Deps struct {
	Store  store.Store
	Auth   *auth.Service
	Social *social.Engine
	Chats  *chat.Resolver
	Notifs *notify.Notifier
	Mod    *moderation.Admin
}

var deps Deps

func Configure(d Deps) {
	deps = d
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// currentUser loads the caller's synchronized profile from the store.
func currentUser(c *gin.Context) (models.User, bool) {
	userID := c.GetString("userId")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return models.User{}, false
	}

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := deps.Store.GetOne(ctx, models.UsersCollection, userID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return models.User{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return models.User{}, false
	}

	user, err := models.UserFromDoc(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode profile"})
		return models.User{}, false
	}
	return user, true
}

func loadPost(c *gin.Context, postID string) (models.Post, bool) {
	ctx, cancel := requestContext()
	defer cancel()

	doc, err := deps.Store.GetOne(ctx, models.PostsCollection, postID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return models.Post{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return models.Post{}, false
	}

	post, err := models.PostFromDoc(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode post"})
		return models.Post{}, false
	}
	return post, true
}
