package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"khawater/feed"
	"khawater/models"
	"khawater/store"
)

type CreatePostRequest struct {
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	id, err := deps.Social.PublishPost(ctx, user, req.Content, req.ImageURL)
	if err != nil {
		log.Printf("CreatePost error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "تم نشر خاطرتك بنجاح!",
		"postId":  id,
	})
}

// GetFeed returns the synchronized post collection, optionally filtered to
// followed authors via ?filter=FOLLOWING.
func GetFeed(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	posts, ok := queryPosts(c, nil)
	if !ok {
		return
	}

	mode := feed.Mode(c.DefaultQuery("filter", string(feed.All)))
	c.JSON(http.StatusOK, feed.Filter(posts, mode, user))
}

// GetTrending returns the top posts by likes from the trailing 48 hours.
func GetTrending(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	posts, ok := queryPosts(c, nil)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, feed.Trending(posts, feed.DefaultTrendingWindow, feed.DefaultTrendingLimit, time.Now()))
}

func GetUserPosts(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	posts, ok := queryPosts(c, []store.Filter{store.Where("authorId", c.Param("id"))})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, posts)
}

func queryPosts(c *gin.Context, filters []store.Filter) ([]models.Post, bool) {
	ctx, cancel := requestContext()
	defer cancel()

	docs, err := deps.Store.Query(ctx, models.PostsCollection, filters,
		store.Sort{Field: "createdAt", Desc: true}, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return nil, false
	}

	posts := make([]models.Post, 0, len(docs))
	for _, d := range docs {
		p, err := models.PostFromDoc(d)
		if err != nil {
			log.Printf("GetFeed decode error: %v", err)
			continue
		}
		posts = append(posts, p)
	}
	return posts, true
}
