package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"khawater/models"
	"khawater/store"
)

// GetUser always answers 200 with fallback data for unknown users so the
// presentation layer never branches on a missing profile.
func GetUser(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	userID := c.Param("id")

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := deps.Store.GetOne(ctx, models.UsersCollection, userID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusOK, models.User{
			ID:           userID,
			Name:         models.DefaultName,
			SavedPostIDs: []string{},
			FollowingIDs: []string{},
			FollowerIDs:  []string{},
		})
		return
	}
	if err != nil {
		log.Printf("GetUser error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}

	user, err := models.UserFromDoc(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

const searchPageSize = 10

// SearchUsers finds users by display-name prefix. An empty query returns
// an empty result, never the whole collection.
func SearchUsers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, []models.User{})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	docs, err := deps.Store.Query(ctx, models.UsersCollection,
		[]store.Filter{store.WherePrefix("name", q)},
		store.Sort{Field: "name"}, searchPageSize)
	if err != nil {
		log.Printf("SearchUsers error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		u, err := models.UserFromDoc(d)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	c.JSON(http.StatusOK, users)
}

// UpdatePresence is the visibility-change hook of the session: foreground
// means online, background means offline with a fresh last-seen.
func UpdatePresence(c *gin.Context) {
	var req struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	userID := c.GetString("userId")
	ctx, cancel := requestContext()
	defer cancel()

	err := deps.Store.Mutate(ctx, models.UsersCollection, userID, store.Update{
		Set: store.Document{
			"isOnline": *req.Online,
			"lastSeen": store.ServerTimestamp,
		},
	})
	if err != nil {
		// Presence is advisory; report success anyway.
		log.Printf("UpdatePresence error for %s: %v", userID, err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully"})
}
