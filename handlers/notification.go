package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"khawater/models"
	"khawater/store"
)

const notificationPageSize = 30

// GetNotifications returns the caller's inbox, newest first, truncated to
// the 30 most recent.
func GetNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	docs, err := deps.Store.Query(ctx, models.NotificationsCollection,
		[]store.Filter{store.Where("userId", user.ID)},
		store.Sort{Field: "createdAt", Desc: true}, notificationPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	notifs := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		n, err := models.NotificationFromDoc(d)
		if err != nil {
			log.Printf("GetNotifications decode error: %v", err)
			continue
		}
		notifs = append(notifs, n)
	}

	c.JSON(http.StatusOK, notifs)
}

func MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	err := deps.Notifs.MarkRead(ctx, c.Param("id"), user.ID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		log.Printf("MarkNotificationRead error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}
