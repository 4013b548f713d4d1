package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"khawater/models"
	"khawater/store"
)

// StartChat finds or creates the two-party chat with the target user.
func StartChat(c *gin.Context) {
	var req struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}
	if req.TargetUserID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot chat with yourself"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	doc, err := deps.Store.GetOne(ctx, models.UsersCollection, req.TargetUserID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	other, err := models.UserFromDoc(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode user"})
		return
	}

	chat, err := deps.Chats.StartOrGetChat(ctx, user, other)
	if err != nil {
		log.Printf("StartChat error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// GetChatList returns the caller's chats, most recently active first, with
// the counterpart's online flag joined at read time.
func GetChatList(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	docs, err := deps.Store.Query(ctx, models.ChatsCollection,
		[]store.Filter{store.WhereContains("participants", user.ID)},
		store.Sort{Field: "lastMessageAt", Desc: true}, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	chats := make([]models.Chat, 0, len(docs))
	for _, d := range docs {
		chat, err := models.ChatFromDoc(d)
		if err != nil {
			log.Printf("GetChatList decode error: %v", err)
			continue
		}
		chat.Resolve(user.ID)
		if chat.PartnerID != "" {
			if doc, err := deps.Store.GetOne(ctx, models.UsersCollection, chat.PartnerID); err == nil {
				if partner, err := models.UserFromDoc(doc); err == nil {
					chat.IsOnline = partner.IsOnline
				}
			}
		}
		chats = append(chats, chat)
	}

	c.JSON(http.StatusOK, chats)
}
