package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"khawater/models"
	"khawater/store"
)

const messagePageSize = 50

// chatForUser verifies the caller participates in the chat.
func chatForUser(c *gin.Context, chatID, userID string) (models.Chat, bool) {
	ctx, cancel := requestContext()
	defer cancel()

	doc, err := deps.Store.GetOne(ctx, models.ChatsCollection, chatID)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return models.Chat{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat"})
		return models.Chat{}, false
	}

	chat, err := models.ChatFromDoc(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode chat"})
		return models.Chat{}, false
	}
	if !chat.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to chat"})
		return models.Chat{}, false
	}
	return chat, true
}

func SendMessage(c *gin.Context) {
	var req struct {
		ChatID string `json:"chatId" binding:"required"`
		Text   string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}
	if _, ok := chatForUser(c, req.ChatID, user.ID); !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	id, err := deps.Chats.SendMessage(ctx, req.ChatID, user.ID, req.Text)
	if err != nil {
		log.Printf("SendMessage error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent",
		"id":      id,
	})
}

// GetMessages returns the chat history, oldest first, capped to the 50
// most recent.
func GetMessages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	chatID := c.Param("chatId")
	if _, ok := chatForUser(c, chatID, user.ID); !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	docs, err := deps.Store.Query(ctx, models.MessagesCollection,
		[]store.Filter{store.Where("chatId", chatID)},
		store.Sort{Field: "createdAt", Desc: false}, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	msgs := make([]models.ChatMessage, 0, len(docs))
	for _, d := range docs {
		m, err := models.MessageFromDoc(d)
		if err != nil {
			log.Printf("GetMessages decode error: %v", err)
			continue
		}
		msgs = append(msgs, m)
	}
	if len(msgs) > messagePageSize {
		msgs = msgs[len(msgs)-messagePageSize:]
	}

	c.JSON(http.StatusOK, msgs)
}
