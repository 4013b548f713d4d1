package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"khawater/social"
)

func ToggleLike(c *gin.Context) {
	var req struct {
		PostID string `json:"postId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}
	post, ok := loadPost(c, req.PostID)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := deps.Social.ToggleLike(ctx, post, user); err != nil {
		log.Printf("ToggleLike error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم"})
}

func AddComment(c *gin.Context) {
	var req struct {
		PostID  string `json:"postId" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}
	post, ok := loadPost(c, req.PostID)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	comment, err := deps.Social.AddComment(ctx, post, user, req.Content)
	if err != nil {
		log.Printf("AddComment error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "تم إضافة تعليقك",
		"comment": comment,
	})
}

func ToggleFollow(c *gin.Context) {
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

	ctx, cancel := requestContext()
	defer cancel()

	err := deps.Social.ToggleFollow(ctx, user, req.TargetUserID)
	if err == social.ErrSelfFollow {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}
	if err != nil {
		log.Printf("ToggleFollow error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle follow"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم"})
}

func ToggleSave(c *gin.Context) {
	var req struct {
		PostID string `json:"postId" binding:"required"`
	}
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

	if err := deps.Social.ToggleSave(ctx, user, req.PostID); err != nil {
		log.Printf("ToggleSave error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle save"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم"})
}

func UpdateBio(c *gin.Context) {
	var req struct {
		Bio string `json:"bio"`
	}
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

	if err := deps.Social.UpdateBio(ctx, user.ID, req.Bio); err != nil {
		log.Printf("UpdateBio error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bio"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
