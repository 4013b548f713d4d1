package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"khawater/models"
	"khawater/moderation"
	"khawater/store"
)

// confirmRequired enforces the explicit confirmation step before the
// irreversible moderation deletes.
func confirmRequired(c *gin.Context) bool {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Confirmation required: pass confirm=true"})
		return false
	}
	return true
}

func adminError(c *gin.Context, err error, action string) {
	switch err {
	case moderation.ErrNotAllowed:
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case store.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		log.Printf("%s error: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

func AdminVerifyUser(c *gin.Context) {
	var req struct {
		IsVerified *bool `json:"isVerified" binding:"required"`
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

	if err := deps.Mod.SetVerified(ctx, user, c.Param("id"), *req.IsVerified); err != nil {
		adminError(c, err, "AdminVerifyUser")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم توثيق المستخدم"})
}

func AdminDeleteUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !confirmRequired(c) {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := deps.Mod.DeleteUser(ctx, user, c.Param("id")); err != nil {
		adminError(c, err, "AdminDeleteUser")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم حذف الحساب"})
}

func AdminDeletePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !confirmRequired(c) {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := deps.Mod.DeletePost(ctx, user, c.Param("id")); err != nil {
		adminError(c, err, "AdminDeletePost")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "تم حذف الخاطرة"})
}

// AdminListUsers backs the moderation dashboard.
func AdminListUsers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if !deps.Mod.Allowed(user) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	docs, err := deps.Store.Query(ctx, models.UsersCollection, nil,
		store.Sort{Field: "lastSeen", Desc: true}, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
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
