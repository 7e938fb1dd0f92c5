package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knowledgecopilot/backend/internal/users"
	"github.com/knowledgecopilot/backend/pkg/logger"
	"github.com/knowledgecopilot/backend/pkg/middleware"
)

type ProfileUpdateRequest struct {
	UserName  *string `json:"userName,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty" binding:"omitempty,url"`
}

// UsersHandler serves profile reads and updates for the authenticated user.
type UsersHandler struct {
	usersSvc *users.Service
}

func NewUsersHandler(u *users.Service) *UsersHandler {
	return &UsersHandler{usersSvc: u}
}

func (h *UsersHandler) Register(authed *gin.RouterGroup) {
	g := authed.Group("/users")
	g.GET("/profile", h.GetProfile)
	g.PATCH("/profile", h.UpdateProfile)
	authed.DELETE("/users/account", h.DeleteAccount)
}

func (h *UsersHandler) GetProfile(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	u, err := h.usersSvc.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	u, err := h.usersSvc.UpdateProfile(c.Request.Context(), claims.UserID, users.ProfileUpdate{
		UserName:  req.UserName,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
			return
		}
		logger.Errorf("profile update failed for user %s: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) DeleteAccount(c *gin.Context) {
	claims, _ := middleware.ClaimsFrom(c)
	if err := h.usersSvc.DeleteAccount(c.Request.Context(), claims.UserID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "user not found"})
			return
		}
		logger.Errorf("account deletion failed for user %s: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "deletion failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
