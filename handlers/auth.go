package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knowledgecopilot/backend/internal/config"
	"github.com/knowledgecopilot/backend/internal/tokens"
	"github.com/knowledgecopilot/backend/internal/users"
	"github.com/knowledgecopilot/backend/pkg/logger"
	"github.com/knowledgecopilot/backend/pkg/middleware"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	cfg      *config.Config
	usersSvc *users.Service
}

func NewAuthHandler(cfg *config.Config, u *users.Service) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u}
}

// Register routes under /auth. The authed group carries the bearer
// middleware.
func (h *AuthHandler) Register(rg *gin.RouterGroup, authed *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterUser)
	a.POST("/login", h.Login)
	authed.GET("/auth/me", h.Me)
}

// RegisterUser creates an account and returns the user plus a session token.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "email already registered"})
			return
		}
		logger.Errorf("register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "registration failed"})
		return
	}
	token, err := tokens.Generate(h.cfg, u)
	if err != nil {
		logger.Errorf("token generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
}

// Login verifies credentials and returns the user plus a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	u, err := h.usersSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid email or password"})
			return
		}
		logger.Errorf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "login failed"})
		return
	}
	token, err := tokens.Generate(h.cfg, u)
	if err != nil {
		logger.Errorf("token generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

// Me returns the account behind the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing claims"})
		return
	}
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
