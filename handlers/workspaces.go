package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knowledgecopilot/backend/internal/authz"
	"github.com/knowledgecopilot/backend/internal/workspace"
	workspacesvc "github.com/knowledgecopilot/backend/internal/workspace/service"
	"github.com/knowledgecopilot/backend/pkg/logger"
	"github.com/knowledgecopilot/backend/pkg/middleware"
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

type InviteMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// WorkspacesHandler serves workspace CRUD and membership management.
type WorkspacesHandler struct {
	svc *workspacesvc.Service
}

func NewWorkspacesHandler(svc *workspacesvc.Service) *WorkspacesHandler {
	return &WorkspacesHandler{svc: svc}
}

func (h *WorkspacesHandler) Register(authed *gin.RouterGroup) {
	g := authed.Group("/workspaces")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:workspaceId", h.Get)
	g.DELETE("/:workspaceId", h.Delete)
	g.POST("/:workspaceId/members", h.InviteMember)
	g.DELETE("/:workspaceId/members/:userId", h.RemoveMember)
	g.PATCH("/:workspaceId/members/:userId", h.UpdateMemberRole)
}

// writeError maps workspace service failures onto the transport.
func writeWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workspacesvc.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "workspace not found"})
	case errors.Is(err, workspacesvc.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "workspace name must be 1-100 characters"})
	case errors.Is(err, authz.ErrNotAMember):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "not a member of this workspace"})
	case errors.Is(err, authz.ErrInsufficientRole):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "admin role required"})
	case errors.Is(err, workspacesvc.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "user is already a member"})
	case errors.Is(err, workspacesvc.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "member not found"})
	case errors.Is(err, workspacesvc.ErrLastAdminProtected):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "workspace must keep at least one admin"})
	default:
		logger.Errorf("workspace operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "operation failed"})
	}
}

func (h *WorkspacesHandler) Create(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	ws, err := h.svc.Create(c.Request.Context(), req.Name, caller.UserID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workspace": ws})
}

func (h *WorkspacesHandler) List(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	list, err := h.svc.ListForUser(c.Request.Context(), caller.UserID)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": list})
}

func (h *WorkspacesHandler) Get(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}

func (h *WorkspacesHandler) Delete(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.svc.Delete(c.Request.Context(), c.Param("workspaceId"), caller); err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkspacesHandler) InviteMember(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	ws, err := h.svc.InviteMember(c.Request.Context(), c.Param("workspaceId"), caller, req.UserID, workspace.Role(req.Role))
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}

func (h *WorkspacesHandler) RemoveMember(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	ws, err := h.svc.RemoveMember(c.Request.Context(), c.Param("workspaceId"), caller, c.Param("userId"))
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}

func (h *WorkspacesHandler) UpdateMemberRole(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var req UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	role := workspace.Role(req.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "role must be admin or member"})
		return
	}
	ws, err := h.svc.UpdateMemberRole(c.Request.Context(), c.Param("workspaceId"), caller, c.Param("userId"), role)
	if err != nil {
		writeWorkspaceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspace": ws})
}
