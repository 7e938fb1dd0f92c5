package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/knowledgecopilot/backend/internal/config"
	"github.com/knowledgecopilot/backend/internal/document"
	docsvc "github.com/knowledgecopilot/backend/internal/document/service"
	"github.com/knowledgecopilot/backend/pkg/logger"
	"github.com/knowledgecopilot/backend/pkg/metrics"
	"github.com/knowledgecopilot/backend/pkg/middleware"
)

type UpdateStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	ErrorMessage string `json:"errorMessage"`
}

// DocumentsHandler serves document upload, listing and lifecycle endpoints.
type DocumentsHandler struct {
	cfg *config.Config
	svc *docsvc.Service
}

func NewDocumentsHandler(cfg *config.Config, svc *docsvc.Service) *DocumentsHandler {
	return &DocumentsHandler{cfg: cfg, svc: svc}
}

func (h *DocumentsHandler) Register(authed *gin.RouterGroup) {
	authed.POST("/workspaces/:workspaceId/documents/upload", h.Upload)
	authed.GET("/workspaces/:workspaceId/documents", h.List)
	authed.GET("/workspaces/:workspaceId/documents/stats", h.Stats)
	authed.GET("/documents/:documentId", h.Get)
	authed.PATCH("/documents/:documentId/status", h.UpdateStatus)
	authed.DELETE("/documents/:documentId", h.Delete)
}

func writeDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, docsvc.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "document not found"})
	case errors.Is(err, docsvc.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "not a member of this workspace"})
	case errors.Is(err, docsvc.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "invalid document status"})
	case errors.Is(err, docsvc.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()})
	case errors.Is(err, docsvc.ErrEmptyFile), errors.Is(err, docsvc.ErrUnsupportedFile), errors.Is(err, docsvc.ErrTitleTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
	default:
		logger.Errorf("document operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "operation failed"})
	}
}

// Upload accepts a single multipart file plus an optional title field.
func (h *DocumentsHandler) Upload(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "file field is required"})
		return
	}
	if max := h.cfg.Upload.MaxFileSize; max > 0 && fileHeader.Size > max {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too_large", "message": "file exceeds upload size limit"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "unreadable file"})
		return
	}
	defer f.Close()

	doc, err := h.svc.Upload(c.Request.Context(), caller, docsvc.UploadInput{
		WorkspaceID:  c.Param("workspaceId"),
		Title:        c.PostForm("title"),
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Reader:       f,
	})
	if err != nil {
		metrics.DocumentUploads.WithLabelValues("failed").Inc()
		writeDocumentError(c, err)
		return
	}
	metrics.DocumentUploads.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

func (h *DocumentsHandler) List(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	result, err := h.svc.List(c.Request.Context(), c.Param("workspaceId"), caller, docsvc.ListInput{
		Status: document.Status(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DocumentsHandler) Stats(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	stats, err := h.svc.Stats(c.Request.Context(), c.Param("workspaceId"), caller)
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *DocumentsHandler) Get(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	doc, err := h.svc.GetByID(c.Request.Context(), c.Param("documentId"), caller)
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (h *DocumentsHandler) UpdateStatus(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	doc, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("documentId"), caller, document.Status(req.Status), req.ErrorMessage)
	if err != nil {
		writeDocumentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

func (h *DocumentsHandler) Delete(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.svc.Delete(c.Request.Context(), c.Param("documentId"), caller); err != nil {
		writeDocumentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
