// Package service wraps document CRUD with the workspace membership
// boundary: every operation scoped to a document or workspace verifies
// the caller's membership before touching metadata or stored files.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/knowledgecopilot/backend/internal/authz"
	"github.com/knowledgecopilot/backend/internal/document"
	"github.com/knowledgecopilot/backend/internal/document/repository"
	"github.com/knowledgecopilot/backend/internal/storage"
	"github.com/knowledgecopilot/backend/internal/workspace"
	"github.com/knowledgecopilot/backend/pkg/logger"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrForbidden covers every membership failure on the document path,
	// including a nonexistent workspace, so callers cannot probe which
	// workspaces exist.
	ErrForbidden         = errors.New("not a member of this workspace")
	ErrInvalidStatus     = errors.New("invalid document status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrTitleTooLong      = errors.New("title exceeds 255 characters")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// allowedMimeTypes is the upload allow-list.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":       true,
	"text/markdown":    true,
	"text/csv":         true,
	"application/json": true,
}

// MembershipChecker resolves a user's role in a workspace. The empty role
// means not a member.
type MembershipChecker interface {
	CheckMembership(ctx context.Context, workspaceID, userID string) (workspace.Role, error)
}

// UploadInput describes an incoming file.
type UploadInput struct {
	WorkspaceID  string
	Title        string
	OriginalName string
	MimeType     string
	Size         int64
	Reader       io.Reader
}

// ListInput narrows List.
type ListInput struct {
	Status document.Status
	Limit  int
	Offset int
}

// ListResult is a page of documents plus pagination metadata.
type ListResult struct {
	Documents []*document.Document `json:"documents"`
	Total     int64                `json:"total"`
	HasMore   bool                 `json:"hasMore"`
}

// Service enforces the document access boundary.
type Service struct {
	repo       repository.Repository
	store      storage.ObjectStore
	membership MembershipChecker
}

func NewService(repo repository.Repository, store storage.ObjectStore, membership MembershipChecker) *Service {
	return &Service{repo: repo, store: store, membership: membership}
}

// requireMember verifies the caller belongs to the workspace. Any role
// suffices; global admins pass without membership. Workspace lookup
// failures collapse into ErrForbidden.
func (s *Service) requireMember(ctx context.Context, workspaceID string, caller authz.Caller) error {
	if authz.GlobalOverride(caller) {
		return nil
	}
	role, err := s.membership.CheckMembership(ctx, workspaceID, caller.UserID)
	if err != nil || role == "" {
		return ErrForbidden
	}
	return nil
}

// Upload streams a file into object storage and records its metadata.
// The record is created with status uploading and advanced to uploaded
// once the storage write succeeds; on storage failure the record is kept
// with status failed and the error is returned.
func (s *Service) Upload(ctx context.Context, caller authz.Caller, in UploadInput) (*document.Document, error) {
	if err := s.requireMember(ctx, in.WorkspaceID, caller); err != nil {
		return nil, err
	}
	if in.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if !allowedMimeTypes[in.MimeType] {
		return nil, ErrUnsupportedFile
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.OriginalName
	}
	if len(title) > 255 {
		return nil, ErrTitleTooLong
	}

	fileName := uuid.New().String() + filepath.Ext(in.OriginalName)
	doc := &document.Document{
		WorkspaceID:  in.WorkspaceID,
		Title:        title,
		OriginalName: in.OriginalName,
		FileName:     fileName,
		FilePath:     fmt.Sprintf("%s/%s", in.WorkspaceID, fileName),
		MimeType:     in.MimeType,
		Size:         in.Size,
		Status:       document.StatusUploading,
		UploadedBy:   caller.UserID,
	}
	id, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = id

	if err := s.store.Upload(ctx, doc.FilePath, in.Reader, in.Size, in.MimeType); err != nil {
		logger.Errorf("storage write failed for document %s: %v", id, err)
		if failed, uerr := s.repo.UpdateStatus(ctx, id, document.StatusFailed, err.Error()); uerr == nil {
			doc = failed
		}
		return doc, fmt.Errorf("store file: %w", err)
	}

	doc, err = s.repo.UpdateStatus(ctx, id, document.StatusUploaded, "")
	if err != nil {
		return nil, err
	}
	logger.Infof("document %s uploaded to workspace %s by user %s", id, in.WorkspaceID, caller.UserID)
	return doc, nil
}

// GetByID returns a document after verifying workspace membership.
// Existence is checked before membership, so a nonexistent ID reports
// ErrNotFound to any authenticated caller.
func (s *Service) GetByID(ctx context.Context, documentID string, caller authz.Caller) (*document.Document, error) {
	doc, err := s.repo.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.requireMember(ctx, doc.WorkspaceID, caller); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns a page of workspace documents newest first. HasMore is
// computed by fetching one row beyond the requested limit.
func (s *Service) List(ctx context.Context, workspaceID string, caller authz.Caller, in ListInput) (*ListResult, error) {
	if err := s.requireMember(ctx, workspaceID, caller); err != nil {
		return nil, err
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	docs, total, err := s.repo.ListByWorkspace(ctx, workspaceID, repository.ListFilter{
		Status: in.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	hasMore := len(docs) > limit
	if hasMore {
		docs = docs[:limit]
	}
	return &ListResult{Documents: docs, Total: total, HasMore: hasMore}, nil
}

// UpdateStatus advances a document through its lifecycle. Indexed and
// failed are terminal.
func (s *Service) UpdateStatus(ctx context.Context, documentID string, caller authz.Caller, status document.Status, errMsg string) (*document.Document, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	doc, err := s.GetByID(ctx, documentID, caller)
	if err != nil {
		return nil, err
	}
	if !doc.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, doc.Status, status)
	}
	updated, err := s.repo.UpdateStatus(ctx, documentID, status, errMsg)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	logger.Infof("document %s status updated to %s", documentID, status)
	return updated, nil
}

// Delete removes a document record and best-effort removes the stored
// file. A storage failure is logged and swallowed so the visible record
// is always removed.
func (s *Service) Delete(ctx context.Context, documentID string, caller authz.Caller) error {
	doc, err := s.GetByID(ctx, documentID, caller)
	if err != nil {
		return err
	}
	if exists, err := s.store.Exists(ctx, doc.FilePath); err != nil {
		logger.Errorf("stat stored file %s: %v", doc.FilePath, err)
	} else if exists {
		if err := s.store.Delete(ctx, doc.FilePath); err != nil {
			logger.Errorf("delete stored file %s: %v", doc.FilePath, err)
		}
	}
	if err := s.repo.Delete(ctx, documentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	logger.Infof("document %s deleted by user %s", documentID, caller.UserID)
	return nil
}

// Stats returns aggregate counts and byte sizes for a workspace.
func (s *Service) Stats(ctx context.Context, workspaceID string, caller authz.Caller) (*document.Stats, error) {
	if err := s.requireMember(ctx, workspaceID, caller); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx, workspaceID)
}

// ByStatus returns documents awaiting processing, oldest first. It is an
// internal read used by background workers and carries no caller check.
func (s *Service) ByStatus(ctx context.Context, status document.Status, limit int) ([]*document.Document, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListByStatus(ctx, status, limit)
}
