package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/knowledgecopilot/backend/internal/authz"
	"github.com/knowledgecopilot/backend/internal/workspace"
	"github.com/knowledgecopilot/backend/internal/workspace/repository"
	"github.com/knowledgecopilot/backend/pkg/logger"
)

var (
	ErrNotFound           = errors.New("workspace not found")
	ErrInvalidName        = errors.New("workspace name must be 1-100 characters")
	ErrAlreadyMember      = errors.New("user is already a member")
	ErrMemberNotFound     = errors.New("member not found")
	ErrLastAdminProtected = errors.New("workspace must keep at least one admin")
)

// mutation retries when a concurrent writer bumped the workspace version
// between our read and our conditional write.
const maxRetries = 3

// Service owns workspace records and their embedded membership lists.
// Every membership mutation re-reads a fresh snapshot, runs the
// authorization guard against it, applies the invariant checks, and
// writes conditionally on the version it read.
type Service struct {
	repo repository.Repository
}

func NewService(r repository.Repository) *Service {
	return &Service{repo: r}
}

// Create makes a new workspace whose sole member is the creator as admin.
func (s *Service) Create(ctx context.Context, name, creatorID string) (*workspace.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidName
	}
	ws := &workspace.Workspace{
		Name:      name,
		CreatedBy: creatorID,
		Members: []workspace.Member{
			{UserID: creatorID, Role: workspace.RoleAdmin, JoinedAt: time.Now().UTC()},
		},
	}
	if _, err := s.repo.Create(ctx, ws); err != nil {
		return nil, err
	}
	logger.Infof("workspace created: %s (%s) by user %s", ws.Name, ws.ID, creatorID)
	return ws, nil
}

func (s *Service) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	ws, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ws, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*workspace.Workspace, error) {
	return s.repo.ListForUser(ctx, userID)
}

// InviteMember adds userID to the workspace. The caller must be a
// workspace admin.
func (s *Service) InviteMember(ctx context.Context, workspaceID string, caller authz.Caller, userID string, role workspace.Role) (*workspace.Workspace, error) {
	if !role.Valid() {
		role = workspace.RoleMember
	}
	return s.mutate(ctx, workspaceID, caller, func(ws *workspace.Workspace) error {
		if ws.Member(userID) != nil {
			return ErrAlreadyMember
		}
		ws.Members = append(ws.Members, workspace.Member{
			UserID:   userID,
			Role:     role,
			JoinedAt: time.Now().UTC(),
		})
		return nil
	})
}

// RemoveMember removes targetID's membership. Removing the sole admin is
// rejected so the workspace never reaches zero admins.
func (s *Service) RemoveMember(ctx context.Context, workspaceID string, caller authz.Caller, targetID string) (*workspace.Workspace, error) {
	return s.mutate(ctx, workspaceID, caller, func(ws *workspace.Workspace) error {
		target := ws.Member(targetID)
		if target == nil {
			return ErrMemberNotFound
		}
		if target.Role == workspace.RoleAdmin && ws.AdminCount() == 1 {
			return ErrLastAdminProtected
		}
		kept := ws.Members[:0]
		for _, m := range ws.Members {
			if m.UserID != targetID {
				kept = append(kept, m)
			}
		}
		ws.Members = kept
		return nil
	})
}

// UpdateMemberRole changes targetID's role in place. Demoting the sole
// admin is rejected.
func (s *Service) UpdateMemberRole(ctx context.Context, workspaceID string, caller authz.Caller, targetID string, newRole workspace.Role) (*workspace.Workspace, error) {
	return s.mutate(ctx, workspaceID, caller, func(ws *workspace.Workspace) error {
		target := ws.Member(targetID)
		if target == nil {
			return ErrMemberNotFound
		}
		if target.Role == workspace.RoleAdmin && newRole == workspace.RoleMember && ws.AdminCount() == 1 {
			return ErrLastAdminProtected
		}
		target.Role = newRole
		return nil
	})
}

// Delete removes the workspace. Documents referencing it are orphaned;
// cleanup is a maintenance concern, not a cascade here.
func (s *Service) Delete(ctx context.Context, workspaceID string, caller authz.Caller) error {
	ws, err := s.Get(ctx, workspaceID)
	if err != nil {
		return err
	}
	if err := authz.Authorize(ws, caller, workspace.RoleAdmin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, workspaceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	logger.Infof("workspace %s deleted by user %s", workspaceID, caller.UserID)
	return nil
}

// CheckMembership resolves userID's role in the workspace from a fresh
// snapshot. The empty role means not a member; ErrNotFound means the
// workspace does not exist.
func (s *Service) CheckMembership(ctx context.Context, workspaceID, userID string) (workspace.Role, error) {
	ws, err := s.Get(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	return authz.ResolveRole(ws, userID), nil
}

// mutate runs an admin-gated membership mutation with the read-check-write
// sequence retried on version conflicts.
func (s *Service) mutate(ctx context.Context, workspaceID string, caller authz.Caller, apply func(*workspace.Workspace) error) (*workspace.Workspace, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		ws, err := s.Get(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		if err := authz.Authorize(ws, caller, workspace.RoleAdmin); err != nil {
			return nil, err
		}
		if err := apply(ws); err != nil {
			return nil, err
		}
		err = s.repo.Update(ctx, ws)
		if err == nil {
			return ws, nil
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			logger.Debugf("workspace %s version conflict, retrying (%d)", workspaceID, attempt+1)
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return nil, repository.ErrVersionConflict
}
