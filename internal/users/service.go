package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/knowledgecopilot/backend/internal/models"
	"github.com/knowledgecopilot/backend/pkg/logger"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

// ProfileUpdate carries optional profile fields; nil means "leave as is".
type ProfileUpdate struct {
	UserName  *string
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// Service encapsulates user identity and credential logic.
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Register creates a new user with a bcrypt password hash and the member
// global role. When no avatar is given a gravatar identicon is derived
// from the email.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.GlobalMember,
		AvatarURL:    GravatarURL(email, 200),
	}
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	logger.Infof("user registered: %s", email)
	return created, nil
}

// Login verifies the credentials and returns the user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	logger.Infof("user logged in: %s", email)
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateProfile applies the provided fields and returns the updated user.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.UserName != nil {
		u.UserName = *upd.UserName
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = *upd.AvatarURL
	}
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	logger.Infof("profile updated for user %s", id)
	return updated, nil
}

// DeleteAccount removes the user record.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Infof("user account deleted: %s", id)
	return nil
}
