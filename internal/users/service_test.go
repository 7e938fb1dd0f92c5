package users

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/knowledgecopilot/backend/internal/models"
)

type fakeRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, ErrEmailTaken
	}
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = "id-" + u.Email
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.byEmail[u.Email] = &cp
	f.byID[u.ID] = &cp
	return &cp, nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	cur, ok := f.byID[u.ID]
	if !ok {
		return nil, nil
	}
	cur.UserName = u.UserName
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.AvatarURL = u.AvatarURL
	cur.UpdatedAt = time.Now().UTC()
	cp := *cur
	return &cp, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(f.byEmail, u.Email)
	delete(f.byID, id)
	return nil
}

func TestRegister(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice@Example.COM ", "hunter2secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email should be normalized, got %q", u.Email)
	}
	if u.Role != models.GlobalMember {
		t.Fatalf("new users should get the member global role, got %q", u.Role)
	}
	if u.PasswordHash == "" || u.PasswordHash == "hunter2secret" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2secret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if u.AvatarURL == "" {
		t.Fatalf("expected a gravatar default avatar")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob@example.com", "password123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.Register(ctx, "BOB@example.com", "otherpassword")
	if err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	if _, err := svc.Register(ctx, "carol@example.com", "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := svc.Login(ctx, "carol@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %v", u.Email)
	}

	// wrong password and unknown email yield the same error
	if _, err := svc.Login(ctx, "carol@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	u, _ := svc.Register(ctx, "dave@example.com", "password123")

	name := "dave"
	first := "Dave"
	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{UserName: &name, FirstName: &first})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.UserName != "dave" || updated.FirstName != "Dave" {
		t.Fatalf("profile fields not applied: %+v", updated)
	}
	// untouched fields survive
	if updated.AvatarURL == "" {
		t.Fatalf("avatar should be preserved")
	}

	if _, err := svc.UpdateProfile(ctx, "missing", ProfileUpdate{UserName: &name}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	u, _ := svc.Register(ctx, "erin@example.com", "password123")

	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetByID(ctx, u.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after deletion, got %v", err)
	}
	if err := svc.DeleteAccount(ctx, u.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}
