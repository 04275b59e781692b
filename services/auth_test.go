package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

type mockUserStore struct {
	FindByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	AddFunc         func(ctx context.Context, user *models.User) error
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockUserStore) Add(ctx context.Context, user *models.User) error {
	return m.AddFunc(ctx, user)
}

func newTestAuthenticator(users UserStore, ttl time.Duration) *Authenticator {
	return NewAuthenticator(users, "test-secret", "portfolio-backend", ttl)
}

func TestSignupAndResolveSession(t *testing.T) {
	assigned := uuid.New()
	store := &mockUserStore{
		AddFunc: func(ctx context.Context, user *models.User) error {
			if user.Email != "alice@example.com" {
				t.Errorf("Add received email = %q; want lowercased trimmed", user.Email)
			}
			if user.PasswordHash == "" || user.PasswordHash == "hunter2hunter2" {
				t.Error("password was not hashed before storage")
			}
			user.ID = assigned
			return nil
		},
	}
	auth := newTestAuthenticator(store, time.Hour)

	identity, token, err := auth.Signup(context.Background(), " Alice@Example.com ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if identity.UserID != assigned {
		t.Errorf("identity user ID = %v; want %v", identity.UserID, assigned)
	}

	resolved := auth.ResolveSession(token)
	if resolved == nil {
		t.Fatal("ResolveSession rejected a freshly issued token")
	}
	if resolved.UserID != assigned || resolved.Email != "alice@example.com" {
		t.Errorf("resolved identity = %+v; want %v / alice@example.com", resolved, assigned)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	auth := newTestAuthenticator(&mockUserStore{}, time.Hour)

	_, _, err := auth.Signup(context.Background(), "bob@example.com", "short")
	if !errs.IsInvalidFieldError(err) {
		t.Errorf("Signup error = %v; want invalid field", err)
	}
}

func TestSignupRequiresEmail(t *testing.T) {
	auth := newTestAuthenticator(&mockUserStore{}, time.Hour)

	_, _, err := auth.Signup(context.Background(), "  ", "hunter2hunter2")
	if !errs.IsMissingRequiredFieldError(err) {
		t.Errorf("Signup error = %v; want missing required field", err)
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	known := &mockUserStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			// bcrypt hash of a different password
			return &models.User{ID: uuid.New(), Email: email, PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"}, nil
		},
	}
	unknown := &mockUserStore{
		FindByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, errs.NewNotFound("user")
		},
	}

	_, _, errWrongPassword := newTestAuthenticator(known, time.Hour).Login(context.Background(), "carol@example.com", "not-the-password")
	_, _, errUnknownEmail := newTestAuthenticator(unknown, time.Hour).Login(context.Background(), "nobody@example.com", "whatever")

	if !errs.IsUnauthorized(errWrongPassword) {
		t.Errorf("wrong password error = %v; want unauthorized", errWrongPassword)
	}
	if !errs.IsUnauthorized(errUnknownEmail) {
		t.Errorf("unknown email error = %v; want unauthorized", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Errorf("credential errors differ: %q vs %q", errWrongPassword, errUnknownEmail)
	}
}

func TestResolveSessionRejectsGarbage(t *testing.T) {
	auth := newTestAuthenticator(&mockUserStore{}, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if got := auth.ResolveSession(token); got != nil {
			t.Errorf("ResolveSession(%q) = %+v; want nil", token, got)
		}
	}
}

func TestResolveSessionRejectsExpiredToken(t *testing.T) {
	store := &mockUserStore{
		AddFunc: func(ctx context.Context, user *models.User) error {
			user.ID = uuid.New()
			return nil
		},
	}
	auth := newTestAuthenticator(store, -time.Minute)

	_, token, err := auth.Signup(context.Background(), "dave@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if got := auth.ResolveSession(token); got != nil {
		t.Errorf("ResolveSession accepted an expired token: %+v", got)
	}
}

func TestResolveSessionRejectsWrongKey(t *testing.T) {
	store := &mockUserStore{
		AddFunc: func(ctx context.Context, user *models.User) error {
			user.ID = uuid.New()
			return nil
		},
	}
	issuer := NewAuthenticator(store, "key-one", "portfolio-backend", time.Hour)
	verifier := NewAuthenticator(store, "key-two", "portfolio-backend", time.Hour)

	_, token, err := issuer.Signup(context.Background(), "erin@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if got := verifier.ResolveSession(token); got != nil {
		t.Errorf("ResolveSession accepted a token signed with another key: %+v", got)
	}
}
