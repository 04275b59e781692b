package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

// Identity is an authenticated principal resolved from a session token.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// UserStore is the persistence surface the authenticator needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Add(ctx context.Context, user *models.User) error
}

// Authenticator issues and resolves session tokens. Tokens are resolved per
// request; no server-side session cache exists, so a rotated or expired
// token takes effect on the very next call.
type Authenticator struct {
	users  UserStore
	secret []byte
	issuer string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewAuthenticator(users UserStore, secret, issuer string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		users:  users,
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		logger: log.With().Str("serviceName", "authenticator").Logger(),
	}
}

// Signup registers a new account and returns a session token for it.
func (a *Authenticator) Signup(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, "", errs.NewMissingRequiredFieldError("email")
	}
	if len(password) < 8 {
		return nil, "", errs.NewInvalidFieldError("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errs.NewInternalError("could not hash password")
	}

	user := models.User{Email: email, PasswordHash: string(hash)}
	if err := a.users.Add(ctx, &user); err != nil {
		return nil, "", errs.NewDatabaseError("create", "user", err)
	}

	identity := &Identity{UserID: user.ID, Email: user.Email}
	token, err := a.issue(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

// Login verifies credentials and returns a session token. A wrong password
// and an unknown email produce the same error.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, "", errs.NewUnauthorizedError("invalid email or password")
		}
		return nil, "", errs.NewDatabaseError("find", "user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errs.NewUnauthorizedError("invalid email or password")
	}

	identity := &Identity{UserID: user.ID, Email: user.Email}
	token, err := a.issue(identity)
	if err != nil {
		return nil, "", err
	}
	return identity, token, nil
}

func (a *Authenticator) issue(identity *Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   a.issuer,
		"sub":   identity.UserID.String(),
		"email": identity.Email,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(a.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", errs.NewInternalError("could not sign session token")
	}
	return signed, nil
}

// ResolveSession returns the identity behind a session token, or nil when
// the token is absent, malformed, expired, or signed with the wrong key.
// It never fails in the composed flow: any problem means "no identity".
func (a *Authenticator) ResolveSession(tokenString string) *Identity {
	if tokenString == "" {
		return nil
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrUnauthorized
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		a.logger.Debug().Err(err).Msg("session token rejected")
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil
	}

	email, _ := claims["email"].(string)
	return &Identity{UserID: userID, Email: email}
}
