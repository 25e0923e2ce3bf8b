package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

var errBadCredentials = errors.New("invalid username or password")

type SignUpRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,max=2048"`
}

type SignInRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service is the built-in identity provider: accounts, password checks and
// opaque session tokens kept in the configured repositories.
type Service struct {
	users    storage.UserRepository
	sessions storage.SessionRepository
	ttl      time.Duration
	logger   internal.Logger
	now      func() time.Time
}

func NewService(users storage.UserRepository, sessions storage.SessionRepository, ttl time.Duration, logger internal.Logger) *Service {
	return &Service{users: users, sessions: sessions, ttl: ttl, logger: logger, now: time.Now}
}

func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*internal.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := internal.FromValidator(internal.Validator().Struct(req)); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &internal.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		AvatarURL:    req.AvatarURL,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Infof("auth: registered user %s", user.ID)
	return user, nil
}

func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*internal.Identity, error) {
	if err := internal.FromValidator(internal.Validator().Struct(req)); err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByLogin(ctx, strings.TrimSpace(req.Login))
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, &internal.AuthError{Cause: errBadCredentials}
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warnf("auth: failed sign in for user %s", user.ID)
		return nil, &internal.AuthError{Cause: errBadCredentials}
	}
	return s.issue(ctx, user)
}

func (s *Service) issue(ctx context.Context, user *internal.User) (*internal.Identity, error) {
	now := s.now().UTC()
	session := &internal.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, err
	}
	return &internal.Identity{User: *user, Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

// SignOut revokes the token. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Refresh rotates a still-valid token into a new one with a fresh expiry.
func (s *Service) Refresh(ctx context.Context, token string) (*internal.Identity, error) {
	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	identity, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		s.logger.Warnf("auth: failed to revoke rotated token for user %s: %v", user.ID, err)
	}
	return identity, nil
}

// Identity returns the principal for a valid token.
func (s *Service) Identity(ctx context.Context, token string) (*internal.Identity, error) {
	session, user, err := s.lookup(ctx, token)
	if err != nil {
		return nil, err
	}
	return &internal.Identity{User: *user, Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	_, user, err := s.lookup(ctx, token)
	return user, err
}

func (s *Service) lookup(ctx context.Context, token string) (*internal.Session, *internal.User, error) {
	if token == "" {
		return nil, nil, &internal.AuthError{Cause: errors.New("missing token")}
	}
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, nil, &internal.AuthError{Cause: errors.New("unknown session")}
		}
		return nil, nil, err
	}
	if session.Expired(s.now()) {
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, nil, &internal.AuthError{Cause: errors.New("session expired")}
	}
	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil, nil, &internal.AuthError{Cause: errors.New("session user no longer exists")}
		}
		return nil, nil, err
	}
	return session, user, nil
}

var _ Provider = (*Service)(nil)
