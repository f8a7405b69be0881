package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	hasher     ports.PasswordHasher
	tokens     ports.TokenIssuer
	accessTTL  time.Duration
	refreshTTL time.Duration
}

type Option func(*Service)

// WithTokenTTL overrides the access and refresh token lifetimes. Non-positive values keep the defaults.
func WithTokenTTL(access, refresh time.Duration) Option {
	return func(s *Service) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, hasher ports.PasswordHasher, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Signup registers an active, non-admin account.
func (s *Service) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	user, err := s.newUser(input)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Insert(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// Login checks the credentials and issues an access token plus a refresh token
// backed by a stored session.
func (s *Service) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil || password == "" {
		return nil, mapError(errBadCredentials)
	}
	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(errBadCredentials)
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, mapError(errBadCredentials)
	}
	if !user.CanAuthenticate() {
		return nil, fmt.Errorf("%w: user %d is inactive", ErrAuthentication, user.ID)
	}
	access, err := s.tokens.Issue(user.ID, ports.TokenAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(user.ID, ports.TokenRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, ports.Session{ID: refresh.ID, UserID: user.ID, ExpiresAt: refresh.ExpiresAt}); err != nil {
		return nil, err
	}
	return &ports.TokenPair{
		AccessToken:     access.Value,
		RefreshToken:    refresh.Value,
		AccessExpiresAt: access.ExpiresAt,
	}, nil
}

// Refresh exchanges a refresh token with a live session for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	token, err := s.tokens.Verify(refreshToken, ports.TokenRefresh)
	if err != nil {
		return nil, mapError(err)
	}
	session, err := s.sessions.Get(ctx, token.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if session.UserID != token.UserID {
		return nil, mapError(ports.ErrInvalidToken)
	}
	user, err := s.activeUser(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.Issue(user.ID, ports.TokenAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access.Value, AccessExpiresAt: access.ExpiresAt}, nil
}

// Authenticate resolves the active user behind an access token.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	token, err := s.tokens.Verify(accessToken, ports.TokenAccess)
	if err != nil {
		return nil, mapError(err)
	}
	return s.activeUser(ctx, token.UserID)
}

// EnsureAdmin provisions the bootstrap admin account when it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, mapError(err)
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.Admin:
		return existing, nil
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrAdminConflict, email)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	user, err := s.newUser(input)
	if err != nil {
		return nil, mapError(err)
	}
	user.Admin = true
	saved, err := s.repo.Insert(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) newUser(input ports.SignupInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Name, input.Email)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = digest
	return user, nil
}

func (s *Service) activeUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d no longer exists", ErrAuthentication, userID)
		}
		return nil, err
	}
	if !user.CanAuthenticate() {
		return nil, fmt.Errorf("%w: user %d is inactive", ErrAuthentication, user.ID)
	}
	return user, nil
}

var _ ports.Service = (*Service)(nil)
