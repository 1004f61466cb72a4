package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Service is the bundled session provider: accounts, password login, JWT
// sessions and logout with revocation.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   tokenIssuer
	now      func() time.Time

	mu        sync.RWMutex
	listeners []func(userID int64)
}

func NewService(users UserRepository, sessions SessionRepository, tokens tokenIssuer) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, now: time.Now}
}

// OnSessionEnd registers fn to run after every logout.
func (s *Service) OnSessionEnd(fn func(userID int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	email := normalizeEmail(req.Email)
	handle := strings.TrimSpace(req.Handle)
	if handle == "" {
		handle = handleFromEmail(email)
	}
	u := &User{
		Name:         strings.TrimSpace(req.Name),
		Handle:       handle,
		Email:        email,
		PasswordHash: hash,
		CountryCode:  strings.ToUpper(req.CountryCode),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateAdmin creates an administrator account, or promotes an existing
// account with the same email and resets its password.
func (s *Service) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*User, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	email := normalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		existing.IsAdmin = true
		existing.PasswordHash = hash
		if req.Name != "" {
			existing.Name = req.Name
		}
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	u := &User{
		Name:         req.Name,
		Handle:       handleFromEmail(email),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if CheckPassword(req.Password, u.PasswordHash) != nil {
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.GenerateToken(u.ID, string(u.Role()))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	slog.Info("user logged in", "user_id", u.ID, "role", u.Role())
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: claims.ExpiresAt.Unix()}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

// Logout revokes the session token and notifies session-end listeners.
func (s *Service) Logout(ctx context.Context, session Session) error {
	if session.ID == "" {
		return ErrUnauthorized
	}
	err := s.sessions.Revoke(ctx, &RevokedSession{
		JTI:       session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.mu.RLock()
	listeners := append([]func(int64){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(session.UserID)
	}
	return nil
}

func (s *Service) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.sessions.IsRevoked(ctx, jti)
}

// PurgeExpired removes revocations that no longer matter.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now().UTC())
}
