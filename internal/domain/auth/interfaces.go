package auth

import (
	"context"
	"time"

	"siteportal/internal/pkg/jwt"
)

// UserRepository is what the auth service needs from user storage.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, u *User) error
}

// SessionRepository stores revoked token ids.
type SessionRepository interface {
	Revoke(ctx context.Context, s *RevokedSession) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, *jwt.Claims, error)
}
