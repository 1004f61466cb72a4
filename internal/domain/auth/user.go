package auth

import "time"

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// User is an account of the portal. Everything outside this package treats it
// as read-only.
type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name" json:"name"`
	Handle       string    `gorm:"column:handle;size:64" json:"handle"`
	Email        string    `gorm:"column:email;uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	IsAdmin      bool      `gorm:"column:is_admin" json:"is_admin"`
	CountryCode  string    `gorm:"column:country_code;size:2" json:"country_code,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleClient
}

// RevokedSession blocks a token id until the token would have expired anyway.
type RevokedSession struct {
	JTI       string    `gorm:"column:jti;primaryKey;size:64"`
	UserID    int64     `gorm:"column:user_id;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	RevokedAt time.Time `gorm:"column:revoked_at"`
}

func (RevokedSession) TableName() string { return "revoked_sessions" }

// Session identifies the token a request was made with.
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
}
