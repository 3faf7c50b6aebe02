package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MagicLink is a persisted single-use sign-in token. Only the bcrypt hash of the
// secret half is stored.
type MagicLink struct {
	ID         string     `db:"id" json:"id"`
	Email      string     `db:"email" json:"email"`
	SecretHash string     `db:"secret_hash" json:"-"`
	RedirectTo string     `db:"redirect_to" json:"redirect_to"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt     *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// MagicLinkRequest asks for a sign-in link to be sent to Email.
type MagicLinkRequest struct {
	Email      string `json:"email" validate:"required,email"`
	RedirectTo string `json:"redirect_to" validate:"omitempty,startswith=/"`
}

// ConsumeMagicLinkRequest exchanges a magic-link token for a session.
type ConsumeMagicLinkRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionResponse is returned after a successful sign in.
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	RedirectTo  string    `json:"redirect_to,omitempty"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
