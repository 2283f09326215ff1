// internal/auth/service.go
package auth

import (
	"context"
)

// Service defines the interface for the auth gate.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*Session, error)
	ValidateSession(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, token string)
	GetUser(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, username, password, role string) (*User, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
}
