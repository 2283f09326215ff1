// internal/auth/implementation.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stockbook/internal/rowstore"
)

// ErrInvalidCredentials is returned for a wrong username/password pair
// or an inactive account. The message is deliberately uniform.
var ErrInvalidCredentials = errors.New("invalid credentials")

const sessionTTL = 12 * time.Hour

// service implements the Service interface. User records live in the
// users table of the row store; sessions are in-process only.
type service struct {
	rows     rowstore.Store
	logger   *zap.Logger
	limiter  *rate.Limiter
	sessions *sessionStore
}

// NewService creates a new auth service instance.
func NewService(rows rowstore.Store, logger *zap.Logger) Service {
	return &service{
		rows:     rows,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/10), 10),
		sessions: newSessionStore(),
	}
}

// Authenticate verifies the credentials and issues a session token.
func (s *service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("authenticate: rate limit exceeded")
	}

	username = strings.ToLower(username)
	handle, rec, err := s.rows.FindRowByField(ctx, rowstore.TableUsers, "username", username)
	if err != nil {
		if errors.Is(err, rowstore.ErrNotFound) {
			return nil, fmt.Errorf("authenticate %s: %w", username, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("authenticate %s: %w", username, err)
	}

	if !strings.EqualFold(rec["active"], "true") {
		return nil, fmt.Errorf("authenticate %s: %w", username, ErrInvalidCredentials)
	}

	ok, err := verifyPassword(password, rec["salt"], rec["password_hash"])
	if err != nil {
		return nil, fmt.Errorf("authenticate %s: %w", username, err)
	}
	if !ok {
		return nil, fmt.Errorf("authenticate %s: %w", username, ErrInvalidCredentials)
	}

	now := time.Now().UTC()
	update := rowstore.Record{"last_login": now.Format(time.RFC3339Nano)}
	if err := s.rows.UpdateRow(ctx, rowstore.TableUsers, handle, update); err != nil {
		s.logger.Warn("failed to stamp last login",
			zap.String("username", username),
			zap.Error(err),
		)
	}

	session := &Session{
		Token:     uuid.NewString(),
		Username:  username,
		Role:      rec["role"],
		ExpiresAt: now.Add(sessionTTL),
	}
	s.sessions.put(session)

	s.logger.Info("user authenticated", zap.String("username", username))
	return session, nil
}

// ValidateSession resolves a token to its live session.
func (s *service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	_ = ctx

	session, ok := s.sessions.get(token)
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("validate session: %w", ErrInvalidCredentials)
	}
	return session, nil
}

// Logout discards the session for the given token.
func (s *service) Logout(ctx context.Context, token string) {
	_ = ctx
	s.sessions.delete(token)
}

// GetUser retrieves a user record by username.
func (s *service) GetUser(ctx context.Context, username string) (*User, error) {
	_, rec, err := s.rows.FindRowByField(ctx, rowstore.TableUsers, "username", strings.ToLower(username))
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	return userFromRecord(rec), nil
}

// CreateUser stores a new active user with a hashed password.
func (s *service) CreateUser(ctx context.Context, username, password, role string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil, fmt.Errorf("create user: username and password are required: %w", rowstore.ErrInvalidInput)
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("create user %s: hash password: %w", username, err)
	}

	now := time.Now().UTC()
	values := []string{
		username,
		hash,
		salt,
		role,
		"true",
		"",
		now.Format(time.RFC3339Nano),
	}
	if err := s.rows.AppendRow(ctx, rowstore.TableUsers, values); err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}

	return &User{
		Username:  username,
		Role:      role,
		Active:    true,
		CreatedAt: now,
	}, nil
}

// EnsureDefaultAdmin seeds an admin account when the users table is
// empty. The password must be changed after first login.
func (s *service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	records, err := s.rows.ListRecords(ctx, rowstore.TableUsers)
	if err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}
	if len(records) > 0 {
		return nil
	}

	if _, err := s.CreateUser(ctx, username, password, "admin"); err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}
	s.logger.Info("default admin user created", zap.String("username", username))
	return nil
}

func userFromRecord(rec rowstore.Record) *User {
	user := &User{
		Username: rec["username"],
		Role:     rec["role"],
		Active:   strings.EqualFold(rec["active"], "true"),
	}
	if t, err := time.Parse(time.RFC3339Nano, rec["last_login"]); err == nil {
		user.LastLogin = t
	}
	if t, err := time.Parse(time.RFC3339Nano, rec["created_at"]); err == nil {
		user.CreatedAt = t
	}
	return user
}

type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*Session)}
}

func (s *sessionStore) put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
}

func (s *sessionStore) get(token string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	return session, ok
}

func (s *sessionStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
