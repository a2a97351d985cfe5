// ABOUTME: Account registration and login with bcrypt password hashing
// ABOUTME: Issues JWT tokens on success; timing-safe on unknown emails

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskline/taskline/internal/auth"
	"github.com/taskline/taskline/internal/store"
)

// Validation and credential errors
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmptyName          = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dummyHash is compared against when the email is unknown so login
// timing stays constant and does not enumerate registered addresses.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service handles registration and login.
type Service struct {
	store    store.Store
	verifier *auth.JWTVerifier
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates an identity service backed by the given store and verifier.
func NewService(s store.Store, verifier *auth.JWTVerifier, tokenTTL time.Duration) *Service {
	return &Service{
		store:    s,
		verifier: verifier,
		tokenTTL: tokenTTL,
		logger:   slog.Default().With("component", "identity"),
	}
}

// Register creates a new account and returns the user with a fresh token.
// Returns store.ErrDuplicateEmail if the email is already registered.
func (s *Service) Register(ctx context.Context, email, name, password string) (*store.User, string, error) {
	if !emailRegex.MatchString(email) {
		return nil, "", ErrInvalidEmail
	}
	if name == "" {
		return nil, "", ErrEmptyName
	}
	if len(password) < 8 {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.verifier.Generate(user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Dummy comparison keeps timing constant for unknown emails
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.verifier.Generate(user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Debug("user logged in", "user_id", user.ID)
	return user, token, nil
}
