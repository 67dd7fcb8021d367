package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"threadvote/internal/models"
	"threadvote/internal/store"
	"threadvote/internal/utils"
)

// bcrypt ignores input past 72 bytes and newer versions reject it outright.
const maxPasswordBytes = 72

// AuthService is the credential store: registration, login and identity lookup.
type AuthService struct {
	users UserRepository

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a user with a hashed password. A username or email already in use
// yields ErrDuplicate without saying which one collided.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	if blank(username) || blank(email) || password == "" {
		return models.User{}, invalid("Username, email, and password are required")
	}
	if len(password) > maxPasswordBytes {
		return models.User{}, invalid("Password must be at most 72 bytes")
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return models.User{}, ErrDuplicate
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials. Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	if blank(email) || password == "" {
		return models.User{}, invalid("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// keep the unknown-email path as slow as a real comparison
			utils.CheckPasswordHash(password, s.placeholderHash())
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Usernames and emails are stored and matched exactly as given; only all-whitespace
// values are rejected.
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Identity loads the user a session refers to; ErrNotFound when it no longer exists.
func (s *AuthService) Identity(ctx context.Context, id uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("load user %d: %w", id, err)
	}
	return user, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("placeholder-password")
	})
	return s.dummyHash
}
