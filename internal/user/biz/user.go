package biz

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/wallify/cdn-backend/internal/auth"
	apperrors "github.com/wallify/cdn-backend/internal/pkg/errors"
)

// User represents the domain model
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	APIKey    string    `json:"api_key,omitempty"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRepo defines the interface for user data operations
type UserRepo interface {
	Create(ctx context.Context, user *User, passwordHash string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetPasswordHash(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]*User, error)
	UpdateAPIKey(ctx context.Context, id, apiKey string) error
	UpdateFlags(ctx context.Context, id string, isActive, isAdmin *bool) error
	IsNotFound(err error) bool
}

// UserUseCase contains business logic for accounts and credentials
type UserUseCase struct {
	repo     UserRepo
	jwt      *auth.JWTManager
	adminKey string
}

func NewUserUseCase(repo UserRepo, jwt *auth.JWTManager, adminKey string) *UserUseCase {
	return &UserUseCase{repo: repo, jwt: jwt, adminKey: adminKey}
}

func newAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Register creates a regular account
func (uc *UserUseCase) Register(ctx context.Context, username, password string) (*User, error) {
	return uc.register(ctx, username, password, false)
}

// CreateAdmin creates an admin account, gated on the configured bootstrap key
func (uc *UserUseCase) CreateAdmin(ctx context.Context, username, password, adminKey string) (*User, error) {
	if uc.adminKey == "" || adminKey != uc.adminKey {
		return nil, apperrors.New(apperrors.ErrForbidden, "invalid admin key")
	}
	return uc.register(ctx, username, password, true)
}

func (uc *UserUseCase) register(ctx context.Context, username, password string, isAdmin bool) (*User, error) {
	if username == "" || password == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "username and password are required")
	}

	if _, err := uc.repo.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.New(apperrors.ErrAuthUsernameExists, username)
	} else if !uc.repo.IsNotFound(err) {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	apiKey, err := newAPIKey()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	user := &User{
		Username: username,
		APIKey:   apiKey,
		IsActive: true,
		IsAdmin:  isAdmin,
	}
	if err := uc.repo.Create(ctx, user, hash); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return user, nil
}

// Authenticate verifies credentials and issues a token
func (uc *UserUseCase) Authenticate(ctx context.Context, username, password string) (*User, string, error) {
	user, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		if uc.repo.IsNotFound(err) {
			return nil, "", apperrors.New(apperrors.ErrAuthInvalidCredentials)
		}
		return nil, "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	hash, err := uc.repo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if !auth.CheckPassword(hash, password) {
		return nil, "", apperrors.New(apperrors.ErrAuthInvalidCredentials)
	}
	if !user.IsActive {
		return nil, "", apperrors.New(apperrors.ErrAuthInactiveUser)
	}

	token, err := uc.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return user, token, nil
}

// ResetAPIKey rotates the user's API key
func (uc *UserUseCase) ResetAPIKey(ctx context.Context, userID string) (string, error) {
	apiKey, err := newAPIKey()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if err := uc.repo.UpdateAPIKey(ctx, userID, apiKey); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return apiKey, nil
}

// List returns all accounts (admin only, enforced at the route)
func (uc *UserUseCase) List(ctx context.Context) ([]*User, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return users, nil
}

// Update changes account flags (admin only, enforced at the route)
func (uc *UserUseCase) Update(ctx context.Context, id string, isActive, isAdmin *bool) (*User, error) {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		if uc.repo.IsNotFound(err) {
			return nil, apperrors.New(apperrors.ErrAuthUserNotFound, id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if err := uc.repo.UpdateFlags(ctx, id, isActive, isAdmin); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return uc.repo.GetByID(ctx, id)
}

// VerifyActive implements auth.UserVerifier
func (uc *UserUseCase) VerifyActive(ctx context.Context, userID string) error {
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		if uc.repo.IsNotFound(err) {
			return apperrors.New(apperrors.ErrAuthInactiveUser)
		}
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if !user.IsActive {
		return apperrors.New(apperrors.ErrAuthInactiveUser)
	}
	return nil
}

// VerifyAdmin implements auth.UserVerifier
func (uc *UserUseCase) VerifyAdmin(ctx context.Context, userID string) error {
	user, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		if uc.repo.IsNotFound(err) {
			return apperrors.New(apperrors.ErrAuthAdminRequired)
		}
		return apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if !user.IsAdmin {
		return apperrors.New(apperrors.ErrAuthAdminRequired)
	}
	return nil
}
