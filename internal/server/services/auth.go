// Package services contains server-side business logic. This file implements
// AuthService, which enforces registration and login rules and owns password
// hashing and bearer-token issuance.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// AuthService provides authentication-related operations:
// - Register: uniqueness check, password hashing, persist
// - Login: lookup, password verify, token issue
type AuthService struct {
	repo          users.Repository
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
}

// NewAuthService constructs an AuthService using the user repository and
// server config.
func NewAuthService(repo users.Repository, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		repo:          repo,
		logger:        logger.With("component", "auth"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity,
		bcryptCost:    cfg.BcryptCost,
	}
}

// Register creates a new user. The cleartext password is bcrypt-hashed with
// a fresh salt before it reaches the store; store failures surface only as
// common.ErrorInternal.
//
// The username check here is advisory: the race-free guarantee is the
// store's conflict resolution on email, so two concurrent registrations
// with the same username and different emails can both succeed.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil, common.ErrorUserAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "registration lookup failed", "username", username, "error", err.Error())
		return nil, common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	user, err := s.repo.Save(ctx, username, string(hash), email)
	if err != nil {
		s.logger.Error(ctx, "saving user failed", "username", username, "error", err.Error())
		return nil, common.ErrorInternal
	}

	return user, nil
}

// Login verifies the credential and, on success, returns a signed bearer
// token whose expiry is issuance time + the configured validity.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUserNotFound
		}
		s.logger.Error(ctx, "login lookup failed", "username", username, "error", err.Error())
		return "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", common.ErrorInvalidPassword
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err.Error())
		return "", common.ErrorInternal
	}

	return token, nil
}
