// Package services holds the server's application logic between the HTTP
// layer and the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/common"
	"github.com/dmitrijs2005/tripsync/internal/server/auth"
	"github.com/dmitrijs2005/tripsync/internal/server/config"
	"github.com/dmitrijs2005/tripsync/internal/server/models"
	"github.com/dmitrijs2005/tripsync/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users                 users.Repository
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

func NewUserService(repo users.Repository, cfg *config.Config) *UserService {
	return &UserService{
		users:                 repo,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates an account and returns a fresh access token for it.
func (s *UserService) Register(ctx context.Context, username, password string) (string, string, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		return "", "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return "", "", common.ErrorInternal
	}

	return token, user.ID, nil
}

// Login verifies the credentials and returns an access token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (string, string, error) {

	user, err := s.users.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrorUnauthorized
		}
		return "", "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", "", common.ErrorUnauthorized
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return "", "", common.ErrorInternal
	}

	return token, user.ID, nil
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.tokenValidityDuration)
}
