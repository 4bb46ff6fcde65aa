// Package services contains client-side application services: the thin auth
// client that obtains and holds the bearer credential the sync gateway
// attaches to every request.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/common"
	"github.com/dmitrijs2005/tripsync/internal/logging"
)

// AuthService authenticates against the backend and holds the resulting
// opaque bearer token and user id. It satisfies gateway.TokenProvider.
type AuthService struct {
	httpClient *http.Client
	baseURL    string
	log        logging.Logger

	mu     sync.RWMutex
	token  string
	userID string
}

func NewAuthService(baseURL string, log logging.Logger) *AuthService {
	return &AuthService{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		log:        log,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message,omitempty"`
}

// Register creates an account and logs in.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	return s.authCall(ctx, "/api/auth/register", username, password)
}

// Login authenticates and stores the bearer token for subsequent sync calls.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	return s.authCall(ctx, "/api/auth/login", username, password)
}

func (s *AuthService) authCall(ctx context.Context, path, username, password string) error {
	body, err := json.Marshal(credentialsRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrorUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		if out.Message != "" {
			return fmt.Errorf("auth failed: %s", out.Message)
		}
		return fmt.Errorf("auth failed: %s", resp.Status)
	}

	s.mu.Lock()
	s.token = out.Token
	s.userID = out.UserID
	s.mu.Unlock()
	return nil
}

// Logout drops the held credential. Subsequent gateway calls fail closed.
func (s *AuthService) Logout() {
	s.mu.Lock()
	s.token = ""
	s.userID = ""
	s.mu.Unlock()
}

// AccessToken returns the held bearer token, or "" when not authenticated.
func (s *AuthService) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the authenticated user's id, or "" when not authenticated.
func (s *AuthService) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *AuthService) IsAuthenticated() bool {
	return s.AccessToken() != ""
}
