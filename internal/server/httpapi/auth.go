package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/tripsync/internal/common"
)

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

// Register creates an account and returns a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", h.log)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(ctx, w, http.StatusBadRequest, "username and password are required", h.log)
		return
	}

	token, userID, err := h.users.Register(ctx, req.Username, req.Password)
	if err != nil {
		h.log.Warn(ctx, "registration failed", "username", req.Username, "error", err)
		writeError(ctx, w, http.StatusConflict, "registration failed", h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, authResponse{Success: true, Token: token, UserID: userID}, h.log)
}

// Login verifies credentials and returns a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", h.log)
		return
	}

	token, userID, err := h.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(ctx, w, http.StatusUnauthorized, "invalid credentials", h.log)
			return
		}
		h.log.Error(ctx, "login failed", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "internal error", h.log)
		return
	}

	writeJSON(ctx, w, http.StatusOK, authResponse{Success: true, Token: token, UserID: userID}, h.log)
}
