package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/tripsync/internal/logging"
	"github.com/dmitrijs2005/tripsync/internal/server/services"
)

type Handler struct {
	users     *services.UserService
	sync      *services.SyncService
	secretKey []byte
	log       logging.Logger
}

func NewHandler(users *services.UserService, sync *services.SyncService, secretKey []byte, log logging.Logger) *Handler {
	return &Handler{users: users, sync: sync, secretKey: secretKey, log: log}
}

// Health is the unauthenticated liveness probe the clients poll to decide
// online/offline mode.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{"success": true}, h.log)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any, log logging.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error(ctx, "failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string, log logging.Logger) {
	writeJSON(ctx, w, status, map[string]any{"success": false, "message": message}, log)
}
