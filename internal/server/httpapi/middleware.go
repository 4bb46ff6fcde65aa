package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/tripsync/internal/common"
	"github.com/dmitrijs2005/tripsync/internal/server/auth"
	"github.com/go-chi/chi/v5"
)

// RequireToken authenticates the Bearer token and checks that its user claim
// matches the {userID} path segment. A valid token for a different user is
// rejected the same way as a missing one.
func (h *Handler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(ctx, w, http.StatusUnauthorized, "missing token", h.log)
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimPrefix(header, common.BearerPrefix), h.secretKey)
		if err != nil {
			writeError(ctx, w, http.StatusUnauthorized, "invalid token", h.log)
			return
		}

		if userID != chi.URLParam(r, "userID") {
			writeError(ctx, w, http.StatusUnauthorized, "token does not match user", h.log)
			return
		}

		next.ServeHTTP(w, r)
	})
}
