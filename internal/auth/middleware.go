package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/myrjola/coachplan/internal/contexthelpers"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/logging"
)

// AuthenticateMiddleware loads the session user into the request context. It must run inside
// the session manager's LoadAndSave.
func (h *Handler) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user, err := h.CurrentUser(ctx)
		switch {
		case errors.Is(err, ErrUnknownUser): // Not logged in or the user was removed.
		case err != nil:
			h.logger.LogAttrs(ctx, slog.LevelError, "unable to fetch user", errors.SlogError(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		default:
			r = contexthelpers.AuthenticateContext(r, user.ID, user.DisplayName, user.IsAdmin)
		}

		// Hash token with sha256 to avoid leaking it in logs.
		tokenHash := sha256.Sum256([]byte(h.sessionManager.Token(ctx)))
		ctx = logging.WithAttrs(r.Context(), slog.String("session_hash", hex.EncodeToString(tokenHash[:])))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
