// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/system/auth"
	"github.com/dalemusser/ledgerpass/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Docs *docstore.Adapter
	Log  *zap.Logger
}

func NewHandler(docs *docstore.Adapter, logger *zap.Logger) *Handler {
	return &Handler{
		Docs: docs,
		Log:  logger,
	}
}

// ServeLogout handles POST /logout. It retires the session record in the
// document store and clears the cookie. The cookie is cleared even when the
// store call fails, so the browser never keeps a token the server has
// forgotten.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionToken(r); token != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
		defer cancel()

		if _, err := h.Docs.DeleteSession(ctx, token); err != nil {
			h.Log.Error("logout: delete session", zap.Error(err))
		}
	}

	if err := auth.ClearSession(w, r); err != nil {
		h.Log.Error("logout: clear session cookie", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "signed_out"})
}
