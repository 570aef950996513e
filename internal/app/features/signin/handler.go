// internal/app/features/signin/handler.go
package signin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/system/auth"
	"github.com/dalemusser/ledgerpass/internal/app/system/mailer"
	"github.com/dalemusser/ledgerpass/internal/app/system/timeouts"
	"github.com/dalemusser/ledgerpass/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenLength is the length of the magic link token in bytes (32 bytes = 64 hex chars).
const TokenLength = 32

// MailSender sends a built email. Satisfied by *mailer.Mailer.
type MailSender interface {
	Send(e mailer.Email) error
}

type Handler struct {
	Docs       *docstore.Adapter
	Mail       MailSender
	Log        *zap.Logger
	BaseURL    string        // Base URL magic links point back at
	SiteName   string        // Display name used in emails
	LinkExpiry time.Duration // How long a magic link stays valid
	SessionTTL time.Duration // Lifetime of sessions issued on callback
}

func NewHandler(
	docs *docstore.Adapter,
	mail MailSender,
	baseURL, siteName string,
	linkExpiry, sessionTTL time.Duration,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Docs:       docs,
		Mail:       mail,
		Log:        logger,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		SiteName:   siteName,
		LinkExpiry: linkExpiry,
		SessionTTL: sessionTTL,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signin                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRequestLink handles POST /signin: it records a verification token for
// the submitted email and mails a one-time magic link. The response does not
// reveal whether an account already exists for the address.
func (h *Handler) ServeRequestLink(w http.ResponseWriter, r *http.Request) {
	email, ok := h.submittedEmail(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}

	token := generateToken()
	expires := time.Now().UTC().Add(h.LinkExpiry)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	record := models.VerificationToken{
		Identifier: email,
		Token:      token,
		Expires:    expires,
	}
	if _, err := h.Docs.CreateVerificationToken(ctx, record.Document()); err != nil {
		h.Log.Error("create verification token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not start sign-in"})
		return
	}

	link := h.magicLink(email, token)
	msg := mailer.BuildMagicLinkEmail(mailer.MagicLinkEmailData{
		SiteName:  h.SiteName,
		MagicLink: link,
		ExpiresIn: formatExpiry(h.LinkExpiry),
	})
	msg.To = email

	if err := h.Mail.Send(msg); err != nil {
		h.Log.Error("send magic link email", zap.Error(err), zap.String("email", email))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not send sign-in email"})
		return
	}

	h.Log.Info("magic link sent", zap.String("email", email))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signin/callback                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeCallback handles GET /signin/callback?identifier=…&token=…: it
// consumes the verification token, creates the user on first sign-in, issues
// a session, and sets the session cookie. The token is one-time: reloading
// the link fails.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	identifier := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("identifier")))
	token := r.URL.Query().Get("token")
	if identifier == "" || token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sign-in link is invalid or has expired"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	record, err := h.Docs.UseVerificationToken(ctx, identifier, token)
	if err != nil {
		h.Log.Error("use verification token", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign-in failed"})
		return
	}
	if record == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sign-in link is invalid or has expired"})
		return
	}
	if models.VerificationTokenFromDocument(record).Expired(time.Now().UTC()) {
		// Consumed but stale; the user has to request a fresh link.
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sign-in link is invalid or has expired"})
		return
	}

	user, err := h.Docs.GetUserByEmail(ctx, identifier)
	if err != nil {
		h.Log.Error("look up user", zap.Error(err), zap.String("email", identifier))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign-in failed"})
		return
	}
	if user == nil {
		user, err = h.Docs.CreateUser(ctx, models.User{Email: identifier}.Document())
		if err != nil {
			h.Log.Error("create user", zap.Error(err), zap.String("email", identifier))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign-in failed"})
			return
		}
		h.Log.Info("user created on first sign-in", zap.String("email", identifier))
	}

	userID := user.String("id")
	session := models.Session{
		SessionToken: uuid.NewString(),
		UserID:       userID,
		Expires:      time.Now().UTC().Add(h.SessionTTL),
	}
	if _, err := h.Docs.CreateSession(ctx, session.Document()); err != nil {
		h.Log.Error("create session", zap.Error(err), zap.String("userId", userID))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign-in failed"})
		return
	}

	if err := auth.IssueSession(w, r, session.SessionToken); err != nil {
		h.Log.Error("set session cookie", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign-in failed"})
		return
	}

	h.Log.Info("user signed in", zap.String("userId", userID))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "userId": userID})
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// submittedEmail pulls the email out of a JSON or form body and normalizes
// it. The second return is false when no plausible address was submitted.
func (h *Handler) submittedEmail(r *http.Request) (string, bool) {
	var email string

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", false
		}
		email = body.Email
	} else {
		if err := r.ParseForm(); err != nil {
			return "", false
		}
		email = r.FormValue("email")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", false
	}
	return email, true
}

func (h *Handler) magicLink(email, token string) string {
	q := url.Values{}
	q.Set("identifier", email)
	q.Set("token", token)
	return h.BaseURL + "/signin/callback?" + q.Encode()
}

// generateToken generates a random token for magic links.
// Panics if the system's cryptographic random number generator fails.
func generateToken() string {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// formatExpiry formats a duration as a human-readable string for emails,
// e.g. "10 minutes", "1 hour".
func formatExpiry(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
