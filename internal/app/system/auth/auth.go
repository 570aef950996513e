package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/system/timeouts"
	"github.com/dalemusser/ledgerpass/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants & globals                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const sessionTokenKey = "session_token"

// Store is initialised once via InitSessionStore.
var Store *sessions.CookieStore

// sessionName is the cookie name, set by InitSessionStore.
var sessionName = "ledgerpass-session"

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what LoadSessionUser injects into r.Context(). The cookie
// itself carries only the opaque session token; user fields are resolved
// fresh from the document store on each request, so profile changes and
// deletions take effect immediately.
type SessionUser struct {
	ID    string
	Email string
	Name  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// LoadSessionUser returns middleware that resolves the cookie's session
// token through the document store and injects the owning user into
// context. Requests without a cookie, with an unknown token, or with an
// expired session pass through anonymously; resolution errors are logged
// and treated the same way.
func LoadSessionUser(docs *docstore.Adapter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Store == nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, _ := Store.Get(r, sessionName)
			token, _ := sess.Values[sessionTokenKey].(string)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			su, err := docs.GetSessionAndUser(ctx, token)
			cancel()
			if err != nil {
				logger.Warn("session lookup failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if su == nil {
				next.ServeHTTP(w, r)
				return
			}
			if models.SessionFromDocument(su.Session).Expired(time.Now().UTC()) {
				next.ServeHTTP(w, r)
				return
			}

			user := models.UserFromDocument(su.User)
			r = withUser(r, &SessionUser{
				ID:    user.ID,
				Email: user.Email,
				Name:  user.Name,
			})
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// Anonymous requests get a plain 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Cookie management                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// InitSessionStore initializes the global session Store using the provided
// session key, cookie name, and domain. The `secure` flag controls whether
// cookies are marked Secure and which SameSite mode is used.
func InitSessionStore(sessionKey, name, domain string, secure bool, logger *zap.Logger) error {
	if sessionKey == "" {
		return fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name != "" {
		sessionName = name
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}

	store.Options = opts
	Store = store

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return nil
}

// IssueSession writes the session token into the cookie.
func IssueSession(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := Store.Get(r, sessionName)
	sess.Values[sessionTokenKey] = token
	return sess.Save(r, w)
}

// SessionToken returns the token carried by the request's cookie, or "".
func SessionToken(r *http.Request) string {
	if Store == nil {
		return ""
	}
	sess, _ := Store.Get(r, sessionName)
	token, _ := sess.Values[sessionTokenKey].(string)
	return token
}

// ClearSession expires the cookie immediately, keeping the deletion-cookie
// attributes in line with the store's options.
func ClearSession(w http.ResponseWriter, r *http.Request) error {
	sess, _ := Store.Get(r, sessionName)
	if opts := Store.Options; opts != nil {
		sess.Options.Domain = opts.Domain
		sess.Options.Path = opts.Path
		sess.Options.Secure = opts.Secure
		sess.Options.HttpOnly = opts.HttpOnly
		sess.Options.SameSite = opts.SameSite
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
