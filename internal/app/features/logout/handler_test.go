package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ledgerpass/internal/app/features/logout"
	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/system/auth"
	"github.com/dalemusser/ledgerpass/internal/domain/models"
	"github.com/dalemusser/ledgerpass/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *docstore.Adapter, *testutil.FakeGreenfield) {
	t.Helper()

	client, fake := testutil.NewTestClient(t)
	docs, err := docstore.New(client, zap.NewNop())
	if err != nil {
		t.Fatalf("docstore.New failed: %v", err)
	}

	if err := auth.InitSessionStore(
		"0123456789abcdef0123456789abcdef", "test-session", "", false, zap.NewNop(),
	); err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}

	r := chi.NewRouter()
	r.Use(auth.LoadSessionUser(docs, zap.NewNop()))
	r.Mount("/logout", logout.Routes(logout.NewHandler(docs, zap.NewNop())))
	return r, docs, fake
}

// signIn creates a user and session in the store and returns a session cookie.
func signIn(t *testing.T, docs *docstore.Adapter, token string) *http.Cookie {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, err := docs.CreateUser(ctx, docstore.Document{"email": "a@b.com"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	session := models.Session{
		SessionToken: token,
		UserID:       user.String("id"),
		Expires:      time.Now().UTC().Add(time.Hour),
	}
	if _, err := docs.CreateSession(ctx, session.Document()); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	if err := auth.IssueSession(rec, req, token); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("IssueSession set no cookie")
	}
	return cookies[0]
}

func TestServeLogout(t *testing.T) {
	router, docs, fake := newRouter(t)
	cookie := signIn(t, docs, "tok-1")

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	// The session record is retired.
	for _, inv := range fake.Invoices("sessions-store") {
		if inv.Metadata["sessionToken"] == "tok-1" && !inv.Archived {
			t.Error("session record still active after logout")
		}
	}

	// The cookie is expired.
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected session cookie to be expired")
	}

	// The old cookie no longer signs anyone in.
	again := httptest.NewRequest("POST", "/logout", nil)
	again.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, again)
	if rec2.Code != http.StatusUnauthorized {
		t.Errorf("replayed cookie: status got %d, want %d", rec2.Code, http.StatusUnauthorized)
	}
}

func TestServeLogout_Anonymous(t *testing.T) {
	router, _, _ := newRouter(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
