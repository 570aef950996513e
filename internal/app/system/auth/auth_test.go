package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/system/auth"
	"github.com/dalemusser/ledgerpass/internal/domain/models"
	"github.com/dalemusser/ledgerpass/internal/testutil"
	"go.uber.org/zap"
)

func initStore(t *testing.T) {
	t.Helper()
	if err := auth.InitSessionStore(
		"0123456789abcdef0123456789abcdef", "test-session", "", false, zap.NewNop(),
	); err != nil {
		t.Fatalf("InitSessionStore failed: %v", err)
	}
}

func TestInitSessionStore_RequiresKey(t *testing.T) {
	if err := auth.InitSessionStore("", "test-session", "", false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	initStore(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	if err := auth.IssueSession(rec, req, "tok-1"); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	carried := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		carried.AddCookie(c)
	}
	if got := auth.SessionToken(carried); got != "tok-1" {
		t.Errorf("SessionToken: got %q, want %q", got, "tok-1")
	}

	// Clearing expires the cookie.
	clearRec := httptest.NewRecorder()
	if err := auth.ClearSession(clearRec, carried); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	var cleared bool
	for _, c := range clearRec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected an expired deletion cookie")
	}
}

func TestSessionToken_NoCookie(t *testing.T) {
	initStore(t)
	if got := auth.SessionToken(httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Errorf("SessionToken without cookie: got %q, want empty", got)
	}
}

func TestLoadSessionUser(t *testing.T) {
	initStore(t)

	client, _ := testutil.NewTestClient(t)
	docs, err := docstore.New(client, zap.NewNop())
	if err != nil {
		t.Fatalf("docstore.New failed: %v", err)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	user, err := docs.CreateUser(ctx, docstore.Document{"email": "a@b.com", "name": "Ada"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	session := models.Session{
		SessionToken: "tok-live",
		UserID:       user.String("id"),
		Expires:      time.Now().UTC().Add(time.Hour),
	}
	if _, err := docs.CreateSession(ctx, session.Document()); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var seen *auth.SessionUser
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.CurrentUser(r)
	})
	handler := auth.LoadSessionUser(docs, zap.NewNop())(inner)

	// Without a cookie the request stays anonymous.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if seen != nil {
		t.Fatal("anonymous request should carry no user")
	}

	// With a valid cookie the owning user lands in context.
	issueRec := httptest.NewRecorder()
	if err := auth.IssueSession(issueRec, httptest.NewRequest("GET", "/", nil), "tok-live"); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range issueRec.Result().Cookies() {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen == nil {
		t.Fatal("expected a user in context")
	}
	if seen.ID != user.String("id") || seen.Email != "a@b.com" || seen.Name != "Ada" {
		t.Errorf("user: got %+v", seen)
	}

	// Unknown tokens stay anonymous.
	seen = nil
	issueRec = httptest.NewRecorder()
	if err := auth.IssueSession(issueRec, httptest.NewRequest("GET", "/", nil), "tok-ghost"); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	for _, c := range issueRec.Result().Cookies() {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != nil {
		t.Error("unknown token should stay anonymous")
	}
}

func TestRequireSignedIn(t *testing.T) {
	initStore(t)

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	handler := auth.RequireSignedIn(inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("inner handler should not run for anonymous requests")
	}
}
