package bootstrap_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/ledgerpass/internal/app/bootstrap"
	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() bootstrap.AppConfig {
	return bootstrap.AppConfig{
		BTCPayURL:           "https://btcpay.example.com",
		BTCPayAPIKey:        "key",
		BTCPayUsersStore:    "users-store",
		BTCPaySessionsStore: "sessions-store",
		BTCPayTokensStore:   "tokens-store",
		SessionKey:          "0123456789abcdef0123456789abcdef",
		SessionName:         "ledgerpass-session",
		SessionTTL:          30 * 24 * time.Hour,
		BaseURL:             "http://localhost:3000",
		SiteName:            "LedgerPass",
		MagicLinkExpiry:     10 * time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	coreCfg := &config.CoreConfig{}

	if err := bootstrap.ValidateConfig(coreCfg, validAppConfig(), testLogger()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*bootstrap.AppConfig)
	}{
		{"missing url", func(c *bootstrap.AppConfig) { c.BTCPayURL = "" }},
		{"relative url", func(c *bootstrap.AppConfig) { c.BTCPayURL = "btcpay.example.com/path" }},
		{"missing api key", func(c *bootstrap.AppConfig) { c.BTCPayAPIKey = "" }},
		{"missing users store", func(c *bootstrap.AppConfig) { c.BTCPayUsersStore = "" }},
		{"missing sessions store", func(c *bootstrap.AppConfig) { c.BTCPaySessionsStore = "" }},
		{"missing tokens store", func(c *bootstrap.AppConfig) { c.BTCPayTokensStore = "" }},
		{"zero link expiry", func(c *bootstrap.AppConfig) { c.MagicLinkExpiry = 0 }},
		{"zero session ttl", func(c *bootstrap.AppConfig) { c.SessionTTL = 0 }},
	}
	for _, tc := range cases {
		cfg := validAppConfig()
		tc.mutate(&cfg)
		if err := bootstrap.ValidateConfig(coreCfg, cfg, testLogger()); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestBuildHandler(t *testing.T) {
	client, _ := testutil.NewTestClient(t)
	docs, err := docstore.New(client, testLogger())
	if err != nil {
		t.Fatalf("docstore.New failed: %v", err)
	}

	deps := bootstrap.DBDeps{BTCPay: client, Docs: docs}
	coreCfg := &config.CoreConfig{Env: "dev"}

	handler, err := bootstrap.BuildHandler(coreCfg, validAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	// Health rides on the fake endpoint and reports ok.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/health: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	// Identity endpoint answers anonymously without a cookie.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/me", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/me: got %d, want %d", rec.Code, http.StatusOK)
	}

	// Logout requires a signed-in session.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/logout", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("/logout: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
