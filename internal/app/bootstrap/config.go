// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LedgerPass.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: btcpay_url, session_name, etc.
//   - Environment variables: LEDGERPASS_BTCPAY_URL, LEDGERPASS_SESSION_NAME, etc.
//   - Command-line flags: --btcpay_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "btcpay_url", Default: "", Desc: "BTCPay Greenfield server base URL"},
	{Name: "btcpay_api_key", Default: "", Desc: "Greenfield API key with invoice permissions"},
	{Name: "btcpay_users_store", Default: "", Desc: "Greenfield store ID for user documents"},
	{Name: "btcpay_sessions_store", Default: "", Desc: "Greenfield store ID for session documents"},
	{Name: "btcpay_tokens_store", Default: "", Desc: "Greenfield store ID for verification token documents"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "ledgerpass-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "720h", Desc: "Session lifetime (e.g., 720h for 30 days)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@ledgerpass.dev", Desc: "From email address"},
	{Name: "mail_from_name", Default: "LedgerPass", Desc: "From display name"},

	// Links and branding for sign-in email
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for magic links"},
	{Name: "site_name", Default: "LedgerPass", Desc: "Display name used in sign-in emails"},
	{Name: "magic_link_expiry", Default: "10m", Desc: "Magic link expiry (e.g., 10m, 1h)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LEDGERPASS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEDGERPASS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BTCPayURL:    appValues.String("btcpay_url"),
		BTCPayAPIKey: appValues.String("btcpay_api_key"),

		BTCPayUsersStore:    appValues.String("btcpay_users_store"),
		BTCPaySessionsStore: appValues.String("btcpay_sessions_store"),
		BTCPayTokensStore:   appValues.String("btcpay_tokens_store"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 30*24*time.Hour),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		BaseURL:         appValues.String("base_url"),
		SiteName:        appValues.String("site_name"),
		MagicLinkExpiry: appValues.Duration("magic_link_expiry", 10*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// LedgerPass cannot run without a reachable Greenfield endpoint and a
// store ID per record kind, so those are enforced here before any
// connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.BTCPayURL == "" {
		return fmt.Errorf("btcpay_url is required")
	}
	if u, err := url.Parse(appCfg.BTCPayURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("btcpay_url %q is not an absolute URL", appCfg.BTCPayURL)
	}
	if appCfg.BTCPayAPIKey == "" {
		return fmt.Errorf("btcpay_api_key is required")
	}
	if appCfg.BTCPayUsersStore == "" || appCfg.BTCPaySessionsStore == "" || appCfg.BTCPayTokensStore == "" {
		return fmt.Errorf("btcpay_users_store, btcpay_sessions_store, and btcpay_tokens_store are all required")
	}
	if appCfg.MagicLinkExpiry <= 0 {
		return fmt.Errorf("magic_link_expiry must be positive")
	}
	if appCfg.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	return nil
}
