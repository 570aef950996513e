// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// AppConfig is where everything specific to this application lives: the
// BTCPay Greenfield endpoint the document store rides on, session cookie
// settings, and the SMTP relay used for magic-link email.
type AppConfig struct {
	// BTCPay Greenfield configuration. All persistent state lives in
	// invoice metadata on the other side of this endpoint.
	BTCPayURL    string // Greenfield server base URL (e.g., https://btcpay.example.com)
	BTCPayAPIKey string // Greenfield API key with invoice permissions

	// Store IDs backing each record kind.
	BTCPayUsersStore    string // store holding user documents
	BTCPaySessionsStore string // store holding session documents
	BTCPayTokensStore   string // store holding verification token documents

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: ledgerpass-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionTTL    time.Duration // Lifetime of sessions issued at sign-in

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty disables auth)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@ledgerpass.dev)
	MailFromName string // From display name (e.g., LedgerPass)

	// Base URL magic links point back at
	BaseURL string // e.g., "https://ledgerpass.dev" or "http://localhost:3000"

	// SiteName is the display name used in sign-in emails.
	SiteName string

	// MagicLinkExpiry bounds how long a sign-in link stays valid.
	MagicLinkExpiry time.Duration
}
