// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/ledgerpass/internal/app/features/health"
	logoutfeature "github.com/dalemusser/ledgerpass/internal/app/features/logout"
	signinfeature "github.com/dalemusser/ledgerpass/internal/app/features/signin"
	userinfofeature "github.com/dalemusser/ledgerpass/internal/app/features/userinfo"
	"github.com/dalemusser/ledgerpass/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, backend connections, and any
// Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: the Greenfield client, document store, and mailer in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// LedgerPass initializes the session cookie store, applies the session
// middleware, and mounts the feature routers: health, sign-in, logout,
// and the identity endpoint.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: resolves the cookie's session token through
	// the document store and loads the owning user into context. This makes
	// the current user available to all handlers via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser(deps.Docs, logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.BTCPay, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Magic-link authentication
	signinHandler := signinfeature.NewHandler(
		deps.Docs, deps.Mail,
		appCfg.BaseURL, appCfg.SiteName,
		appCfg.MagicLinkExpiry, appCfg.SessionTTL,
		logger,
	)
	r.Mount("/signin", signinfeature.Routes(signinHandler))

	logoutHandler := logoutfeature.NewHandler(deps.Docs, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Identity for the current session
	userinfoHandler := userinfofeature.NewHandler()
	r.Mount("/me", userinfofeature.Routes(userinfoHandler))

	return r, nil
}
