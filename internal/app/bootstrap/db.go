// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/store/greenfield"
	"github.com/dalemusser/ledgerpass/internal/app/system/mailer"
	"github.com/dalemusser/ledgerpass/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB builds the Greenfield client and the stores layered on top of
// it. The invoice API is stateless HTTP, so "connecting" is constructing
// the client and verifying the endpoint answers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client := greenfield.New(greenfield.Config{
		BaseURL: appCfg.BTCPayURL,
		APIKey:  appCfg.BTCPayAPIKey,
		Stores: greenfield.Stores{
			Users:              appCfg.BTCPayUsersStore,
			Sessions:           appCfg.BTCPaySessionsStore,
			VerificationTokens: appCfg.BTCPayTokensStore,
		},
	}, logger)

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Error("Greenfield endpoint unreachable", zap.Error(err),
			zap.String("url", appCfg.BTCPayURL))
		return DBDeps{}, err
	}

	docs, err := docstore.New(client, logger)
	if err != nil {
		return DBDeps{}, err
	}

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	logger.Info("Greenfield document store ready",
		zap.String("url", appCfg.BTCPayURL))

	return DBDeps{
		BTCPay: client,
		Docs:   docs,
		Mail:   mail,
	}, nil
}

// EnsureSchema sets up indexes or schema as needed. The Greenfield server
// owns all storage, so there is nothing to create here.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return nil
}
