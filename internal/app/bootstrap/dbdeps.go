// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/ledgerpass/internal/app/store/docstore"
	"github.com/dalemusser/ledgerpass/internal/app/store/greenfield"
	"github.com/dalemusser/ledgerpass/internal/app/system/mailer"
)

// DBDeps holds backend dependencies for the app. There is no local
// database: all state lives in invoice metadata behind the Greenfield
// client, and Docs is the record-oriented view over it.
type DBDeps struct {
	BTCPay *greenfield.Client
	Docs   *docstore.Adapter
	Mail   *mailer.Mailer
}
