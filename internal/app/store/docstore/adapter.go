// internal/app/store/docstore/adapter.go

// Package docstore implements the persistence capability set a pluggable
// authentication framework expects (user, session, and verification-token
// lifecycle) on top of the greenfield invoice client. It is the only layer
// that knows which store holds which document kind; the client below it
// treats documents as opaque.
//
// Deletion everywhere in this package means archiving: archived documents
// drop out of every lookup and list, but remain on the remote ledger.
package docstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/dalemusser/ledgerpass/internal/app/store/greenfield"
	"go.uber.org/zap"
)

var (
	// ErrMissingStoreID is returned by New when the client is not
	// configured with all three store ids.
	ErrMissingStoreID = errors.New("docstore: store id missing")
	// ErrMissingID is returned by UpdateUser and UpdateSession when the
	// document carries no id.
	ErrMissingID = errors.New("docstore: missing document id")
)

// Document is the opaque field bag the adapter trades in.
type Document = greenfield.Document

// SessionAndUser pairs an active session with its owning user.
type SessionAndUser struct {
	Session Document
	User    Document
}

// Adapter is the auth-framework persistence adapter. It holds only immutable
// configuration (via the client) and is safe for concurrent reuse.
type Adapter struct {
	client *greenfield.Client
	log    *zap.Logger
}

// New creates an Adapter. It fails fast when any of the three store ids is
// missing, so a misconfigured deployment dies at startup rather than on the
// first sign-in.
func New(client *greenfield.Client, logger *zap.Logger) (*Adapter, error) {
	stores := client.Stores()
	if stores.Users == "" || stores.Sessions == "" || stores.VerificationTokens == "" {
		return nil, ErrMissingStoreID
	}
	return &Adapter{client: client, log: logger}, nil
}

// CreateUser stores data in the Users store, assigning a random id when the
// caller supplied none. It returns the input document, not the server echo;
// any field the remote API assigns during creation is intentionally dropped.
func (a *Adapter) CreateUser(ctx context.Context, data Document) (Document, error) {
	ensureID(data)
	if _, err := a.client.Users().CreateInvoice(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetUser returns the active user with the given id, or nil. An archived
// (deleted) user is unreachable through this path.
func (a *Adapter) GetUser(ctx context.Context, id string) (Document, error) {
	return a.client.Users().GetInvoiceByOrderID(ctx, id)
}

// GetUserByEmail returns the active user whose email field matches, or nil.
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (Document, error) {
	return a.client.Users().FindInvoiceByMetadata(ctx, "email", email)
}

// GetUserByAccount always returns nil: this deployment supports exactly one
// linked account per user, so provider account lookup never resolves.
func (a *Adapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (Document, error) {
	return nil, nil
}

// UpdateUser replaces the user document wholesale with data. Fields absent
// from data are erased, not preserved; callers must send complete documents.
func (a *Adapter) UpdateUser(ctx context.Context, data Document) (Document, error) {
	id := data.String("id")
	if id == "" {
		return nil, ErrMissingID
	}
	return a.client.Users().UpdateInvoice(ctx, id, data)
}

// DeleteUser archives the user, then every session and verification token
// whose userId matches, in that order. The cascade is sequential and
// best-effort: the first failure aborts the remaining steps and leaves
// earlier archives applied.
func (a *Adapter) DeleteUser(ctx context.Context, id string) error {
	if _, err := a.client.Users().ArchiveInvoice(ctx, id); err != nil {
		return err
	}
	sessions, err := a.client.Sessions().ArchiveInvoicesByMetadata(ctx, "userId", id)
	if err != nil {
		return err
	}
	tokens, err := a.client.VerificationTokens().ArchiveInvoicesByMetadata(ctx, "userId", id)
	if err != nil {
		return err
	}
	a.log.Info("user deleted",
		zap.String("userId", id),
		zap.Int("sessions", len(sessions)),
		zap.Int("tokens", len(tokens)))
	return nil
}

// LinkAccount is a pass-through, consistent with the single-account
// assumption behind GetUserByAccount.
func (a *Adapter) LinkAccount(ctx context.Context, data Document) (Document, error) {
	return data, nil
}

// UnlinkAccount is a pass-through.
func (a *Adapter) UnlinkAccount(ctx context.Context, data Document) (Document, error) {
	return data, nil
}

// CreateSession stores data in the Sessions store, assigning an id when
// absent, and returns the input document.
func (a *Adapter) CreateSession(ctx context.Context, data Document) (Document, error) {
	ensureID(data)
	if _, err := a.client.Sessions().CreateInvoice(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetSessionAndUser resolves the active session with the given token and the
// user that owns it. It returns nil when either lookup misses: an unknown
// token and a session orphaned of its user are indistinguishable to callers.
func (a *Adapter) GetSessionAndUser(ctx context.Context, sessionToken string) (*SessionAndUser, error) {
	session, err := a.client.Sessions().FindInvoiceByMetadata(ctx, "sessionToken", sessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	user, err := a.client.Users().GetInvoiceByOrderID(ctx, session.String("userId"))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	return &SessionAndUser{Session: session, User: user}, nil
}

// UpdateSession replaces the session document wholesale with data, with the
// same erase-on-omit behavior as UpdateUser.
func (a *Adapter) UpdateSession(ctx context.Context, data Document) (Document, error) {
	id := data.String("id")
	if id == "" {
		return nil, ErrMissingID
	}
	return a.client.Sessions().UpdateInvoice(ctx, id, data)
}

// DeleteSession archives the active session with the given token and returns
// it as it was before archiving, or nil if no active session matches.
func (a *Adapter) DeleteSession(ctx context.Context, sessionToken string) (Document, error) {
	session, err := a.client.Sessions().FindInvoiceByMetadata(ctx, "sessionToken", sessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	if _, err := a.client.Sessions().ArchiveInvoice(ctx, session.String("id")); err != nil {
		return nil, err
	}
	return session, nil
}

// CreateVerificationToken stores data in the VerificationTokens store,
// assigning an id when absent, and returns the input document.
func (a *Adapter) CreateVerificationToken(ctx context.Context, data Document) (Document, error) {
	ensureID(data)
	if _, err := a.client.VerificationTokens().CreateInvoice(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// UseVerificationToken consumes a verification token. It returns nil when no
// active record matches identifier, and nil when a record matches but its
// stored token differs from token. On an exact match the record is archived
// (one-time use) and returned.
func (a *Adapter) UseVerificationToken(ctx context.Context, identifier, token string) (Document, error) {
	record, err := a.client.VerificationTokens().FindInvoiceByMetadata(ctx, "identifier", identifier)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if record.String("token") != token {
		a.log.Warn("verification token mismatch",
			zap.String("identifier", identifier))
		return nil, nil
	}
	if _, err := a.client.VerificationTokens().ArchiveInvoice(ctx, record.String("id")); err != nil {
		return nil, err
	}
	return record, nil
}

// ensureID assigns a random 24-hex-character id to data when it has none.
func ensureID(data Document) {
	if data.String("id") == "" {
		data["id"] = NewDocumentID()
	}
}

// NewDocumentID returns a cryptographically random 24-hex-character
// document id. Panics if the system's random number generator fails.
func NewDocumentID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
