// internal/app/store/greenfield/store.go
package greenfield

import "context"

// StoreClient is a Client bound to one store id, so callers working against
// a single collection need not repeat it on every operation.
type StoreClient struct {
	c       *Client
	storeID string
}

// Store returns a StoreClient bound to the given store id.
func (c *Client) Store(storeID string) StoreClient {
	return StoreClient{c: c, storeID: storeID}
}

// Users returns a StoreClient bound to the configured Users store.
func (c *Client) Users() StoreClient { return c.Store(c.stores.Users) }

// Sessions returns a StoreClient bound to the configured Sessions store.
func (c *Client) Sessions() StoreClient { return c.Store(c.stores.Sessions) }

// VerificationTokens returns a StoreClient bound to the configured
// VerificationTokens store.
func (c *Client) VerificationTokens() StoreClient { return c.Store(c.stores.VerificationTokens) }

// StoreID returns the store id this client is bound to.
func (s StoreClient) StoreID() string { return s.storeID }

// CreateInvoice creates doc in the bound store.
func (s StoreClient) CreateInvoice(ctx context.Context, doc Document) (Document, error) {
	return s.c.CreateInvoice(ctx, s.storeID, doc)
}

// GetInvoiceByOrderID returns the active document with the given order id,
// or nil if none exists.
func (s StoreClient) GetInvoiceByOrderID(ctx context.Context, orderID string) (Document, error) {
	return s.c.GetInvoiceByOrderID(ctx, s.storeID, orderID)
}

// UpdateInvoice replaces the document's metadata wholesale.
func (s StoreClient) UpdateInvoice(ctx context.Context, orderID string, doc Document) (Document, error) {
	return s.c.UpdateInvoice(ctx, s.storeID, orderID, doc)
}

// ArchiveInvoice soft-deletes the active document with the given order id.
func (s StoreClient) ArchiveInvoice(ctx context.Context, orderID string) (Document, error) {
	return s.c.ArchiveInvoice(ctx, s.storeID, orderID)
}

// ListInvoices returns every active document in the bound store.
func (s StoreClient) ListInvoices(ctx context.Context, params map[string]string) ([]Document, error) {
	return s.c.ListInvoices(ctx, s.storeID, params)
}

// FindInvoiceByMetadata returns the first active document whose field key
// equals value, or nil.
func (s StoreClient) FindInvoiceByMetadata(ctx context.Context, key, value string) (Document, error) {
	return s.c.FindInvoiceByMetadata(ctx, s.storeID, key, value)
}

// ArchiveInvoicesByMetadata archives every active document whose field key
// equals value and returns the archived results.
func (s StoreClient) ArchiveInvoicesByMetadata(ctx context.Context, key, value string) ([]Document, error) {
	return s.c.ArchiveInvoicesByMetadata(ctx, s.storeID, key, value)
}
