// internal/app/store/greenfield/client.go

// Package greenfield is a BTCPay Server Greenfield invoice API client
// repurposed as a small document store. Each document lives as an invoice:
// the caller-assigned orderId is the document id, the invoice metadata bag
// holds the document's fields, and the invoice archived flag is the
// soft-delete marker. Archived invoices are invisible to every read path
// here except direct addressing by BTCPay id.
//
// The client is stateless beyond its fixed configuration and is safe for
// concurrent use.
package greenfield

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const invoicesPath = "/api/v1/invoices"

// ErrInvoiceNotFound is returned by UpdateInvoice and ArchiveInvoice when no
// active (non-archived) invoice exists for the given order id.
var ErrInvoiceNotFound = errors.New("invoice not found")

// Stores names the three BTCPay store ids this deployment partitions
// documents into. A store id is purely a partition key; the remote API
// enforces no schema.
type Stores struct {
	Users              string
	Sessions           string
	VerificationTokens string
}

// Config is the fixed configuration for a Client.
type Config struct {
	BaseURL string // BTCPay Server base URL; trailing slashes are stripped
	APIKey  string // Greenfield API key, sent as "Authorization: token <key>"
	Stores  Stores
}

// Client talks to the BTCPay Greenfield invoice API. All operations take the
// target store id explicitly; use Users, Sessions, or VerificationTokens for
// handles bound to one store.
type Client struct {
	baseURL string
	stores  Stores
	http    *resty.Client
	log     *zap.Logger
}

// New creates a Client. It does not verify connectivity; the first request
// does that.
func New(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", "token "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		baseURL: baseURL,
		stores:  cfg.Stores,
		http:    httpClient,
		log:     logger,
	}
}

// BaseURL returns the normalized BTCPay Server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Stores returns the configured store ids.
func (c *Client) Stores() Stores { return c.stores }

// CreateInvoice creates an invoice in the given store carrying doc. The doc
// is wrapped per the wrap contract (pre-wrapped payloads pass through) and
// the created invoice is returned unwrapped.
func (c *Client) CreateInvoice(ctx context.Context, store string, doc Document) (Document, error) {
	var inv invoice
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("storeId", store).
		SetBody(wrap(doc)).
		SetResult(&inv).
		Post(invoicesPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError("create invoice", resp)
	}
	return unwrap(inv), nil
}

// GetInvoiceByOrderID returns the first active invoice in the store whose
// orderId matches, unwrapped, or nil if none exists. Archived invoices are
// invisible through this path. A response that is not a JSON list is
// treated as "not found" rather than an error.
func (c *Client) GetInvoiceByOrderID(ctx context.Context, store, orderID string) (Document, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"storeId": store,
			"orderId": orderID,
		}).
		Get(invoicesPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError("get invoice", resp)
	}

	var invs []invoice
	if err := json.Unmarshal(resp.Body(), &invs); err != nil {
		return nil, nil
	}
	for _, inv := range invs {
		if !inv.Archived {
			return unwrap(inv), nil
		}
	}
	return nil, nil
}

// UpdateInvoice replaces the metadata of the active invoice for orderID with
// doc, wholesale. It resolves the invoice through GetInvoiceByOrderID first,
// so an archived invoice cannot be updated: it reports ErrInvoiceNotFound.
func (c *Client) UpdateInvoice(ctx context.Context, store, orderID string, doc Document) (Document, error) {
	current, err := c.GetInvoiceByOrderID(ctx, store, orderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		c.log.Debug("no active invoice to update",
			zap.String("store", store),
			zap.String("orderId", orderID))
		return nil, ErrInvoiceNotFound
	}

	btcpayID := current.String("btcpayId")
	if btcpayID == "" {
		btcpayID = current.String("id")
	}

	var inv invoice
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("storeId", store).
		SetBody(wrap(doc)).
		SetResult(&inv).
		Put(invoicesPath + "/" + btcpayID)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError("update invoice", resp)
	}
	return unwrap(inv), nil
}

// ArchiveInvoice soft-deletes the active invoice for orderID and returns the
// archived result unwrapped. Like UpdateInvoice it resolves through the
// active-only lookup first, so archiving an already-archived invoice reports
// ErrInvoiceNotFound.
func (c *Client) ArchiveInvoice(ctx context.Context, store, orderID string) (Document, error) {
	current, err := c.GetInvoiceByOrderID(ctx, store, orderID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		c.log.Debug("no active invoice to archive",
			zap.String("store", store),
			zap.String("orderId", orderID))
		return nil, ErrInvoiceNotFound
	}

	btcpayID := current.String("btcpayId")
	if btcpayID == "" {
		btcpayID = current.String("id")
	}

	var inv invoice
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("storeId", store).
		SetResult(&inv).
		Post(invoicesPath + "/" + btcpayID + "/archive")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError("archive invoice", resp)
	}
	return unwrap(inv), nil
}

// ListInvoices returns every active invoice in the store, unwrapped. Extra
// query parameters (e.g. "take") may be passed through params; a nil params
// is fine. A response that is not a JSON list yields an empty slice.
func (c *Client) ListInvoices(ctx context.Context, store string, params map[string]string) ([]Document, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("storeId", store)
	for k, v := range params {
		req.SetQueryParam(k, v)
	}

	resp, err := req.Get(invoicesPath)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError("list invoices", resp)
	}

	var invs []invoice
	if err := json.Unmarshal(resp.Body(), &invs); err != nil {
		return []Document{}, nil
	}

	docs := make([]Document, 0, len(invs))
	for _, inv := range invs {
		if inv.Archived {
			continue
		}
		docs = append(docs, unwrap(inv))
	}
	return docs, nil
}

// FindInvoiceByMetadata returns the first active invoice in the store whose
// unwrapped field key equals value, or nil if none matches.
func (c *Client) FindInvoiceByMetadata(ctx context.Context, store, key, value string) (Document, error) {
	docs, err := c.ListInvoices(ctx, store, nil)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		if doc.String(key) == value {
			return doc, nil
		}
	}
	return nil, nil
}

// ArchiveInvoicesByMetadata archives every active invoice in the store whose
// unwrapped field key equals value, sequentially, and returns the archived
// results. It is not atomic: the first archive failure aborts the rest and
// leaves earlier archives applied.
func (c *Client) ArchiveInvoicesByMetadata(ctx context.Context, store, key, value string) ([]Document, error) {
	docs, err := c.ListInvoices(ctx, store, nil)
	if err != nil {
		return nil, err
	}

	archived := make([]Document, 0, len(docs))
	for _, doc := range docs {
		if doc.String(key) != value {
			continue
		}
		out, err := c.ArchiveInvoice(ctx, store, doc.String("id"))
		if err != nil {
			return archived, err
		}
		archived = append(archived, out)
	}
	if len(archived) > 0 {
		c.log.Info("archived invoices by field",
			zap.String("store", store),
			zap.String("field", key),
			zap.Int("count", len(archived)))
	}
	return archived, nil
}

// Ping verifies the BTCPay Server is reachable and the API key is accepted
// by listing a single invoice in the Users store.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListInvoices(ctx, c.stores.Users, map[string]string{"take": "1"})
	return err
}

// apiError converts a non-2xx invoice API response into a generic error.
// Failures are not classified; callers propagate them unchanged.
func apiError(op string, resp *resty.Response) error {
	return fmt.Errorf("greenfield: %s: %s: %s", op, resp.Status(), strings.TrimSpace(resp.String()))
}
