package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/ledgerpass/internal/app/store/greenfield"
	"go.uber.org/zap"
)

// TestContext returns a context with a generous timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// FakeInvoice is an invoice record held by the fake Greenfield server.
type FakeInvoice struct {
	ID       string         `json:"id"`
	StoreID  string         `json:"-"`
	OrderID  string         `json:"orderId"`
	Metadata map[string]any `json:"metadata"`
	Archived bool           `json:"archived"`
}

// FakeGreenfield is an in-memory stand-in for a BTCPay Server Greenfield
// invoice API. It implements the subset of the API the greenfield client
// uses: create, list (filtered by storeId/orderId), update by invoice id,
// and archive by invoice id.
type FakeGreenfield struct {
	Server *httptest.Server

	mu           sync.Mutex
	seq          int
	invoices     []*FakeInvoice
	archiveLog   []string
	failArchives map[string]bool
}

// NewFakeGreenfield starts a fake Greenfield server that is shut down when
// the test finishes.
func NewFakeGreenfield(t *testing.T) *FakeGreenfield {
	t.Helper()

	f := &FakeGreenfield{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// NewTestClient starts a fake Greenfield server and returns a client
// configured against it with the standard three test stores.
func NewTestClient(t *testing.T) (*greenfield.Client, *FakeGreenfield) {
	t.Helper()

	fake := NewFakeGreenfield(t)
	client := greenfield.New(greenfield.Config{
		BaseURL: fake.Server.URL,
		APIKey:  "test-api-key",
		Stores: greenfield.Stores{
			Users:              "users-store",
			Sessions:           "sessions-store",
			VerificationTokens: "tokens-store",
		},
	}, zap.NewNop())
	return client, fake
}

// URL returns the fake server's base URL.
func (f *FakeGreenfield) URL() string { return f.Server.URL }

// Invoices returns a snapshot of every invoice in the given store,
// including archived ones.
func (f *FakeGreenfield) Invoices(storeID string) []FakeInvoice {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []FakeInvoice
	for _, inv := range f.invoices {
		if inv.StoreID == storeID {
			out = append(out, *inv)
		}
	}
	return out
}

// ArchiveLog returns the store id of every archive request received, in
// arrival order.
func (f *FakeGreenfield) ArchiveLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.archiveLog...)
}

// FailArchive makes archive requests for the given invoice id answer with a
// server error instead of archiving.
func (f *FakeGreenfield) FailArchive(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failArchives == nil {
		f.failArchives = map[string]bool{}
	}
	f.failArchives[id] = true
}

// Seed inserts an invoice directly, bypassing the HTTP surface.
func (f *FakeGreenfield) Seed(storeID, orderID string, metadata map[string]any, archived bool) FakeInvoice {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	inv := &FakeInvoice{
		ID:       fmt.Sprintf("inv_%04d", f.seq),
		StoreID:  storeID,
		OrderID:  orderID,
		Metadata: metadata,
		Archived: archived,
	}
	f.invoices = append(f.invoices, inv)
	return *inv
}

func (f *FakeGreenfield) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/invoices") {
		http.NotFound(w, r)
		return
	}
	if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "token ") {
		http.Error(w, `{"message":"missing api key"}`, http.StatusUnauthorized)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/invoices")
	switch {
	case rest == "" && r.Method == http.MethodPost:
		f.handleCreate(w, r)
	case rest == "" && r.Method == http.MethodGet:
		f.handleList(w, r)
	case strings.HasSuffix(rest, "/archive") && r.Method == http.MethodPost:
		id := strings.TrimSuffix(strings.TrimPrefix(rest, "/"), "/archive")
		f.handleArchive(w, r, id)
	case rest != "" && r.Method == http.MethodPut:
		f.handleUpdate(w, r, strings.TrimPrefix(rest, "/"))
	default:
		http.Error(w, `{"message":"unsupported"}`, http.StatusMethodNotAllowed)
	}
}

func (f *FakeGreenfield) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID  string         `json:"orderId"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
		return
	}

	inv := f.Seed(r.URL.Query().Get("storeId"), body.OrderID, body.Metadata, false)
	writeJSON(w, inv)
}

func (f *FakeGreenfield) handleList(w http.ResponseWriter, r *http.Request) {
	storeID := r.URL.Query().Get("storeId")
	orderID := r.URL.Query().Get("orderId")

	f.mu.Lock()
	defer f.mu.Unlock()

	out := []FakeInvoice{}
	for _, inv := range f.invoices {
		if inv.StoreID != storeID {
			continue
		}
		if orderID != "" && inv.OrderID != orderID {
			continue
		}
		out = append(out, *inv)
	}
	writeJSON(w, out)
}

func (f *FakeGreenfield) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		OrderID  string         `json:"orderId"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.Metadata = body.Metadata
			writeJSON(w, *inv)
			return
		}
	}
	http.Error(w, `{"message":"invoice not found"}`, http.StatusNotFound)
}

func (f *FakeGreenfield) handleArchive(w http.ResponseWriter, r *http.Request, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.archiveLog = append(f.archiveLog, r.URL.Query().Get("storeId"))
	if f.failArchives[id] {
		http.Error(w, `{"message":"server error"}`, http.StatusInternalServerError)
		return
	}

	for _, inv := range f.invoices {
		if inv.ID == id {
			inv.Archived = true
			writeJSON(w, *inv)
			return
		}
	}
	http.Error(w, `{"message":"invoice not found"}`, http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
