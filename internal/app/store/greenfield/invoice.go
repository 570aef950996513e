// internal/app/store/greenfield/invoice.go
package greenfield

// Terminology: Invoice Identifiers
//   - OrderID / orderId: the caller-assigned logical document id
//   - BTCPayID / btcpayId: the id BTCPay Server assigns to the invoice itself

// Document is an arbitrary bag of named fields. The client layer does not
// know (or care) what shape a document has beyond its "id" field; the
// callers above it decide what users, sessions, and tokens look like.
type Document map[string]any

// String returns the named field as a string, or "" if the field is
// absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// invoice is the wire shape of a BTCPay Greenfield invoice, reduced to the
// fields this client uses. OrderID carries the document's logical id and
// Metadata carries the document's fields.
type invoice struct {
	ID       string   `json:"id,omitempty"`
	OrderID  string   `json:"orderId"`
	Metadata Document `json:"metadata"`
	Archived bool     `json:"archived,omitempty"`
}

// wrap converts a document into an invoice creation/update payload:
//
//	{orderId: doc.id, metadata: doc}
//
// If doc already carries a "metadata" field it is assumed to be pre-wrapped
// and is passed through unchanged. That lets callers hand an already
// invoice-shaped payload to create or update without double-nesting.
func wrap(doc Document) Document {
	if _, ok := doc["metadata"]; ok {
		return doc
	}
	return Document{
		"orderId":  doc.String("id"),
		"metadata": doc,
	}
}

// unwrap converts an invoice back into a document:
//
//	{id: invoice.orderId, ...invoice.metadata, btcpayId: invoice.id}
//
// The BTCPay-assigned invoice id is retained as btcpayId so later mutations
// can address the invoice directly without a re-lookup.
func unwrap(inv invoice) Document {
	doc := make(Document, len(inv.Metadata)+2)
	doc["id"] = inv.OrderID
	for k, v := range inv.Metadata {
		doc[k] = v
	}
	doc["btcpayId"] = inv.ID
	return doc
}
