package models

import "time"

// VerificationToken is a pending magic-link sign-in. Identifier is the
// email the link was sent to; Token is the one-time secret embedded in it.
type VerificationToken struct {
	ID         string
	Identifier string
	Token      string
	UserID     string
	Expires    time.Time
}

// VerificationTokenFromDocument builds a VerificationToken from a
// document's fields.
func VerificationTokenFromDocument(d map[string]any) VerificationToken {
	return VerificationToken{
		ID:         docString(d, "id"),
		Identifier: docString(d, "identifier"),
		Token:      docString(d, "token"),
		UserID:     docString(d, "userId"),
		Expires:    docTime(d, "expires"),
	}
}

// Document renders the token as a document field bag.
func (v VerificationToken) Document() map[string]any {
	doc := map[string]any{
		"identifier": v.Identifier,
		"token":      v.Token,
		"expires":    v.Expires.UTC().Format(time.RFC3339),
	}
	if v.ID != "" {
		doc["id"] = v.ID
	}
	if v.UserID != "" {
		doc["userId"] = v.UserID
	}
	return doc
}

// Expired reports whether the token's expiry has passed at the given time.
func (v VerificationToken) Expired(now time.Time) bool {
	return !v.Expires.After(now)
}
