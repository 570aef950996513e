package models

import "time"

// Session tracks a signed-in user. The sessionToken is the value stored in
// the browser cookie; userId references the owning user document.
type Session struct {
	ID           string
	SessionToken string
	UserID       string
	Expires      time.Time
}

// SessionFromDocument builds a Session from a document's fields. A missing
// or malformed expires field yields a zero Expires, which callers treat as
// already expired.
func SessionFromDocument(d map[string]any) Session {
	return Session{
		ID:           docString(d, "id"),
		SessionToken: docString(d, "sessionToken"),
		UserID:       docString(d, "userId"),
		Expires:      docTime(d, "expires"),
	}
}

// Document renders the session as a document field bag.
func (s Session) Document() map[string]any {
	doc := map[string]any{
		"sessionToken": s.SessionToken,
		"userId":       s.UserID,
		"expires":      s.Expires.UTC().Format(time.RFC3339),
	}
	if s.ID != "" {
		doc["id"] = s.ID
	}
	return doc
}

// Expired reports whether the session's expiry has passed at the given
// time. A zero Expires counts as expired.
func (s Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}

func docTime(d map[string]any, key string) time.Time {
	s, _ := d[key].(string)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
