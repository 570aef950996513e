// Package models holds typed views of the documents the docstore adapter
// trades in. Documents cross the store boundary as opaque field bags; these
// types give the handlers above something structured to work with. Times
// are carried in documents as RFC 3339 strings.
package models

// User is an account identified by email. Sign-in is passwordless, so a
// user record carries no credential material.
type User struct {
	ID    string
	Email string
	Name  string
}

// UserFromDocument builds a User from a document's fields.
func UserFromDocument(d map[string]any) User {
	return User{
		ID:    docString(d, "id"),
		Email: docString(d, "email"),
		Name:  docString(d, "name"),
	}
}

// Document renders the user as a document field bag.
func (u User) Document() map[string]any {
	doc := map[string]any{
		"email": u.Email,
	}
	if u.ID != "" {
		doc["id"] = u.ID
	}
	if u.Name != "" {
		doc["name"] = u.Name
	}
	return doc
}

func docString(d map[string]any, key string) string {
	s, _ := d[key].(string)
	return s
}
