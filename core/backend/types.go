package backend

import (
	"encoding/json"
	"time"
)

// DocumentList is the result of a document listing.
type DocumentList struct {
	Total     int               `json:"total"`
	Documents []json.RawMessage `json:"documents"`
}

// User is an account of the backend.
type User struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a login session. Secret authenticates subsequent calls.
type Session struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
}

// Token is a one-shot token such as a password recovery token.
type Token struct {
	ID     string    `json:"$id"`
	UserID string    `json:"userId"`
	Secret string    `json:"secret"`
	Expire time.Time `json:"expire"`
}

// Event is a realtime change notification. Payload is the full document
// after the change (or the removed document for deletions).
type Event struct {
	Events    []string        `json:"events"`
	Channels  []string        `json:"channels"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Query is a document filter. Only equality is used by this application.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// Equal matches documents whose attribute equals any of values.
func Equal(attribute string, values ...any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: values}
}

// String renders the query in the JSON form accepted by the REST API.
func (q Query) String() string {
	data, _ := json.Marshal(q)
	return string(data)
}
