package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Documents is the document database of the backend.
// Document payloads are JSON objects carrying the store-assigned "$id".
type Documents interface {
	// List returns the documents of a collection matching every query, in store order.
	List(ctx context.Context, databaseID, collectionID string, queries ...Query) (*DocumentList, error)
	// Get returns a single document.
	Get(ctx context.Context, databaseID, collectionID, documentID string) (json.RawMessage, error)
	// Create stores a new document under documentID.
	Create(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error)
	// Update merges data into an existing document.
	Update(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error)
	// Delete removes a document.
	Delete(ctx context.Context, databaseID, collectionID, documentID string) error
}

// Accounts is the authentication service of the backend.
// Calls acting on behalf of a user take the session secret explicitly.
type Accounts interface {
	// Create registers a new account.
	Create(ctx context.Context, userID, email, password, name string) (*User, error)
	// CreateEmailPasswordSession logs in and returns the new session with its secret.
	CreateEmailPasswordSession(ctx context.Context, email, password string) (*Session, error)
	// Get returns the account owning the session.
	Get(ctx context.Context, secret string) (*User, error)
	// DeleteSession deletes a session; "current" targets the session of secret.
	DeleteSession(ctx context.Context, secret, sessionID string) error
	// UpdateName changes the display name of the account owning the session.
	UpdateName(ctx context.Context, secret, name string) (*User, error)
	// CreateRecovery sends a password recovery link for email.
	CreateRecovery(ctx context.Context, email, url string) (*Token, error)
}

// Realtime delivers change events for subscribed channels.
type Realtime interface {
	// Subscribe opens a subscription. The handler's OnEvent is called sequentially in
	// delivery order; OnLost is called at most once if the subscription fails.
	Subscribe(ctx context.Context, channels []string, handler Handler) (Subscription, error)
}

// Subscription is a live realtime subscription.
type Subscription interface {
	// Close releases the subscription. No handler call happens after Close returns.
	// Close is idempotent.
	Close() error
}

// Handler receives realtime callbacks.
type Handler struct {
	OnEvent func(Event)
	OnLost  func(error)
}

// SessionBinder is implemented by backends whose document and realtime calls
// act on behalf of the logged-in user. An empty secret unbinds.
type SessionBinder interface {
	BindSession(secret string)
}

// Backend bundles the services of one backend.
type Backend struct {
	Documents Documents
	Accounts  Accounts
	Realtime  Realtime
	// Sessions is nil when document access does not depend on the user session.
	Sessions SessionBinder
}

// CurrentSession addresses the session the secret belongs to.
const CurrentSession = "current"

// DocumentsChannel returns the realtime channel of every document in a collection.
func DocumentsChannel(databaseID, collectionID string) string {
	return fmt.Sprintf("databases.%s.collections.%s.documents", databaseID, collectionID)
}

// NewID returns a unique identifier for a new document or account.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
