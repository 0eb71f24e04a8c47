package mocks

import (
	"context"
	"encoding/json"

	"profile-directory/core/backend"

	"github.com/stretchr/testify/mock"
)

// Documents is a mock implementation of backend.Documents
type Documents struct {
	mock.Mock
}

func (m *Documents) List(ctx context.Context, databaseID, collectionID string, queries ...backend.Query) (*backend.DocumentList, error) {
	args := m.Called(ctx, databaseID, collectionID, queries)
	if list, ok := args.Get(0).(*backend.DocumentList); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Documents) Get(ctx context.Context, databaseID, collectionID, documentID string) (json.RawMessage, error) {
	args := m.Called(ctx, databaseID, collectionID, documentID)
	return rawArg(args)
}

func (m *Documents) Create(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	args := m.Called(ctx, databaseID, collectionID, documentID, data)
	return rawArg(args)
}

func (m *Documents) Update(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	args := m.Called(ctx, databaseID, collectionID, documentID, data)
	return rawArg(args)
}

func (m *Documents) Delete(ctx context.Context, databaseID, collectionID, documentID string) error {
	args := m.Called(ctx, databaseID, collectionID, documentID)
	return args.Error(0)
}

// Accounts is a mock implementation of backend.Accounts
type Accounts struct {
	mock.Mock
}

func (m *Accounts) Create(ctx context.Context, userID, email, password, name string) (*backend.User, error) {
	args := m.Called(ctx, userID, email, password, name)
	return userArg(args)
}

func (m *Accounts) CreateEmailPasswordSession(ctx context.Context, email, password string) (*backend.Session, error) {
	args := m.Called(ctx, email, password)
	if s, ok := args.Get(0).(*backend.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Accounts) Get(ctx context.Context, secret string) (*backend.User, error) {
	args := m.Called(ctx, secret)
	return userArg(args)
}

func (m *Accounts) DeleteSession(ctx context.Context, secret, sessionID string) error {
	args := m.Called(ctx, secret, sessionID)
	return args.Error(0)
}

func (m *Accounts) UpdateName(ctx context.Context, secret, name string) (*backend.User, error) {
	args := m.Called(ctx, secret, name)
	return userArg(args)
}

func (m *Accounts) CreateRecovery(ctx context.Context, email, url string) (*backend.Token, error) {
	args := m.Called(ctx, email, url)
	if tok, ok := args.Get(0).(*backend.Token); ok {
		return tok, args.Error(1)
	}
	return nil, args.Error(1)
}

// Realtime is a mock implementation of backend.Realtime.
// The handler passed to Subscribe is kept so tests can push events.
type Realtime struct {
	mock.Mock
	Handler backend.Handler
}

func (m *Realtime) Subscribe(ctx context.Context, channels []string, handler backend.Handler) (backend.Subscription, error) {
	m.Handler = handler
	args := m.Called(ctx, channels)
	if sub, ok := args.Get(0).(backend.Subscription); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

// Subscription is a mock implementation of backend.Subscription
type Subscription struct {
	mock.Mock
}

func (m *Subscription) Close() error {
	args := m.Called()
	return args.Error(0)
}

func rawArg(args mock.Arguments) (json.RawMessage, error) {
	switch v := args.Get(0).(type) {
	case json.RawMessage:
		return v, args.Error(1)
	case string:
		return json.RawMessage(v), args.Error(1)
	}
	return nil, args.Error(1)
}

func userArg(args mock.Arguments) (*backend.User, error) {
	if u, ok := args.Get(0).(*backend.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
