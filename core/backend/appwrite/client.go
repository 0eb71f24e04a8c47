package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"profile-directory/core/backend"
	"profile-directory/core/storage"

	"go.uber.org/zap"
)

const (
	headerProject = "X-Appwrite-Project"
	headerKey     = "X-Appwrite-Key"
	headerSession = "X-Appwrite-Session"

	sessionCookiePrefix = "a_session_"
)

// Client talks to the Appwrite REST and realtime APIs.
//
// Document and realtime calls use the API key when one is configured and the
// bound user session otherwise. Account calls always act on the secret passed
// to them.
type Client struct {
	endpoint *url.URL
	project  string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	logger   *zap.Logger

	mu      sync.RWMutex
	session string
}

// New creates a client for cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	endpoint, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("appwrite: invalid endpoint: %w", err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("appwrite: endpoint must be http or https, got %q", cfg.Endpoint)
	}
	if cfg.Project == "" {
		return nil, fmt.Errorf("appwrite: project is required")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint: endpoint,
		project:  cfg.Project,
		apiKey:   cfg.ApiKey,
		timeout:  timeout,
		http:     &http.Client{Transport: storage.NewTransport(timeout)},
		logger:   logger,
		session:  cfg.Session,
	}, nil
}

// Backend exposes the client as a backend.Backend.
func (c *Client) Backend() backend.Backend {
	return backend.Backend{
		Documents: &documents{c: c},
		Accounts:  &accounts{c: c},
		Realtime:  &realtime{c: c},
		Sessions:  c,
	}
}

// BindSession sets the user session used for document and realtime calls.
func (c *Client) BindSession(secret string) {
	c.mu.Lock()
	c.session = secret
	c.mu.Unlock()
}

func (c *Client) boundSession() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// secret authenticates as a user. Server requests use the API key instead.
	secret string
	server bool
}

// do executes req and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) (*http.Response, error) {
	u := *c.endpoint
	u.Path = c.endpoint.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("appwrite: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("appwrite: create request: %w", err)
	}
	httpReq.Header.Set(headerProject, c.project)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	switch {
	case req.server && c.apiKey != "":
		httpReq.Header.Set(headerKey, c.apiKey)
	case req.server:
		if secret := c.boundSession(); secret != "" {
			httpReq.Header.Set(headerSession, secret)
		}
	case req.secret != "":
		httpReq.Header.Set(headerSession, req.secret)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("appwrite: %s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("appwrite: read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, decodeError(resp.StatusCode, data)
	}

	c.logger.Debug("Appwrite request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode))

	if out == nil || len(data) == 0 {
		return resp, nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return resp, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return resp, fmt.Errorf("appwrite: decode response: %w", err)
	}
	return resp, nil
}

func decodeError(status int, data []byte) error {
	backendErr := &backend.Error{}
	if err := json.Unmarshal(data, backendErr); err != nil || backendErr.Message == "" {
		backendErr.Message = strings.TrimSpace(string(data))
		if backendErr.Message == "" {
			backendErr.Message = http.StatusText(status)
		}
	}
	backendErr.Code = status
	return backendErr
}

func collectionPath(databaseID, collectionID string) string {
	return "/databases/" + url.PathEscape(databaseID) + "/collections/" + url.PathEscape(collectionID) + "/documents"
}

type documents struct {
	c *Client
}

func (d *documents) List(ctx context.Context, databaseID, collectionID string, queries ...backend.Query) (*backend.DocumentList, error) {
	values := url.Values{}
	for _, q := range queries {
		values.Add("queries[]", q.String())
	}

	list := &backend.DocumentList{}
	if _, err := d.c.do(ctx, request{
		method: http.MethodGet,
		path:   collectionPath(databaseID, collectionID),
		query:  values,
		server: true,
	}, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *documents) Get(ctx context.Context, databaseID, collectionID, documentID string) (json.RawMessage, error) {
	var doc json.RawMessage
	_, err := d.c.do(ctx, request{
		method: http.MethodGet,
		path:   collectionPath(databaseID, collectionID) + "/" + url.PathEscape(documentID),
		server: true,
	}, &doc)
	return doc, err
}

func (d *documents) Create(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	var doc json.RawMessage
	_, err := d.c.do(ctx, request{
		method: http.MethodPost,
		path:   collectionPath(databaseID, collectionID),
		body:   map[string]any{"documentId": documentID, "data": data},
		server: true,
	}, &doc)
	return doc, err
}

func (d *documents) Update(ctx context.Context, databaseID, collectionID, documentID string, data any) (json.RawMessage, error) {
	var doc json.RawMessage
	_, err := d.c.do(ctx, request{
		method: http.MethodPatch,
		path:   collectionPath(databaseID, collectionID) + "/" + url.PathEscape(documentID),
		body:   map[string]any{"data": data},
		server: true,
	}, &doc)
	return doc, err
}

func (d *documents) Delete(ctx context.Context, databaseID, collectionID, documentID string) error {
	_, err := d.c.do(ctx, request{
		method: http.MethodDelete,
		path:   collectionPath(databaseID, collectionID) + "/" + url.PathEscape(documentID),
		server: true,
	}, nil)
	return err
}

type accounts struct {
	c *Client
}

func (a *accounts) Create(ctx context.Context, userID, email, password, name string) (*backend.User, error) {
	user := &backend.User{}
	if _, err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/account",
		body:   map[string]string{"userId": userID, "email": email, "password": password, "name": name},
	}, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *accounts) CreateEmailPasswordSession(ctx context.Context, email, password string) (*backend.Session, error) {
	session := &backend.Session{}
	resp, err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/account/sessions/email",
		body:   map[string]string{"email": email, "password": password},
	}, session)
	if err != nil {
		return nil, err
	}

	// Client-side sessions carry the secret in a cookie rather than the body.
	if session.Secret == "" {
		session.Secret = sessionCookie(resp)
	}
	if session.Secret == "" {
		return nil, fmt.Errorf("appwrite: session %s returned no secret", session.ID)
	}
	return session, nil
}

func sessionCookie(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if strings.HasPrefix(cookie.Name, sessionCookiePrefix) && !strings.HasSuffix(cookie.Name, "_legacy") {
			return cookie.Value
		}
	}
	return ""
}

func (a *accounts) Get(ctx context.Context, secret string) (*backend.User, error) {
	user := &backend.User{}
	if _, err := a.c.do(ctx, request{method: http.MethodGet, path: "/account", secret: secret}, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *accounts) DeleteSession(ctx context.Context, secret, sessionID string) error {
	_, err := a.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/account/sessions/" + url.PathEscape(sessionID),
		secret: secret,
	}, nil)
	return err
}

func (a *accounts) UpdateName(ctx context.Context, secret, name string) (*backend.User, error) {
	user := &backend.User{}
	if _, err := a.c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/account/name",
		body:   map[string]string{"name": name},
		secret: secret,
	}, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *accounts) CreateRecovery(ctx context.Context, email, recoveryURL string) (*backend.Token, error) {
	token := &backend.Token{}
	if _, err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/account/recovery",
		body:   map[string]string{"email": email, "url": recoveryURL},
	}, token); err != nil {
		return nil, err
	}
	return token, nil
}
