package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"profile-directory/core/backend"

	"go.uber.org/zap"
)

// ErrNoSession is returned by operations that need a logged-in user.
var ErrNoSession = errors.New("session: no user is logged in")

// Context holds the authenticated user of the process.
//
// It starts in the loading state until Load runs. Features receive it
// explicitly and read the user and secret through its accessors.
type Context struct {
	accounts backend.Accounts
	binder   backend.SessionBinder
	logger   *zap.Logger

	mu       sync.RWMutex
	user     *backend.User
	secret   string
	loading  bool
	watchers []func(*backend.User)
}

// New creates a context in the loading state. binder may be nil.
func New(accounts backend.Accounts, binder backend.SessionBinder, logger *zap.Logger) *Context {
	return &Context{
		accounts: accounts,
		binder:   binder,
		logger:   logger,
		loading:  true,
	}
}

// Load restores the user of secret and leaves the loading state.
// On failure or an empty secret the context has no user.
func (c *Context) Load(ctx context.Context, secret string) error {
	if secret == "" {
		c.set(nil, "")
		return nil
	}

	user, err := c.accounts.Get(ctx, secret)
	if err != nil {
		c.set(nil, "")
		c.logger.Warn("Could not restore session", zap.Error(err))
		return fmt.Errorf("session: restore: %w", err)
	}

	c.set(user, secret)
	c.logger.Info("Session restored", zap.String("user_id", user.ID))
	return nil
}

// SignUp creates an account and logs into it.
func (c *Context) SignUp(ctx context.Context, email, password, name string) (*backend.User, error) {
	if _, err := c.accounts.Create(ctx, backend.NewID(), email, password, name); err != nil {
		return nil, err
	}
	return c.SignIn(ctx, email, password)
}

// SignIn creates an email/password session and loads its account.
func (c *Context) SignIn(ctx context.Context, email, password string) (*backend.User, error) {
	session, err := c.accounts.CreateEmailPasswordSession(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := c.accounts.Get(ctx, session.Secret)
	if err != nil {
		return nil, err
	}

	c.set(user, session.Secret)
	c.logger.Info("User signed in", zap.String("user_id", user.ID))
	return copyUser(user), nil
}

// Logout deletes the current session and clears the user.
// The user is kept if the backend rejects the deletion.
func (c *Context) Logout(ctx context.Context) error {
	secret := c.Secret()
	if secret == "" {
		return ErrNoSession
	}

	if err := c.accounts.DeleteSession(ctx, secret, backend.CurrentSession); err != nil {
		return err
	}

	c.set(nil, "")
	c.logger.Info("User signed out")
	return nil
}

// UpdateName changes the display name of the logged-in user.
func (c *Context) UpdateName(ctx context.Context, name string) (*backend.User, error) {
	secret := c.Secret()
	if secret == "" {
		return nil, ErrNoSession
	}

	user, err := c.accounts.UpdateName(ctx, secret, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.secret == secret {
		c.user = user
	}
	c.mu.Unlock()
	return copyUser(user), nil
}

// User returns a copy of the logged-in user, or nil.
func (c *Context) User() *backend.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyUser(c.user)
}

// Secret returns the session secret, or "" without a user.
func (c *Context) Secret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secret
}

// IsLoading reports whether Load has not completed yet.
func (c *Context) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Watch registers fn to be called with the new user (or nil) whenever the
// session changes through Load, SignIn, SignUp or Logout.
func (c *Context) Watch(fn func(*backend.User)) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

// Require returns the logged-in user or ErrNoSession.
func (c *Context) Require() (*backend.User, error) {
	if user := c.User(); user != nil {
		return user, nil
	}
	return nil, ErrNoSession
}

func (c *Context) set(user *backend.User, secret string) {
	c.mu.Lock()
	c.user = user
	c.secret = secret
	c.loading = false
	watchers := append([]func(*backend.User){}, c.watchers...)
	c.mu.Unlock()

	if c.binder != nil {
		c.binder.BindSession(secret)
	}
	for _, fn := range watchers {
		fn(copyUser(user))
	}
}

func copyUser(u *backend.User) *backend.User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}
