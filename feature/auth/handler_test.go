package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"profile-directory/core/backend"
	"profile-directory/core/backend/mocks"
	"profile-directory/core/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ann = &backend.User{ID: "u1", Name: "Ann", Email: "ann@example.com"}

func newTestApp(accounts *mocks.Accounts) (*fiber.App, *session.Context) {
	sess := session.New(accounts, nil, zap.NewNop())
	app := fiber.New()
	_ = NewFeature(sess, zap.NewNop()).Load(app)
	app.Get("/guarded", RequireUser(sess), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app, sess
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp.StatusCode, out
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"known code", backend.NewError(409, backend.TypeUserAlreadyExists, "raw"), 409, "A user with this email already exists."},
		{"other backend error", backend.NewError(400, "general_argument_invalid", "Password too short"), 400, "Password too short"},
		{"non backend error", assert.AnError, 500, "An unknown error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := describeError(tt.err, http.StatusConflict, "A user with this email already exists.")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestHandleSignUp(t *testing.T) {
	accounts := new(mocks.Accounts)
	accounts.On("Create", mock.Anything, mock.Anything, "taken@example.com", "password1", "T").
		Return(nil, backend.NewError(409, backend.TypeUserAlreadyExists, "exists"))
	accounts.On("Create", mock.Anything, mock.Anything, "ann@example.com", "password1", "Ann").Return(ann, nil)
	accounts.On("CreateEmailPasswordSession", mock.Anything, "ann@example.com", "password1").Return(&backend.Session{ID: "s1", Secret: "sec"}, nil)
	accounts.On("Get", mock.Anything, "sec").Return(ann, nil)
	app, sess := newTestApp(accounts)

	status, body := post(t, app, "/auth/signup", `{"name":"T","email":"taken@example.com","password":"password1"}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "A user with this email already exists.", body["error"])

	status, body = post(t, app, "/auth/signup", `{"name":"Ann","email":"ann@example.com","password":"password1"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Account created successfully!", body["message"])
	assert.Equal(t, "u1", sess.User().ID)

	status, _ = post(t, app, "/auth/signup", `{"email":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleSignIn(t *testing.T) {
	accounts := new(mocks.Accounts)
	accounts.On("CreateEmailPasswordSession", mock.Anything, "ann@example.com", "wrong").
		Return(nil, backend.NewError(401, backend.TypeInvalidCredentials, "Invalid credentials"))
	accounts.On("CreateEmailPasswordSession", mock.Anything, "down@example.com", "pw").Return(nil, assert.AnError)
	accounts.On("CreateEmailPasswordSession", mock.Anything, "ann@example.com", "password1").Return(&backend.Session{ID: "s1", Secret: "sec"}, nil)
	accounts.On("Get", mock.Anything, "sec").Return(ann, nil)
	app, _ := newTestApp(accounts)

	status, body := post(t, app, "/auth/signin", `{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password.", body["error"])

	status, body = post(t, app, "/auth/signin", `{"email":"down@example.com","password":"pw"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "An unknown error occurred", body["error"])

	status, body = post(t, app, "/auth/signin", `{"email":"ann@example.com","password":"password1"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ann@example.com", body["email"])
}

func TestGuardAndLogout(t *testing.T) {
	accounts := new(mocks.Accounts)
	accounts.On("Get", mock.Anything, "sec").Return(ann, nil)
	accounts.On("DeleteSession", mock.Anything, "sec", backend.CurrentSession).Return(nil)
	app, sess := newTestApp(accounts)

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode, "session still loading")

	require.NoError(t, sess.Load(context.Background(), "sec"))
	resp, err = app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/auth/me", nil))
	require.NoError(t, err)
	var me Me
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, ann, me.User)
	assert.False(t, me.Loading)

	status, _ := post(t, app, "/auth/logout", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	resp, err = app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	status, _ = post(t, app, "/auth/logout", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
