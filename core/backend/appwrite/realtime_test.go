package appwrite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"profile-directory/core/backend"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRealtimeURL(t *testing.T) {
	c, err := New(Config{Endpoint: "https://cloud.appwrite.io/v1", Project: "proj"}, zap.NewNop())
	require.NoError(t, err)

	got := c.realtimeURL([]string{backend.DocumentsChannel("db", "col")})
	assert.Equal(t, "wss://cloud.appwrite.io/v1/realtime?channels%5B%5D=databases.db.collections.col.documents&project=proj", got)
}

// realtimeServer upgrades one connection and hands it to serve.
func realtimeServer(t *testing.T, serve func(*websocket.Conn)) *Client {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/realtime", r.URL.Path)
		assert.Equal(t, "proj", r.URL.Query().Get("project"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{Endpoint: srv.URL + "/v1", Project: "proj", TimeoutSeconds: 5}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestRealtime_DeliversEventsAndReportsLoss(t *testing.T) {
	auth := make(chan frame, 1)
	c := realtimeServer(t, func(conn *websocket.Conn) {
		var f frame
		if err := conn.ReadJSON(&f); err == nil {
			auth <- f
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected","data":{"channels":["x"]}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"event","data":{"events":["databases.db.collections.col.documents.a.update"],"channels":["x"],"timestamp":"t","payload":{"$id":"a","isPublic":true}}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"event","data":{"payload":{"$id":"b","isPublic":false}}}`))
	})
	c.BindSession("secret")

	events := make(chan backend.Event, 2)
	lost := make(chan error, 2)
	sub, err := c.Backend().Realtime.Subscribe(context.Background(), []string{"x"}, backend.Handler{
		OnEvent: func(ev backend.Event) { events <- ev },
		OnLost:  func(err error) { lost <- err },
	})
	require.NoError(t, err)
	defer sub.Close()

	select {
	case f := <-auth:
		assert.Equal(t, "authentication", f.Type)
		assert.JSONEq(t, `{"session":"secret"}`, string(f.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("no authentication frame")
	}

	first := <-events
	assert.JSONEq(t, `{"$id":"a","isPublic":true}`, string(first.Payload))
	assert.Equal(t, []string{"x"}, first.Channels)
	second := <-events
	assert.JSONEq(t, `{"$id":"b","isPublic":false}`, string(second.Payload))

	// The server handler returns and closes the connection.
	select {
	case err := <-lost:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription loss not reported")
	}
	assert.Len(t, lost, 0)
}

func TestRealtime_CloseIsIdempotentAndSilent(t *testing.T) {
	release := make(chan struct{})
	c := realtimeServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
		<-release
	})
	defer close(release)

	var lostCalls atomic.Int32
	sub, err := c.Backend().Realtime.Subscribe(context.Background(), []string{"x"}, backend.Handler{
		OnEvent: func(backend.Event) {},
		OnLost:  func(error) { lostCalls.Add(1) },
	})
	require.NoError(t, err)

	_ = sub.Close()
	assert.NotPanics(t, func() { _ = sub.Close() })
	assert.Equal(t, int32(0), lostCalls.Load())
}

func TestRealtime_RequiresChannels(t *testing.T) {
	c, err := New(Config{Endpoint: "http://localhost:1/v1", Project: "proj"}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Backend().Realtime.Subscribe(context.Background(), nil, backend.Handler{})
	assert.Error(t, err)
}

func TestRealtime_DialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL + "/v1", Project: "proj"}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Backend().Realtime.Subscribe(context.Background(), []string{"x"}, backend.Handler{})
	require.Error(t, err)
	assert.True(t, backend.IsCode(err, http.StatusForbidden))
}
