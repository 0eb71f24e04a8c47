package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"profile-directory/core/backend"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingInterval = 20 * time.Second
	writeTimeout = 10 * time.Second
)

// frame is the envelope of every realtime message in both directions.
type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type frameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type realtime struct {
	c *Client
}

// realtimeURL converts the REST endpoint into the websocket endpoint.
func (c *Client) realtimeURL(channels []string) string {
	u := *c.endpoint
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = c.endpoint.Path + "/realtime"

	values := url.Values{}
	values.Set("project", c.project)
	for _, channel := range channels {
		values.Add("channels[]", channel)
	}
	u.RawQuery = values.Encode()
	return u.String()
}

// Subscribe dials the realtime endpoint. ctx bounds the handshake only; the
// subscription lives until Close or a read failure.
func (r *realtime) Subscribe(ctx context.Context, channels []string, handler backend.Handler) (backend.Subscription, error) {
	if len(channels) == 0 {
		return nil, errors.New("appwrite: at least one channel is required")
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: r.c.timeout,
	}

	header := http.Header{}
	header.Set("Origin", r.c.endpoint.Scheme+"://"+r.c.endpoint.Host)

	conn, resp, err := dialer.DialContext(ctx, r.c.realtimeURL(channels), header)
	if err != nil {
		if resp != nil {
			return nil, backend.NewError(resp.StatusCode, "", fmt.Sprintf("realtime handshake failed: %v", err))
		}
		return nil, fmt.Errorf("appwrite: realtime dial: %w", err)
	}

	sub := &subscription{
		conn:    conn,
		handler: handler,
		logger:  r.c.logger.With(zap.Strings("channels", channels)),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if secret := r.c.boundSession(); secret != "" {
		data, _ := json.Marshal(map[string]string{"session": secret})
		if err := sub.write(frame{Type: "authentication", Data: data}); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("appwrite: realtime authentication: %w", err)
		}
	}

	go sub.read()
	go sub.heartbeat()

	sub.logger.Info("Realtime subscription opened")
	return sub, nil
}

type subscription struct {
	conn    *websocket.Conn
	handler backend.Handler
	logger  *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func (s *subscription) write(f frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(f)
}

func (s *subscription) heartbeat() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.write(frame{Type: "ping"}); err != nil {
				s.logger.Debug("Realtime ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (s *subscription) read() {
	defer close(s.done)
	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if s.closing() {
				return
			}
			if s.handler.OnLost != nil {
				s.handler.OnLost(fmt.Errorf("appwrite: realtime read: %w", err))
			}
			return
		}
		if s.closing() {
			return
		}

		switch f.Type {
		case "event":
			var ev backend.Event
			if err := json.Unmarshal(f.Data, &ev); err != nil {
				s.logger.Warn("Discarding malformed realtime event", zap.Error(err))
				continue
			}
			if s.handler.OnEvent != nil {
				s.handler.OnEvent(ev)
			}
		case "error":
			var fe frameError
			_ = json.Unmarshal(f.Data, &fe)
			s.logger.Warn("Realtime error frame", zap.Int("code", fe.Code), zap.String("message", fe.Message))
		case "connected", "response":
			s.logger.Debug("Realtime frame", zap.String("type", f.Type))
		}
	}
}

func (s *subscription) closing() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Close stops the heartbeat, closes the connection and waits for the reader.
func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)

		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()

		err = s.conn.Close()
		<-s.done
		s.logger.Info("Realtime subscription closed")
	})
	return err
}
