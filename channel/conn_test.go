package channel

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settingsServer behaves like the settings store: it pushes the table on
// accept and after every message it receives.
type settingsServer struct {
	*httptest.Server
	mu       sync.Mutex
	table    string
	received chan string
	accepts  atomic.Int32
	// dropFirst closes the first connection right after the initial push.
	dropFirst bool
}

func newSettingsServer(t *testing.T, table string, dropFirst bool) *settingsServer {
	t.Helper()
	s := &settingsServer{table: table, received: make(chan string, 16), dropFirst: dropFirst}
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		n := s.accepts.Add(1)
		if err := ws.WriteMessage(websocket.TextMessage, []byte(s.current())); err != nil {
			return
		}
		if s.dropFirst && n == 1 {
			return
		}
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			s.received <- string(data)
			if err := ws.WriteMessage(websocket.TextMessage, []byte(s.current())); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *settingsServer) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

func (s *settingsServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.MinInterval = 10 * time.Millisecond
	cfg.MaxInterval = 50 * time.Millisecond
	cfg.PingPeriod = time.Second
	cfg.PongWait = 2 * time.Second
	cfg.WriteWait = time.Second
	return cfg
}

func waitText(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestConnReceivesAndSends(t *testing.T) {
	srv := newSettingsServer(t, `[{"key":"a","value":"1"}]`, false)

	inbound := make(chan string, 4)
	c := New(testConfig(), nil)
	c.OnMessage(func(text string) error {
		inbound <- text
		return nil
	})
	require.NoError(t, c.Connect(srv.URL))
	defer c.Close()

	assert.Equal(t, srv.wsURL(), c.Endpoint())
	assert.Equal(t, `[{"key":"a","value":"1"}]`, waitText(t, inbound))

	require.NoError(t, c.Send(`{"cmd":"put","data":[]}`))
	assert.Equal(t, `{"cmd":"put","data":[]}`, waitText(t, srv.received))
	assert.Equal(t, `[{"key":"a","value":"1"}]`, waitText(t, inbound))
}

func TestConnReconnects(t *testing.T) {
	srv := newSettingsServer(t, `[]`, true)

	var states []State
	var mu sync.Mutex
	inbound := make(chan string, 4)
	c := New(testConfig(), nil)
	c.OnState(func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	c.OnMessage(func(text string) error {
		inbound <- text
		return nil
	})
	require.NoError(t, c.Connect(srv.URL))

	waitText(t, inbound)
	waitText(t, inbound)
	assert.EqualValues(t, 2, srv.accepts.Load())

	require.NoError(t, c.Close())
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, Disconnected)
	assert.Equal(t, Closed, states[len(states)-1])
}

func TestConnNoReconnectGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := testConfig()
	cfg.Reconnect = false
	c := New(cfg, nil)
	require.NoError(t, c.Connect(srv.URL))
	select {
	case <-c.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("channel did not give up")
	}
	assert.Error(t, c.Err())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect(srv.URL), ErrConnected)
}

func TestConnSendAfterClose(t *testing.T) {
	c := New(testConfig(), nil)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Send("x"), ErrClosed)
	assert.ErrorIs(t, c.Connect("ws://localhost:1"), ErrClosed)
	assert.Error(t, New(nil, nil).Connect("localhost:1"))
}

func TestConnQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 1
	c := New(cfg, nil)
	defer c.Close()
	require.NoError(t, c.Send("a"))
	assert.ErrorIs(t, c.Send("b"), ErrQueueFull)
}

func TestConnDispatcher(t *testing.T) {
	srv := newSettingsServer(t, `[]`, false)

	var dispatched atomic.Int32
	inbound := make(chan string, 1)
	c := New(testConfig(), func(fn func()) {
		dispatched.Add(1)
		fn()
	})
	c.OnMessage(func(text string) error {
		inbound <- text
		return nil
	})
	require.NoError(t, c.Connect(srv.URL))
	defer c.Close()

	waitText(t, inbound)
	assert.Positive(t, dispatched.Load())
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "http://localhost:8000/settings", want: "ws://localhost:8000/settings"},
		{in: "https://example.com/settings/", want: "wss://example.com/settings"},
		{in: "ws://example.com/am_settings", want: "ws://example.com/am_settings"},
		{in: "ftp://example.com", wantErr: true},
		{in: "ws:///nohost", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// flakyConn fails every write once broken is set.
type flakyConn struct {
	net.Conn
	broken *atomic.Bool
}

func (f *flakyConn) Write(b []byte) (int, error) {
	if f.broken.Load() {
		return 0, errors.New("link down")
	}
	return f.Conn.Write(b)
}

func TestConnResendsFailedWrite(t *testing.T) {
	srv := newSettingsServer(t, `[]`, false)

	var broken atomic.Bool
	var dials atomic.Int32
	cfg := testConfig()
	cfg.PingPeriod = time.Minute
	cfg.Dialer = &websocket.Dialer{
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil || dials.Add(1) > 1 {
				return conn, err
			}
			return &flakyConn{Conn: conn, broken: &broken}, nil
		},
	}

	inbound := make(chan string, 8)
	c := New(cfg, nil)
	c.OnMessage(func(text string) error {
		inbound <- text
		return nil
	})
	require.NoError(t, c.Connect(srv.URL))
	defer c.Close()
	assert.Equal(t, `[]`, waitText(t, inbound))

	broken.Store(true)
	require.NoError(t, c.Send(`{"cmd":"put","data":[]}`))

	assert.Equal(t, `{"cmd":"put","data":[]}`, waitText(t, srv.received))
	assert.EqualValues(t, 2, dials.Load())
	assert.EqualValues(t, 2, srv.accepts.Load())
}
