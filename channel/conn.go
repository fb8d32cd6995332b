// Package channel is the live connection to the settings server: a websocket
// client that delivers inbound text frames to one handler and writes outbound
// text from a queue, reconnecting on its own when configured to.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"
	"github.com/y7ut/settingsgrid/settings"
)

var (
	ErrClosed    = errors.New("channel: closed")
	ErrQueueFull = errors.New("channel: send queue full")
	ErrConnected = errors.New("channel: already connected")
)

// State is the connection state reported to OnState listeners.
type State int

const (
	Connecting State = iota
	Open
	Disconnected
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Disconnected:
		return "disconnected"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config controls dialing, keepalive and reconnection.
type Config struct {
	// Reconnect redials with exponential backoff between MinInterval and
	// MaxInterval whenever the connection drops. Without it the first failure
	// is final.
	Reconnect   bool
	MinInterval time.Duration
	MaxInterval time.Duration

	// PingPeriod is how often a ping is written; PongWait is how long the
	// connection may stay silent before it is considered dead.
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration

	QueueSize int
	Header    http.Header
	Dialer    *websocket.Dialer
}

func DefaultConfig() *Config {
	return &Config{
		Reconnect:   true,
		MinInterval: time.Second,
		MaxInterval: 30 * time.Second,
		PingPeriod:  30 * time.Second,
		PongWait:    60 * time.Second,
		WriteWait:   10 * time.Second,
		QueueSize:   64,
		Dialer:      websocket.DefaultDialer,
	}
}

// Conn implements settings.LiveChannel over gorilla/websocket.
type Conn struct {
	cfg      *Config
	dispatch settings.Dispatcher

	mu       sync.Mutex
	handler  func(text string) error
	onState  func(State)
	endpoint string
	started  bool
	err      error

	outbox chan string
	// unsent holds text taken off outbox whose write failed. It goes out
	// first on the next connection. Only the run goroutine touches it.
	unsent []string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an unconnected channel. Inbound messages and state changes are
// handed to dispatch; nil means settings.Inline.
func New(cfg *Config, dispatch settings.Dispatcher) *Conn {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if dispatch == nil {
		dispatch = settings.Inline
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Conn{
		cfg:      cfg,
		dispatch: dispatch,
		outbox:   make(chan string, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (c *Conn) OnMessage(handler func(text string) error) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// OnState registers a listener for connection state changes.
func (c *Conn) OnState(fn func(State)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// Endpoint returns the normalized address passed to Connect.
func (c *Conn) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// Connect validates endpoint and starts dialing it in the background, the way
// a browser websocket does: only a malformed address is reported here, dial
// failures show up as state changes and, without Reconnect, in Err.
func (c *Conn) Connect(endpoint string) error {
	address, err := NormalizeURL(endpoint)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrConnected
	}
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	c.started = true
	c.endpoint = address
	go c.run()
	return nil
}

// Done is closed once the channel has stopped for good: after Close, or after
// the connection failed with Reconnect off.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns the error that ended the last connection attempt, if any.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send queues text for writing. It never blocks; a full queue is an error.
func (c *Conn) Send(text string) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.outbox <- text:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close shuts the connection down and waits for the background loop.
func (c *Conn) Close() error {
	c.cancel()
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if started {
		<-c.done
	}
	return nil
}

func (c *Conn) dial() (*websocket.Conn, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.WriteWait+c.cfg.PongWait)
	defer cancel()
	ws, resp, err := c.cfg.Dialer.DialContext(ctx, c.Endpoint(), c.cfg.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial: %w", err)
	}
	return ws, nil
}

func (c *Conn) run() {
	defer close(c.done)
	defer c.setState(Closed)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.MinInterval
	b.MaxInterval = c.cfg.MaxInterval

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if !c.cfg.Reconnect {
				return
			}
			c.setState(Disconnected)
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(b.NextBackOff()):
			}
		}

		c.setState(Connecting)
		ws, err := c.dial()
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.fail(err)
			continue
		}
		b.Reset()
		log.Printf("channel: connected to %s", c.Endpoint())
		c.setState(Open)

		err = c.serve(ws)
		if c.ctx.Err() != nil {
			return
		}
		c.fail(err)
	}
}

func (c *Conn) fail(err error) {
	log.Printf("channel: %s: %v", c.Endpoint(), err)
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// serve pumps one connection until it fails or the channel is closed. All
// writes happen here; reads happen in a helper goroutine.
func (c *Conn) serve(ws *websocket.Conn) error {
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	readErr := make(chan error, 1)
	go func() {
		for {
			kind, data, err := ws.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
			if kind != websocket.TextMessage {
				continue
			}
			c.deliver(string(data))
		}
	}()

	for len(c.unsent) > 0 {
		if err := c.write(ws, c.unsent[0]); err != nil {
			return err
		}
		c.unsent = c.unsent[1:]
	}

	ping := time.NewTicker(c.cfg.PingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-c.ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteWait))
			return c.ctx.Err()
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("closed by server: %w", err)
			}
			return err
		case text := <-c.outbox:
			if err := c.write(ws, text); err != nil {
				c.unsent = append(c.unsent, text)
				return err
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

func (c *Conn) write(ws *websocket.Conn, text string) error {
	ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
	if err := ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Conn) deliver(text string) {
	c.mu.Lock()
	handler := c.handler
	endpoint := c.endpoint
	c.mu.Unlock()
	if handler == nil {
		return
	}
	c.dispatch(func() {
		if err := handler(text); err != nil {
			log.Printf("channel: %s: inbound message dropped: %v", endpoint, err)
		}
	})
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn == nil {
		return
	}
	c.dispatch(func() { fn(s) })
}

var _ settings.LiveChannel = (*Conn)(nil)
