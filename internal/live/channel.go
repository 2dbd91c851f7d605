// Package live maintains the persistent WebSocket to the machine counter
// endpoint and redials it whenever it drops.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ammonit/internal/metrics"
	"ammonit/internal/telemetry"

	"github.com/gorilla/websocket"
)

// DefaultHandshakeTimeout bounds a single dial.
const DefaultHandshakeTimeout = 10 * time.Second

// ErrNotConnected is returned by Send while no connection is open.
var ErrNotConnected = errors.New("live: not connected")

// Option configures a Channel.
type Option func(*Channel)

// WithPolicy replaces the default FixedDelay(DefaultReconnectDelay).
func WithPolicy(p ReconnectPolicy) Option {
	return func(c *Channel) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithStateObserver is called on every state transition, from the
// channel's goroutine (or from Close for the final state).
func WithStateObserver(fn func(State)) Option {
	return func(c *Channel) { c.observer = fn }
}

// WithMetrics records dials, frames and the current state.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Channel) { c.metrics = m }
}

// WithHandshakeTimeout bounds each dial.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.dialer.HandshakeTimeout = d
		}
	}
}

// WithHeader adds headers to the handshake request, e.g. Authorization.
func WithHeader(h http.Header) Option {
	return func(c *Channel) { c.header = h }
}

// Channel is a self-healing subscription to a counter WebSocket. The
// subscriber callback runs on the channel's goroutine in frame order.
type Channel struct {
	url      string
	onUpdate func(CounterMessage)
	policy   ReconnectPolicy
	observer func(State)
	metrics  *metrics.Metrics
	dialer   websocket.Dialer
	header   http.Header

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	conn    *websocket.Conn
	gen     uint64
	state   State
	closing bool
	// inCallback is set while the loop runs the subscriber or observer.
	inCallback bool

	writeMu sync.Mutex
}

// Dial starts the channel. It returns immediately; the first connection is
// attempted in the background and every unexpected close is followed by a
// new attempt after the policy's delay, until Close is called.
func Dial(url string, onUpdate func(CounterMessage), opts ...Option) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		url:      url,
		onUpdate: onUpdate,
		policy:   FixedDelay(DefaultReconnectDelay),
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  Connecting,
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.run()
	return c
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send writes v as one JSON text frame on the open connection.
func (c *Channel) Send(v any) error {
	c.mu.Lock()
	conn := c.conn
	closing := c.closing
	c.mu.Unlock()
	if conn == nil || closing {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		return fmt.Errorf("live: send: %w", err)
	}
	return nil
}

// Close stops the channel for good. It closes the open connection, cancels
// a pending reconnect and waits for the background goroutine to exit, so
// no callback or dial happens after it returns. Repeated calls are no-ops.
//
// Close may be called from the subscriber or the state observer. It then
// returns without waiting; the callback in progress is the last one.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	conn := c.conn
	inCallback := c.inCallback
	c.mu.Unlock()

	c.cancel()
	if conn != nil {
		c.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		conn.Close()
	}
	if !inCallback {
		<-c.done
	}

	c.setState(ClosedIntentional)
	telemetry.LogDebug("Live channel closed", "url", c.url)
	return nil
}

func (c *Channel) run() {
	defer close(c.done)

	attempt := 0
	for {
		if !c.setState(Connecting) {
			return
		}

		conn, gen, err := c.connect()
		c.metrics.LiveConnect(err)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			telemetry.LogWarn("Live channel dial failed", "url", c.url, "error", err)
		} else {
			attempt = 0
			c.setState(Open)
			telemetry.LogInfo("Live channel connected", "url", c.url, "generation", gen)

			err = c.read(conn, gen)
			if !c.release(gen) {
				return
			}
			telemetry.LogWarn("Live channel closed unexpectedly", "url", c.url, "generation", gen, "error", err)
		}

		if !c.setState(ClosedUnexpected) {
			return
		}
		attempt++
		if !c.wait(c.policy.Delay(attempt)) {
			return
		}
	}
}

// connect dials once and installs the connection as the current
// generation. The connection is discarded if Close raced the dial.
func (c *Channel) connect() (*websocket.Conn, uint64, error) {
	conn, resp, err := c.dialer.DialContext(c.ctx, c.url, c.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		conn.Close()
		return nil, 0, context.Canceled
	}
	c.gen++
	c.conn = conn
	return conn, c.gen, nil
}

// release detaches generation gen after its read loop ended. It reports
// whether the close should lead to a reconnect: only the current
// generation of a channel that is not closing may do that.
func (c *Channel) release(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return !c.closing
}

func (c *Channel) read(conn *websocket.Conn, gen uint64) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		msg, err := decode(data)
		if err != nil {
			c.metrics.LiveFrame(false)
			telemetry.LogWarn("Dropping malformed live frame", "url", c.url, "error", err, "frame", string(data))
			continue
		}

		if !c.enterCallback(gen) {
			return nil
		}
		c.metrics.LiveFrame(true)
		if c.onUpdate != nil {
			c.onUpdate(msg)
		}
		c.leaveCallback()
	}
}

func decode(data []byte) (CounterMessage, error) {
	var raw struct {
		Counter *int `json:"counter"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return CounterMessage{}, err
	}
	if raw.Counter == nil {
		return CounterMessage{}, errors.New("missing counter field")
	}
	return CounterMessage{Counter: *raw.Counter}, nil
}

// enterCallback marks the loop as running a callback for generation gen.
// It refuses once the channel is closing or gen is stale.
func (c *Channel) enterCallback(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing || gen != c.gen {
		return false
	}
	c.inCallback = true
	return true
}

func (c *Channel) leaveCallback() {
	c.mu.Lock()
	c.inCallback = false
	c.mu.Unlock()
}

func (c *Channel) wait(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// setState records s and notifies the observer. Once the channel is
// closing only ClosedIntentional is accepted; it returns false otherwise.
func (c *Channel) setState(s State) bool {
	c.mu.Lock()
	if c.closing && s != ClosedIntentional {
		c.mu.Unlock()
		return false
	}
	if c.state == s {
		c.mu.Unlock()
		return true
	}
	c.state = s
	// Every state but ClosedIntentional is set by the loop.
	fromLoop := s != ClosedIntentional
	if fromLoop {
		c.inCallback = true
	}
	c.mu.Unlock()

	c.metrics.SetLiveState(int(s))
	if c.observer != nil {
		c.observer(s)
	}
	if fromLoop {
		c.leaveCallback()
	}
	return true
}
