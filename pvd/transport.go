package pvd

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 5425
	DefaultPath = "/pvd"
)

// Handle kinds reported to a Tracker.
const (
	HandleTransport  = "transport"
	HandleVisualizer = "visualizer"
)

var (
	ErrNotConnected = errors.New("pvd: transport not connected")
	ErrReleased     = errors.New("pvd: transport released")
)

// Tracker receives lifetime notifications for transports and visualizers.
type Tracker interface {
	TrackHandle(kind string)
	UntrackHandle(kind string)
}

// Transport is a reference counted websocket connection to a visualizer
// receiver. The creator holds the first reference; a Visualizer holds one
// more while connected.
type Transport struct {
	host    string
	port    int
	path    string
	timeout time.Duration
	tracker Tracker

	mu   sync.Mutex
	conn *websocket.Conn

	refs     atomic.Int32
	released atomic.Bool
}

// NewSocketTransport creates an unconnected transport to host:port.
// tracker may be nil.
func NewSocketTransport(tracker Tracker, host string, port int, timeout time.Duration) *Transport {
	if host == "" {
		host = DefaultHost
	}
	if port <= 0 {
		port = DefaultPort
	}
	t := &Transport{
		host:    host,
		port:    port,
		path:    DefaultPath,
		timeout: timeout,
		tracker: tracker,
	}
	t.refs.Store(1)
	if tracker != nil {
		tracker.TrackHandle(HandleTransport)
	}
	return t
}

// URL returns the websocket endpoint the transport dials.
func (t *Transport) URL() string {
	if t == nil {
		return ""
	}
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(t.host, strconv.Itoa(t.port)),
		Path:   t.path,
	}
	return u.String()
}

// Connect dials the receiver. Connecting an already connected transport is a
// no-op.
func (t *Transport) Connect() error {
	if t == nil {
		return ErrReleased
	}
	if t.released.Load() {
		return ErrReleased
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		return nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: t.timeout}
	if t.timeout > 0 {
		dialer.NetDialContext = (&net.Dialer{Timeout: t.timeout}).DialContext
	}
	conn, _, err := dialer.Dial(t.URL(), nil)
	if err != nil {
		return fmt.Errorf("pvd: dial %s: %w", t.URL(), err)
	}
	t.conn = conn
	return nil
}

// IsConnected reports whether the transport holds a live connection.
func (t *Transport) IsConnected() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// WriteJSON writes one message. A write error drops the connection.
func (t *Transport) WriteJSON(v any) error {
	if t == nil {
		return ErrNotConnected
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	if t.timeout > 0 {
		_ = t.conn.SetWriteDeadline(time.Now().Add(t.timeout * 10))
	}
	if err := t.conn.WriteJSON(v); err != nil {
		_ = t.conn.Close()
		t.conn = nil
		return fmt.Errorf("pvd: write: %w", err)
	}
	return nil
}

// Disconnect closes the connection, if any.
func (t *Transport) Disconnect() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = t.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = t.conn.Close()
	t.conn = nil
}

func (t *Transport) retain() {
	if t == nil {
		return
	}
	t.refs.Add(1)
}

// RefCount returns the number of outstanding references.
func (t *Transport) RefCount() int {
	if t == nil {
		return 0
	}
	return int(t.refs.Load())
}

// Release drops one reference. The last release disconnects the transport.
func (t *Transport) Release() {
	if t == nil || t.released.Load() {
		return
	}
	if t.refs.Add(-1) > 0 {
		return
	}
	if !t.released.CompareAndSwap(false, true) {
		return
	}
	t.Disconnect()
	if t.tracker != nil {
		t.tracker.UntrackHandle(HandleTransport)
	}
}
