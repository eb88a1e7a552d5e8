// Package netlink owns the websocket connection to the match server. It
// decodes inbound frames for a Handler and sends intent frames while the
// connection is open.
package netlink

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"airhockey/rink"
	"airhockey/wire"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Conn is the subset of *websocket.Conn used by the manager. One goroutine
// reads and one goroutine writes; WriteControl and Close may be called from
// any goroutine.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

const (
	// writeWait bounds every write, including the closing handshake.
	writeWait = 10 * time.Second
	// pongWait is how long the peer may stay silent before the connection
	// is considered dead.
	pongWait = 60 * time.Second
)

// Dialer opens connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials real websocket servers.
type WebsocketDialer struct {
	HandshakeTimeout time.Duration
}

func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	wd := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
	}
	c, _, err := wd.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Handler receives decoded frames on the connection's reader goroutine.
// Implementations must not block.
type Handler interface {
	HandleSnapshot(rink.Snapshot)
	HandleControl(wire.Frame)
}

// Config controls a Manager.
type Config struct {
	URL    string
	Dialer Dialer

	Reconnect  bool
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// QueueSize bounds intents waiting for the writer.
	QueueSize int

	WriteWait time.Duration
	PongWait  time.Duration
	// PingPeriod must be shorter than PongWait. Defaults to 9/10 of it.
	PingPeriod time.Duration

	// Tap, if set, sees every inbound frame before decoding.
	Tap func([]byte)
	// OnStatus, if set, is called after every status change from the
	// goroutine that caused it.
	OnStatus func(Status)
	Logf     func(format string, v ...any)
}

// Stats counts traffic over the manager's lifetime.
type Stats struct {
	FramesIn       uint64
	BytesIn        uint64
	Snapshots      uint64
	Malformed      uint64
	IntentsSent    uint64
	IntentsDropped uint64
	BytesOut       uint64
}

// Manager maintains one connection at a time to Config.URL.
type Manager struct {
	cfg  Config
	h    Handler
	warn *rate.Limiter

	mu     sync.Mutex
	status Status
	out    chan []byte
	cancel context.CancelFunc
	done   chan struct{}
	closed bool

	framesIn, bytesIn, snapshots, malformed atomic.Uint64
	sent, dropped, bytesOut                 atomic.Uint64
}

// New returns an idle manager. Start begins connecting.
func New(cfg Config, h Handler) *Manager {
	if cfg.Dialer == nil {
		cfg.Dialer = WebsocketDialer{HandshakeTimeout: 10 * time.Second}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 8
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = cfg.MinBackoff
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = writeWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = pongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.Logf == nil {
		cfg.Logf = func(format string, v ...any) { log.Printf("netlink: "+format, v...) }
	}
	return &Manager{
		cfg:    cfg,
		h:      h,
		warn:   rate.NewLimiter(rate.Every(5*time.Second), 3),
		status: Status{State: Idle, Since: time.Now()},
	}
}

// URL returns the configured endpoint.
func (m *Manager) URL() string { return m.cfg.URL }

// Start connects in the background. It has no effect after the first call
// or after Close.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.done != nil || m.closed {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		m.run(ctx)
	}()
}

// Close tears the connection down and waits for its goroutines. The socket
// is closed exactly once; no intent is written after Close is called.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.out = nil
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel == nil {
		m.setStatus(Status{State: Closed})
		return nil
	}
	cancel()
	<-done
	return nil
}

// Done is closed when the connection goroutine exits. It is nil before Start.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Stats returns the traffic counters.
func (m *Manager) Stats() Stats {
	return Stats{
		FramesIn:       m.framesIn.Load(),
		BytesIn:        m.bytesIn.Load(),
		Snapshots:      m.snapshots.Load(),
		Malformed:      m.malformed.Load(),
		IntentsSent:    m.sent.Load(),
		IntentsDropped: m.dropped.Load(),
		BytesOut:       m.bytesOut.Load(),
	}
}

// SendIntent queues i for transmission when the connection is open and
// reports whether it was queued. Otherwise the intent is dropped; the next
// tick sends a fresh one.
func (m *Manager) SendIntent(i rink.Intent) bool {
	m.mu.Lock()
	out := m.out
	open := m.status.State == Open && !m.closed
	m.mu.Unlock()
	if !open || out == nil {
		return false
	}
	b, err := wire.EncodeIntent(i)
	if err != nil {
		m.cfg.Logf("encode intent: %v", err)
		return false
	}
	select {
	case out <- b:
		return true
	default:
		m.dropped.Add(1)
		return false
	}
}

func (m *Manager) setStatus(s Status) {
	if s.Since.IsZero() {
		s.Since = time.Now()
	}
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
	if m.cfg.OnStatus != nil {
		m.cfg.OnStatus(s)
	}
}

func (m *Manager) run(ctx context.Context) {
	failures := 0
	for {
		m.setStatus(Status{State: Connecting, Attempt: failures})
		conn, err := m.cfg.Dialer.Dial(ctx, m.cfg.URL)
		if ctx.Err() != nil {
			if conn != nil {
				conn.Close()
			}
			m.setStatus(Status{State: Closed})
			return
		}

		var end Status
		if err != nil {
			m.cfg.Logf("dial %s: %v", m.cfg.URL, err)
			failures++
			end = Status{State: Errored, Err: err, Attempt: failures}
		} else {
			failures = 0
			err = m.serve(ctx, conn)
			if ctx.Err() != nil {
				m.setStatus(Status{State: Closed})
				return
			}
			end = Status{State: Closed, Err: err}
			if err != nil && !isCloseError(err) {
				end.State = Errored
			}
			m.cfg.Logf("connection to %s ended: %v", m.cfg.URL, err)
			failures++
		}

		if !m.cfg.Reconnect {
			m.setStatus(end)
			return
		}
		wait := Backoff(failures-1, m.cfg.MinBackoff, m.cfg.MaxBackoff)
		end.RetryIn = wait
		m.setStatus(end)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			m.setStatus(Status{State: Closed})
			return
		case <-t.C:
		}
	}
}

func (m *Manager) serve(ctx context.Context, conn Conn) error {
	out := make(chan []byte, m.cfg.QueueSize)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return context.Canceled
	}
	m.out = out
	m.mu.Unlock()
	m.setStatus(Status{State: Open})
	m.cfg.Logf("connected to %s", m.cfg.URL)

	defer func() {
		m.mu.Lock()
		if m.out == out {
			m.out = nil
		}
		m.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(ctx)

	// The socket is closed as soon as either pump stops or ctx is
	// cancelled, so a write stuck on a dead peer is released without the
	// writer's cooperation. Wait cancels gctx, so this always runs.
	closed := make(chan struct{})
	context.AfterFunc(gctx, func() {
		defer close(closed)
		if ctx.Err() != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(m.cfg.WriteWait)); err != nil {
				m.cfg.Logf("close frame: %v", err)
			}
		}
		conn.Close()
	})

	g.Go(func() error {
		extend := func() error { return conn.SetReadDeadline(time.Now().Add(m.cfg.PongWait)) }
		if err := extend(); err != nil {
			return err
		}
		conn.SetPongHandler(func(string) error { return extend() })
		for {
			typ, data, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			if err := extend(); err != nil {
				return err
			}
			m.receive(typ, data)
		}
	})
	g.Go(func() error {
		ping := time.NewTicker(m.cfg.PingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(m.cfg.WriteWait)); err != nil {
					return err
				}
			case b := <-out:
				if gctx.Err() != nil {
					return nil
				}
				if err := conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteWait)); err != nil {
					return err
				}
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return err
				}
				m.sent.Add(1)
				m.bytesOut.Add(uint64(len(b)))
			}
		}
	})
	err := g.Wait()
	<-closed
	return err
}

func (m *Manager) receive(typ int, data []byte) {
	m.framesIn.Add(1)
	m.bytesIn.Add(uint64(len(data)))
	if m.cfg.Tap != nil {
		m.cfg.Tap(data)
	}
	if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
		return
	}
	f, err := wire.DecodeFrame(data)
	if err != nil {
		m.malformed.Add(1)
		if m.warn.Allow() {
			m.cfg.Logf("dropping frame: %v", err)
		}
		return
	}
	if m.h == nil {
		return
	}
	switch f.Kind {
	case wire.FrameSnapshot:
		m.snapshots.Add(1)
		m.h.HandleSnapshot(f.Snapshot)
	default:
		m.h.HandleControl(f)
	}
}

func isCloseError(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce)
}
