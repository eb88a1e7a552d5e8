package main

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"airhockey/netlink"
	"airhockey/rink"
	"airhockey/wire"

	"github.com/gorilla/websocket"
)

const fakeTick = time.Second / 60

// fakeDialer runs a local stand-in for the match server. The local player
// moves by each received intent scaled by DeltaScale and the ball bounces
// around the field.
type fakeDialer struct {
	tick time.Duration
	side rink.Side
}

func (d fakeDialer) Dial(ctx context.Context, url string) (netlink.Conn, error) {
	tick := d.tick
	if tick <= 0 {
		tick = fakeTick
	}
	side := d.side
	if !side.Valid() {
		side = rink.Player1
	}
	c := &fakeConn{
		side:   side,
		snap:   rink.DefaultSnapshot,
		vx:     3,
		vy:     2,
		frames: make(chan []byte, 4),
		done:   make(chan struct{}),
	}
	c.snap.Player1.Name = "you"
	c.snap.Player2.Name = "bot"
	if side == rink.Player2 {
		c.snap.Player1.Name, c.snap.Player2.Name = c.snap.Player2.Name, c.snap.Player1.Name
	}
	c.frames <- []byte(fmt.Sprintf(`{"status":"connected","player_id":%d}`, side))
	go c.run(tick)
	return c, nil
}

type fakeConn struct {
	side rink.Side

	mu     sync.Mutex
	snap   rink.Snapshot
	vx, vy float64

	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *fakeConn) run(tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
		}
		b, err := wire.EncodeSnapshot(c.step())
		if err != nil {
			logError("fake: encode: %v", err)
			continue
		}
		select {
		case c.frames <- b:
		case <-c.done:
			return
		default:
			// reader is behind; the next frame supersedes this one
		}
	}
}

// step advances the ball one tick and returns the resulting snapshot.
func (c *fakeConn) step() rink.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := &c.snap.Ball
	b.X += c.vx
	b.Y += c.vy
	if b.X-b.R < 0 || b.X+b.R > rink.FieldWidth {
		c.vx = -c.vx
		b.X = math.Min(math.Max(b.X, b.R), rink.FieldWidth-b.R)
	}
	if b.Y-b.R < 0 || b.Y+b.R > rink.FieldHeight {
		c.vy = -c.vy
		b.Y = math.Min(math.Max(b.Y, b.R), rink.FieldHeight-b.R)
	}
	return c.snap
}

// move applies one intent to the local player.
func (c *fakeConn) move(i rink.Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &c.snap.Player1
	if c.side == rink.Player2 {
		p = &c.snap.Player2
	}
	p.X = math.Min(math.Max(p.X+i.DX*rink.DeltaScale, 0), rink.FieldWidth)
	p.Y = math.Min(math.Max(p.Y+i.DY*rink.DeltaScale, 0), rink.FieldHeight)
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-c.frames:
		return websocket.TextMessage, b, nil
	case <-c.done:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *fakeConn) WriteMessage(typ int, data []byte) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	if typ != websocket.TextMessage {
		return nil
	}
	i, err := wire.DecodeIntent(data)
	if err != nil {
		return err
	}
	c.move(i)
	return nil
}

func (c *fakeConn) WriteControl(typ int, data []byte, deadline time.Time) error {
	return c.WriteMessage(typ, data)
}

// The simulation never stalls, so deadlines are not needed.
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
