package main

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"airhockey/netlink"
	"airhockey/rink"
	"airhockey/wire"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	open "github.com/skratchdot/open-golang/open"
	clipboard "golang.design/x/clipboard"
)

const (
	screenW = rink.FieldWidth
	hudH    = 28
	screenH = rink.FieldHeight + hudH
)

// session is the part of *netlink.Manager the game drives.
type session interface {
	rink.Sender
	Start(ctx context.Context)
	Close() error
	Status() netlink.Status
	Stats() netlink.Stats
	URL() string
}

// Game is the ebiten game. Update runs one synchronization tick per frame.
type Game struct {
	ctx context.Context

	store *rink.Store
	keys  *rink.Keys
	snaps *rink.Mailbox[rink.Snapshot]
	sides *rink.Mailbox[rink.Side]
	loop  *rink.Loop
	conn  session

	stopped atomic.Bool
	wasOpen atomic.Bool
	closing atomic.Bool

	showStats bool
	last      rink.TickResult
	started   time.Time

	pressed  []ebiten.Key
	released []ebiten.Key

	rec       *frameRecorder
	closeOnce sync.Once
}

func newGame(ctx context.Context) *Game {
	g := &Game{
		ctx:       ctx,
		store:     rink.NewStore(rink.DefaultSnapshot),
		keys:      rink.NewKeys(keyBindings(gs)),
		snaps:     &rink.Mailbox[rink.Snapshot]{},
		sides:     &rink.Mailbox[rink.Side]{},
		showStats: gs.ShowStats,
		started:   time.Now(),
	}
	g.loop = &rink.Loop{
		Store:     g.store,
		Keys:      g.keys,
		Snapshots: g.snaps,
		Sides:     g.sides,
	}
	return g
}

// attach wires the connection the loop sends intents through.
func (g *Game) attach(s session) {
	g.conn = s
	g.loop.Sender = s
}

// HandleSnapshot runs on the network reader goroutine. The snapshot is
// applied at the start of the next tick.
func (g *Game) HandleSnapshot(s rink.Snapshot) {
	g.stopped.Store(false)
	g.snaps.Post(s)
}

func (g *Game) HandleControl(f wire.Frame) {
	switch f.Kind {
	case wire.FrameStopped:
		if !g.stopped.Swap(true) {
			log.Printf("server stopped the game")
			setPresence("game stopped")
		}
	case wire.FrameAssign:
		logDebug("assigned %v", f.Side)
		g.sides.Post(f.Side)
	}
}

// connectionLost runs when an open connection drops while the game is still
// running.
var connectionLost = func(s netlink.Status) {
	notifyConnectionLost(s)
	setPresence("disconnected")
}

func (g *Game) onStatus(s netlink.Status) {
	logDebug("connection: %s", s.Text())
	switch s.State {
	case netlink.Open:
		g.wasOpen.Store(true)
		setPresence("in a match")
	case netlink.Closed, netlink.Errored:
		if g.wasOpen.Swap(false) && g.ctx.Err() == nil && !g.closing.Load() {
			connectionLost(s)
		}
	}
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.pressed = inpututil.AppendJustPressedKeys(g.pressed[:0])
	g.released = inpututil.AppendJustReleasedKeys(g.released[:0])
	if g.hotkeys(g.pressed) {
		return ebiten.Termination
	}
	g.applyKeys(g.pressed, g.released)
	g.last = g.loop.Tick()
	return nil
}

// applyKeys feeds bound key transitions to the input state by ebiten key
// name. Other keys are not tracked.
func (g *Game) applyKeys(pressed, released []ebiten.Key) {
	for _, k := range pressed {
		if name := k.String(); g.keys.Bound(name) {
			g.keys.Down(name)
		}
	}
	for _, k := range released {
		if name := k.String(); g.keys.Bound(name) {
			g.keys.Up(name)
		}
	}
}

// hotkeys handles the function keys and reports whether the game should quit.
func (g *Game) hotkeys(pressed []ebiten.Key) bool {
	for _, k := range pressed {
		switch k {
		case ebiten.KeyEscape:
			return true
		case ebiten.KeyF2:
			g.copySnapshot()
		case ebiten.KeyF3:
			g.showStats = !g.showStats
			gs.ShowStats = g.showStats
		case ebiten.KeyF12:
			if err := open.Run(logDir); err != nil {
				logError("open %s: %v", logDir, err)
			}
		}
	}
	return false
}

func (g *Game) copySnapshot() {
	b, err := wire.EncodeSnapshot(g.store.Snapshot())
	if err != nil {
		logError("copy snapshot: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, b)
	logDebug("copied snapshot (%d bytes)", len(b))
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawField(screen)
	for _, v := range g.store.Views() {
		drawEntity(screen, v)
	}
	st := netlink.Status{State: netlink.Idle}
	if g.conn != nil {
		st = g.conn.Status()
	}
	drawHUD(screen, hudState{
		Status:   st,
		Received: g.store.Received(),
		Stopped:  g.stopped.Load(),
		Snapshot: g.store.Snapshot(),
		Local:    g.store.LocalSide(),
	})
	if g.showStats && g.conn != nil {
		drawStats(screen, g.statsLines(time.Now()))
	}
}

func (g *Game) statsLines(now time.Time) []string {
	ticks, _ := g.loop.Counts()
	_, overwritten := g.snaps.Counts()
	return formatStats(statsInput{
		URL:         g.conn.URL(),
		Status:      g.conn.Status(),
		Net:         g.conn.Stats(),
		Ticks:       ticks,
		Applied:     g.store.Applied(),
		Overwritten: overwritten,
		Last:        g.last,
		Running:     now.Sub(g.started),
		Now:         now,
	})
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

// Close tears the session down: the connection is closed, held keys are
// cleared and the recorder is flushed. Safe to call more than once.
func (g *Game) Close() {
	g.closeOnce.Do(func() {
		// A shutdown we asked for is not a lost connection.
		g.closing.Store(true)
		if g.conn != nil {
			if err := g.conn.Close(); err != nil {
				logError("close connection: %v", err)
			}
		}
		g.keys.Reset()
		if g.rec != nil {
			if err := g.rec.Close(); err != nil {
				logError("close recording: %v", err)
			}
		}
		stopPresence()
	})
}

func runGame(ctx context.Context, g *Game) {
	ebiten.SetWindowTitle("Air Hockey")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// Update runs once per displayed frame.
	ebiten.SetTPS(ebiten.SyncWithFPS)

	op := &ebiten.RunGameOptions{ScreenTransparent: false}
	if err := ebiten.RunGameWithOptions(g, op); err != nil && err != ebiten.Termination {
		log.Printf("ebiten: %v", err)
	}
	g.Close()
}
