package rink

import "math"

// HeldReader reports which directions are held.
type HeldReader interface {
	Held(Direction) bool
}

// Advance moves (x, y) one step in every held direction. Each direction is
// clamped only on the side it moves toward, in the order up, down, left,
// right, so holding opposite keys at an edge can still move one step.
func Advance(x, y float64, h HeldReader) (float64, float64) {
	if h.Held(Up) {
		y = math.Max(y-StepSize, 0)
	}
	if h.Held(Down) {
		y = math.Min(y+StepSize, FieldHeight)
	}
	if h.Held(Left) {
		x = math.Max(x-StepSize, 0)
	}
	if h.Held(Right) {
		x = math.Min(x+StepSize, FieldWidth)
	}
	return x, y
}

// IntentFor returns the intent that moves an entity from (x, y) to (nx, ny).
func IntentFor(x, y, nx, ny float64) Intent {
	return Intent{DX: (nx - x) / DeltaScale, DY: (ny - y) / DeltaScale}
}

// Sender transmits intents. Implementations drop intents they cannot send.
type Sender interface {
	SendIntent(Intent) bool
}

// Loop is the synchronization tick run once per display frame.
type Loop struct {
	Store     *Store
	Keys      *Keys
	Snapshots *Mailbox[Snapshot]
	Sides     *Mailbox[Side]
	Sender    Sender

	ticks uint64
	sent  uint64
}

// TickResult describes one tick.
type TickResult struct {
	Applied bool
	From    [2]float64
	To      [2]float64
	Intent  Intent
	Sent    bool
}

// Tick applies any pending server state, computes the local player's
// intent from the held keys and hands it to the sender. The computed
// position is never written back to the store; the next snapshot is the only
// source of the local player's position.
func (l *Loop) Tick() TickResult {
	var res TickResult
	l.ticks++

	if l.Sides != nil {
		if s, ok := l.Sides.Take(); ok {
			l.Store.SetLocalSide(s)
		}
	}
	if l.Snapshots != nil {
		if s, ok := l.Snapshots.Take(); ok {
			l.Store.Apply(s)
			res.Applied = true
		}
	}

	me := l.Store.Local()
	nx, ny := Advance(me.X, me.Y, l.Keys)
	res.From = [2]float64{me.X, me.Y}
	res.To = [2]float64{nx, ny}
	res.Intent = IntentFor(me.X, me.Y, nx, ny)

	if l.Sender != nil {
		res.Sent = l.Sender.SendIntent(res.Intent)
		if res.Sent {
			l.sent++
		}
	}
	return res
}

// Counts returns the number of ticks run and intents accepted by the sender.
func (l *Loop) Counts() (ticks, sent uint64) { return l.ticks, l.sent }
