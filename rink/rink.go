// Package rink holds the client-side model of an air hockey match: the
// entities shown on the field, the store that owns them, the keyboard state
// and the per-frame synchronization tick that turns held keys into intent
// deltas for the remote simulation.
package rink

// Field bounds and movement constants. The remote simulation integrates an
// intent over DeltaScale internal steps, so DeltaScale is part of the wire
// contract.
const (
	FieldWidth  = 800
	FieldHeight = 600
	StepSize    = 5
	DeltaScale  = 10
)

// Entity is a circular body on the field.
type Entity struct {
	X, Y  float64
	R     float64
	Score int
	Name  string
}

// Snapshot is the authoritative state of every tracked entity at one instant.
// Snapshots are always complete.
type Snapshot struct {
	Player1 Entity
	Player2 Entity
	Ball    Entity
}

// Intent is a one-tick displacement request for the local player, already
// divided by DeltaScale.
type Intent struct {
	DX, DY float64
}

// Zero reports whether the intent requests no movement.
func (i Intent) Zero() bool { return i.DX == 0 && i.DY == 0 }

// Side selects which player slot of a Snapshot is controlled locally.
type Side int

const (
	Player1 Side = iota + 1
	Player2
)

func (s Side) String() string {
	switch s {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	}
	return "unknown"
}

// Valid reports whether s names a player slot.
func (s Side) Valid() bool { return s == Player1 || s == Player2 }

// DefaultSnapshot is the layout shown before the first server frame.
var DefaultSnapshot = Snapshot{
	Player1: Entity{X: 400, Y: 150, R: 20},
	Player2: Entity{X: 400, Y: 450, R: 20},
	Ball:    Entity{X: 400, Y: 295, R: 10},
}
