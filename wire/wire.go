// Package wire encodes and decodes the JSON text frames exchanged with the
// match server.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"airhockey/rink"
)

var (
	// ErrMalformed is returned for frames that are not valid JSON objects
	// of a known shape.
	ErrMalformed = errors.New("wire: malformed frame")
	// ErrIncomplete is returned for snapshots missing an entity or field.
	ErrIncomplete = errors.New("wire: incomplete snapshot")
)

// StoppedText is the plain text frame the server sends when a match ends.
const StoppedText = "Game Stopped"

// FrameKind classifies an inbound frame.
type FrameKind int

const (
	FrameSnapshot FrameKind = iota + 1
	FrameStopped
	FrameAssign
)

func (k FrameKind) String() string {
	switch k {
	case FrameSnapshot:
		return "snapshot"
	case FrameStopped:
		return "stopped"
	case FrameAssign:
		return "assign"
	}
	return "unknown"
}

// Frame is a decoded inbound frame. Snapshot is set for FrameSnapshot and
// Side for FrameAssign.
type Frame struct {
	Kind     FrameKind
	Snapshot rink.Snapshot
	Side     rink.Side
}

type entityJSON struct {
	Position []*float64 `json:"position"`
	Radius   *float64   `json:"radius"`
	Score    int        `json:"score,omitempty"`
	Name     string     `json:"player_name,omitempty"`
}

type snapshotJSON struct {
	Player1 *entityJSON `json:"player1"`
	Player2 *entityJSON `json:"player2"`
	Ball    *entityJSON `json:"ball"`

	Status   string `json:"status,omitempty"`
	PlayerID int    `json:"player_id,omitempty"`
}

type intentJSON struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// DecodeFrame parses one inbound text frame.
func DecodeFrame(raw []byte) (Frame, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Frame{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if string(trimmed) == StoppedText {
		return Frame{Kind: FrameStopped}, nil
	}

	var msg snapshotJSON
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if msg.Player1 == nil && msg.Player2 == nil && msg.Ball == nil {
		if msg.Status == "connected" && msg.PlayerID > 0 {
			side := rink.Side(msg.PlayerID)
			if !side.Valid() {
				return Frame{}, fmt.Errorf("%w: player_id %d", ErrMalformed, msg.PlayerID)
			}
			return Frame{Kind: FrameAssign, Side: side}, nil
		}
		return Frame{}, fmt.Errorf("%w: no entities", ErrIncomplete)
	}

	snap, err := msg.snapshot()
	if err != nil {
		return Frame{}, err
	}
	return Frame{Kind: FrameSnapshot, Snapshot: snap}, nil
}

func (m snapshotJSON) snapshot() (rink.Snapshot, error) {
	var s rink.Snapshot
	var err error
	if s.Player1, err = m.Player1.entity("player1"); err != nil {
		return rink.Snapshot{}, err
	}
	if s.Player2, err = m.Player2.entity("player2"); err != nil {
		return rink.Snapshot{}, err
	}
	if s.Ball, err = m.Ball.entity("ball"); err != nil {
		return rink.Snapshot{}, err
	}
	return s, nil
}

func (e *entityJSON) entity(name string) (rink.Entity, error) {
	if e == nil {
		return rink.Entity{}, fmt.Errorf("%w: missing %s", ErrIncomplete, name)
	}
	if len(e.Position) != 2 {
		return rink.Entity{}, fmt.Errorf("%w: %s position has %d values", ErrMalformed, name, len(e.Position))
	}
	if e.Radius == nil {
		return rink.Entity{}, fmt.Errorf("%w: %s radius missing", ErrIncomplete, name)
	}
	if e.Position[0] == nil || e.Position[1] == nil {
		return rink.Entity{}, fmt.Errorf("%w: %s position has a null value", ErrMalformed, name)
	}
	x, y := *e.Position[0], *e.Position[1]
	r := *e.Radius
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return rink.Entity{}, fmt.Errorf("%w: %s radius %v", ErrMalformed, name, r)
	}
	return rink.Entity{X: x, Y: y, R: r, Score: e.Score, Name: e.Name}, nil
}

// EncodeIntent renders the outbound intent frame.
func EncodeIntent(i rink.Intent) ([]byte, error) {
	return json.Marshal(intentJSON{DX: i.DX, DY: i.DY})
}

// DecodeIntent parses an outbound intent frame. Used by local transports that
// stand in for the server.
func DecodeIntent(raw []byte) (rink.Intent, error) {
	var in intentJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return rink.Intent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return rink.Intent{DX: in.DX, DY: in.DY}, nil
}

// EncodeSnapshot renders s in the server's inbound format.
func EncodeSnapshot(s rink.Snapshot) ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Player1: fromEntity(s.Player1),
		Player2: fromEntity(s.Player2),
		Ball:    fromEntity(s.Ball),
	})
}

func fromEntity(e rink.Entity) *entityJSON {
	x, y, r := e.X, e.Y, e.R
	return &entityJSON{Position: []*float64{&x, &y}, Radius: &r, Score: e.Score, Name: e.Name}
}
