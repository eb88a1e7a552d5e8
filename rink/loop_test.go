package rink

import "testing"

type recordSender struct {
	open    bool
	intents []Intent
}

func (s *recordSender) SendIntent(i Intent) bool {
	if !s.open {
		return false
	}
	s.intents = append(s.intents, i)
	return true
}

type heldSet map[Direction]bool

func (h heldSet) Held(d Direction) bool { return h[d] }

func TestAdvanceStaysInBounds(t *testing.T) {
	starts := [][2]float64{
		{0, 0}, {800, 600}, {0, 600}, {800, 0}, {400, 300},
		{2, 3}, {798, 597}, {5, 595}, {400, 0}, {0, 300},
	}
	for mask := 0; mask < 16; mask++ {
		h := heldSet{}
		for i, d := range Directions {
			if mask&(1<<i) != 0 {
				h[d] = true
			}
		}
		for _, st := range starts {
			x, y := Advance(st[0], st[1], h)
			if x < 0 || x > FieldWidth || y < 0 || y > FieldHeight {
				t.Fatalf("mask %04b from %v: got (%v,%v) out of bounds", mask, st, x, y)
			}
		}
	}
}

func TestAdvanceDiagonalCombinesAxes(t *testing.T) {
	x, y := Advance(400, 300, heldSet{Up: true, Left: true})
	if x != 395 || y != 295 {
		t.Fatalf("up+left: got (%v,%v) want (395,295)", x, y)
	}
	x, y = Advance(400, 300, heldSet{Down: true, Right: true})
	if x != 405 || y != 305 {
		t.Fatalf("down+right: got (%v,%v) want (405,305)", x, y)
	}
	x, y = Advance(800, 0, heldSet{Up: true, Right: true})
	if x != 800 || y != 0 {
		t.Fatalf("corner: got (%v,%v) want (800,0)", x, y)
	}
}

func TestAdvanceOppositeKeysAtEdge(t *testing.T) {
	// Up clamps at 0 first, then down moves a step.
	_, y := Advance(100, 0, heldSet{Up: true, Down: true})
	if y != 5 {
		t.Fatalf("up+down at top edge: y=%v want 5", y)
	}
	_, y = Advance(100, 300, heldSet{Up: true, Down: true})
	if y != 300 {
		t.Fatalf("up+down mid field: y=%v want 300", y)
	}
}

func newTestLoop(start Entity, keys *Keys, s Sender) *Loop {
	snap := DefaultSnapshot
	snap.Player1 = start
	return &Loop{
		Store:     NewStore(snap),
		Keys:      keys,
		Snapshots: &Mailbox[Snapshot]{},
		Sides:     &Mailbox[Side]{},
		Sender:    s,
	}
}

func TestTickRightArrow(t *testing.T) {
	keys := NewKeys(nil)
	keys.Down("ArrowRight")
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 400, Y: 150, R: 20}, keys, s)

	res := l.Tick()
	if res.To != [2]float64{405, 150} {
		t.Fatalf("new position %v, want (405,150)", res.To)
	}
	if len(s.intents) != 1 {
		t.Fatalf("sent %d intents, want 1", len(s.intents))
	}
	if got := s.intents[0]; got != (Intent{DX: 0.5, DY: 0}) {
		t.Fatalf("intent %+v, want {0.5 0}", got)
	}
}

func TestTickLeftArrowAtEdge(t *testing.T) {
	keys := NewKeys(nil)
	keys.Down("ArrowLeft")
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 0, Y: 150, R: 20}, keys, s)

	res := l.Tick()
	if res.To != [2]float64{0, 150} {
		t.Fatalf("new position %v, want (0,150)", res.To)
	}
	if !s.intents[0].Zero() {
		t.Fatalf("intent %+v, want zero", s.intents[0])
	}
}

func TestTickDoesNotPredictLocally(t *testing.T) {
	keys := NewKeys(nil)
	keys.Down("ArrowDown")
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 100, Y: 100, R: 20}, keys, s)

	for i := 0; i < 3; i++ {
		l.Tick()
	}
	if me := l.Store.Local(); me.X != 100 || me.Y != 100 {
		t.Fatalf("store moved to (%v,%v) without a snapshot", me.X, me.Y)
	}
	for i, in := range s.intents {
		if in != (Intent{DX: 0, DY: 0.5}) {
			t.Fatalf("intent %d = %+v, want {0 0.5}", i, in)
		}
	}
}

func TestTickIntentMatchesPositionAtTickStart(t *testing.T) {
	keys := NewKeys(nil)
	keys.Down("ArrowUp")
	keys.Down("D")
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 10, Y: 3, R: 20}, keys, s)

	res := l.Tick()
	want := IntentFor(res.From[0], res.From[1], res.To[0], res.To[1])
	if res.Intent != want {
		t.Fatalf("intent %+v, want %+v", res.Intent, want)
	}
	if res.Intent != (Intent{DX: 0.5, DY: -0.3}) {
		t.Fatalf("intent %+v, want {0.5 -0.3}", res.Intent)
	}
}

func TestTickSendsZeroWhenIdle(t *testing.T) {
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 300, Y: 300, R: 20}, NewKeys(nil), s)
	l.Tick()
	if len(s.intents) != 1 || !s.intents[0].Zero() {
		t.Fatalf("idle tick sent %+v, want one zero intent", s.intents)
	}
}

func TestTickAppliesSnapshotAtBoundary(t *testing.T) {
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 400, Y: 150, R: 20}, NewKeys(nil), s)

	l.Snapshots.Post(Snapshot{
		Player1: Entity{X: 10, Y: 20, R: 20},
		Player2: Entity{X: 30, Y: 40, R: 20},
		Ball:    Entity{X: 50, Y: 60, R: 10},
	})
	if me := l.Store.Local(); me.X != 400 {
		t.Fatalf("store changed before tick: %+v", me)
	}
	res := l.Tick()
	if !res.Applied {
		t.Fatalf("snapshot not applied on tick")
	}
	if me := l.Store.Local(); me.X != 10 || me.Y != 20 || me.R != 20 {
		t.Fatalf("local player %+v, want (10,20) r=20", me)
	}
}

func TestTickClosedSenderDropsIntent(t *testing.T) {
	keys := NewKeys(nil)
	keys.Down("ArrowRight")
	s := &recordSender{open: false}
	l := newTestLoop(Entity{X: 400, Y: 150, R: 20}, keys, s)
	res := l.Tick()
	if res.Sent || len(s.intents) != 0 {
		t.Fatalf("intent sent while closed")
	}
	if ticks, sent := l.Counts(); ticks != 1 || sent != 0 {
		t.Fatalf("counts ticks=%d sent=%d", ticks, sent)
	}
}

func TestTickUsesAssignedSide(t *testing.T) {
	keys := NewKeys(nil)
	keys.Down("ArrowLeft")
	s := &recordSender{open: true}
	l := newTestLoop(Entity{X: 400, Y: 150, R: 20}, keys, s)
	l.Sides.Post(Player2)

	res := l.Tick()
	if res.From != [2]float64{400, 450} {
		t.Fatalf("tick read %v, want player2 at (400,450)", res.From)
	}
	if s.intents[0] != (Intent{DX: -0.5}) {
		t.Fatalf("intent %+v", s.intents[0])
	}
}
