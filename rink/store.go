package rink

// Kind identifies what an entity view represents.
type Kind int

const (
	KindPlayer Kind = iota
	KindBall
)

// View is a read-only record handed to the renderer.
type View struct {
	Entity
	Kind    Kind
	IsLocal bool
}

// Store holds the last applied snapshot. It belongs to the game loop
// goroutine: Apply runs from the tick and the renderer only reads between
// ticks, so a render pass always sees one whole snapshot.
type Store struct {
	snap     Snapshot
	local    Side
	received bool
	applied  uint64
}

// NewStore returns a store showing initial with Player1 as the local side.
func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial, local: Player1}
}

// Apply replaces all three entities with those of s.
func (st *Store) Apply(s Snapshot) {
	st.snap = s
	st.received = true
	st.applied++
}

// Snapshot returns a copy of the current state.
func (st *Store) Snapshot() Snapshot { return st.snap }

// Received reports whether any server snapshot has been applied.
func (st *Store) Received() bool { return st.received }

// Applied returns how many snapshots have been applied.
func (st *Store) Applied() uint64 { return st.applied }

// LocalSide returns the locally controlled slot.
func (st *Store) LocalSide() Side { return st.local }

// SetLocalSide changes the locally controlled slot. Invalid sides are ignored.
func (st *Store) SetLocalSide(s Side) {
	if s.Valid() {
		st.local = s
	}
}

// Local returns the locally controlled player entity.
func (st *Store) Local() Entity {
	if st.local == Player2 {
		return st.snap.Player2
	}
	return st.snap.Player1
}

// Views returns the entities in draw order: both players, then the ball.
func (st *Store) Views() []View {
	return []View{
		{Entity: st.snap.Player1, Kind: KindPlayer, IsLocal: st.local == Player1},
		{Entity: st.snap.Player2, Kind: KindPlayer, IsLocal: st.local == Player2},
		{Entity: st.snap.Ball, Kind: KindBall},
	}
}
