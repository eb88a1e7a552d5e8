package rink

import (
	"sync"
	"testing"
)

func TestStoreApplyReplacesWholeSnapshot(t *testing.T) {
	st := NewStore(DefaultSnapshot)
	a := Snapshot{
		Player1: Entity{X: 1, Y: 2, R: 20, Score: 3},
		Player2: Entity{X: 3, Y: 4, R: 20},
		Ball:    Entity{X: 5, Y: 6, R: 10},
	}
	b := Snapshot{
		Player1: Entity{X: 7, Y: 8, R: 21},
		Player2: Entity{X: 9, Y: 10, R: 22},
		Ball:    Entity{X: 11, Y: 12, R: 9},
	}
	st.Apply(a)
	st.Apply(b)
	if got := st.Snapshot(); got != b {
		t.Fatalf("store = %+v, want %+v", got, b)
	}
	if st.Applied() != 2 || !st.Received() {
		t.Fatalf("applied=%d received=%v", st.Applied(), st.Received())
	}
}

func TestStoreViews(t *testing.T) {
	st := NewStore(DefaultSnapshot)
	v := st.Views()
	if len(v) != 3 {
		t.Fatalf("got %d views", len(v))
	}
	if !v[0].IsLocal || v[1].IsLocal || v[2].IsLocal {
		t.Fatalf("local flags %v %v %v", v[0].IsLocal, v[1].IsLocal, v[2].IsLocal)
	}
	if v[2].Kind != KindBall || v[2].R != 10 {
		t.Fatalf("ball view %+v", v[2])
	}

	st.SetLocalSide(Player2)
	v = st.Views()
	if v[0].IsLocal || !v[1].IsLocal {
		t.Fatalf("side switch not reflected")
	}
	st.SetLocalSide(Side(7))
	if st.LocalSide() != Player2 {
		t.Fatalf("invalid side accepted")
	}
}

func TestMailboxLastWriteWins(t *testing.T) {
	var mb Mailbox[Snapshot]
	if _, ok := mb.Take(); ok {
		t.Fatalf("empty mailbox returned a value")
	}
	for i := 1; i <= 3; i++ {
		s := DefaultSnapshot
		s.Ball.X = float64(i)
		mb.Post(s)
	}
	got, ok := mb.Take()
	if !ok || got.Ball.X != 3 {
		t.Fatalf("take = %+v, %v; want ball x 3", got, ok)
	}
	if _, ok := mb.Take(); ok {
		t.Fatalf("mailbox not drained")
	}
	if posted, over := mb.Counts(); posted != 3 || over != 2 {
		t.Fatalf("posted=%d overwritten=%d", posted, over)
	}
}

func TestMailboxConcurrentPost(t *testing.T) {
	var mb Mailbox[int]
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mb.Post(n)
			}
		}(i)
	}
	wg.Wait()
	if _, ok := mb.Take(); !ok {
		t.Fatalf("no value after concurrent posts")
	}
	if posted, _ := mb.Counts(); posted != 800 {
		t.Fatalf("posted=%d", posted)
	}
}

func TestKeysBindings(t *testing.T) {
	k := NewKeys(nil)
	k.Down("W")
	k.Down("W")
	if !k.Held(Up) {
		t.Fatalf("W should hold up")
	}
	k.Down("ArrowUp")
	k.Up("W")
	if !k.Held(Up) {
		t.Fatalf("ArrowUp still held")
	}
	k.Up("ArrowUp")
	if k.Held(Up) {
		t.Fatalf("up released")
	}
	if !k.Bound("ArrowLeft") || k.Bound("Space") {
		t.Fatalf("bound lookup wrong")
	}
	k.Down("D")
	k.Reset()
	if k.Held(Right) {
		t.Fatalf("reset left keys held")
	}
}
