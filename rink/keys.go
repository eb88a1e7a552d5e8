package rink

// Direction is one of the four movement directions.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in the order Advance applies them.
var Directions = [...]Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "?"
}

// Bindings maps each direction to the key names that trigger it.
type Bindings map[Direction][]string

// DefaultBindings uses the arrow keys plus WASD.
func DefaultBindings() Bindings {
	return Bindings{
		Up:    {"ArrowUp", "W"},
		Down:  {"ArrowDown", "S"},
		Left:  {"ArrowLeft", "A"},
		Right: {"ArrowRight", "D"},
	}
}

// Keys tracks which keys are currently held. It is updated from key-down and
// key-up events and read by the tick.
//
// A key released while the window is unfocused may never report key-up; it
// then stays held until a later key-up for it arrives or Reset is called.
type Keys struct {
	pressed map[string]bool
	bind    Bindings
}

// NewKeys returns an empty key state using b, or DefaultBindings when b is nil.
func NewKeys(b Bindings) *Keys {
	if b == nil {
		b = DefaultBindings()
	}
	return &Keys{pressed: make(map[string]bool), bind: b}
}

// Down records a key-down event. Repeats are harmless.
func (k *Keys) Down(name string) { k.pressed[name] = true }

// Up records a key-up event.
func (k *Keys) Up(name string) { k.pressed[name] = false }

// Held reports whether any key bound to d is pressed.
func (k *Keys) Held(d Direction) bool {
	for _, name := range k.bind[d] {
		if k.pressed[name] {
			return true
		}
	}
	return false
}

// Bound reports whether name is bound to any direction.
func (k *Keys) Bound(name string) bool {
	for _, names := range k.bind {
		for _, n := range names {
			if n == name {
				return true
			}
		}
	}
	return false
}

// Reset releases every key.
func (k *Keys) Reset() { clear(k.pressed) }
