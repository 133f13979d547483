package engine

// InputKind identifies the kind of a queued input event.
type InputKind int

const (
	// InputKey is a key press.
	InputKey InputKind = iota
	// InputScroll is a vertical scroll wheel delta.
	InputScroll
	// InputClick is a left mouse button press or release.
	InputClick
	// InputMove is a cursor move.
	InputMove
	// InputResize is a framebuffer resize.
	InputResize
)

// scrollThreshold is the minimum absolute wheel delta treated as one scroll step.
const scrollThreshold = 0.5

// InputEvent is one window input, queued by the window callbacks and dispatched during the
// next tick. Only the fields of its Kind are set.
type InputEvent struct {
	Kind InputKind

	// Key is the key code of an InputKey event.
	Key uint32

	// Delta is the vertical wheel delta of an InputScroll event.
	Delta float32

	// Pressed is true for a press of an InputClick event.
	Pressed bool

	// X and Y are the cursor position in framebuffer pixels for InputClick and InputMove.
	X float32
	Y float32

	// Width and Height are the new framebuffer size of an InputResize event.
	Width  int
	Height int
}
