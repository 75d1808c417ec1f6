package selection

// Mouse buttons as reported by X11.
const (
	ButtonPrimary   = 1
	ButtonSecondary = 3
)

// Key is a logical key the overlay reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
	KeyEnter
	// KeyFullscreen covers Print, Space and SysRq.
	KeyFullscreen
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEscape:
		return "escape"
	case KeyEnter:
		return "enter"
	case KeyFullscreen:
		return "fullscreen"
	default:
		return "other"
	}
}

// Event is an input delivered to the Machine.
type Event interface {
	isEvent()
}

// Motion moves the pointer to (X, Y) in snapshot coordinates.
type Motion struct {
	X, Y float64
}

type ButtonPress struct {
	Button int
}

type ButtonRelease struct {
	Button int
}

type KeyPress struct {
	Key Key
}

// FullscreenSignal is raised by another invocation of the tool.
type FullscreenSignal struct{}

// Expose asks for a repaint without changing state.
type Expose struct{}

func (Motion) isEvent()           {}
func (ButtonPress) isEvent()      {}
func (ButtonRelease) isEvent()    {}
func (KeyPress) isEvent()         {}
func (FullscreenSignal) isEvent() {}
func (Expose) isEvent()           {}
