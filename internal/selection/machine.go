// Package selection turns pointer and keyboard input into a terminal
// capture action. It holds no display state and never draws.
package selection

import (
	"fmt"
	"math"

	"github.com/1broseidon/screenshot-tool/internal/platform"
	"github.com/1broseidon/screenshot-tool/internal/registry"
)

// DragThreshold is the distance, per axis, below which a press/release pair
// counts as a click.
const DragThreshold = 5

// Phase is the selection's tagged state.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Resolved
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ActionKind enumerates terminal actions.
type ActionKind int

const (
	NoAction ActionKind = iota
	CaptureWindow
	CaptureRegion
	Cancel
)

func (k ActionKind) String() string {
	switch k {
	case CaptureWindow:
		return "capture_window"
	case CaptureRegion:
		return "capture_region"
	case Cancel:
		return "cancel"
	default:
		return "none"
	}
}

// Action is the resolved user intent. Window is set for CaptureWindow,
// Region for CaptureRegion.
type Action struct {
	Kind   ActionKind
	Window registry.WindowInfo
	Region platform.Rect
}

// Terminal reports whether the action ends the session.
func (a Action) Terminal() bool {
	return a.Kind != NoAction
}

// State is a read-only view of the machine handed to the renderer.
type State struct {
	PointerX, PointerY float64
	Phase              Phase
	// StartX/StartY are only meaningful while Phase == Dragging.
	StartX, StartY float64
	Hover          *registry.WindowInfo
}

// Dragging reports whether a drag is in progress.
func (s State) Dragging() bool {
	return s.Phase == Dragging
}

// Selection returns the normalized drag rectangle.
func (s State) Selection() platform.Rect {
	if s.Phase != Dragging {
		return platform.Rect{}
	}
	return Normalize(s.StartX, s.StartY, s.PointerX, s.PointerY)
}

// Normalize converts two corners into a rectangle with non-negative size.
func Normalize(x1, y1, x2, y2 float64) platform.Rect {
	return platform.Rect{
		X:      int(math.Min(x1, x2)),
		Y:      int(math.Min(y1, y2)),
		Width:  int(math.Abs(x2 - x1)),
		Height: int(math.Abs(y2 - y1)),
	}
}

// Machine is the input-to-action reducer. It is not safe for concurrent
// use; the overlay drives it from a single goroutine.
type Machine struct {
	width, height int
	windows       []registry.WindowInfo

	pointerX, pointerY float64
	phase              Phase
	startX, startY     float64
	hover              *registry.WindowInfo
	action             Action
}

// New creates a machine for a width x height snapshot. windows must be in
// ascending z-order. The pointer starts at (x, y), clamped to the canvas.
func New(width, height int, windows []registry.WindowInfo, x, y float64) *Machine {
	m := &Machine{
		width:   width,
		height:  height,
		windows: windows,
	}
	m.pointerX, m.pointerY = m.clamp(x, y)
	m.updateHover()
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := State{
		PointerX: m.pointerX,
		PointerY: m.pointerY,
		Phase:    m.phase,
		StartX:   m.startX,
		StartY:   m.startY,
	}
	if m.hover != nil {
		h := *m.hover
		s.Hover = &h
	}
	return s
}

// Action returns the terminal action once resolved.
func (m *Machine) Action() Action {
	return m.action
}

// Windows returns the registry snapshot the machine hit-tests against.
func (m *Machine) Windows() []registry.WindowInfo {
	return m.windows
}

// Handle applies one event. It returns the terminal action (NoAction while
// the session continues) and whether the state changed and needs a redraw.
// Events after resolution are ignored.
func (m *Machine) Handle(ev Event) (Action, bool) {
	if m.phase == Resolved {
		return Action{}, false
	}

	switch e := ev.(type) {
	case Motion:
		m.pointerX, m.pointerY = m.clamp(e.X, e.Y)
		if m.phase != Dragging {
			m.updateHover()
		}
		return Action{}, true

	case ButtonPress:
		switch e.Button {
		case ButtonSecondary:
			return m.resolve(Action{Kind: Cancel}), true
		case ButtonPrimary:
			if m.phase != Dragging {
				m.phase = Dragging
				m.startX, m.startY = m.pointerX, m.pointerY
				return Action{}, true
			}
		}
		return Action{}, false

	case ButtonRelease:
		if e.Button != ButtonPrimary || m.phase != Dragging {
			return Action{}, false
		}
		return m.release(), true

	case KeyPress:
		return m.handleKey(e.Key)

	case FullscreenSignal:
		return m.resolve(m.fullscreen()), true

	case Expose:
		return Action{}, true
	}
	return Action{}, false
}

func (m *Machine) handleKey(key Key) (Action, bool) {
	switch key {
	case KeyLeft:
		m.nudge(-1, 0)
	case KeyRight:
		m.nudge(1, 0)
	case KeyUp:
		m.nudge(0, -1)
	case KeyDown:
		m.nudge(0, 1)
	case KeyEscape:
		return m.resolve(Action{Kind: Cancel}), true
	case KeyFullscreen:
		return m.resolve(m.fullscreen()), true
	case KeyEnter:
		if m.phase != Dragging {
			return Action{}, false
		}
		rect := Normalize(m.startX, m.startY, m.pointerX, m.pointerY)
		if rect.Empty() {
			return Action{}, false
		}
		return m.resolve(Action{Kind: CaptureRegion, Region: rect}), true
	default:
		return Action{}, false
	}
	return Action{}, true
}

func (m *Machine) nudge(dx, dy float64) {
	m.pointerX, m.pointerY = m.clamp(m.pointerX+dx, m.pointerY+dy)
	if m.phase != Dragging {
		m.updateHover()
	}
}

// release ends a drag and classifies it as a click or a region.
func (m *Machine) release() Action {
	m.phase = Idle
	dx := math.Abs(m.pointerX - m.startX)
	dy := math.Abs(m.pointerY - m.startY)

	if dx < DragThreshold && dy < DragThreshold {
		if m.hover != nil {
			return m.resolve(Action{Kind: CaptureWindow, Window: *m.hover})
		}
		return m.resolve(m.fullscreen())
	}

	rect := Normalize(m.startX, m.startY, m.pointerX, m.pointerY)
	if rect.Empty() {
		return Action{}
	}
	return m.resolve(Action{Kind: CaptureRegion, Region: rect})
}

func (m *Machine) fullscreen() Action {
	return Action{
		Kind:   CaptureRegion,
		Region: platform.Rect{Width: m.width, Height: m.height},
	}
}

func (m *Machine) resolve(a Action) Action {
	m.phase = Resolved
	m.action = a
	return a
}

func (m *Machine) clamp(x, y float64) (float64, float64) {
	x = math.Max(0, math.Min(x, float64(m.width)))
	y = math.Max(0, math.Min(y, float64(m.height)))
	return x, y
}

func (m *Machine) updateHover() {
	if w, ok := registry.FindWindowAt(m.pointerX, m.pointerY, m.windows); ok {
		m.hover = &w
		return
	}
	m.hover = nil
}
