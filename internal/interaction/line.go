// Package interaction turns pointer and key input on the image view into
// spot model mutations, rotation guides and preview requests.
package interaction

import (
	"fmt"
	"math"
)

// EventType is the kind of a pointer event.
type EventType int

const (
	EventPress EventType = iota
	EventRelease
	EventMove
	EventDoubleClick
	EventScroll
)

func (t EventType) String() string {
	switch t {
	case EventPress:
		return "press"
	case EventRelease:
		return "release"
	case EventMove:
		return "move"
	case EventDoubleClick:
		return "double_click"
	case EventScroll:
		return "scroll"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Button identifies the pointer button of press and release events.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// Point is a position in view or scene coordinates. Y grows downwards.
type Point struct {
	X, Y float64
}

// Event is one pointer event in view coordinates.
type Event struct {
	Type   EventType
	Button Button
	Pos    Point
}

// Line is a segment from P1 to P2.
type Line struct {
	P1, P2 Point
}

// Status is reported when an interaction ends.
type Status int

const (
	StatusSuccess Status = iota
	StatusCancelled
)

// LineProxy is the live visual of a line being dragged.
type LineProxy interface {
	SetLine(l Line)
	Remove()
}

// Scene is the drawing surface under the view.
type Scene interface {
	MapToScene(p Point) Point
	AddLine(l Line) LineProxy
}

// UnexpectedEventType is the panic value for events the line state machine
// must never receive.
type UnexpectedEventType struct {
	Type EventType
}

func (e UnexpectedEventType) Error() string {
	return fmt.Sprintf("line interaction: unexpected %v event", e.Type)
}

// LineInteraction lets the user drag a line with the primary button, e.g.
// along a horizon that should become level.
//
// Idle --press--> Dragging --move--> Dragging --release--> Idle
type LineInteraction struct {
	scene      Scene
	line       Line
	proxy      LineProxy
	dragging   bool
	onFinished func(Status)
}

// NewLineInteraction starts idle. onFinished may be nil.
func NewLineInteraction(scene Scene, onFinished func(Status)) *LineInteraction {
	return &LineInteraction{
		scene:      scene,
		onFinished: onFinished,
	}
}

// MouseAction feeds one event into the state machine. Only press, release
// and move are valid; anything else panics with UnexpectedEventType.
// Non primary buttons are ignored.
func (li *LineInteraction) MouseAction(ev Event) {
	switch ev.Type {
	case EventPress:
		if ev.Button != ButtonPrimary {
			return
		}
		if li.dragging {
			panic(fmt.Sprintf("line interaction: press while dragging at %v", ev.Pos))
		}
		pos := li.scene.MapToScene(ev.Pos)
		li.line = Line{P1: pos, P2: pos}
		li.proxy = li.scene.AddLine(li.line)
		li.dragging = true

	case EventRelease:
		if ev.Button != ButtonPrimary || !li.dragging {
			return
		}
		li.proxy.Remove()
		li.proxy = nil
		li.dragging = false
		if li.onFinished != nil {
			li.onFinished(StatusSuccess)
		}

	case EventMove:
		if !li.dragging {
			return
		}
		li.line.P2 = li.scene.MapToScene(ev.Pos)
		li.proxy.SetLine(li.line)

	default:
		panic(UnexpectedEventType{Type: ev.Type})
	}
}

// Dragging reports whether a line is being drawn.
func (li *LineInteraction) Dragging() bool {
	return li.dragging
}

// Line returns the last drawn line in scene coordinates.
func (li *LineInteraction) Line() Line {
	return li.line
}

// Angle of the last drawn line, see Angle.
func (li *LineInteraction) Angle() float64 {
	return Angle(li.line)
}

// Angle returns the line's angle in degrees against the horizontal, in
// (-90, 90]. Lines going up to the right on screen are positive.
func Angle(l Line) float64 {
	if l.P1.X == l.P2.X {
		return 90.0
	}
	m := -(l.P1.Y - l.P2.Y) / (l.P1.X - l.P2.X)
	return math.Atan(m) * 180.0 / math.Pi
}
