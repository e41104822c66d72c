// Package spots holds user placed image spots and the ordered model the spot
// list view and the local edit filters share.
package spots

import (
	"errors"
	"image"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange is returned for row arguments outside [0, RowCount).
var ErrIndexOutOfRange = errors.New("spot index out of range")

// Spot is a point annotation that localizes an edit. Kind specific settings
// live in Effect.
type Spot struct {
	ID      uuid.UUID
	Name    string
	Enabled bool
	X, Y    int
	Effect  Effect
}

// CreateFunc builds a new spot of the kind a tool manages.
type CreateFunc func() *Spot

// NewSpot returns an enabled, unnamed spot at the origin.
func NewSpot(effect Effect) *Spot {
	return &Spot{
		ID:      uuid.New(),
		Enabled: true,
		Effect:  effect,
	}
}

// NewLocalAdjustSpot is the CreateFunc of the local adjust tool.
func NewLocalAdjustSpot() *Spot {
	return NewSpot(NewLocalAdjust())
}

// NewRepairSpot is the CreateFunc of the repair tool.
func NewRepairSpot() *Spot {
	return NewSpot(NewRepair())
}

// SetPos moves the spot.
func (s *Spot) SetPos(x, y int) {
	s.X, s.Y = x, y
}

// Pos returns the spot position as an image point.
func (s *Spot) Pos() image.Point {
	return image.Point{X: s.X, Y: s.Y}
}

// Clone returns a deep copy that keeps the same identity.
func (s *Spot) Clone() *Spot {
	c := *s
	if s.Effect != nil {
		c.Effect = s.Effect.Clone()
	}
	return &c
}
