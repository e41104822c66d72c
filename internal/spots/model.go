package spots

import (
	"fmt"
	"math"
	"slices"

	"raw-photo-editor/internal/core"
)

// NoMove is returned by MoveRow when the spot cannot move that way.
const NoMove = -1

// Role names what the last mutation touched, so views can tell an
// enable/disable toggle apart from other edits.
type Role int

const (
	RoleNone Role = iota
	RoleCheckState
	RoleEdit
	RolePosition
	RoleStructure
)

// Index addresses one cell of the list display. The zero Index is invalid.
type Index struct {
	row, col int
	valid    bool
}

func (i Index) Row() int      { return i.row }
func (i Index) Column() int   { return i.col }
func (i Index) IsValid() bool { return i.valid }

// Model is the ordered spot list of one tool. Row order is display order
// and processing order. It is owned by the UI goroutine.
type Model struct {
	spots     []*Spot
	lastRole  Role
	listeners []func(row int)
}

func NewModel() *Model {
	return &Model{
		spots: make([]*Spot, 0),
	}
}

// RowCount returns the number of spots.
func (m *Model) RowCount() int {
	return len(m.spots)
}

// Index returns the cell at row/col; only column 0 exists.
func (m *Model) Index(row, col int) Index {
	if row < 0 || row >= len(m.spots) || col != 0 {
		return Index{}
	}
	return Index{row: row, col: col, valid: true}
}

// Spot returns the spot in row.
func (m *Model) Spot(row int) (*Spot, error) {
	if err := m.checkRow(row); err != nil {
		return nil, err
	}
	return m.spots[row], nil
}

// Spots returns the spots in row order. The slice is a copy; the spots are not.
func (m *Model) Spots() []*Spot {
	out := make([]*Spot, len(m.spots))
	copy(out, m.spots)
	return out
}

// LastChangedRole reports what the most recent mutation changed.
func (m *Model) LastChangedRole() Role {
	return m.lastRole
}

// OnRowChanged registers fn to be called with the affected row after every
// mutation. Removals report the first removed row, which may equal the new
// RowCount.
func (m *Model) OnRowChanged(fn func(row int)) {
	m.listeners = append(m.listeners, fn)
}

// AppendSpot adds spot at the end and returns its row.
func (m *Model) AppendSpot(spot *Spot) int {
	m.spots = append(m.spots, spot)
	row := len(m.spots) - 1
	m.changed(row, RoleStructure)
	return row
}

// RemoveRows removes count spots starting at start.
func (m *Model) RemoveRows(start, count int) error {
	if start < 0 || count < 0 || start+count > len(m.spots) {
		return fmt.Errorf("%w: remove %d rows at %d of %d", ErrIndexOutOfRange, count, start, len(m.spots))
	}
	if count == 0 {
		return nil
	}
	m.spots = slices.Delete(m.spots, start, start+count)
	m.changed(start, RoleStructure)
	return nil
}

// MoveRow swaps the spot at index with its neighbour in direction (-1 up,
// +1 down) and returns the new row, or NoMove at the boundary. Both rows
// are reported as changed.
func (m *Model) MoveRow(index, direction int) int {
	if direction != -1 && direction != 1 {
		return NoMove
	}
	if index < 0 || index >= len(m.spots) {
		return NoMove
	}
	target := index + direction
	if target < 0 || target >= len(m.spots) {
		return NoMove
	}
	m.spots[index], m.spots[target] = m.spots[target], m.spots[index]
	m.changed(index, RoleStructure)
	m.changed(target, RoleStructure)
	return target
}

// SetSpotPos moves the spot in row.
func (m *Model) SetSpotPos(row, x, y int) error {
	if err := m.checkRow(row); err != nil {
		return err
	}
	m.spots[row].SetPos(x, y)
	m.changed(row, RolePosition)
	return nil
}

// SetEnabled toggles the spot's check state.
func (m *Model) SetEnabled(row int, enabled bool) error {
	if err := m.checkRow(row); err != nil {
		return err
	}
	m.spots[row].Enabled = enabled
	m.changed(row, RoleCheckState)
	return nil
}

// SetName renames the spot.
func (m *Model) SetName(row int, name string) error {
	if err := m.checkRow(row); err != nil {
		return err
	}
	m.spots[row].Name = name
	m.changed(row, RoleEdit)
	return nil
}

// SetEffectParams updates the kind specific settings of a spot.
func (m *Model) SetEffectParams(row int, params map[string]float64) error {
	if err := m.checkRow(row); err != nil {
		return err
	}
	if err := m.spots[row].Effect.SetParams(params); err != nil {
		return err
	}
	m.changed(row, RoleEdit)
	return nil
}

// Clear removes every spot.
func (m *Model) Clear() {
	if len(m.spots) == 0 {
		return
	}
	clear(m.spots)
	m.spots = m.spots[:0]
	m.changed(0, RoleStructure)
}

// HasEnabledSpots is true iff at least one spot is enabled.
func (m *Model) HasEnabledSpots() bool {
	for _, s := range m.spots {
		if s.Enabled {
			return true
		}
	}
	return false
}

// RunFiltering applies every enabled spot in row order. img must be in Lch.
// Spot positions are in source photo pixels and follow img.Scale().
func (m *Model) RunFiltering(img *core.Image) error {
	if img.ColorSpace() != core.Lch {
		return fmt.Errorf("spot filtering needs Lch input, got %v", img.ColorSpace())
	}
	px, err := img.Pixels()
	if err != nil {
		return err
	}
	scale := img.Scale()
	for row, s := range m.spots {
		if !s.Enabled || s.Effect == nil {
			continue
		}
		x := int(math.Round(float64(s.X) * scale))
		y := int(math.Round(float64(s.Y) * scale))
		if err := s.Effect.Apply(px, img.Width(), img.Height(), x, y, scale); err != nil {
			return fmt.Errorf("spot %d (%s): %w", row, s.Name, err)
		}
	}
	return nil
}

func (m *Model) checkRow(row int) error {
	if row < 0 || row >= len(m.spots) {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, len(m.spots))
	}
	return nil
}

func (m *Model) changed(row int, role Role) {
	m.lastRole = role
	for _, fn := range m.listeners {
		fn(row)
	}
}
