package spots

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/core"
)

func namedModel(names ...string) *Model {
	m := NewModel()
	for _, n := range names {
		s := NewLocalAdjustSpot()
		s.Name = n
		m.AppendSpot(s)
	}
	return m
}

func names(m *Model) []string {
	out := make([]string, 0, m.RowCount())
	for _, s := range m.Spots() {
		out = append(out, s.Name)
	}
	return out
}

func TestAppendSpotReturnsRow(t *testing.T) {
	m := NewModel()
	assert.Equal(t, 0, m.AppendSpot(NewLocalAdjustSpot()))
	assert.Equal(t, 1, m.AppendSpot(NewRepairSpot()))
	assert.Equal(t, 2, m.RowCount())
	assert.Equal(t, RoleStructure, m.LastChangedRole())
}

func TestRemoveRows(t *testing.T) {
	m := namedModel("a", "b", "c", "d")

	require.NoError(t, m.RemoveRows(1, 2))
	assert.Equal(t, []string{"a", "d"}, names(m))

	err := m.RemoveRows(1, 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, []string{"a", "d"}, names(m), "failed removal must not touch the model")

	assert.ErrorIs(t, m.RemoveRows(-1, 1), ErrIndexOutOfRange)
	assert.NoError(t, m.RemoveRows(2, 0))
}

func TestMoveRow(t *testing.T) {
	m := namedModel("a", "b", "c")

	assert.Equal(t, NoMove, m.MoveRow(0, -1))
	assert.Equal(t, NoMove, m.MoveRow(2, +1))
	assert.Equal(t, NoMove, m.MoveRow(1, 2))
	assert.Equal(t, NoMove, m.MoveRow(5, -1))
	assert.Equal(t, []string{"a", "b", "c"}, names(m))

	assert.Equal(t, 1, m.MoveRow(0, +1))
	assert.Equal(t, []string{"b", "a", "c"}, names(m))
	assert.Equal(t, 1, m.MoveRow(2, -1))
	assert.Equal(t, []string{"b", "c", "a"}, names(m))
}

func TestSetSpotPos(t *testing.T) {
	m := namedModel("a")
	require.NoError(t, m.SetSpotPos(0, 12, 34))

	s, err := m.Spot(0)
	require.NoError(t, err)
	assert.Equal(t, 12, s.X)
	assert.Equal(t, 34, s.Y)
	assert.Equal(t, RolePosition, m.LastChangedRole())

	assert.ErrorIs(t, m.SetSpotPos(1, 0, 0), ErrIndexOutOfRange)
}

func TestHasEnabledSpots(t *testing.T) {
	m := namedModel("a", "b")
	assert.True(t, m.HasEnabledSpots())

	require.NoError(t, m.SetEnabled(0, false))
	assert.True(t, m.HasEnabledSpots())
	assert.Equal(t, RoleCheckState, m.LastChangedRole())

	require.NoError(t, m.SetEnabled(1, false))
	assert.False(t, m.HasEnabledSpots())

	assert.False(t, NewModel().HasEnabledSpots())
}

func TestRowChangedNotifications(t *testing.T) {
	m := namedModel("a", "b", "c")
	var rows []int
	m.OnRowChanged(func(row int) { rows = append(rows, row) })

	m.AppendSpot(NewLocalAdjustSpot())
	_ = m.SetName(1, "renamed")
	m.MoveRow(0, +1)
	_ = m.RemoveRows(2, 1)
	m.MoveRow(0, -1)

	assert.Equal(t, []int{3, 1, 0, 1, 2}, rows)
	assert.Equal(t, RoleStructure, m.LastChangedRole())
}

func TestRemovedSpotsAreNotRetained(t *testing.T) {
	m := namedModel("a", "b", "c", "d")
	require.NoError(t, m.RemoveRows(1, 2))
	assert.Equal(t, 2, m.RowCount())

	tail := m.spots[len(m.spots):4]
	assert.Equal(t, []*Spot{nil, nil}, tail)

	m.Clear()
	assert.Equal(t, []*Spot{nil, nil}, m.spots[:2])
}

func TestIndex(t *testing.T) {
	m := namedModel("a", "b")
	assert.True(t, m.Index(1, 0).IsValid())
	assert.Equal(t, 1, m.Index(1, 0).Row())
	assert.False(t, m.Index(2, 0).IsValid())
	assert.False(t, m.Index(0, 1).IsValid())
}

func TestRunFilteringNeedsLch(t *testing.T) {
	img := core.NewFilledImage(8, 8, core.RGB, 0.5, 0.5, 0.5)
	defer img.Close()

	assert.Error(t, namedModel("a").RunFiltering(img))
}

func TestRunFilteringSkipsDisabled(t *testing.T) {
	img := core.NewFilledImage(16, 16, core.Lch, 50, 20, 90)
	defer img.Close()

	m := NewModel()
	s := NewLocalAdjustSpot()
	require.NoError(t, s.Effect.SetParams(map[string]float64{"radius": 4, "lightness": 20}))
	s.SetPos(8, 8)
	m.AppendSpot(s)
	require.NoError(t, m.SetEnabled(0, false))

	require.NoError(t, m.RunFiltering(img))
	px, err := img.Pixels()
	require.NoError(t, err)
	assert.InDelta(t, 50, px[(8*16+8)*3], 1e-4)

	require.NoError(t, m.SetEnabled(0, true))
	require.NoError(t, m.RunFiltering(img))
	assert.InDelta(t, 70, px[(8*16+8)*3], 1e-4)
	assert.InDelta(t, 50, px[0], 1e-4, "corner is outside the radius")
}

func TestAppendRemoveRestoresModel(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("append then remove last restores count and order", prop.ForAll(
		func(initial []string) bool {
			m := namedModel(initial...)
			before := names(m)

			row := m.AppendSpot(NewLocalAdjustSpot())
			if err := m.RemoveRows(row, 1); err != nil {
				return false
			}

			after := names(m)
			if len(after) != len(before) {
				return false
			}
			for i := range before {
				if before[i] != after[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("moves past either end are no-ops", prop.ForAll(
		func(initial []string) bool {
			m := namedModel(initial...)
			return m.MoveRow(0, -1) == NoMove && m.MoveRow(m.RowCount()-1, +1) == NoMove
		},
		gen.SliceOfN(5, gen.AlphaString()).SuchThat(func(v []string) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}
