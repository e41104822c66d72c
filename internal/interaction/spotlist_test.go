package interaction

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/pipeline"
	"raw-photo-editor/internal/spots"
)

type fakeHost struct {
	snapshot *core.Image
	updates  []pipeline.UpdateRequest
	previews []*core.Image
}

func (h *fakeHost) AfterLocalEdit() *core.Image { return h.snapshot }

func (h *fakeHost) Update(_ context.Context, req pipeline.UpdateRequest) (pipeline.PassStats, error) {
	h.updates = append(h.updates, req)
	return pipeline.PassStats{}, nil
}

func (h *fakeHost) UpdatePreviewImage(img *core.Image, _ bool) error {
	h.previews = append(h.previews, img.Clone())
	return nil
}

func (h *fakeHost) close() {
	for _, p := range h.previews {
		p.Close()
	}
}

type fakeTool struct {
	states []bool
}

func (t *fakeTool) SetActive(active bool) { t.states = append(t.states, active) }

type noSettings struct{}

func (noSettings) GetInt(string) int { return 0 }

func newList(t *testing.T) (*SpotList, *fakeHost, *fakeTool) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	host := &fakeHost{}
	tool := &fakeTool{}
	t.Cleanup(host.close)
	sl := NewSpotList(spots.NewModel(), spots.NewLocalAdjustSpot, tool, host, noSettings{}, logger)
	return sl, host, tool
}

func TestProcessCoordinatesAppends(t *testing.T) {
	sl, host, tool := newList(t)
	var rows []int
	sl.OnRowChanged(func(idx spots.Index) { rows = append(rows, idx.Row()) })

	sl.SetAppendMode(true)
	require.NoError(t, sl.ProcessCoordinates(10, 20))
	require.NoError(t, sl.ProcessCoordinates(30, 40))

	m := sl.Model()
	require.Equal(t, 2, m.RowCount())
	s, _ := m.Spot(1)
	assert.Equal(t, 30, s.X)
	assert.Equal(t, 40, s.Y)
	assert.Equal(t, "Spot", s.Name)
	assert.Equal(t, 1, sl.CurrentIndex().Row())
	assert.Equal(t, []int{0, 1}, rows)

	assert.Len(t, host.updates, 2)
	assert.Equal(t, filters.PhaseLocalEdit, host.updates[0].Phase)
	assert.Equal(t, []bool{true, true}, tool.states)
}

func TestProcessCoordinatesMovesSelection(t *testing.T) {
	sl, host, _ := newList(t)

	require.NoError(t, sl.ProcessCoordinates(1, 1))
	assert.Equal(t, 0, sl.Model().RowCount(), "no selection, nothing to move")
	assert.Len(t, host.updates, 1)

	sl.SetAppendMode(true)
	require.NoError(t, sl.ProcessCoordinates(1, 1))
	sl.SetAppendMode(false)
	require.NoError(t, sl.ProcessCoordinates(7, 8))

	s, _ := sl.Model().Spot(0)
	assert.Equal(t, 7, s.X)
	assert.Equal(t, 1, sl.Model().RowCount())
}

func TestKeyPress(t *testing.T) {
	sl, _, _ := newList(t)
	sl.SetAppendMode(true)
	for i := 0; i < 3; i++ {
		require.NoError(t, sl.ProcessCoordinates(i, i))
		require.NoError(t, sl.Model().SetName(i, string(rune('a'+i))))
	}
	names := func() []string {
		var out []string
		for _, s := range sl.Model().Spots() {
			out = append(out, s.Name)
		}
		return out
	}

	assert.True(t, sl.KeyPress(KeyUp, ModControl))
	assert.Equal(t, []string{"a", "c", "b"}, names())
	assert.Equal(t, 1, sl.CurrentIndex().Row())

	assert.True(t, sl.KeyPress(KeyDown, ModControl))
	assert.True(t, sl.KeyPress(KeyDown, ModControl), "move past the end is swallowed")
	assert.Equal(t, []string{"a", "b", "c"}, names())
	assert.Equal(t, 2, sl.CurrentIndex().Row())

	assert.True(t, sl.KeyPress(KeyDelete, ModNone))
	assert.Equal(t, []string{"a", "b"}, names())
	assert.Equal(t, 1, sl.CurrentIndex().Row(), "selection moves to the new last row")

	assert.False(t, sl.KeyPress(KeyUp, ModNone))
	assert.False(t, sl.KeyPress(KeyDelete, ModShift))
	assert.False(t, sl.KeyPress(KeyOther, ModControl))
}

func TestDeleteLastSpotDeactivatesTool(t *testing.T) {
	sl, _, tool := newList(t)
	sl.SetAppendMode(true)
	require.NoError(t, sl.ProcessCoordinates(0, 0))

	require.NoError(t, sl.DeleteSpot())
	assert.False(t, sl.CurrentIndex().IsValid())
	assert.Equal(t, []bool{true, false}, tool.states)

	assert.ErrorIs(t, sl.DeleteSpot(), spots.ErrIndexOutOfRange)
}

func TestToggleTriggersPreview(t *testing.T) {
	sl, host, tool := newList(t)
	sl.SetAppendMode(true)
	require.NoError(t, sl.ProcessCoordinates(0, 0))
	host.updates = nil

	require.NoError(t, sl.Model().SetName(0, "renamed"))
	assert.Empty(t, host.updates, "edits other than the check state do not re-run")

	require.NoError(t, sl.Model().SetEnabled(0, false))
	assert.Len(t, host.updates, 1)
	assert.Equal(t, false, tool.states[len(tool.states)-1])
}

func TestInteractionUsesQuickPreview(t *testing.T) {
	sl, host, _ := newList(t)
	host.snapshot = core.NewFilledImage(16, 16, core.RGB, 0.5, 0.5, 0.5)
	defer host.snapshot.Close()

	require.NoError(t, sl.SetInteractionOngoing(true))
	assert.Empty(t, host.previews, "nothing to show without spots")

	sl.SetAppendMode(true)
	require.NoError(t, sl.ProcessCoordinates(8, 8))
	assert.Empty(t, host.updates)
	require.Len(t, host.previews, 1)
	assert.Equal(t, core.RGB, host.previews[0].ColorSpace())
	assert.Equal(t, core.RGB, host.snapshot.ColorSpace(), "the snapshot is not modified")

	require.NoError(t, sl.SetInteractionOngoing(false))
	assert.Len(t, host.updates, 1, "leaving interaction runs the full pipeline")
	require.NoError(t, sl.SetInteractionOngoing(true))
	assert.Len(t, host.previews, 2, "entering interaction shows existing spots")

	require.NoError(t, sl.SetInteractionOngoing(false))
	require.NoError(t, sl.UpdatePreview())
	assert.Len(t, host.updates, 3)
}

func TestInteractionWithoutSnapshotRunsPipeline(t *testing.T) {
	sl, host, _ := newList(t)
	sl.SetAppendMode(true)
	require.NoError(t, sl.ProcessCoordinates(0, 0))
	require.NoError(t, sl.SetInteractionOngoing(true))
	assert.Len(t, host.updates, 2)
}
