package gui

import (
	"context"
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/interaction"
	"raw-photo-editor/internal/pipeline"
	"raw-photo-editor/internal/spots"
)

func mouse(x, y float32, b desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: b}
}

func newTestView(t *testing.T) *ImageView {
	t.Helper()
	iv := NewImageView(logrus.New())
	iv.Resize(fyne.NewSize(200, 100))
	iv.SetImage(nil, image.Point{X: 100, Y: 50})
	return iv
}

func TestImageViewMapsToSource(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	iv := newTestView(t)
	p := iv.MapToScene(interaction.Point{X: 20, Y: 10})
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 5, p.Y, 1e-9)

	clamped := iv.MapToScene(interaction.Point{X: 500, Y: -3})
	assert.Equal(t, interaction.Point{X: 99, Y: 0}, clamped)
}

func TestImageViewSpotClicks(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	iv := newTestView(t)
	var got []image.Point
	iv.SetSpotClicked(func(x, y int) { got = append(got, image.Point{X: x, Y: y}) })

	iv.MouseDown(mouse(20, 10, desktop.MouseButtonPrimary))
	assert.Empty(t, got, "clicks are ignored outside spot mode")

	iv.SetMode(ViewSpots)
	iv.MouseDown(mouse(20, 10, desktop.MouseButtonPrimary))
	iv.MouseDown(mouse(40, 40, desktop.MouseButtonSecondary))
	assert.Equal(t, []image.Point{{X: 10, Y: 5}}, got)
}

func TestImageViewGuideLine(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	iv := newTestView(t)
	var angles []float64
	iv.SetLineFinished(func(angle float64) { angles = append(angles, angle) })
	iv.SetMode(ViewLine)

	iv.MouseDown(mouse(0, 50, desktop.MouseButtonPrimary))
	assert.Len(t, iv.overlay, 1)
	iv.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 0)}})
	iv.DragEnd()
	iv.MouseUp(mouse(100, 0, desktop.MouseButtonPrimary))

	require.Len(t, angles, 1, "release is reported once")
	assert.InDelta(t, 26.565, angles[0], 1e-3)
	assert.Empty(t, iv.overlay)
}

type viewHost struct {
	updates int
}

func (h *viewHost) AfterLocalEdit() *core.Image { return nil }

func (h *viewHost) Update(context.Context, pipeline.UpdateRequest) (pipeline.PassStats, error) {
	h.updates++
	return pipeline.PassStats{}, nil
}

func (h *viewHost) UpdatePreviewImage(*core.Image, bool) error { return nil }

type viewSettings struct{}

func (viewSettings) GetInt(string) int { return 0 }

func TestSpotListViewAppendAndDelete(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	host := &viewHost{}
	model := spots.NewModel()
	ctrl := interaction.NewSpotList(model, spots.NewLocalAdjustSpot, nil, host, viewSettings{}, logrus.New())
	v := NewSpotListView(ctrl, logrus.New())

	v.SetAppendMode(true)
	v.ImageClicked(12, 7)
	require.Equal(t, 1, model.RowCount())
	assert.False(t, ctrl.AppendMode(), "append mode ends after one spot")
	assert.Equal(t, 0, ctrl.CurrentIndex().Row())

	spot, err := model.Spot(0)
	require.NoError(t, err)
	assert.Equal(t, image.Point{X: 12, Y: 7}, spot.Pos())

	v.ImageClicked(30, 3)
	assert.Equal(t, image.Point{X: 30, Y: 3}, spot.Pos(), "clicks move the selected spot")

	assert.True(t, v.KeyPress(interaction.KeyDelete, interaction.ModNone))
	assert.Equal(t, 0, model.RowCount())
	assert.Equal(t, 3, host.updates)
}
