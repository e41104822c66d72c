package interaction

import (
	"context"

	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/pipeline"
	"raw-photo-editor/internal/settings"
	"raw-photo-editor/internal/spots"
)

// Key is a key the spot list reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyDelete
	KeyUp
	KeyDown
)

// Modifier is a bit set of held modifier keys.
type Modifier int

const (
	ModNone    Modifier = 0
	ModControl Modifier = 1 << iota
	ModShift
	ModAlt
)

// ToolActivator is the tool box that owns a spot list. It is switched
// active whenever the list has enabled spots.
type ToolActivator interface {
	SetActive(active bool)
}

// Host is the processor side the spot list drives.
type Host interface {
	AfterLocalEdit() *core.Image
	Update(ctx context.Context, req pipeline.UpdateRequest) (pipeline.PassStats, error)
	UpdatePreviewImage(img *core.Image, onlyHistogram bool) error
}

// SpotList is the controller behind a spot list view. It owns the
// selection and the append and interaction modes, and decides after each
// mutation how the preview is refreshed.
type SpotList struct {
	model    *spots.Model
	create   spots.CreateFunc
	tool     ToolActivator
	host     Host
	settings pipeline.SettingsReader
	logger   *logrus.Logger

	spotName           string
	appendOngoing      bool
	interactionOngoing bool
	current            spots.Index
	rowListeners       []func(spots.Index)
}

// NewSpotList wires a controller to model. tool is the owning tool box and
// may be nil.
func NewSpotList(model *spots.Model, create spots.CreateFunc, tool ToolActivator, host Host,
	s pipeline.SettingsReader, logger *logrus.Logger) *SpotList {
	sl := &SpotList{
		model:    model,
		create:   create,
		tool:     tool,
		host:     host,
		settings: s,
		logger:   logger,
		spotName: "Spot",
	}
	model.OnRowChanged(sl.dataChanged)
	return sl
}

// SetSpotName sets the name given to appended spots.
func (sl *SpotList) SetSpotName(name string) {
	sl.spotName = name
}

// Model returns the spot model the list shows.
func (sl *SpotList) Model() *spots.Model {
	return sl.model
}

// OnRowChanged registers fn to be told about selection changes.
func (sl *SpotList) OnRowChanged(fn func(spots.Index)) {
	sl.rowListeners = append(sl.rowListeners, fn)
}

// CurrentIndex is the selected row, invalid when nothing is selected.
func (sl *SpotList) CurrentIndex() spots.Index {
	return sl.current
}

// SetCurrentIndex selects idx.
func (sl *SpotList) SetCurrentIndex(idx spots.Index) {
	if idx == sl.current {
		return
	}
	sl.current = idx
	sl.emitRowChanged()
}

// SetAppendMode makes the next ProcessCoordinates call append a spot
// instead of moving the selected one.
func (sl *SpotList) SetAppendMode(on bool) {
	sl.appendOngoing = on
}

// AppendMode reports whether clicks append spots.
func (sl *SpotList) AppendMode() bool {
	return sl.appendOngoing
}

// SetInteractionOngoing enters or leaves interactive editing. Entering runs
// the spots once so they are visible on the pre-spot snapshot right away.
// Leaving runs the pipeline from the local edit phase, since the quick
// previews skipped every later phase.
func (sl *SpotList) SetInteractionOngoing(on bool) error {
	was := sl.interactionOngoing
	sl.interactionOngoing = on
	switch {
	case on && sl.model.RowCount() > 0:
		return sl.UpdatePreview()
	case !on && was:
		return sl.UpdatePreview()
	}
	return nil
}

// InteractionOngoing reports whether interactive editing is active.
func (sl *SpotList) InteractionOngoing() bool {
	return sl.interactionOngoing
}

// KeyPress handles Delete, Ctrl+Up and Ctrl+Down. It returns false for
// keys the view should handle itself.
func (sl *SpotList) KeyPress(key Key, mods Modifier) bool {
	switch {
	case key == KeyDelete && mods == ModNone:
		if sl.current.IsValid() {
			if err := sl.DeleteSpot(); err != nil {
				sl.logger.WithError(err).Warn("Delete spot failed")
			}
		}
		return true
	case key == KeyDown && mods == ModControl:
		sl.MoveSpotDown()
		return true
	case key == KeyUp && mods == ModControl:
		sl.MoveSpotUp()
		return true
	}
	return false
}

// DeleteSpot removes the selected spot. The selection stays on the same
// row, or moves to the new last row.
func (sl *SpotList) DeleteSpot() error {
	row := sl.current.Row()
	if err := sl.model.RemoveRows(row, 1); err != nil {
		return err
	}
	if row >= sl.model.RowCount() {
		row = sl.model.RowCount() - 1
	}
	sl.current = sl.model.Index(row, 0)
	err := sl.UpdatePreview()
	sl.emitRowChanged()
	return err
}

// MoveSpotDown moves the selected spot one row down.
func (sl *SpotList) MoveSpotDown() {
	sl.moveSpot(+1)
}

// MoveSpotUp moves the selected spot one row up.
func (sl *SpotList) MoveSpotUp() {
	sl.moveSpot(-1)
}

func (sl *SpotList) moveSpot(direction int) {
	if !sl.current.IsValid() {
		return
	}
	newRow := sl.model.MoveRow(sl.current.Row(), direction)
	if newRow == spots.NoMove {
		return
	}
	sl.SetCurrentIndex(sl.model.Index(newRow, 0))
	if err := sl.UpdatePreview(); err != nil {
		sl.logger.WithError(err).Warn("Preview after spot move failed")
	}
}

// ProcessCoordinates handles a click on the image at (x, y) in source
// pixels: in append mode a new spot is created there and selected,
// otherwise the selected spot moves there.
func (sl *SpotList) ProcessCoordinates(x, y int) error {
	if sl.appendOngoing {
		spot := sl.create()
		spot.SetPos(x, y)
		spot.Name = sl.spotName

		row := sl.model.AppendSpot(spot)
		sl.SetCurrentIndex(sl.model.Index(row, 0))
	} else if sl.current.IsValid() {
		if err := sl.model.SetSpotPos(sl.current.Row(), x, y); err != nil {
			return err
		}
	}
	return sl.UpdatePreview()
}

// UpdatePreview refreshes the display. While interacting only this list's
// spots are re-run, on the snapshot taken before the local edit phase;
// otherwise the pipeline runs from the local edit phase on.
func (sl *SpotList) UpdatePreview() error {
	if sl.interactionOngoing {
		if snapshot := sl.host.AfterLocalEdit(); snapshot != nil {
			return sl.quickPreview(snapshot)
		}
	}
	_, err := sl.host.Update(context.Background(), pipeline.Request(filters.PhaseLocalEdit))
	return err
}

func (sl *SpotList) quickPreview(snapshot *core.Image) error {
	img := snapshot.Clone()
	defer img.Close()

	if err := img.ToLch(); err != nil {
		return err
	}
	if err := sl.model.RunFiltering(img); err != nil {
		return err
	}
	if err := img.LchToRGB(sl.settings.GetInt(settings.KeyWorkColor)); err != nil {
		return err
	}
	return sl.host.UpdatePreviewImage(img, false)
}

// UpdateToolActiveState switches the owning tool on iff a spot is enabled.
func (sl *SpotList) UpdateToolActiveState() {
	if sl.tool != nil {
		sl.tool.SetActive(sl.model.HasEnabledSpots())
	}
}

func (sl *SpotList) dataChanged(row int) {
	if sl.model.LastChangedRole() == spots.RoleCheckState {
		if err := sl.UpdatePreview(); err != nil {
			sl.logger.WithFields(logrus.Fields{
				"row":   row,
				"error": err,
			}).Warn("Preview after spot toggle failed")
		}
	}
	sl.UpdateToolActiveState()
}

func (sl *SpotList) emitRowChanged() {
	for _, fn := range sl.rowListeners {
		fn(sl.current)
	}
}
