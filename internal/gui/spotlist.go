// Spot list view over a spot model
package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/interaction"
	"raw-photo-editor/internal/spots"
)

// SpotListView shows the spots of one tool with an enable check per row.
// Row and button actions go through the interaction.SpotList controller.
type SpotListView struct {
	ctrl   *interaction.SpotList
	logger *logrus.Logger

	list        *widget.List
	appendBtn   *widget.Button
	interactive *widget.Check
	vbox        *fyne.Container

	onInteractive func(view *SpotListView, on bool)
	selecting     bool
}

func NewSpotListView(ctrl *interaction.SpotList, logger *logrus.Logger) *SpotListView {
	v := &SpotListView{
		ctrl:   ctrl,
		logger: logger,
	}
	v.initializeUI()
	ctrl.OnRowChanged(v.rowChanged)
	ctrl.Model().OnRowChanged(func(int) { v.list.Refresh() })
	return v
}

func (v *SpotListView) initializeUI() {
	model := v.ctrl.Model()

	v.list = widget.NewList(
		model.RowCount,
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewCheck("", nil),
				widget.NewLabel("Spot name"),
			)
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			spot, err := model.Spot(id)
			if err != nil {
				return
			}
			hbox := item.(*fyne.Container)
			check := hbox.Objects[0].(*widget.Check)
			label := hbox.Objects[1].(*widget.Label)

			check.OnChanged = nil
			check.SetChecked(spot.Enabled)
			check.OnChanged = func(on bool) {
				if err := model.SetEnabled(id, on); err != nil {
					v.logger.WithError(err).Warn("GUI: Toggling spot failed")
				}
			}
			label.SetText(fmt.Sprintf("%s (%d, %d)", spot.Name, spot.X, spot.Y))
		},
	)
	v.list.OnSelected = func(id widget.ListItemID) {
		if v.selecting {
			return
		}
		v.ctrl.SetCurrentIndex(model.Index(id, 0))
	}

	scroll := container.NewVScroll(v.list)
	scroll.SetMinSize(fyne.NewSize(220, 140))

	v.appendBtn = widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), func() {
		v.SetAppendMode(!v.ctrl.AppendMode())
	})
	deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		v.KeyPress(interaction.KeyDelete, interaction.ModNone)
	})
	upBtn := widget.NewButtonWithIcon("", theme.MoveUpIcon(), v.ctrl.MoveSpotUp)
	downBtn := widget.NewButtonWithIcon("", theme.MoveDownIcon(), v.ctrl.MoveSpotDown)

	v.interactive = widget.NewCheck("Edit on image", func(on bool) {
		if err := v.ctrl.SetInteractionOngoing(on); err != nil {
			v.logger.WithError(err).Warn("GUI: Interactive spot preview failed")
		}
		if v.onInteractive != nil {
			v.onInteractive(v, on)
		}
	})

	v.vbox = container.NewVBox(
		scroll,
		container.NewHBox(v.appendBtn, deleteBtn, upBtn, downBtn),
		v.interactive,
	)
}

// Container returns the view's widgets.
func (v *SpotListView) Container() fyne.CanvasObject {
	return v.vbox
}

// Controller returns the list controller.
func (v *SpotListView) Controller() *interaction.SpotList {
	return v.ctrl
}

// SetInteractiveCallback is told when the user enters or leaves editing on
// the image.
func (v *SpotListView) SetInteractiveCallback(fn func(view *SpotListView, on bool)) {
	v.onInteractive = fn
}

// SetInteractive switches on-image editing without going through the check.
func (v *SpotListView) SetInteractive(on bool) {
	v.interactive.SetChecked(on)
}

// SetAppendMode arms or disarms spot creation on the next click.
func (v *SpotListView) SetAppendMode(on bool) {
	v.ctrl.SetAppendMode(on)
	if on {
		v.appendBtn.Importance = widget.HighImportance
	} else {
		v.appendBtn.Importance = widget.MediumImportance
	}
	v.appendBtn.Refresh()
}

// KeyPress forwards a key to the controller and refreshes the list when
// it was handled.
func (v *SpotListView) KeyPress(key interaction.Key, mods interaction.Modifier) bool {
	handled := v.ctrl.KeyPress(key, mods)
	if handled {
		v.list.Refresh()
	}
	return handled
}

// ImageClicked places or moves a spot at the source pixel (x, y). Append
// mode ends after one spot.
func (v *SpotListView) ImageClicked(x, y int) {
	if err := v.ctrl.ProcessCoordinates(x, y); err != nil {
		v.logger.WithError(err).Warn("GUI: Placing spot failed")
	}
	if v.ctrl.AppendMode() {
		v.SetAppendMode(false)
	}
	v.list.Refresh()
}

func (v *SpotListView) rowChanged(idx spots.Index) {
	v.selecting = true
	defer func() { v.selecting = false }()

	if idx.IsValid() {
		v.list.Select(idx.Row())
	} else {
		v.list.UnselectAll()
	}
}

// mapKey translates a fyne key event into the keys the spot list knows.
func mapKey(name fyne.KeyName, mods fyne.KeyModifier) (interaction.Key, interaction.Modifier) {
	key := interaction.KeyOther
	switch name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		key = interaction.KeyDelete
	case fyne.KeyUp:
		key = interaction.KeyUp
	case fyne.KeyDown:
		key = interaction.KeyDown
	}

	mod := interaction.ModNone
	if mods&fyne.KeyModifierControl != 0 {
		mod |= interaction.ModControl
	}
	if mods&fyne.KeyModifierShift != 0 {
		mod |= interaction.ModShift
	}
	if mods&fyne.KeyModifierAlt != 0 {
		mod |= interaction.ModAlt
	}
	return key, mod
}
