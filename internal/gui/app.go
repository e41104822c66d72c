// Main application window wiring the processor to the tool boxes
package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/interaction"
	imgio "raw-photo-editor/internal/io"
	"raw-photo-editor/internal/pipeline"
	"raw-photo-editor/internal/settings"
	"raw-photo-editor/internal/spots"
)

// Application represents the main editor window
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *logrus.Logger

	// Core components
	registry  *filters.Registry
	processor *pipeline.Processor
	loader    *imgio.ImageLoader
	settings  *settings.Settings

	// GUI components
	imageView   *ImageView
	histogram   *HistogramView
	toolBoxes   []*ToolBox
	spotViews   []*SpotListView
	activeSpots *SpotListView
	menuHandler *MenuHandler
	levelButton *widget.Button

	// Layout containers
	mainContent *container.Split
	rightPanels *container.Split
	statusCard  *widget.Card
	statsLabel  *widget.Label
}

func NewApplication(app fyne.App, logger *logrus.Logger, registry *filters.Registry,
	processor *pipeline.Processor, loader *imgio.ImageLoader, s *settings.Settings) *Application {
	window := app.NewWindow("Raw Photo Editor")
	window.Resize(fyne.NewSize(1600, 1000))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		registry:  registry,
		processor: processor,
		loader:    loader,
		settings:  s,
	}

	a.initializeCore()
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeCore() {
	// scheduled passes run on the fyne goroutine
	a.processor.SetDispatcher(fyne.Do)
}

func (a *Application) initializeGUI() {
	a.imageView = NewImageView(a.logger)
	a.histogram = NewHistogramView()
	a.statsLabel = widget.NewLabel("")
	a.menuHandler = NewMenuHandler(a.window, a.registry, a.processor, a.loader, a.settings, a.logger)

	for _, f := range a.processor.Pipeline().Filters() {
		tb := NewToolBox(f, a.processor, a.logger)
		a.toolBoxes = append(a.toolBoxes, tb)

		if owner, ok := f.(filters.SpotOwner); ok {
			ctrl := interaction.NewSpotList(owner.Spots(), owner.NewSpot, tb, a.processor, a.settings, a.logger)
			if f.ID() == filters.SpotRepairID {
				ctrl.SetSpotName("Repair")
			}
			view := NewSpotListView(ctrl, a.logger)
			tb.Add(view.Container())
			a.spotViews = append(a.spotViews, view)
		}

		if f.ID() == filters.RotateID {
			a.levelButton = widget.NewButton("Level with line", a.startLevelLine)
			tb.Add(a.levelButton)
		}
	}
}

func (a *Application) setupLayout() {
	boxes := container.NewVBox(lo.Map(a.toolBoxes, func(tb *ToolBox, _ int) fyne.CanvasObject {
		return tb.Container()
	})...)
	leftPanel := container.NewVScroll(boxes)
	leftPanel.SetMinSize(fyne.NewSize(340, 400))

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.menuHandler.openImage),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.menuHandler.saveImage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), a.menuHandler.resetAll),
	)
	centerPanel := container.NewBorder(toolbar, nil, nil, nil, container.NewPadded(a.imageView))

	a.statusCard = widget.NewCard("Status", "",
		widget.NewLabel("Open a photo to start editing"))

	a.rightPanels = container.NewVSplit(
		a.statusCard,
		container.NewVBox(
			widget.NewCard("Histogram", "", a.histogram.Container()),
			widget.NewCard("Last pass", "", a.statsLabel),
		),
	)
	a.rightPanels.SetOffset(0.2)

	centerAndRight := container.NewHSplit(centerPanel, a.rightPanels)
	centerAndRight.SetOffset(0.78)

	a.mainContent = container.NewHSplit(leftPanel, centerAndRight)
	a.mainContent.SetOffset(0.22)

	a.window.SetMainMenu(a.menuHandler.GetMainMenu())
	a.window.SetContent(a.mainContent)
}

func (a *Application) setupCallbacks() {
	a.processor.OnPreview(func(upd pipeline.PreviewUpdate) {
		fyne.Do(func() {
			if upd.Image != nil {
				a.imageView.SetImage(upd.Image, a.processor.SourceSize())
			}
			a.histogram.SetBins(upd.Histogram)
			a.statsLabel.SetText(fmt.Sprintf("%d filters, %d skipped, %d conversions, %v",
				len(upd.Stats.Ran), len(upd.Stats.Skipped), upd.Stats.Conversions, upd.Stats.Duration))
		})
	})

	a.menuHandler.SetCallbacks(
		// onImageLoaded
		func(path string) {
			a.updateStatusMessage(fmt.Sprintf("Loaded: %s", path))
			if a.settings.StartInInteractive && len(a.spotViews) > 0 {
				a.spotViews[0].SetInteractive(true)
			}
		},
		// onImageSaved
		func(path string) {
			a.showInfo("Image Saved", fmt.Sprintf("Image saved to:\n%s", path))
			a.updateStatusMessage(fmt.Sprintf("Saved: %s", path))
		},
		// onPresetLoaded
		func(path string) {
			a.updateStatusMessage(fmt.Sprintf("Preset applied: %s", path))
			a.updateMarkers()
		},
		a.showError,
	)

	a.imageView.SetLineFinished(a.levelWithLine)

	for _, view := range a.spotViews {
		view.SetInteractiveCallback(a.spotInteractionChanged)
		view.Controller().Model().OnRowChanged(func(int) { a.updateMarkers() })
	}

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if a.activeSpots == nil {
			return
		}
		key, mods := mapKey(ev.Name, 0)
		a.activeSpots.KeyPress(key, mods)
	})
	for _, name := range []fyne.KeyName{fyne.KeyUp, fyne.KeyDown} {
		shortcut := &desktop.CustomShortcut{KeyName: name, Modifier: fyne.KeyModifierControl}
		a.window.Canvas().AddShortcut(shortcut, func(fyne.Shortcut) {
			if a.activeSpots == nil {
				return
			}
			key, mods := mapKey(shortcut.KeyName, shortcut.Modifier)
			a.activeSpots.KeyPress(key, mods)
		})
	}
}

// OpenPath loads a photo given on the command line.
func (a *Application) OpenPath(path string) {
	if err := a.menuHandler.OpenPath(path); err != nil {
		a.showError("Failed to Load Image", err)
	}
}

func (a *Application) startLevelLine() {
	if a.processor.Result() == nil {
		return
	}
	if a.activeSpots != nil {
		a.activeSpots.SetInteractive(false)
	}
	a.imageView.SetMode(ViewLine)
	a.updateStatusMessage("Drag along a line that should be level")
}

func (a *Application) levelWithLine(angle float64) {
	rotate, err := a.registry.Filter(filters.RotateID)
	if err != nil {
		a.showError("Rotation Unavailable", err)
		return
	}
	newAngle, err := interaction.ApplyRotationGuide(rotate.Config(), angle)
	if err != nil {
		a.showError("Rotation Failed", err)
		return
	}
	a.imageView.SetMode(ViewNone)
	a.processor.Schedule(pipeline.Request(rotate.Phase()))
	a.updateStatusMessage(fmt.Sprintf("Rotation set to %.2f°", newAngle))
}

func (a *Application) spotInteractionChanged(view *SpotListView, on bool) {
	if !on {
		if a.activeSpots == view {
			a.activeSpots = nil
			a.imageView.SetMode(ViewNone)
			a.imageView.SetMarkers(nil)
		}
		return
	}

	previous := a.activeSpots
	a.activeSpots = view
	if previous != nil && previous != view {
		previous.SetInteractive(false)
	}
	a.imageView.SetMode(ViewSpots)
	a.imageView.SetSpotClicked(view.ImageClicked)
	a.updateMarkers()
}

func (a *Application) updateMarkers() {
	if a.activeSpots == nil {
		return
	}
	points := lo.Map(a.activeSpots.Controller().Model().Spots(), func(s *spots.Spot, _ int) image.Point {
		return s.Pos()
	})
	a.imageView.SetMarkers(points)
}

func (a *Application) updateStatusMessage(message string) {
	if a.statusCard != nil {
		a.statusCard.SetContent(widget.NewLabel(message))
	}
}

func (a *Application) ShowAndRun() {
	a.logger.Info("Showing main application window")

	a.window.SetCloseIntercept(func() {
		a.cleanup()
		a.app.Quit()
	})

	a.window.ShowAndRun()
}

func (a *Application) cleanup() {
	a.logger.Info("Cleaning up application resources")
	a.processor.Close()
}

func (a *Application) showError(title string, err error) {
	a.logger.WithError(err).Error(title)
	dialog.ShowError(err, a.window)
	a.updateStatusMessage(fmt.Sprintf("Error: %s", err.Error()))
}

func (a *Application) showInfo(title, message string) {
	a.logger.WithField("message", message).Info(title)
	dialog.ShowInformation(title, message, a.window)
}
