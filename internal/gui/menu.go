// Menu handler for file and preset actions
package gui

import (
	"context"
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/filters"
	imgio "raw-photo-editor/internal/io"
	"raw-photo-editor/internal/pipeline"
	"raw-photo-editor/internal/preset"
	"raw-photo-editor/internal/settings"
)

// MenuHandler handles menu actions
type MenuHandler struct {
	window    fyne.Window
	registry  *filters.Registry
	processor *pipeline.Processor
	loader    *imgio.ImageLoader
	settings  *settings.Settings
	logger    *logrus.Logger

	onImageLoaded  func(string)
	onImageSaved   func(string)
	onPresetLoaded func(string)
	onError        func(string, error)
}

func NewMenuHandler(window fyne.Window, registry *filters.Registry, processor *pipeline.Processor,
	loader *imgio.ImageLoader, s *settings.Settings, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		window:    window,
		registry:  registry,
		processor: processor,
		loader:    loader,
		settings:  s,
		logger:    logger,
	}
}

func (mh *MenuHandler) GetMainMenu() *fyne.MainMenu {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mh.openImage),
		fyne.NewMenuItem("Save Image...", mh.saveImage),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", func() {
			mh.window.Close()
		}),
	)

	presetMenu := fyne.NewMenu("Presets",
		fyne.NewMenuItem("Load Preset...", mh.loadPreset),
		fyne.NewMenuItem("Save Preset...", mh.savePreset),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset All", mh.resetAll),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mh.showAbout),
	)

	return fyne.NewMainMenu(fileMenu, presetMenu, helpMenu)
}

// OpenPath loads path as the new photo and runs a full preview pass.
func (mh *MenuHandler) OpenPath(path string) error {
	mh.logger.WithField("filepath", path).Info("Loading image")

	if err := mh.processor.Open(path); err != nil {
		return err
	}
	if _, err := mh.processor.Update(context.Background(), pipeline.Request(filters.PhaseRGB)); err != nil {
		return err
	}

	mh.settings.LastOpenDir = filepath.Dir(path)
	if err := mh.settings.SaveToFile(settings.DefaultPath()); err != nil {
		mh.logger.WithError(err).Warn("Failed to remember last directory")
	}

	if mh.onImageLoaded != nil {
		mh.onImageLoaded(path)
	}
	return nil
}

// SavePath renders the photo at full resolution and writes it to path.
func (mh *MenuHandler) SavePath(path string) error {
	final := pipeline.UpdateRequest{
		Phase:    filters.PhaseRGB,
		SubPhase: pipeline.AllFilters,
		Mode:     pipeline.ModeFinal,
	}
	if _, err := mh.processor.Update(context.Background(), final); err != nil {
		return err
	}
	if err := mh.loader.Save(mh.processor.Result(), mh.processor.WorkSpace(), path); err != nil {
		return err
	}

	// back to the preview buffers for further editing
	mh.processor.Schedule(pipeline.Request(filters.PhaseRGB))

	if mh.onImageSaved != nil {
		mh.onImageSaved(path)
	}
	return nil
}

func (mh *MenuHandler) openImage() {
	mh.logger.Info("Opening file dialog for image selection")

	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		if err := mh.OpenPath(reader.URI().Path()); err != nil {
			mh.showError("Failed to Load Image", err)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter(imgio.SupportedExtensions()))
	if dir := mh.settings.LastOpenDir; dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fileDialog.SetLocation(lister)
		}
	}
	fileDialog.Show()
}

func (mh *MenuHandler) saveImage() {
	if mh.processor.Result() == nil {
		mh.showError("No Image", fmt.Errorf("no image loaded to save"))
		return
	}

	mh.logger.Info("Opening file dialog for image saving")

	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		// the loader writes by path
		writer.Close()

		if err := mh.SavePath(path); err != nil {
			mh.showError("Failed to Save Image", err)
		}
	}, mh.window)

	fileDialog.SetFileName("edited.jpg")
	fileDialog.SetFilter(storage.NewExtensionFileFilter(imgio.SupportedExtensions()))
	fileDialog.Show()
}

func (mh *MenuHandler) loadPreset() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		p, err := preset.Load(path)
		if err != nil {
			mh.showError("Failed to Load Preset", err)
			return
		}
		if err := p.Apply(mh.registry); err != nil {
			mh.showError("Failed to Apply Preset", err)
			return
		}
		mh.logger.WithField("filepath", path).Info("Preset applied")
		mh.processor.Schedule(pipeline.Request(filters.PhaseRGB))

		if mh.onPresetLoaded != nil {
			mh.onPresetLoaded(path)
		}
	}, mh.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".yaml", ".yml"}))
	fileDialog.Show()
}

func (mh *MenuHandler) savePreset() {
	fileDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mh.showError("File Dialog Error", err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := preset.Save(path, preset.Capture(mh.registry)); err != nil {
			mh.showError("Failed to Save Preset", err)
			return
		}
		mh.logger.WithField("filepath", path).Info("Preset saved")
	}, mh.window)

	fileDialog.SetFileName("preset.yaml")
	fileDialog.Show()
}

func (mh *MenuHandler) resetAll() {
	for _, f := range mh.registry.Filters() {
		f.Config().Reset()
		if owner, ok := f.(filters.SpotOwner); ok {
			owner.Spots().Clear()
		}
	}
	mh.logger.Info("All filters reset")
	if mh.processor.Result() != nil {
		mh.processor.Schedule(pipeline.Request(filters.PhaseRGB))
	}
}

func (mh *MenuHandler) showAbout() {
	content := container.NewVBox(
		widget.NewLabel("Raw Photo Editor"),
		widget.NewSeparator(),
		widget.NewLabel("Phase ordered filter pipeline with"),
		widget.NewLabel("spot based local edits and live preview."),
		widget.NewSeparator(),
		widget.NewLabel("Built with Go, Fyne v2.6 and OpenCV"),
	)

	aboutDialog := dialog.NewCustom("About", "Close", content, mh.window)
	aboutDialog.Resize(fyne.NewSize(400, 250))
	aboutDialog.Show()
}

func (mh *MenuHandler) showError(title string, err error) {
	if mh.onError != nil {
		mh.onError(title, err)
		return
	}
	mh.logger.WithError(err).Error(title)
	dialog.ShowError(err, mh.window)
}

func (mh *MenuHandler) SetCallbacks(onImageLoaded, onImageSaved, onPresetLoaded func(string), onError func(string, error)) {
	mh.onImageLoaded = onImageLoaded
	mh.onImageSaved = onImageSaved
	mh.onPresetLoaded = onPresetLoaded
	mh.onError = onError
}
