// Luminance histogram display
package gui

import (
	"image"
	"image/color"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var histogramColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

// HistogramView draws bin counts as bars scaled to the tallest bin.
type HistogramView struct {
	bins   []int
	raster *canvas.Raster
}

func NewHistogramView() *HistogramView {
	hv := &HistogramView{}
	hv.raster = canvas.NewRaster(hv.draw)
	hv.raster.SetMinSize(fyne.NewSize(256, 100))
	return hv
}

// Container returns the drawing surface.
func (hv *HistogramView) Container() fyne.CanvasObject {
	return hv.raster
}

// SetBins replaces the counts and redraws.
func (hv *HistogramView) SetBins(bins []int) {
	hv.bins = slices.Clone(bins)
	hv.raster.Refresh()
}

func (hv *HistogramView) draw(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if len(hv.bins) == 0 || w == 0 || h == 0 {
		return img
	}
	peak := slices.Max(hv.bins)
	if peak == 0 {
		return img
	}
	for x := 0; x < w; x++ {
		bar := hv.bins[x*len(hv.bins)/w] * h / peak
		for y := h - bar; y < h; y++ {
			img.SetNRGBA(x, y, histogramColor)
		}
	}
	return img
}
