// Image file loading and saving
package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"raw-photo-editor/internal/core"
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader reads and writes image files through OpenCV.
type ImageLoader struct {
	logger      *logrus.Logger
	jpegQuality int
}

func NewImageLoader(logger *logrus.Logger, jpegQuality int) *ImageLoader {
	return &ImageLoader{
		logger:      logger,
		jpegQuality: jpegQuality,
	}
}

// Load reads path into an RGB float image.
func (il *ImageLoader) Load(path string) (*core.Image, error) {
	il.logger.WithField("path", path).Debug("Loading image")

	if !IsSupported(path) {
		return nil, fmt.Errorf("unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}
	defer mat.Close()

	img, err := core.FromBGR8(mat)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  img.Width(),
		"height": img.Height(),
	}).Info("Image loaded successfully")

	return img, nil
}

// Save writes img rendered in the work space. JPEG files use the loader's
// quality setting.
func (il *ImageLoader) Save(img *core.Image, work core.ColorSpace, path string) error {
	il.logger.WithField("path", path).Debug("Saving image")

	if img.Empty() {
		return fmt.Errorf("cannot save empty image")
	}
	if !IsSupported(path) {
		return fmt.Errorf("unsupported image format: %s", path)
	}

	bgr, err := img.ToBGR8(work)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	defer bgr.Close()

	var ok bool
	if isJPEG(path) {
		ok = gocv.IMWriteWithParams(path, bgr, []int{gocv.IMWriteJpegQuality, il.jpegQuality})
	} else {
		ok = gocv.IMWrite(path, bgr)
	}
	if !ok {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  bgr.Cols(),
		"height": bgr.Rows(),
	}).Info("Image saved successfully")

	return nil
}

// IsSupported reports whether path has an extension the loader handles.
func IsSupported(path string) bool {
	return lo.Contains(supportedFormats, strings.ToLower(filepath.Ext(path)))
}

// SupportedExtensions lists accepted file extensions, for file dialogs.
func SupportedExtensions() []string {
	out := make([]string, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

func isJPEG(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".jpg" || ext == ".jpeg"
}
