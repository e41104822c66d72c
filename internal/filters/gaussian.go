package filters

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"raw-photo-editor/internal/core"
)

const (
	GaussianBlurID = "GaussianBlur"

	CfgBlurRadius = "Radius"
	CfgBlurSigma  = "Sigma"
)

// GaussianBlur softens the whole image. The kernel spans 2*Radius+1 pixels.
var GaussianBlur = Descriptor{
	ID:         GaussianBlurID,
	Caption:    "Gaussian blur",
	IsSlow:     true,
	ColorSpace: core.RGB,
	Phase:      PhaseRGB,
	Controls: []ConfigItem{
		{ID: CfgBlurRadius, Kind: Slider, Default: 0.0, Min: 0, Max: 20, Step: 1, Decimals: 0,
			CommonConnect: true, Persisted: true, Caption: "Radius",
			Tooltip: "Kernel radius in pixels, 0 disables the blur"},
		{ID: CfgBlurSigma, Kind: Slider, Default: 1.0, Min: 0.1, Max: 10, Step: 0.1, Decimals: 1,
			CommonConnect: true, Persisted: true, Caption: "Sigma"},
	},
	Active: func(cfg *ConfigStore) bool {
		return cfg.Float(CfgBlurRadius) > 0
	},
	Run: func(cfg *ConfigStore, img *core.Image) error {
		// Radius and sigma are in source pixels; previews are smaller.
		radius := int(math.Round(cfg.Float(CfgBlurRadius) * img.Scale()))
		kernelSize := 2*radius + 1
		sigma := math.Max(0.1, cfg.Float(CfgBlurSigma)*img.Scale())

		blurred := gocv.NewMat()
		if err := gocv.GaussianBlur(*img.Mat(), &blurred, image.Point{X: kernelSize, Y: kernelSize}, sigma, sigma, gocv.BorderDefault); err != nil {
			blurred.Close()
			return fmt.Errorf("gaussian blur: %w", err)
		}
		return img.Replace(blurred)
	},
}
