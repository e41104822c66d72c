package filters

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"raw-photo-editor/internal/core"
)

const (
	DenoiseID = "Denoise"

	CfgDenoiseStrength = "Strength"
	CfgDenoiseMethod   = "Method"
)

const (
	denoiseMedian = iota
	denoiseBilateral
)

// Denoise removes sensor noise. Median suits impulse noise, bilateral keeps
// edges while flattening smooth areas.
var Denoise = Descriptor{
	ID:         DenoiseID,
	Caption:    "Noise reduction",
	IsSlow:     true,
	ColorSpace: core.RGB,
	Phase:      PhaseRGB,
	Controls: []ConfigItem{
		{ID: CfgDenoiseStrength, Kind: Slider, Default: 0.0, Min: 0, Max: 1, Step: 0.05, Decimals: 2,
			CommonConnect: true, Persisted: true, Caption: "Strength"},
		{ID: CfgDenoiseMethod, Kind: Combo, Default: denoiseBilateral, Choices: []string{"Median", "Bilateral"},
			CommonConnect: true, Persisted: true, Caption: "Method"},
	},
	Active: func(cfg *ConfigStore) bool {
		return cfg.Float(CfgDenoiseStrength) > 0
	},
	Run: runDenoise,
}

func runDenoise(cfg *ConfigStore, img *core.Image) error {
	strength := cfg.Float(CfgDenoiseStrength)
	out := gocv.NewMat()

	if cfg.Int(CfgDenoiseMethod) == denoiseMedian {
		// float input only supports apertures 3 and 5
		kernelSize := 3
		if strength > 0.5 {
			kernelSize = 5
		}
		gocv.MedianBlur(*img.Mat(), &out, kernelSize)
		return img.Replace(out)
	}

	d := max(1, int(math.Round((3+12*strength)*img.Scale())))
	sigmaColor := 0.02 + 0.2*strength
	sigmaSpace := float64(d)
	if err := gocv.BilateralFilter(*img.Mat(), &out, d, sigmaColor, sigmaSpace); err != nil {
		out.Close()
		return fmt.Errorf("bilateral filter: %w", err)
	}
	return img.Replace(out)
}
