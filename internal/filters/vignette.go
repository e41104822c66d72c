package filters

import (
	"math"

	"raw-photo-editor/internal/core"
)

const (
	VignetteID = "Vignette"

	CfgVignetteStrength = "Strength"
	CfgVignetteRadius   = "Radius"
	CfgVignetteInvert   = "Invert"
)

// Vignette darkens (or, inverted, brightens) the corners with a smooth
// radial falloff measured in half diagonals.
var Vignette = Descriptor{
	ID:         VignetteID,
	Caption:    "Vignette",
	ColorSpace: core.RGB,
	Phase:      PhaseOutput,
	Controls: []ConfigItem{
		{ID: CfgVignetteStrength, Kind: Slider, Default: 0.0, Min: 0, Max: 1, Step: 0.01, Decimals: 2,
			CommonConnect: true, Persisted: true, Caption: "Strength"},
		{ID: CfgVignetteRadius, Kind: Slider, Default: 0.9, Min: 0.1, Max: 1.5, Step: 0.05, Decimals: 2,
			CommonConnect: true, Persisted: true, Caption: "Inner radius",
			Tooltip: "Fraction of the half diagonal left untouched"},
		{ID: CfgVignetteInvert, Kind: Check, Default: false,
			CommonConnect: true, Persisted: true, Caption: "Brighten corners"},
	},
	Active: func(cfg *ConfigStore) bool {
		return cfg.Float(CfgVignetteStrength) > 0
	},
	Run: func(cfg *ConfigStore, img *core.Image) error {
		px, err := img.Pixels()
		if err != nil {
			return err
		}
		strength := cfg.Float(CfgVignetteStrength)
		inner := cfg.Float(CfgVignetteRadius)
		invert := cfg.Bool(CfgVignetteInvert)

		w, h := img.Width(), img.Height()
		cx, cy := float64(w-1)/2, float64(h-1)/2
		halfDiag := math.Max(math.Hypot(cx, cy), 1)

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				d := math.Hypot(float64(x)-cx, float64(y)-cy) / halfDiag
				if d <= inner {
					continue
				}
				t := math.Min((d-inner)/math.Max(1-inner, 0.05), 1)
				gain := 1 - strength*t*t
				if invert {
					gain = 1 + strength*t*t
				}
				i := (y*w + x) * 3
				px[i] *= float32(gain)
				px[i+1] *= float32(gain)
				px[i+2] *= float32(gain)
			}
		}
		return nil
	},
}
