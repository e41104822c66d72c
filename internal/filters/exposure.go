package filters

import (
	"math"

	"gocv.io/x/gocv"

	"raw-photo-editor/internal/core"
)

const (
	ExposureID = "Exposure"

	CfgExposureEV   = "EV"
	CfgExposureClip = "Clip"
)

// Exposure scales linear light by 2^EV.
var Exposure = Descriptor{
	ID:         ExposureID,
	Caption:    "Exposure",
	ColorSpace: core.LinearRGB,
	Phase:      PhaseRGB,
	Controls: []ConfigItem{
		{ID: CfgExposureEV, Kind: Slider, Default: 0.0, Min: -4, Max: 4, Step: 0.05, Decimals: 2,
			CommonConnect: true, Persisted: true, Caption: "Exposure correction",
			Tooltip: "In f-stops"},
		{ID: CfgExposureClip, Kind: Combo, Default: 0, Choices: []string{"Clip highlights", "Keep highlights"},
			CommonConnect: true, Persisted: true, Caption: "Highlights"},
	},
	Active: func(cfg *ConfigStore) bool {
		return cfg.Float(CfgExposureEV) != 0
	},
	Run: func(cfg *ConfigStore, img *core.Image) error {
		img.Mat().MultiplyFloat(float32(math.Pow(2, cfg.Float(CfgExposureEV))))
		if cfg.Int(CfgExposureClip) != 0 {
			return nil
		}
		clipped := gocv.NewMat()
		gocv.Threshold(*img.Mat(), &clipped, 1.0, 1.0, gocv.ThresholdTrunc)
		return img.Replace(clipped)
	},
}
