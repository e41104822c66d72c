package filters

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"raw-photo-editor/internal/core"
)

const (
	RotateID = "Rotate"

	CfgRotateAngle  = "Angle"
	CfgRotateInterp = "Interpolation"
)

// Rotate turns the image counterclockwise around its center, keeping the
// canvas size. The rotation guide tool feeds its measured angle in here.
var Rotate = Descriptor{
	ID:         RotateID,
	Caption:    "Rotation",
	ColorSpace: core.RGB,
	Phase:      PhaseRGB,
	Controls: []ConfigItem{
		{ID: CfgRotateAngle, Kind: Slider, Default: 0.0, Min: -180, Max: 180, Step: 0.01, Decimals: 2,
			CommonConnect: true, Persisted: true, Caption: "Angle",
			Tooltip: "Degrees, positive turns counterclockwise"},
		{ID: CfgRotateInterp, Kind: Combo, Default: 0, Choices: []string{"Bilinear", "Bicubic"},
			CommonConnect: true, Persisted: true, Caption: "Interpolation"},
	},
	Active: func(cfg *ConfigStore) bool {
		return cfg.Float(CfgRotateAngle) != 0
	},
	Run: func(cfg *ConfigStore, img *core.Image) error {
		size := image.Point{X: img.Width(), Y: img.Height()}
		m := gocv.GetRotationMatrix2D(image.Point{X: size.X / 2, Y: size.Y / 2}, cfg.Float(CfgRotateAngle), 1.0)
		defer m.Close()

		flags := gocv.InterpolationLinear
		if cfg.Int(CfgRotateInterp) == 1 {
			flags = gocv.InterpolationCubic
		}

		rotated := gocv.NewMat()
		gocv.WarpAffineWithParams(*img.Mat(), &rotated, m, size, flags, gocv.BorderConstant, color.RGBA{})
		return img.Replace(rotated)
	},
}
