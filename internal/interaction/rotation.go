package interaction

import (
	"raw-photo-editor/internal/filters"
)

// GuideCorrection turns the angle of a guide line into the rotation that
// makes it level, or plumb when it is closer to vertical.
func GuideCorrection(lineAngle float64) float64 {
	switch {
	case lineAngle > 45:
		return lineAngle - 90
	case lineAngle < -45:
		return lineAngle + 90
	}
	return lineAngle
}

// ApplyRotationGuide adds the correction for a guide drawn on the already
// rotated image to the rotation filter's angle and returns the stored value.
func ApplyRotationGuide(cfg *filters.ConfigStore, lineAngle float64) (float64, error) {
	next := cfg.Float(filters.CfgRotateAngle) - GuideCorrection(lineAngle)
	v, err := cfg.SetValue(filters.CfgRotateAngle, next)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}
