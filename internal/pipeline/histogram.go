package pipeline

import (
	"math"

	"raw-photo-editor/internal/core"
)

// histogram counts the Rec. 709 luma of an RGB image into bins over [0,1].
// Pixels with a NaN luma are not counted.
func histogram(img *core.Image, bins int) ([]int, error) {
	if bins < 2 {
		bins = 256
	}
	px, err := img.Pixels()
	if err != nil {
		return nil, err
	}

	hist := make([]int, bins)
	top := float64(bins - 1)
	for i := 0; i+2 < len(px); i += 3 {
		y := 0.2126*float64(px[i]) + 0.7152*float64(px[i+1]) + 0.0722*float64(px[i+2])
		if math.IsNaN(y) {
			continue
		}
		b := int(math.Round(math.Max(0, math.Min(1, y)) * top))
		hist[b]++
	}
	return hist, nil
}
