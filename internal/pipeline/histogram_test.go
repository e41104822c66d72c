package pipeline

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/core"
)

func TestHistogramCountsEveryPixel(t *testing.T) {
	img := core.NewFilledImage(4, 4, core.RGB, 0.3, 0.3, 0.3)
	defer img.Close()

	hist, err := histogram(img, 64)
	require.NoError(t, err)
	require.Len(t, hist, 64)
	assert.Equal(t, 16, lo.Sum(hist))
	assert.Equal(t, 16, lo.Max(hist))
}

func TestHistogramSkipsNaN(t *testing.T) {
	img := core.NewFilledImage(4, 4, core.RGB, math.NaN(), 0.5, 0.5)
	defer img.Close()

	var hist []int
	require.NotPanics(t, func() {
		var err error
		hist, err = histogram(img, 0)
		require.NoError(t, err)
	})
	assert.Len(t, hist, 256)
	assert.Zero(t, lo.Sum(hist))
}
