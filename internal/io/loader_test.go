package io

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/core"
)

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a/b/photo.JPG"))
	assert.True(t, IsSupported("x.tif"))
	assert.False(t, IsSupported("x.cr2"))
	assert.False(t, IsSupported("noext"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	logger, _ := test.NewNullLogger()
	il := NewImageLoader(logger, 95)

	img := core.NewFilledImage(16, 8, core.RGB, 0.2, 0.5, 0.8)
	defer img.Close()

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, il.Save(img, core.RGB, path))

	back, err := il.Load(path)
	require.NoError(t, err)
	defer back.Close()

	assert.Equal(t, 16, back.Width())
	assert.Equal(t, 8, back.Height())
	assert.Equal(t, core.RGB, back.ColorSpace())

	px, err := back.Pixels()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, px[0], 1.0/255)
	assert.InDelta(t, 0.5, px[1], 1.0/255)
	assert.InDelta(t, 0.8, px[2], 1.0/255)
}

func TestLoadErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	il := NewImageLoader(logger, 90)

	_, err := il.Load("photo.cr2")
	assert.Error(t, err)
	_, err = il.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
