package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"work color", func(s *Settings) { s.WorkColor = 2 }},
		{"preview size", func(s *Settings) { s.PreviewSize = 10 }},
		{"histogram bins", func(s *Settings) { s.HistogramBins = 1 }},
		{"jpeg quality", func(s *Settings) { s.JPEGQuality = 101 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s := Default()
	s.WorkColor = WorkColorLinear
	s.StartInInteractive = true
	s.LastOpenDir = "/photos"
	require.NoError(t, s.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_color: 1\n"), 0644))

	s, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.WorkColor)
	assert.Equal(t, Default().PreviewSize, s.PreviewSize)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jpeg_quality: 0\n"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	s, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestTypedGetters(t *testing.T) {
	s := Default()
	s.WorkColor = WorkColorLinear
	s.StartInInteractive = true
	s.LastOpenDir = "/x"

	assert.Equal(t, 1, s.GetInt(KeyWorkColor))
	assert.Equal(t, 256, s.GetInt(KeyHistogramBins))
	assert.Equal(t, 1, s.GetInt(KeyStartInInteractive))
	assert.Equal(t, 0, s.GetInt("Nope"))
	assert.True(t, s.GetBool(KeyStartInInteractive))
	assert.True(t, s.GetBool(KeyWorkColor))
	assert.Equal(t, "/x", s.GetString(KeyLastOpenDir))
	assert.Equal(t, "", s.GetString(KeyWorkColor))
}
