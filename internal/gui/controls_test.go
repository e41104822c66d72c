package gui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/interaction"
)

func newFilter(t *testing.T, d filters.Descriptor) filters.Filter {
	t.Helper()
	r := filters.NewRegistry()
	require.NoError(t, r.Register(d.ID, d.Factory()))
	require.NoError(t, r.Init(nil))
	f, err := r.Filter(d.ID)
	require.NoError(t, err)
	return f
}

func TestControlsWriteStore(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	f := newFilter(t, filters.Exposure)
	var changed []string
	c := BuildControls(f, func(id string) { changed = append(changed, id) })
	require.NotNil(t, c.Content())

	slider, ok := c.Widget(filters.CfgExposureEV).(*widget.Slider)
	require.True(t, ok)
	assert.Equal(t, -4.0, slider.Min)
	assert.Equal(t, 4.0, slider.Max)

	slider.OnChanged(1.0)
	assert.Equal(t, 1.0, f.Config().Float(filters.CfgExposureEV))
	assert.Equal(t, []string{filters.CfgExposureEV}, changed)

	sel, ok := c.Widget(filters.CfgExposureClip).(*widget.Select)
	require.True(t, ok)
	sel.SetSelectedIndex(1)
	assert.Equal(t, 1, f.Config().Int(filters.CfgExposureClip))
	assert.Equal(t, []string{filters.CfgExposureEV, filters.CfgExposureClip}, changed)
}

func TestControlsFollowStore(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	f := newFilter(t, filters.Exposure)
	var changed []string
	c := BuildControls(f, func(id string) { changed = append(changed, id) })

	require.NoError(t, f.Config().Restore(map[string]any{filters.CfgExposureEV: -2.0}))

	slider := c.Widget(filters.CfgExposureEV).(*widget.Slider)
	assert.Equal(t, -2.0, slider.Value)
	assert.Empty(t, changed, "store driven updates are not user changes")
}

func TestControlsCustomGui(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	f := newFilter(t, filters.ColorBoost)
	c := BuildControls(f, func(string) {})
	assert.NotNil(t, c.Content())
	assert.Nil(t, c.Widget(filters.CfgBoostAmount))
}

func TestToolBoxActivity(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	f := newFilter(t, filters.Exposure)
	tb := NewToolBox(f, nil, logrus.New())
	assert.False(t, tb.Active())
	assert.Equal(t, "inactive", tb.card.Subtitle)

	_, err := f.Config().SetValue(filters.CfgExposureEV, 0.5)
	require.NoError(t, err)
	assert.True(t, tb.Active())
	assert.Equal(t, "active", tb.card.Subtitle)

	tb.SetActive(false)
	assert.Equal(t, "inactive", tb.card.Subtitle)
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		name     fyne.KeyName
		mods     fyne.KeyModifier
		wantKey  interaction.Key
		wantMods interaction.Modifier
	}{
		{fyne.KeyDelete, 0, interaction.KeyDelete, interaction.ModNone},
		{fyne.KeyBackspace, 0, interaction.KeyDelete, interaction.ModNone},
		{fyne.KeyUp, fyne.KeyModifierControl, interaction.KeyUp, interaction.ModControl},
		{fyne.KeyDown, fyne.KeyModifierControl | fyne.KeyModifierShift, interaction.KeyDown, interaction.ModControl | interaction.ModShift},
		{fyne.KeyA, fyne.KeyModifierAlt, interaction.KeyOther, interaction.ModAlt},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			key, mods := mapKey(tt.name, tt.mods)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantMods, mods)
		})
	}
}
