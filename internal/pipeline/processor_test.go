package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/filters"
	imgio "raw-photo-editor/internal/io"
	"raw-photo-editor/internal/settings"
)

type stubSettings map[string]int

func (s stubSettings) GetInt(key string) int { return s[key] }

type processorFixture struct {
	proc    *Processor
	rgb     *probe
	local   *probe
	lab     *probe
	updates []PreviewUpdate
}

func newFixture(t *testing.T, s stubSettings) *processorFixture {
	t.Helper()
	logger, _ := test.NewNullLogger()

	fx := &processorFixture{
		rgb:   &probe{active: true, add: 0.1},
		local: &probe{active: true},
		lab:   &probe{active: true},
	}
	p := New([]filters.Filter{
		probeFilter(t, "rgb", filters.PhaseRGB, core.RGB, fx.rgb),
		probeFilter(t, "local", filters.PhaseLocalEdit, core.Lch, fx.local),
		probeFilter(t, "lab", filters.PhaseLab, core.Lab, fx.lab),
	}, logger)

	fx.proc = NewProcessor(p, imgio.NewImageLoader(logger, 90), s, logger)
	fx.proc.OnPreview(func(u PreviewUpdate) { fx.updates = append(fx.updates, u) })
	t.Cleanup(fx.proc.Close)
	return fx
}

func TestUpdateWithoutImage(t *testing.T) {
	fx := newFixture(t, stubSettings{})
	_, err := fx.proc.Update(context.Background(), Request(filters.PhaseRGB))
	assert.ErrorIs(t, err, ErrNoImage)
	assert.ErrorIs(t, fx.proc.UpdatePreviewImage(nil, false), ErrNoImage)
}

func TestUpdateFullPass(t *testing.T) {
	fx := newFixture(t, stubSettings{settings.KeyHistogramBins: 16})
	fx.proc.SetSource(core.NewFilledImage(8, 4, core.RGB, 0.2, 0.2, 0.2))

	stats, err := fx.proc.Update(context.Background(), Request(filters.PhaseRGB))
	require.NoError(t, err)
	assert.Equal(t, []string{"rgb", "local", "lab"}, stats.Ran)

	after := fx.proc.AfterLocalEdit()
	require.NotNil(t, after)
	px, err := after.Pixels()
	require.NoError(t, err)
	assert.InDelta(t, 0.3, px[0], 1e-5, "snapshot holds the RGB phase result")

	result := fx.proc.Result()
	require.NotNil(t, result)
	assert.Equal(t, core.RGB, result.ColorSpace())

	require.Len(t, fx.updates, 1)
	assert.NotNil(t, fx.updates[0].Image)
	assert.Len(t, fx.updates[0].Histogram, 16)
	total := 0
	for _, n := range fx.updates[0].Histogram {
		total += n
	}
	assert.Equal(t, 32, total)
}

func TestUpdateFromLaterPhaseReusesSnapshot(t *testing.T) {
	fx := newFixture(t, stubSettings{})
	fx.proc.SetSource(core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2))

	_, err := fx.proc.Update(context.Background(), Request(filters.PhaseRGB))
	require.NoError(t, err)
	require.Equal(t, 1, fx.rgb.runs)

	stats, err := fx.proc.Update(context.Background(), Request(filters.PhaseLocalEdit))
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "lab"}, stats.Ran)
	assert.Equal(t, 1, fx.rgb.runs, "phases before the request are not re-run")
}

func TestUpdateFallsBackToFullPassWithoutSnapshot(t *testing.T) {
	fx := newFixture(t, stubSettings{})
	fx.proc.SetSource(core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2))

	stats, err := fx.proc.Update(context.Background(), Request(filters.PhaseLab))
	require.NoError(t, err)
	assert.Equal(t, []string{"rgb", "local", "lab"}, stats.Ran)
}

func TestModeSwitchInvalidatesSnapshots(t *testing.T) {
	fx := newFixture(t, stubSettings{})
	fx.proc.SetSource(core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2))

	_, err := fx.proc.Update(context.Background(), Request(filters.PhaseRGB))
	require.NoError(t, err)

	req := Request(filters.PhaseLab)
	req.Mode = ModeFinal
	stats, err := fx.proc.Update(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, stats.Ran, "rgb")
}

func TestFailedPassKeepsPreviousResult(t *testing.T) {
	fx := newFixture(t, stubSettings{})
	fx.proc.SetSource(core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2))

	_, err := fx.proc.Update(context.Background(), Request(filters.PhaseRGB))
	require.NoError(t, err)
	before := fx.proc.Result()

	fx.local.err = errors.New("spot failed")
	_, err = fx.proc.Update(context.Background(), Request(filters.PhaseLocalEdit))
	var pe *PassError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "local", pe.FilterID)
	assert.Same(t, before, fx.proc.Result())
	assert.Len(t, fx.updates, 1, "a failed pass is not displayed")

	fx.local.err = nil
	_, err = fx.proc.Update(context.Background(), Request(filters.PhaseLocalEdit))
	require.NoError(t, err, "the processor stays usable after a failure")
}

func TestPreviewModeDownscales(t *testing.T) {
	fx := newFixture(t, stubSettings{settings.KeyPreviewSize: 10})
	fx.proc.SetSource(core.NewFilledImage(40, 20, core.RGB, 0.5, 0.5, 0.5))

	_, err := fx.proc.Update(context.Background(), Request(filters.PhaseRGB))
	require.NoError(t, err)

	res := fx.proc.Result()
	assert.Equal(t, 10, res.Width())
	assert.Equal(t, 5, res.Height())
	assert.InDelta(t, 0.25, res.Scale(), 1e-9)

	req := Request(filters.PhaseRGB)
	req.Mode = ModeFinal
	_, err = fx.proc.Update(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 40, fx.proc.Result().Width())
}

func TestUpdatePreviewImageOnlyHistogram(t *testing.T) {
	fx := newFixture(t, stubSettings{})
	img := core.NewFilledImage(4, 4, core.Lab, 50, 0, 0)
	defer img.Close()

	require.NoError(t, fx.proc.UpdatePreviewImage(img, true))
	require.Len(t, fx.updates, 1)
	assert.Nil(t, fx.updates[0].Image)
	assert.Len(t, fx.updates[0].Histogram, 256)
	assert.Equal(t, core.Lab, img.ColorSpace(), "the pushed image is not modified")
}
