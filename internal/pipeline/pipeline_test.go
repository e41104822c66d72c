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
)

type probe struct {
	active bool
	runs   int
	add    float32
	err    error
}

func probeFilter(t *testing.T, id string, phase filters.Phase, space core.ColorSpace, pr *probe) filters.Filter {
	t.Helper()
	f := filters.Descriptor{
		ID:         id,
		Caption:    id,
		ColorSpace: space,
		Phase:      phase,
		Active:     func(*filters.ConfigStore) bool { return pr.active },
		Run: func(_ *filters.ConfigStore, img *core.Image) error {
			pr.runs++
			if pr.err != nil {
				return pr.err
			}
			if pr.add != 0 {
				img.Mat().AddFloat(pr.add)
			}
			return nil
		},
	}.Factory()()
	require.NoError(t, f.Config().InitStores(f.DefineControls()))
	return f
}

func ids(fs []filters.Filter) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.ID()
	}
	return out
}

func TestNewOrdersByPhaseStably(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := New([]filters.Filter{
		probeFilter(t, "out", filters.PhaseOutput, core.RGB, &probe{}),
		probeFilter(t, "lab1", filters.PhaseLab, core.Lab, &probe{}),
		probeFilter(t, "rgb1", filters.PhaseRGB, core.RGB, &probe{}),
		probeFilter(t, "lab2", filters.PhaseLab, core.Lab, &probe{}),
		probeFilter(t, "rgb2", filters.PhaseRGB, core.RGB, &probe{}),
	}, logger)

	assert.Equal(t, []string{"rgb1", "rgb2", "lab1", "lab2", "out"}, ids(p.Filters()))
	assert.Equal(t, []string{"lab1", "lab2"}, p.InPhase(filters.PhaseLab))
}

func TestRunSkipsInactiveFilters(t *testing.T) {
	logger, _ := test.NewNullLogger()
	on := &probe{active: true, add: 0.1}
	off := &probe{active: false, add: 0.5}
	p := New([]filters.Filter{
		probeFilter(t, "on", filters.PhaseRGB, core.RGB, on),
		probeFilter(t, "off", filters.PhaseRGB, core.RGB, off),
	}, logger)

	img := core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2)
	defer img.Close()

	stats, err := p.Run(context.Background(), img, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"on"}, stats.Ran)
	assert.Equal(t, []string{"off"}, stats.Skipped)
	assert.Equal(t, 0, off.runs)

	px, err := img.Pixels()
	require.NoError(t, err)
	assert.InDelta(t, 0.3, px[0], 1e-6)
}

func TestRunZeroOptionsReturnRGB(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := New([]filters.Filter{
		probeFilter(t, "lab", filters.PhaseLab, core.Lab, &probe{active: true}),
	}, logger)

	img := core.NewFilledImage(4, 4, core.RGB, 0.2, 0.4, 0.6)
	defer img.Close()

	stats, err := p.Run(context.Background(), img, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lab"}, stats.Ran)
	assert.Equal(t, 2, stats.Conversions, "into Lab and back")
	assert.Equal(t, core.RGB, img.ColorSpace())
}

func TestRunConvertsLazily(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := New([]filters.Filter{
		probeFilter(t, "a", filters.PhaseRGB, core.RGB, &probe{active: true}),
		probeFilter(t, "b", filters.PhaseRGB, core.RGB, &probe{active: true}),
		probeFilter(t, "c", filters.PhaseLab, core.Lab, &probe{active: true}),
		probeFilter(t, "d", filters.PhaseLab, core.Lab, &probe{active: true}),
		probeFilter(t, "e", filters.PhaseOutput, core.Lch, &probe{active: false}),
	}, logger)

	img := core.NewFilledImage(4, 4, core.RGB, 0.2, 0.4, 0.6)
	defer img.Close()

	stats, err := p.Run(context.Background(), img, RunOptions{Target: KeepSpace})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Conversions)
	assert.Equal(t, core.Lab, img.ColorSpace())

	stats, err = p.Run(context.Background(), img, RunOptions{From: filters.PhaseLab, Target: core.RGB})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, stats.Ran)
	assert.Equal(t, 1, stats.Conversions, "only the final conversion back to RGB")
	assert.Equal(t, core.RGB, img.ColorSpace())
}

func TestRunAbortsOnFilterError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	boom := errors.New("boom")
	after := &probe{active: true}
	p := New([]filters.Filter{
		probeFilter(t, "bad", filters.PhaseRGB, core.RGB, &probe{active: true, err: boom}),
		probeFilter(t, "after", filters.PhaseLab, core.Lab, after),
	}, logger)

	img := core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2)
	defer img.Close()

	_, err := p.Run(context.Background(), img, RunOptions{})
	var pe *PassError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad", pe.FilterID)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, after.runs)
}

func TestRunHonorsCancellationBetweenFilters(t *testing.T) {
	logger, _ := test.NewNullLogger()
	pr := &probe{active: true}
	p := New([]filters.Filter{probeFilter(t, "a", filters.PhaseRGB, core.RGB, pr)}, logger)

	img := core.NewFilledImage(4, 4, core.RGB, 0.2, 0.2, 0.2)
	defer img.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, img, RunOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, pr.runs)
}
