// Package pipeline runs the registered filters over an image buffer and
// hosts the processor that keeps per phase snapshots for partial re-runs.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/filters"
)

// KeepSpace as RunOptions.Target leaves the buffer in whatever color space
// the last filter needed.
const KeepSpace core.ColorSpace = -1

// RunOptions restricts a pass. Zero phases mean the first and the last
// phase respectively. The zero Target is core.RGB, so a pass hands back RGB
// unless Target names another space or KeepSpace.
type RunOptions struct {
	From   filters.Phase
	To     filters.Phase
	Target core.ColorSpace
}

func (o RunOptions) bounds() (filters.Phase, filters.Phase) {
	from, to := o.From, o.To
	if from == 0 {
		from = filters.Phases[0]
	}
	if to == 0 {
		to = filters.Phases[len(filters.Phases)-1]
	}
	return from, to
}

// PassStats describes one finished or aborted pass.
type PassStats struct {
	Ran         []string
	Skipped     []string
	Conversions int
	Duration    time.Duration
}

// PassError reports the filter that aborted a pass. The buffer handed to Run
// must then be treated as garbage.
type PassError struct {
	FilterID string
	Err      error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("filter %s failed: %v", e.FilterID, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }

// Pipeline is an ordered filter list: by phase, then registration order.
type Pipeline struct {
	filters []filters.Filter
	logger  *logrus.Logger
}

// New orders fs by phase. Filters of one phase keep their relative order.
func New(fs []filters.Filter, logger *logrus.Logger) *Pipeline {
	ordered := make([]filters.Filter, len(fs))
	copy(ordered, fs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Phase() < ordered[j].Phase()
	})
	return &Pipeline{filters: ordered, logger: logger}
}

// FromRegistry builds the pipeline over the registry's live instances.
func FromRegistry(r *filters.Registry, logger *logrus.Logger) *Pipeline {
	return New(r.Filters(), logger)
}

// Filters returns the filters in execution order.
func (p *Pipeline) Filters() []filters.Filter {
	out := make([]filters.Filter, len(p.filters))
	copy(out, p.filters)
	return out
}

// InPhase returns the ids of the filters of one phase, in execution order.
func (p *Pipeline) InPhase(phase filters.Phase) []string {
	return lo.FilterMap(p.filters, func(f filters.Filter, _ int) (string, bool) {
		return f.ID(), f.Phase() == phase
	})
}

// Run applies every active filter of the selected phases to img in place.
// Conversions happen only right before a filter that needs another color
// space. ctx is checked between filters, never during one.
func (p *Pipeline) Run(ctx context.Context, img *core.Image, opts RunOptions) (PassStats, error) {
	start := time.Now()
	var stats PassStats
	from, to := opts.bounds()

	for _, f := range p.filters {
		if f.Phase() < from || f.Phase() > to {
			continue
		}
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		if !f.CheckHasActiveCfg() {
			stats.Skipped = append(stats.Skipped, f.ID())
			continue
		}

		converted, err := img.ConvertTo(f.ColorSpace())
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, &PassError{FilterID: f.ID(), Err: err}
		}
		if converted {
			stats.Conversions++
		}

		filterStart := time.Now()
		if err := f.RunFilter(img); err != nil {
			stats.Duration = time.Since(start)
			p.logger.WithFields(logrus.Fields{
				"filter": f.ID(),
				"error":  err,
			}).Error("PIPELINE: Filter failed, pass aborted")
			return stats, &PassError{FilterID: f.ID(), Err: err}
		}
		stats.Ran = append(stats.Ran, f.ID())

		p.logger.WithFields(logrus.Fields{
			"filter":   f.ID(),
			"space":    f.ColorSpace().String(),
			"duration": time.Since(filterStart),
		}).Debug("PIPELINE: Filter applied")
	}

	if opts.Target != KeepSpace {
		converted, err := img.ConvertTo(opts.Target)
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("convert result to %v: %w", opts.Target, err)
		}
		if converted {
			stats.Conversions++
		}
	}

	stats.Duration = time.Since(start)
	p.logger.WithFields(logrus.Fields{
		"from":        from.String(),
		"to":          to.String(),
		"ran":         len(stats.Ran),
		"skipped":     len(stats.Skipped),
		"conversions": stats.Conversions,
		"duration":    stats.Duration,
	}).Debug("PIPELINE: Pass complete")

	return stats, nil
}
