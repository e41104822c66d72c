package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/filters"
	imgio "raw-photo-editor/internal/io"
	"raw-photo-editor/internal/metrics"
	"raw-photo-editor/internal/settings"
)

// ErrNoImage is returned by Update before a source image was set.
var ErrNoImage = errors.New("no image loaded")

// Mode selects the buffer a pass runs on.
type Mode int

const (
	// ModePreview runs on a copy of the source fitted into PreviewSize.
	ModePreview Mode = iota
	// ModeFinal runs on the full resolution source.
	ModeFinal
)

func (m Mode) String() string {
	if m == ModeFinal {
		return "final"
	}
	return "preview"
}

// AllFilters as SubPhase re-runs the whole phase.
const AllFilters = -1

// UpdateRequest asks for a pass starting at Phase. Phases before it are
// taken from the snapshot the previous pass of the same Mode recorded.
type UpdateRequest struct {
	Phase filters.Phase
	// SubPhase names the first filter of Phase, by position, whose input
	// changed. Snapshots are kept per phase, so the phase always re-runs
	// from its start; the value is only reported.
	SubPhase int
	// WithIdentify re-checks the source file and reloads it when it changed
	// on disk since it was opened.
	WithIdentify bool
	Mode         Mode
}

// Request returns the usual preview request for phase.
func Request(phase filters.Phase) UpdateRequest {
	return UpdateRequest{Phase: phase, SubPhase: AllFilters, WithIdentify: true, Mode: ModePreview}
}

// PreviewUpdate is what the processor pushes to the display.
type PreviewUpdate struct {
	// Image is nil when only the histogram changed.
	Image     image.Image
	Histogram []int
	Stats     PassStats
}

// SettingsReader is the read-only view of the settings store the processor
// needs.
type SettingsReader interface {
	GetInt(key string) int
}

// Processor owns the source photo, the result of the last pass and the
// images that entered every phase during that pass. All passes are
// serialized; a pass owns its buffer exclusively.
type Processor struct {
	mu        sync.Mutex
	pipeline  *Pipeline
	loader    *imgio.ImageLoader
	settings  SettingsReader
	logger    *logrus.Logger
	evaluator *metrics.Evaluator

	path    string
	modTime time.Time
	source  *core.Image
	preview *core.Image

	snapshots map[filters.Phase]*core.Image
	snapMode  Mode
	result    *core.Image

	onPreview func(PreviewUpdate)
	dispatch  func(func())
	timer     *time.Timer
	delay     time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewProcessor(p *Pipeline, loader *imgio.ImageLoader, s SettingsReader, logger *logrus.Logger) *Processor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Processor{
		pipeline:  p,
		loader:    loader,
		settings:  s,
		logger:    logger,
		evaluator: metrics.NewEvaluator(),
		snapshots: make(map[filters.Phase]*core.Image),
		dispatch:  func(fn func()) { fn() },
		delay:     150 * time.Millisecond,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnPreview sets the display callback. It runs on the goroutine that
// triggered the update, outside the processor lock.
func (p *Processor) OnPreview(fn func(PreviewUpdate)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onPreview = fn
}

// SetDispatcher sets how scheduled passes get back onto the UI goroutine.
func (p *Processor) SetDispatcher(fn func(func())) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dispatch = fn
}

// Pipeline returns the filter pipeline the processor runs.
func (p *Processor) Pipeline() *Pipeline {
	return p.pipeline
}

// WorkSpace is the RGB space results are delivered in.
func (p *Processor) WorkSpace() core.ColorSpace {
	return core.WorkSpace(p.settings.GetInt(settings.KeyWorkColor))
}

// Open loads path as the new source.
func (p *Processor) Open(path string) error {
	img, err := p.loader.Load(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		img.Close()
		return fmt.Errorf("stat %s: %w", path, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.replaceSource(img)
	p.path = path
	p.modTime = info.ModTime()
	return nil
}

// SetSource installs img as the source and takes ownership of it. The
// source is not tied to a file, so identify requests are no-ops.
func (p *Processor) SetSource(img *core.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replaceSource(img)
	p.path = ""
	p.modTime = time.Time{}
}

// SourceSize returns the dimensions of the full resolution source.
func (p *Processor) SourceSize() image.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return image.Point{}
	}
	return image.Point{X: p.source.Width(), Y: p.source.Height()}
}

// AfterLocalEdit is the image that entered the local edit phase during the
// last pass: everything before the spot filters applied, spots not yet.
// It is borrowed; copy it with Set or Clone before changing it. Nil before
// the first pass.
func (p *Processor) AfterLocalEdit() *core.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots[filters.PhaseLocalEdit]
}

// Result is the output of the last successful pass, in the work space.
// Borrowed like AfterLocalEdit.
func (p *Processor) Result() *core.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Update runs a pass as req describes and pushes the result to the
// display. On failure the previous result stays in place.
func (p *Processor) Update(ctx context.Context, req UpdateRequest) (PassStats, error) {
	p.mu.Lock()
	stats, upd, notify, err := p.update(ctx, req)
	p.mu.Unlock()

	if err != nil {
		return stats, err
	}
	if notify != nil {
		notify(upd)
	}
	return stats, nil
}

func (p *Processor) update(ctx context.Context, req UpdateRequest) (PassStats, PreviewUpdate, func(PreviewUpdate), error) {
	var total PassStats
	start := time.Now()

	if p.source == nil {
		return total, PreviewUpdate{}, nil, ErrNoImage
	}
	if req.WithIdentify {
		if err := p.identify(); err != nil {
			return total, PreviewUpdate{}, nil, err
		}
	}

	base, err := p.base(req.Mode)
	if err != nil {
		return total, PreviewUpdate{}, nil, err
	}

	if req.Mode != p.snapMode {
		p.dropSnapshots()
		p.snapMode = req.Mode
	}
	from := req.Phase
	if from == 0 || p.snapshots[from] == nil {
		from = filters.PhaseRGB
	}

	var img *core.Image
	if from == filters.PhaseRGB {
		img = base.Clone()
	} else {
		img = p.snapshots[from].Clone()
	}

	for _, phase := range filters.Phases {
		if phase < from {
			continue
		}
		if phase != filters.PhaseRGB && phase != from {
			p.setSnapshot(phase, img.Clone())
		}

		stats, err := p.pipeline.Run(ctx, img, RunOptions{From: phase, To: phase, Target: KeepSpace})
		total.Ran = append(total.Ran, stats.Ran...)
		total.Skipped = append(total.Skipped, stats.Skipped...)
		total.Conversions += stats.Conversions
		if err != nil {
			img.Close()
			// Later snapshots were computed from the old configuration.
			for _, later := range filters.Phases {
				if later > phase {
					p.setSnapshot(later, nil)
				}
			}
			total.Duration = time.Since(start)
			return total, PreviewUpdate{}, nil, err
		}
	}

	if _, err := img.ConvertTo(p.WorkSpace()); err != nil {
		img.Close()
		return total, PreviewUpdate{}, nil, err
	}
	if p.result != nil {
		p.result.Close()
	}
	p.result = img
	total.Duration = time.Since(start)

	fields := logrus.Fields{
		"phase":       from.String(),
		"sub_phase":   req.SubPhase,
		"mode":        req.Mode.String(),
		"ran":         total.Ran,
		"conversions": total.Conversions,
		"duration":    total.Duration,
	}
	if req.Mode == ModeFinal {
		if m, err := p.evaluator.Evaluate(base, img, p.WorkSpace()); err == nil {
			for name, v := range m {
				fields[name] = v
			}
		}
	}
	p.logger.WithFields(fields).Info("PIPELINE: Update complete")

	upd, err := p.render(img, false)
	if err != nil {
		return total, PreviewUpdate{}, nil, err
	}
	upd.Stats = total
	return total, upd, p.onPreview, nil
}

// UpdatePreviewImage pushes img to the display without running a pass.
// A nil img re-sends the last result. With onlyHistogram the displayed
// picture stays and only the histogram is refreshed.
func (p *Processor) UpdatePreviewImage(img *core.Image, onlyHistogram bool) error {
	p.mu.Lock()
	if img == nil {
		img = p.result
	}
	if img == nil {
		p.mu.Unlock()
		return ErrNoImage
	}
	upd, err := p.render(img, onlyHistogram)
	notify := p.onPreview
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if notify != nil {
		notify(upd)
	}
	return nil
}

// Schedule coalesces bursts of requests: only the last one within the
// debounce delay runs, through the dispatcher.
func (p *Processor) Schedule(req UpdateRequest) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	dispatch := p.dispatch
	p.timer = time.AfterFunc(p.delay, func() {
		dispatch(func() {
			if _, err := p.Update(p.ctx, req); err != nil && !errors.Is(err, context.Canceled) {
				p.logger.WithError(err).Error("PIPELINE: Scheduled update failed")
			}
		})
	})
}

// Close stops pending work and releases all buffers.
func (p *Processor) Close() {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.replaceSource(nil)
}

func (p *Processor) render(img *core.Image, onlyHistogram bool) (PreviewUpdate, error) {
	var upd PreviewUpdate

	work := img.Clone()
	defer work.Close()
	if _, err := work.ConvertTo(p.WorkSpace()); err != nil {
		return upd, err
	}

	hist, err := histogram(work, p.settings.GetInt(settings.KeyHistogramBins))
	if err != nil {
		return upd, err
	}
	upd.Histogram = hist

	if !onlyHistogram {
		rendered, err := work.ToImage(p.WorkSpace())
		if err != nil {
			return upd, err
		}
		upd.Image = rendered
	}
	return upd, nil
}

// identify reloads the source when its file changed since it was opened.
func (p *Processor) identify() error {
	if p.path == "" {
		return nil
	}
	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("identify %s: %w", p.path, err)
	}
	if info.ModTime().Equal(p.modTime) {
		return nil
	}

	img, err := p.loader.Load(p.path)
	if err != nil {
		return err
	}
	path := p.path
	p.replaceSource(img)
	p.path = path
	p.modTime = info.ModTime()
	p.logger.WithField("path", path).Info("PIPELINE: Source changed on disk, reloaded")
	return nil
}

func (p *Processor) base(mode Mode) (*core.Image, error) {
	if mode == ModeFinal {
		return p.source, nil
	}
	if p.preview != nil {
		return p.preview, nil
	}

	size := p.settings.GetInt(settings.KeyPreviewSize)
	w, h := p.source.Width(), p.source.Height()
	if size <= 0 || (w <= size && h <= size) {
		p.preview = p.source.Clone()
		return p.preview, nil
	}

	full, err := p.source.ToImage(core.RGB)
	if err != nil {
		return nil, fmt.Errorf("render preview source: %w", err)
	}
	fitted := imaging.Fit(full, size, size, imaging.Lanczos)
	prev, err := core.FromGoImage(fitted)
	if err != nil {
		return nil, err
	}
	prev.SetScale(float64(prev.Width()) / float64(w))
	p.preview = prev

	p.logger.WithFields(logrus.Fields{
		"width":  prev.Width(),
		"height": prev.Height(),
		"scale":  prev.Scale(),
	}).Debug("PIPELINE: Preview source created")
	return p.preview, nil
}

func (p *Processor) replaceSource(img *core.Image) {
	if p.source != nil {
		p.source.Close()
	}
	if p.preview != nil {
		p.preview.Close()
		p.preview = nil
	}
	if p.result != nil {
		p.result.Close()
		p.result = nil
	}
	p.dropSnapshots()
	p.source = img
}

func (p *Processor) setSnapshot(phase filters.Phase, img *core.Image) {
	if old := p.snapshots[phase]; old != nil {
		old.Close()
	}
	if img == nil {
		delete(p.snapshots, phase)
		return
	}
	p.snapshots[phase] = img
}

func (p *Processor) dropSnapshots() {
	for phase := range p.snapshots {
		p.setSnapshot(phase, nil)
	}
}
