// Image quality metrics between a pass input and its output
package metrics

import (
	"fmt"
	"sort"

	"raw-photo-editor/internal/core"
)

// Metric compares two renditions of the same image. Both arguments are
// float RGB buffers in the same working space and of equal size.
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *core.Image) (float64, error)

	GetName() string
	GetDescription() string

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator returns an evaluator with PSNR, MSE and SSIM registered.
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}
	e.Register("psnr", NewPSNR())
	e.Register("mse", NewMSE())
	e.Register("ssim", NewSSIM())
	return e
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names lists the registered metrics in sorted order.
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed *core.Image) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}
	return metric.Calculate(original, processed)
}

// Evaluate renders both images into work and calculates every metric.
// Metrics that fail are left out of the result.
func (e *Evaluator) Evaluate(before, after *core.Image, work core.ColorSpace) (map[string]float64, error) {
	a, err := renderIn(before, work)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	b, err := renderIn(after, work)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	results := make(map[string]float64, len(e.metrics))
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(a, b); err == nil {
			results[name] = value
		}
	}
	return results, nil
}

func renderIn(img *core.Image, work core.ColorSpace) (*core.Image, error) {
	c := img.Clone()
	if _, err := c.ConvertTo(work); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
