package filters

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ItemKind selects the control a ConfigItem is rendered with and which of
// its fields are meaningful.
type ItemKind int

const (
	// Check holds a bool. Numeric fields and choices are ignored.
	Check ItemKind = iota
	// Slider holds a float64 within [Min,Max], quantized to Step and Precision.
	Slider
	// Combo holds an int index into Choices.
	Combo
)

func (k ItemKind) String() string {
	switch k {
	case Check:
		return "check"
	case Slider:
		return "slider"
	case Combo:
		return "combo"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ConfigItem describes one typed setting of a filter. A list of them is
// everything a generic GUI builder needs to render the filter's controls.
type ConfigItem struct {
	ID       string
	Kind     ItemKind
	Default  any
	Min      float64
	Max      float64
	Step     float64
	Decimals int
	Choices  []string
	// CommonConnect items re-run the pipeline from the filter's phase when
	// changed through the GUI.
	CommonConnect bool
	// Persisted items are written to and restored from presets.
	Persisted bool
	Caption   string
	Tooltip   string
}

func (ci ConfigItem) validate() error {
	if ci.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSchema)
	}
	switch ci.Kind {
	case Check:
	case Slider:
		if ci.Min > ci.Max {
			return fmt.Errorf("%w: %s: min %v > max %v", ErrInvalidSchema, ci.ID, ci.Min, ci.Max)
		}
		if ci.Step < 0 || ci.Decimals < 0 {
			return fmt.Errorf("%w: %s: negative step or decimals", ErrInvalidSchema, ci.ID)
		}
	case Combo:
		if len(ci.Choices) == 0 {
			return fmt.Errorf("%w: %s: combo without choices", ErrInvalidSchema, ci.ID)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %v", ErrInvalidSchema, ci.ID, ci.Kind)
	}
	return nil
}

// normalize converts v into the canonical Go type for the item's kind and
// applies clamping and quantization.
func (ci ConfigItem) normalize(v any) (any, error) {
	switch ci.Kind {
	case Check:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int:
			return b != 0, nil
		}
		return nil, fmt.Errorf("%w: %s expects bool, got %T", ErrInvalidValue, ci.ID, v)

	case Slider:
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: %s expects a number, got %v", ErrInvalidValue, ci.ID, v)
		}
		return ci.quantize(f), nil

	case Combo:
		idx, ok := toIndex(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects a choice index, got %v", ErrInvalidValue, ci.ID, v)
		}
		if idx < 0 || idx >= len(ci.Choices) {
			return nil, fmt.Errorf("%w: %s index %d not in [0,%d)", ErrValueOutOfRange, ci.ID, idx, len(ci.Choices))
		}
		return idx, nil
	}
	return nil, fmt.Errorf("%w: %s: unknown kind %v", ErrInvalidSchema, ci.ID, ci.Kind)
}

// quantize clamps f to [Min,Max], snaps it to the Step grid anchored at Min
// and rounds to Precision. The result never leaves [Min,Max].
func (ci ConfigItem) quantize(f float64) float64 {
	f = clamp(f, ci.Min, ci.Max)
	if ci.Step > 0 {
		n := math.Round((f - ci.Min) / ci.Step)
		// grid points within float noise of Max still count
		if top := math.Floor((ci.Max-ci.Min)/ci.Step + 1e-9); n > top {
			n = top
		}
		f = ci.Min + n*ci.Step
	}
	scale := math.Pow(10, float64(ci.Precision()))
	f = math.Round(f*scale) / scale
	return clamp(f, ci.Min, ci.Max)
}

// Precision is the number of decimals slider values are rounded to and
// displayed with. It is at least Decimals and never coarser than Step and
// Min, so rounding cannot move a value off the step grid.
func (ci ConfigItem) Precision() int {
	p := ci.Decimals
	if ci.Step > 0 {
		p = max(p, decimalPlaces(ci.Step), decimalPlaces(ci.Min))
	}
	return p
}

const maxPrecision = 9

func decimalPlaces(f float64) int {
	s := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	return min(len(s)-dot-1, maxPrecision)
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

// ConfigStore maps ConfigItem ids to their current values. The schema is
// fixed once by InitStores; after that values change only through SetValue.
type ConfigStore struct {
	order     []string
	items     map[string]ConfigItem
	values    map[string]any
	ready     bool
	listeners []func(id string)
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		items:  make(map[string]ConfigItem),
		values: make(map[string]any),
	}
}

// InitStores installs the schema and default values. It may succeed only
// once per store.
func (s *ConfigStore) InitStores(items []ConfigItem) error {
	if s.ready {
		return ErrStoreInitialized
	}

	order := make([]string, 0, len(items))
	byID := make(map[string]ConfigItem, len(items))
	values := make(map[string]any, len(items))

	for _, item := range items {
		if err := item.validate(); err != nil {
			return err
		}
		if _, dup := byID[item.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidSchema, item.ID)
		}
		def, err := item.normalize(defaultFor(item))
		if err != nil {
			return fmt.Errorf("default of %s: %w", item.ID, err)
		}
		order = append(order, item.ID)
		byID[item.ID] = item
		values[item.ID] = def
	}

	s.order = order
	s.items = byID
	s.values = values
	s.ready = true
	return nil
}

func defaultFor(item ConfigItem) any {
	if item.Default != nil {
		return item.Default
	}
	switch item.Kind {
	case Check:
		return false
	case Slider:
		return item.Min
	default:
		return 0
	}
}

// Items returns the schema in declaration order.
func (s *ConfigStore) Items() []ConfigItem {
	out := make([]ConfigItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Item returns the schema row for id.
func (s *ConfigStore) Item(id string) (ConfigItem, error) {
	item, ok := s.items[id]
	if !ok {
		return ConfigItem{}, fmt.Errorf("%w: %s", ErrUnknownConfigItem, id)
	}
	return item, nil
}

// Value returns the current value of id.
func (s *ConfigStore) Value(id string) (any, error) {
	v, ok := s.values[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigItem, id)
	}
	return v, nil
}

// SetValue validates v against the item's kind and stores the normalized
// result, which is also returned. Rejected values leave the store untouched.
func (s *ConfigStore) SetValue(id string, v any) (any, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigItem, id)
	}
	nv, err := item.normalize(v)
	if err != nil {
		return nil, err
	}
	old := s.values[id]
	s.values[id] = nv
	if old != nv {
		s.notify(id)
	}
	return nv, nil
}

// Reset restores every default.
func (s *ConfigStore) Reset() {
	for _, id := range s.order {
		item := s.items[id]
		def, _ := item.normalize(defaultFor(item))
		if s.values[id] != def {
			s.values[id] = def
			s.notify(id)
		}
	}
}

// Bool, Float and Int are typed reads for the filter's own ids. They return
// the zero value for ids of another kind or unknown ids.
func (s *ConfigStore) Bool(id string) bool {
	b, _ := s.values[id].(bool)
	return b
}

func (s *ConfigStore) Float(id string) float64 {
	f, _ := s.values[id].(float64)
	return f
}

func (s *ConfigStore) Int(id string) int {
	i, _ := s.values[id].(int)
	return i
}

// OnChange registers fn to be told the id of every value that changed.
func (s *ConfigStore) OnChange(fn func(id string)) {
	s.listeners = append(s.listeners, fn)
}

func (s *ConfigStore) notify(id string) {
	for _, fn := range s.listeners {
		fn(id)
	}
}

// Persisted returns the values of all items marked Persisted.
func (s *ConfigStore) Persisted() map[string]any {
	out := make(map[string]any)
	for _, id := range s.order {
		if s.items[id].Persisted {
			out[id] = s.values[id]
		}
	}
	return out
}

// Restore applies previously persisted values. Every value is validated
// before any is stored, so a bad entry leaves the store unchanged.
func (s *ConfigStore) Restore(values map[string]any) error {
	staged, err := s.stage(values)
	if err != nil {
		return err
	}
	for _, id := range s.order {
		nv, ok := staged[id]
		if !ok || s.values[id] == nv {
			continue
		}
		s.values[id] = nv
		s.notify(id)
	}
	return nil
}

// Check reports whether Restore would accept values, without storing any.
func (s *ConfigStore) Check(values map[string]any) error {
	_, err := s.stage(values)
	return err
}

func (s *ConfigStore) stage(values map[string]any) (map[string]any, error) {
	staged := make(map[string]any, len(values))
	for id, v := range values {
		item, ok := s.items[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownConfigItem, id)
		}
		nv, err := item.normalize(v)
		if err != nil {
			return nil, err
		}
		staged[id] = nv
	}
	return staged, nil
}
