package filters

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry maps filter ids to factories. Filters register from init();
// Init then builds one instance of each, in registration order, before the
// first pipeline pass. Registration problems recorded during init() are
// reported by Init so they surface at startup, never at use.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	order     []string
	regErrs   []error

	instances []Filter
	byID      map[string]Filter
	sealed    bool
}

// Default is the process-wide table the built-in filters register into.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		byID:      make(map[string]Filter),
	}
}

// Register adds factory under id.
func (r *Registry) Register(id string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %s", ErrRegistrySealed, id)
	}
	if factory == nil {
		return fmt.Errorf("filters: nil factory for %s", id)
	}
	if _, dup := r.factories[id]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateFilterID, id)
	}
	r.factories[id] = factory
	r.order = append(r.order, id)
	return nil
}

// InitRegister registers from init() code. The first error is kept and returned by
// Init instead of being lost in a package initializer.
func (r *Registry) InitRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		r.mu.Lock()
		r.regErrs = append(r.regErrs, err)
		r.mu.Unlock()
	}
}

// Init constructs every registered filter and installs its controls. After
// Init the registry is sealed until Teardown.
func (r *Registry) Init(logger *logrus.Logger) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if len(r.regErrs) > 0 {
		return r.regErrs[0]
	}

	instances := make([]Filter, 0, len(r.order))
	byID := make(map[string]Filter, len(r.order))
	for _, id := range r.order {
		f := r.factories[id]()
		if f.ID() != id {
			return fmt.Errorf("filters: factory registered as %s builds %s", id, f.ID())
		}
		if err := f.Config().InitStores(f.DefineControls()); err != nil {
			return fmt.Errorf("define controls of %s: %w", id, err)
		}
		instances = append(instances, f)
		byID[id] = f

		if logger != nil {
			logger.WithFields(logrus.Fields{
				"filter":   id,
				"phase":    f.Phase().String(),
				"space":    f.ColorSpace().String(),
				"controls": len(f.Config().Items()),
				"slow":     f.IsSlow(),
			}).Debug("Filter constructed")
		}
	}

	r.instances = instances
	r.byID = byID
	r.sealed = true
	return nil
}

// Teardown drops all instances. Registrations survive, so Init may run
// again.
func (r *Registry) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.instances = nil
	r.byID = make(map[string]Filter)
	r.sealed = false
}

// Filters returns the live instances in registration order.
func (r *Registry) Filters() []Filter {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Filter, len(r.instances))
	copy(out, r.instances)
	return out
}

// Filter returns the live instance registered under id.
func (r *Registry) Filter(id string) (Filter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}
	return f, nil
}

// IDs lists registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.order)
}

// IsRegistered reports whether id has a factory.
func (r *Registry) IsRegistered(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.factories[id]
	return ok
}
