// Package preset saves and restores an edit: the persisted config values of
// every filter plus the spot lists of the spot filters.
package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/spots"
)

// CurrentVersion is written into every saved preset.
const CurrentVersion = 1

// Preset is the on-disk form of an edit.
type Preset struct {
	Version int                       `yaml:"version"`
	Filters map[string]map[string]any `yaml:"filters,omitempty"`
	Spots   map[string][]SpotEntry    `yaml:"spots,omitempty"`
}

// SpotEntry is one persisted spot.
type SpotEntry struct {
	ID      string             `yaml:"id,omitempty"`
	Name    string             `yaml:"name"`
	Enabled bool               `yaml:"enabled"`
	X       int                `yaml:"x"`
	Y       int                `yaml:"y"`
	Kind    string             `yaml:"kind"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}

// Capture records the current state of every filter in r.
func Capture(r *filters.Registry) *Preset {
	p := &Preset{
		Version: CurrentVersion,
		Filters: make(map[string]map[string]any),
		Spots:   make(map[string][]SpotEntry),
	}
	for _, f := range r.Filters() {
		if values := f.Config().Persisted(); len(values) > 0 {
			p.Filters[f.ID()] = values
		}
		// empty lists are kept so applying clears the target's spots
		owner, ok := f.(filters.SpotOwner)
		if !ok {
			continue
		}
		entries := make([]SpotEntry, 0, owner.Spots().RowCount())
		for _, s := range owner.Spots().Spots() {
			entries = append(entries, SpotEntry{
				ID:      s.ID.String(),
				Name:    s.Name,
				Enabled: s.Enabled,
				X:       s.X,
				Y:       s.Y,
				Kind:    s.Effect.Kind(),
				Params:  s.Effect.Params(),
			})
		}
		p.Spots[f.ID()] = entries
	}
	return p
}

// Apply restores p into r. Everything is validated first; on error no
// filter or spot list has been changed.
func (p *Preset) Apply(r *filters.Registry) error {
	if p.Version > CurrentVersion {
		return fmt.Errorf("preset version %d is newer than supported %d", p.Version, CurrentVersion)
	}

	for _, id := range sortedKeys(p.Filters) {
		f, err := r.Filter(id)
		if err != nil {
			return err
		}
		if err := f.Config().Check(p.Filters[id]); err != nil {
			return fmt.Errorf("filter %s: %w", id, err)
		}
	}

	lists := make(map[string][]*spots.Spot, len(p.Spots))
	owners := make(map[string]filters.SpotOwner, len(p.Spots))
	for _, id := range sortedKeys(p.Spots) {
		f, err := r.Filter(id)
		if err != nil {
			return err
		}
		owner, ok := f.(filters.SpotOwner)
		if !ok {
			return fmt.Errorf("filter %s has no spots", id)
		}
		list, err := buildSpots(p.Spots[id])
		if err != nil {
			return fmt.Errorf("filter %s: %w", id, err)
		}
		owners[id] = owner
		lists[id] = list
	}

	for _, id := range sortedKeys(p.Filters) {
		f, _ := r.Filter(id)
		if err := f.Config().Restore(p.Filters[id]); err != nil {
			return fmt.Errorf("filter %s: %w", id, err)
		}
	}
	for id, list := range lists {
		model := owners[id].Spots()
		model.Clear()
		for _, s := range list {
			model.AppendSpot(s)
		}
	}
	return nil
}

func buildSpots(entries []SpotEntry) ([]*spots.Spot, error) {
	out := make([]*spots.Spot, 0, len(entries))
	for i, e := range entries {
		effect, err := spots.NewEffect(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("spot %d: %w", i, err)
		}
		if err := effect.SetParams(e.Params); err != nil {
			return nil, fmt.Errorf("spot %d: %w", i, err)
		}
		s := spots.NewSpot(effect)
		if e.ID != "" {
			id, err := uuid.Parse(e.ID)
			if err != nil {
				return nil, fmt.Errorf("spot %d: %w", i, err)
			}
			s.ID = id
		}
		s.Name = e.Name
		s.Enabled = e.Enabled
		s.SetPos(e.X, e.Y)
		out = append(out, s)
	}
	return out, nil
}

// Save writes p as YAML.
func Save(path string, p *Preset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create preset directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preset: %w", err)
	}
	return nil
}

// Load reads a preset written by Save.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", path, err)
	}
	return &p, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
