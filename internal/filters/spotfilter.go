package filters

import (
	"fmt"

	"raw-photo-editor/internal/core"
	"raw-photo-editor/internal/spots"
)

const (
	LocalAdjustID = "LocalAdjust"
	SpotRepairID  = "SpotRepair"
)

// SpotOwner is implemented by filters whose work is driven by a spot list
// rather than by config values.
type SpotOwner interface {
	Spots() *spots.Model
	NewSpot() *spots.Spot
}

// SpotFilter runs the enabled spots of its model over an Lch image. It has
// no config items; it is active as long as one spot is enabled.
type SpotFilter struct {
	Base
	model  *spots.Model
	create spots.CreateFunc
}

// NewSpotFilter returns a local edit filter creating spots with create.
func NewSpotFilter(id, caption string, create spots.CreateFunc) *SpotFilter {
	return &SpotFilter{
		Base:   NewBase(id, caption, core.Lch, PhaseLocalEdit),
		model:  spots.NewModel(),
		create: create,
	}
}

func (f *SpotFilter) Spots() *spots.Model  { return f.model }
func (f *SpotFilter) NewSpot() *spots.Spot { return f.create() }

func (f *SpotFilter) DefineControls() []ConfigItem { return nil }

func (f *SpotFilter) CheckHasActiveCfg() bool {
	return f.model.HasEnabledSpots()
}

func (f *SpotFilter) RunFilter(img *core.Image) error {
	if img.ColorSpace() != core.Lch {
		return fmt.Errorf("%s expects %v input, got %v", f.ID(), core.Lch, img.ColorSpace())
	}
	return f.model.RunFiltering(img)
}

func newLocalAdjustFilter() Filter {
	return NewSpotFilter(LocalAdjustID, "Local adjustments", spots.NewLocalAdjustSpot)
}

func newSpotRepairFilter() Filter {
	f := NewSpotFilter(SpotRepairID, "Spot repair", spots.NewRepairSpot)
	f.SetSlow(true)
	return f
}
