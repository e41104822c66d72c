// Filter contract shared by every pipeline stage
package filters

import (
	"fyne.io/fyne/v2"

	"raw-photo-editor/internal/core"
)

// Filter is one configurable stage of the processing pipeline.
type Filter interface {
	ID() string
	Caption() string
	IsSlow() bool
	HelpURI() string

	// ColorSpace is the space RunFilter expects its input in.
	ColorSpace() core.ColorSpace
	Phase() Phase
	Config() *ConfigStore

	// DefineControls returns the schema installed into Config by the
	// registry right after construction.
	DefineControls() []ConfigItem

	// CheckHasActiveCfg decides whether the filter takes part in a pass.
	// It must be a cheap, side effect free function of the config values.
	CheckHasActiveCfg() bool

	// RunFilter mutates img in place.
	RunFilter(img *core.Image) error
}

// GuiCreator is implemented by filters that ship their own control layout
// instead of the generic one built from the config schema. changed must be
// called with the item id after every value the GUI writes to the store.
type GuiCreator interface {
	CreateGui(cfg *ConfigStore, changed func(id string)) fyne.CanvasObject
}

// Factory builds a fresh, unconfigured filter instance.
type Factory func() Filter

// Base carries the descriptive fields every filter has. Concrete filters
// embed it and add DefineControls, CheckHasActiveCfg and RunFilter.
type Base struct {
	id      string
	caption string
	isSlow  bool
	helpURI string
	space   core.ColorSpace
	phase   Phase
	config  *ConfigStore
}

// NewBase returns a Base with an empty config store.
func NewBase(id, caption string, space core.ColorSpace, phase Phase) Base {
	return Base{
		id:      id,
		caption: caption,
		space:   space,
		phase:   phase,
		config:  NewConfigStore(),
	}
}

func (b *Base) ID() string                  { return b.id }
func (b *Base) Caption() string             { return b.caption }
func (b *Base) IsSlow() bool                { return b.isSlow }
func (b *Base) HelpURI() string             { return b.helpURI }
func (b *Base) ColorSpace() core.ColorSpace { return b.space }
func (b *Base) Phase() Phase                { return b.phase }
func (b *Base) Config() *ConfigStore        { return b.config }

// SetSlow marks the filter as expensive; the GUI warns before live updates.
func (b *Base) SetSlow(slow bool) { b.isSlow = slow }

// SetHelpURI links the filter's tool box to external documentation.
func (b *Base) SetHelpURI(uri string) { b.helpURI = uri }
