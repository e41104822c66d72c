package filters

import (
	"fmt"

	"fyne.io/fyne/v2"

	"raw-photo-editor/internal/core"
)

// Descriptor declares a filter as data. Most built-in filters are nothing
// more than a schema, an activation predicate and a run function, so they
// are written as descriptors and turned into factories.
type Descriptor struct {
	ID         string
	Caption    string
	HelpURI    string
	IsSlow     bool
	ColorSpace core.ColorSpace
	Phase      Phase
	Controls   []ConfigItem
	Active     func(cfg *ConfigStore) bool
	Run        func(cfg *ConfigStore, img *core.Image) error
	// Gui is optional; when set the filter implements GuiCreator.
	Gui func(cfg *ConfigStore, changed func(id string)) fyne.CanvasObject
}

// Factory returns a factory producing filters that behave as d describes.
func (d Descriptor) Factory() Factory {
	return func() Filter {
		base := NewBase(d.ID, d.Caption, d.ColorSpace, d.Phase)
		base.SetSlow(d.IsSlow)
		base.SetHelpURI(d.HelpURI)

		f := &descriptorFilter{Base: base, desc: d}
		if d.Gui != nil {
			return &guiDescriptorFilter{descriptorFilter: f}
		}
		return f
	}
}

type descriptorFilter struct {
	Base
	desc Descriptor
}

func (f *descriptorFilter) DefineControls() []ConfigItem {
	items := make([]ConfigItem, len(f.desc.Controls))
	copy(items, f.desc.Controls)
	return items
}

func (f *descriptorFilter) CheckHasActiveCfg() bool {
	if f.desc.Active == nil {
		return true
	}
	return f.desc.Active(f.Config())
}

func (f *descriptorFilter) RunFilter(img *core.Image) error {
	if f.desc.Run == nil {
		return nil
	}
	if img.ColorSpace() != f.ColorSpace() {
		return fmt.Errorf("%s expects %v input, got %v", f.ID(), f.ColorSpace(), img.ColorSpace())
	}
	return f.desc.Run(f.Config(), img)
}

type guiDescriptorFilter struct {
	*descriptorFilter
}

func (f *guiDescriptorFilter) CreateGui(cfg *ConfigStore, changed func(id string)) fyne.CanvasObject {
	return f.desc.Gui(cfg, changed)
}
