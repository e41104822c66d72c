// Generic filter controls built from a config schema
package gui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"raw-photo-editor/internal/filters"
)

// Controls is the widget set of one filter. Widgets follow the store, so
// presets and resets show up without rebuilding.
type Controls struct {
	cfg     *filters.ConfigStore
	content fyne.CanvasObject
	widgets map[string]fyne.CanvasObject
	sync    map[string]func(v any)
	syncing bool
}

// BuildControls renders f's controls. Filters implementing
// filters.GuiCreator supply their own layout; the rest get one row per
// config item. changed receives the id of every value written through the
// widgets.
func BuildControls(f filters.Filter, changed func(id string)) *Controls {
	c := &Controls{
		cfg:     f.Config(),
		widgets: make(map[string]fyne.CanvasObject),
		sync:    make(map[string]func(v any)),
	}
	notify := func(id string) {
		if !c.syncing {
			changed(id)
		}
	}

	if creator, ok := f.(filters.GuiCreator); ok {
		c.content = creator.CreateGui(c.cfg, notify)
		return c
	}

	rows := container.NewVBox()
	for _, item := range c.cfg.Items() {
		rows.Add(c.buildItem(item, notify))
	}
	c.content = rows
	c.cfg.OnChange(c.refresh)
	return c
}

// Content is the canvas object to place into a tool box.
func (c *Controls) Content() fyne.CanvasObject {
	return c.content
}

// Widget returns the input widget of a generated item, nil for filters
// with their own layout.
func (c *Controls) Widget(id string) fyne.CanvasObject {
	return c.widgets[id]
}

func (c *Controls) buildItem(item filters.ConfigItem, changed func(id string)) fyne.CanvasObject {
	caption := item.Caption
	if caption == "" {
		caption = item.ID
	}
	current, _ := c.cfg.Value(item.ID)

	var obj fyne.CanvasObject
	switch item.Kind {
	case filters.Check:
		check := widget.NewCheck(caption, nil)
		check.SetChecked(current.(bool))
		check.OnChanged = func(on bool) {
			if _, err := c.cfg.SetValue(item.ID, on); err == nil {
				changed(item.ID)
			}
		}
		c.sync[item.ID] = func(v any) { check.SetChecked(v.(bool)) }
		c.widgets[item.ID] = check
		obj = check

	case filters.Slider:
		format := func(f float64) string { return strconv.FormatFloat(f, 'f', item.Precision(), 64) }
		valueLabel := widget.NewLabel(format(current.(float64)))
		slider := widget.NewSlider(item.Min, item.Max)
		slider.Step = item.Step
		slider.Value = current.(float64)
		slider.OnChanged = func(v float64) {
			stored, err := c.cfg.SetValue(item.ID, v)
			if err != nil {
				return
			}
			valueLabel.SetText(format(stored.(float64)))
			changed(item.ID)
		}
		c.sync[item.ID] = func(v any) {
			slider.SetValue(v.(float64))
			valueLabel.SetText(format(v.(float64)))
		}
		c.widgets[item.ID] = slider
		obj = container.NewBorder(nil, nil, widget.NewLabel(caption), valueLabel, slider)

	case filters.Combo:
		sel := widget.NewSelect(item.Choices, nil)
		sel.SetSelectedIndex(current.(int))
		sel.OnChanged = func(string) {
			if _, err := c.cfg.SetValue(item.ID, sel.SelectedIndex()); err == nil {
				changed(item.ID)
			}
		}
		c.sync[item.ID] = func(v any) { sel.SetSelectedIndex(v.(int)) }
		c.widgets[item.ID] = sel
		obj = container.NewBorder(nil, nil, widget.NewLabel(caption), nil, sel)

	default:
		obj = widget.NewLabel("Unsupported control " + item.Kind.String())
	}

	if item.Tooltip != "" {
		obj = container.NewVBox(obj, widget.NewLabelWithStyle(item.Tooltip, fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))
	}
	return obj
}

// refresh pulls the stored value of id into its widget without reporting
// it back as a user change.
func (c *Controls) refresh(id string) {
	set, ok := c.sync[id]
	if !ok {
		return
	}
	v, err := c.cfg.Value(id)
	if err != nil {
		return
	}
	c.syncing = true
	set(v)
	c.syncing = false
}
