// Tool box card wrapping one filter's controls
package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/filters"
	"raw-photo-editor/internal/pipeline"
)

// ToolBox shows a filter's controls in a card whose subtitle tells whether
// the filter takes part in the next pass.
type ToolBox struct {
	filter    filters.Filter
	processor *pipeline.Processor
	logger    *logrus.Logger

	card     *widget.Card
	controls *Controls
	extra    *fyne.Container
	active   bool
}

func NewToolBox(f filters.Filter, processor *pipeline.Processor, logger *logrus.Logger) *ToolBox {
	tb := &ToolBox{
		filter:    f,
		processor: processor,
		logger:    logger,
		extra:     container.NewVBox(),
	}
	tb.controls = BuildControls(f, tb.valueChanged)
	tb.card = widget.NewCard(lang.L(f.Caption()), "", container.NewVBox(tb.controls.Content(), tb.extra))
	f.Config().OnChange(func(string) { tb.SetActive(f.CheckHasActiveCfg()) })
	tb.SetActive(f.CheckHasActiveCfg())
	return tb
}

// Filter returns the filter behind the box.
func (tb *ToolBox) Filter() filters.Filter {
	return tb.filter
}

// Container returns the card to place into a panel.
func (tb *ToolBox) Container() fyne.CanvasObject {
	return tb.card
}

// Add appends obj below the generated controls.
func (tb *ToolBox) Add(obj fyne.CanvasObject) {
	tb.extra.Add(obj)
}

// SetActive updates the activity marker of the box.
func (tb *ToolBox) SetActive(active bool) {
	if tb.active == active && tb.card.Subtitle != "" {
		return
	}
	tb.active = active
	if active {
		tb.card.SetSubTitle(lang.L("active"))
	} else {
		tb.card.SetSubTitle(lang.L("inactive"))
	}
}

// Active reports the last state passed to SetActive.
func (tb *ToolBox) Active() bool {
	return tb.active
}

func (tb *ToolBox) valueChanged(id string) {
	item, err := tb.filter.Config().Item(id)
	if err != nil {
		tb.logger.WithError(err).Warn("GUI: Change for unknown config item")
		return
	}
	tb.logger.WithFields(logrus.Fields{
		"filter": tb.filter.ID(),
		"item":   id,
	}).Debug("GUI: Config value changed")

	if item.CommonConnect {
		tb.processor.Schedule(pipeline.Request(tb.filter.Phase()))
	}
}
