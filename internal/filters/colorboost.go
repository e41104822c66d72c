package filters

import (
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/samber/lo"

	"raw-photo-editor/internal/core"
)

const (
	ColorBoostID = "ColorBoost"

	CfgBoostAmount = "Amount"
	CfgBoostMode   = "Mode"
)

const (
	boostLinear = iota
	boostVibrance
)

// ColorBoost scales the a/b channels. Vibrance mode protects colors that are
// already saturated.
var ColorBoost = Descriptor{
	ID:         ColorBoostID,
	Caption:    "Color boost",
	HelpURI:    "https://en.wikipedia.org/wiki/Colorfulness",
	ColorSpace: core.Lab,
	Phase:      PhaseLab,
	Controls: []ConfigItem{
		{ID: CfgBoostAmount, Kind: Slider, Default: 0.0, Min: -1, Max: 1, Step: 0.01, Decimals: 2,
			CommonConnect: true, Persisted: true, Caption: "Amount"},
		{ID: CfgBoostMode, Kind: Combo, Default: boostLinear, Choices: []string{"Linear", "Vibrance"},
			CommonConnect: true, Persisted: true, Caption: "Mode",
			Tooltip: "Vibrance boosts muted colors more than saturated ones"},
	},
	Active: func(cfg *ConfigStore) bool {
		return cfg.Float(CfgBoostAmount) != 0
	},
	Run: runColorBoost,
	Gui: colorBoostGui,
}

func runColorBoost(cfg *ConfigStore, img *core.Image) error {
	px, err := img.Pixels()
	if err != nil {
		return err
	}
	amount := cfg.Float(CfgBoostAmount)
	vibrance := cfg.Int(CfgBoostMode) == boostVibrance

	for i := 0; i+2 < len(px); i += 3 {
		factor := 1 + amount
		if vibrance {
			chroma := math.Hypot(float64(px[i+1]), float64(px[i+2]))
			factor = 1 + amount*(1-math.Min(chroma/128, 1))
		}
		factor = math.Max(0, factor)
		px[i+1] *= float32(factor)
		px[i+2] *= float32(factor)
	}
	return nil
}

// colorBoostGui lays the mode out as radio buttons next to the slider.
func colorBoostGui(cfg *ConfigStore, changed func(id string)) fyne.CanvasObject {
	amountItem, _ := cfg.Item(CfgBoostAmount)
	modeItem, _ := cfg.Item(CfgBoostMode)

	valueLabel := widget.NewLabel(strconv.FormatFloat(cfg.Float(CfgBoostAmount), 'f', amountItem.Precision(), 64))
	slider := widget.NewSlider(amountItem.Min, amountItem.Max)
	slider.Step = amountItem.Step
	slider.Value = cfg.Float(CfgBoostAmount)
	slider.OnChanged = func(v float64) {
		stored, err := cfg.SetValue(CfgBoostAmount, v)
		if err != nil {
			return
		}
		valueLabel.SetText(strconv.FormatFloat(stored.(float64), 'f', amountItem.Precision(), 64))
		changed(CfgBoostAmount)
	}

	mode := widget.NewRadioGroup(modeItem.Choices, nil)
	mode.Horizontal = true
	mode.SetSelected(modeItem.Choices[cfg.Int(CfgBoostMode)])
	mode.OnChanged = func(selected string) {
		_, idx, ok := lo.FindIndexOf(modeItem.Choices, func(c string) bool { return c == selected })
		if !ok {
			return
		}
		if _, err := cfg.SetValue(CfgBoostMode, idx); err == nil {
			changed(CfgBoostMode)
		}
	}

	return container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel(amountItem.Caption), valueLabel, slider),
		mode,
	)
}
