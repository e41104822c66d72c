// Image view with line and spot interaction
package gui

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"raw-photo-editor/internal/interaction"
)

// ViewMode selects what mouse input on the image does.
type ViewMode int

const (
	ViewNone ViewMode = iota
	// ViewLine drags a guide line, see interaction.LineInteraction.
	ViewLine
	// ViewSpots reports clicks in source pixels.
	ViewSpots
)

var (
	guideColor  = color.NRGBA{R: 255, G: 200, B: 0, A: 255}
	markerColor = color.NRGBA{R: 0, G: 200, B: 255, A: 200}
)

// ImageView displays the preview fitted into the widget. Positions handed
// out are in source pixels, whatever the preview scale.
type ImageView struct {
	widget.BaseWidget

	logger  *logrus.Logger
	image   *canvas.Image
	overlay []fyne.CanvasObject
	markers []image.Point

	sourceSize image.Point
	mode       ViewMode
	line       *interaction.LineInteraction

	onLine  func(angle float64)
	onClick func(x, y int)
}

func NewImageView(logger *logrus.Logger) *ImageView {
	iv := &ImageView{
		logger: logger,
		image:  canvas.NewImageFromImage(nil),
	}
	iv.image.FillMode = canvas.ImageFillContain
	iv.image.ScaleMode = canvas.ImageScaleSmooth
	iv.ExtendBaseWidget(iv)
	return iv
}

// SetImage shows img. sourceSize is the full resolution size the preview
// was derived from.
func (iv *ImageView) SetImage(img image.Image, sourceSize image.Point) {
	iv.image.Image = img
	iv.sourceSize = sourceSize
	iv.image.Refresh()
	iv.Refresh()
}

// SetMode switches the mouse behavior. An unfinished line is dropped.
func (iv *ImageView) SetMode(mode ViewMode) {
	iv.mode = mode
	iv.line = nil
	iv.overlay = iv.overlay[:0]
	if mode == ViewLine {
		iv.line = interaction.NewLineInteraction(iv, iv.lineFinished)
	}
	iv.Refresh()
}

// Mode returns the current mouse behavior.
func (iv *ImageView) Mode() ViewMode {
	return iv.mode
}

// SetLineFinished receives the angle of every released guide line.
func (iv *ImageView) SetLineFinished(fn func(angle float64)) {
	iv.onLine = fn
}

// SetSpotClicked receives clicks in ViewSpots mode.
func (iv *ImageView) SetSpotClicked(fn func(x, y int)) {
	iv.onClick = fn
}

// SetMarkers draws a marker at each source pixel position.
func (iv *ImageView) SetMarkers(points []image.Point) {
	iv.markers = points
	iv.Refresh()
}

func (iv *ImageView) MouseIn(*desktop.MouseEvent)    {}
func (iv *ImageView) MouseMoved(*desktop.MouseEvent) {}
func (iv *ImageView) MouseOut()                      {}

func (iv *ImageView) MouseDown(ev *desktop.MouseEvent) {
	if iv.sourceSize.X == 0 {
		return
	}
	switch iv.mode {
	case ViewLine:
		if iv.line.Dragging() {
			return
		}
		iv.line.MouseAction(interaction.Event{
			Type:   interaction.EventPress,
			Button: buttonOf(ev.Button),
			Pos:    toPoint(ev.Position),
		})
	case ViewSpots:
		if ev.Button != desktop.MouseButtonPrimary || iv.onClick == nil {
			return
		}
		p := iv.MapToScene(toPoint(ev.Position))
		iv.onClick(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
}

func (iv *ImageView) MouseUp(ev *desktop.MouseEvent) {
	iv.release(toPoint(ev.Position))
}

func (iv *ImageView) Dragged(ev *fyne.DragEvent) {
	if iv.line == nil || !iv.line.Dragging() {
		return
	}
	iv.line.MouseAction(interaction.Event{
		Type:   interaction.EventMove,
		Button: interaction.ButtonPrimary,
		Pos:    toPoint(ev.Position),
	})
}

func (iv *ImageView) DragEnd() {
	if iv.line == nil || !iv.line.Dragging() {
		return
	}
	iv.release(iv.sceneToWidget(iv.line.Line().P2))
}

func (iv *ImageView) release(pos interaction.Point) {
	if iv.mode != ViewLine || iv.line == nil || !iv.line.Dragging() {
		return
	}
	iv.line.MouseAction(interaction.Event{
		Type:   interaction.EventRelease,
		Button: interaction.ButtonPrimary,
		Pos:    pos,
	})
}

func (iv *ImageView) lineFinished(status interaction.Status) {
	if status != interaction.StatusSuccess {
		return
	}
	angle := iv.line.Angle()
	iv.logger.WithField("angle", angle).Debug("GUI: Guide line finished")
	if iv.onLine != nil {
		iv.onLine(angle)
	}
}

// MapToScene converts a widget position into source pixels, clamped to the
// image.
func (iv *ImageView) MapToScene(p interaction.Point) interaction.Point {
	scale, offX, offY := iv.fit()
	if scale == 0 {
		return interaction.Point{}
	}
	x := (p.X - offX) / scale
	y := (p.Y - offY) / scale
	return interaction.Point{
		X: math.Max(0, math.Min(x, float64(iv.sourceSize.X-1))),
		Y: math.Max(0, math.Min(y, float64(iv.sourceSize.Y-1))),
	}
}

// AddLine draws a guide line given in source pixels.
func (iv *ImageView) AddLine(l interaction.Line) interaction.LineProxy {
	proxy := &lineProxy{view: iv, line: canvas.NewLine(guideColor)}
	proxy.line.StrokeWidth = 2
	iv.overlay = append(iv.overlay, proxy.line)
	proxy.SetLine(l)
	iv.Refresh()
	return proxy
}

func (iv *ImageView) sceneToWidget(p interaction.Point) interaction.Point {
	scale, offX, offY := iv.fit()
	return interaction.Point{X: p.X*scale + offX, Y: p.Y*scale + offY}
}

// fit returns the contain-fit scale and offsets of the source in the widget.
func (iv *ImageView) fit() (scale, offX, offY float64) {
	if iv.sourceSize.X == 0 || iv.sourceSize.Y == 0 {
		return 0, 0, 0
	}
	size := iv.Size()
	scale = math.Min(float64(size.Width)/float64(iv.sourceSize.X), float64(size.Height)/float64(iv.sourceSize.Y))
	offX = (float64(size.Width) - float64(iv.sourceSize.X)*scale) / 2
	offY = (float64(size.Height) - float64(iv.sourceSize.Y)*scale) / 2
	return scale, offX, offY
}

func (iv *ImageView) markerObjects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, len(iv.markers))
	for _, m := range iv.markers {
		c := iv.sceneToWidget(interaction.Point{X: float64(m.X), Y: float64(m.Y)})
		circle := canvas.NewCircle(color.Transparent)
		circle.StrokeColor = markerColor
		circle.StrokeWidth = 2
		circle.Position1 = fyne.NewPos(float32(c.X-6), float32(c.Y-6))
		circle.Position2 = fyne.NewPos(float32(c.X+6), float32(c.Y+6))
		objs = append(objs, circle)
	}
	return objs
}

func (iv *ImageView) CreateRenderer() fyne.WidgetRenderer {
	return &imageViewRenderer{view: iv}
}

type lineProxy struct {
	view *ImageView
	line *canvas.Line
}

func (lp *lineProxy) SetLine(l interaction.Line) {
	p1 := lp.view.sceneToWidget(l.P1)
	p2 := lp.view.sceneToWidget(l.P2)
	lp.line.Position1 = fyne.NewPos(float32(p1.X), float32(p1.Y))
	lp.line.Position2 = fyne.NewPos(float32(p2.X), float32(p2.Y))
	lp.line.Refresh()
}

func (lp *lineProxy) Remove() {
	objs := lp.view.overlay[:0]
	for _, o := range lp.view.overlay {
		if o != lp.line {
			objs = append(objs, o)
		}
	}
	lp.view.overlay = objs
	lp.view.Refresh()
}

func toPoint(p fyne.Position) interaction.Point {
	return interaction.Point{X: float64(p.X), Y: float64(p.Y)}
}

func buttonOf(b desktop.MouseButton) interaction.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return interaction.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return interaction.ButtonTertiary
	default:
		return interaction.ButtonPrimary
	}
}

type imageViewRenderer struct {
	view *ImageView
}

func (r *imageViewRenderer) Layout(size fyne.Size) {
	r.view.image.Resize(size)
	r.view.image.Move(fyne.NewPos(0, 0))
}

func (r *imageViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *imageViewRenderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.view.image}
	objs = append(objs, r.view.overlay...)
	return append(objs, r.view.markerObjects()...)
}

func (r *imageViewRenderer) Refresh() {
	r.view.image.Refresh()
	for _, o := range r.view.overlay {
		o.Refresh()
	}
}

func (r *imageViewRenderer) Destroy() {}
