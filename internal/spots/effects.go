package spots

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Effect is the kind specific part of a spot. Apply works on interleaved Lch
// pixel data (L, chroma, hue in degrees) of a width x height image; x, y and
// all distances are already multiplied by scale, the buffer's size relative
// to the source photo.
type Effect interface {
	Kind() string
	Apply(px []float32, width, height, x, y int, scale float64) error
	Params() map[string]float64
	SetParams(params map[string]float64) error
	Clone() Effect
}

const (
	KindLocalAdjust = "local_adjust"
	KindRepair      = "repair"
)

// NewEffect builds a default effect of the named kind.
func NewEffect(kind string) (Effect, error) {
	switch kind {
	case KindLocalAdjust:
		return NewLocalAdjust(), nil
	case KindRepair:
		return NewRepair(), nil
	}
	return nil, fmt.Errorf("unknown spot kind %q", kind)
}

// LocalAdjust shifts lightness, chroma and hue around the spot. The change
// fades out radially and, with ColorWeight > 0, also with the color distance
// to the pixel under the spot center.
type LocalAdjust struct {
	Radius         float64
	Softness       float64
	Lightness      float64
	Chroma         float64
	HueShift       float64
	ColorWeight    float64
	ColorTolerance float64
}

func NewLocalAdjust() *LocalAdjust {
	return &LocalAdjust{
		Radius:         100,
		Softness:       0.5,
		ColorTolerance: 0.25,
	}
}

func (la *LocalAdjust) Kind() string { return KindLocalAdjust }

func (la *LocalAdjust) Clone() Effect {
	c := *la
	return &c
}

func (la *LocalAdjust) Params() map[string]float64 {
	return map[string]float64{
		"radius":          la.Radius,
		"softness":        la.Softness,
		"lightness":       la.Lightness,
		"chroma":          la.Chroma,
		"hue_shift":       la.HueShift,
		"color_weight":    la.ColorWeight,
		"color_tolerance": la.ColorTolerance,
	}
}

func (la *LocalAdjust) SetParams(params map[string]float64) error {
	next := *la
	for k, v := range params {
		switch k {
		case "radius":
			next.Radius = v
		case "softness":
			next.Softness = v
		case "lightness":
			next.Lightness = v
		case "chroma":
			next.Chroma = v
		case "hue_shift":
			next.HueShift = v
		case "color_weight":
			next.ColorWeight = v
		case "color_tolerance":
			next.ColorTolerance = v
		default:
			return fmt.Errorf("local adjust: unknown parameter %q", k)
		}
	}
	if next.Radius <= 0 || next.Softness < 0 || next.Softness > 1 {
		return fmt.Errorf("local adjust: radius must be > 0 and softness in [0,1]")
	}
	*la = next
	return nil
}

func (la *LocalAdjust) Apply(px []float32, width, height, x, y int, scale float64) error {
	if err := checkBuffer(px, width, height); err != nil {
		return err
	}
	if x < 0 || y < 0 || x >= width || y >= height {
		return nil
	}

	si := (y*width + x) * 3
	seed := hclColor(px[si], px[si+1], px[si+2])

	forEachInRadius(width, height, x, y, la.Radius*scale, la.Softness, func(i int, w float64) {
		if la.ColorWeight > 0 && la.ColorTolerance > 0 {
			dist := seed.DistanceLab(hclColor(px[i], px[i+1], px[i+2]))
			sim := math.Max(0, 1-dist/la.ColorTolerance)
			w *= 1 - la.ColorWeight + la.ColorWeight*sim
		}
		if w <= 0 {
			return
		}
		l := float64(px[i]) + w*la.Lightness
		c := float64(px[i+1]) * (1 + w*la.Chroma)
		h := math.Mod(float64(px[i+2])+w*la.HueShift+360, 360)
		px[i] = float32(math.Max(0, math.Min(100, l)))
		px[i+1] = float32(math.Max(0, c))
		px[i+2] = float32(h)
	})
	return nil
}

// Repair clones the area at a source offset over the spot, blending it in
// with a soft edge.
type Repair struct {
	SourceDX int
	SourceDY int
	Radius   float64
	Softness float64
	Opacity  float64
}

func NewRepair() *Repair {
	return &Repair{
		SourceDX: 50,
		Radius:   30,
		Softness: 0.3,
		Opacity:  1,
	}
}

func (r *Repair) Kind() string { return KindRepair }

func (r *Repair) Clone() Effect {
	c := *r
	return &c
}

func (r *Repair) Params() map[string]float64 {
	return map[string]float64{
		"source_dx": float64(r.SourceDX),
		"source_dy": float64(r.SourceDY),
		"radius":    r.Radius,
		"softness":  r.Softness,
		"opacity":   r.Opacity,
	}
}

func (r *Repair) SetParams(params map[string]float64) error {
	next := *r
	for k, v := range params {
		switch k {
		case "source_dx":
			next.SourceDX = int(v)
		case "source_dy":
			next.SourceDY = int(v)
		case "radius":
			next.Radius = v
		case "softness":
			next.Softness = v
		case "opacity":
			next.Opacity = v
		default:
			return fmt.Errorf("repair: unknown parameter %q", k)
		}
	}
	if next.Radius <= 0 || next.Opacity < 0 || next.Opacity > 1 {
		return fmt.Errorf("repair: radius must be > 0 and opacity in [0,1]")
	}
	*r = next
	return nil
}

func (r *Repair) Apply(px []float32, width, height, x, y int, scale float64) error {
	if err := checkBuffer(px, width, height); err != nil {
		return err
	}

	// Source and target may overlap, so read from a copy.
	src := make([]float32, len(px))
	copy(src, px)

	dx := int(math.Round(float64(r.SourceDX) * scale))
	dy := int(math.Round(float64(r.SourceDY) * scale))
	forEachInRadius(width, height, x, y, r.Radius*scale, r.Softness, func(i int, w float64) {
		p := i / 3
		sx := p%width + dx
		sy := p/width + dy
		if sx < 0 || sy < 0 || sx >= width || sy >= height {
			return
		}
		j := (sy*width + sx) * 3
		w *= r.Opacity
		px[i] = lerp(px[i], src[j], w)
		px[i+1] = lerp(px[i+1], src[j+1], w)
		px[i+2] = lerpHue(px[i+2], src[j+2], w)
	})
	return nil
}

func checkBuffer(px []float32, width, height int) error {
	if width <= 0 || height <= 0 || len(px) < width*height*3 {
		return fmt.Errorf("pixel buffer of %d values too small for %dx%d", len(px), width, height)
	}
	return nil
}

// forEachInRadius calls fn with the channel offset and falloff weight of every
// pixel inside the circle around (cx,cy).
func forEachInRadius(width, height, cx, cy int, radius, softness float64, fn func(i int, w float64)) {
	r := int(math.Ceil(radius))
	x0, x1 := max(0, cx-r), min(width-1, cx+r)
	y0, y1 := max(0, cy-r), min(height-1, cy+r)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			w := falloff(d, radius, softness)
			if w > 0 {
				fn((y*width+x)*3, w)
			}
		}
	}
}

// falloff is 1 inside the hard core and drops along a smoothstep to 0 at
// the radius.
func falloff(d, radius, softness float64) float64 {
	if d >= radius {
		return 0
	}
	inner := radius * (1 - softness)
	if d <= inner {
		return 1
	}
	t := (d - inner) / (radius - inner)
	return 1 - t*t*(3-2*t)
}

func hclColor(l, c, h float32) colorful.Color {
	return colorful.Hcl(float64(h), float64(c)/100, float64(l)/100)
}

func lerp(a, b float32, w float64) float32 {
	return a + float32(w)*(b-a)
}

// lerpHue interpolates along the shorter arc of the hue circle.
func lerpHue(a, b float32, w float64) float32 {
	d := math.Mod(float64(b-a)+540, 360) - 180
	return float32(math.Mod(float64(a)+w*d+360, 360))
}
