package core

import (
	"fmt"

	"gocv.io/x/gocv"
)

// ColorSpace tags the meaning of an Image's channels.
type ColorSpace int

const (
	// RGB is gamma encoded sRGB, channels in [0,1].
	RGB ColorSpace = iota
	// LinearRGB is sRGB primaries without the transfer curve.
	LinearRGB
	// Lab is CIE L*a*b*: L in [0,100], a and b roughly [-127,127].
	Lab
	// Lch is Lab in polar form: L, chroma, hue in degrees [0,360).
	Lch
)

func (c ColorSpace) String() string {
	switch c {
	case RGB:
		return "RGB"
	case LinearRGB:
		return "LinearRGB"
	case Lab:
		return "Lab"
	case Lch:
		return "Lch"
	default:
		return fmt.Sprintf("ColorSpace(%d)", int(c))
	}
}

// IsRGB reports whether c is one of the RGB working spaces.
func (c ColorSpace) IsRGB() bool {
	return c == RGB || c == LinearRGB
}

// WorkSpace maps the WorkColor setting onto an RGB working space.
func WorkSpace(workColor int) ColorSpace {
	if workColor == 1 {
		return LinearRGB
	}
	return RGB
}

// ConvertTo moves the image into target. Lab is the hub: every conversion
// goes through it, so RGB -> LinearRGB costs two OpenCV passes. Returns false
// when the image already was in target.
func (img *Image) ConvertTo(target ColorSpace) (bool, error) {
	if img.space == target {
		return false, nil
	}
	if err := img.toLab(); err != nil {
		return false, err
	}
	if err := img.fromLab(target); err != nil {
		return false, err
	}
	return true, nil
}

// ToLch is a shorthand used by the spot preview path.
func (img *Image) ToLch() error {
	_, err := img.ConvertTo(Lch)
	return err
}

// LchToRGB converts back into the RGB working space selected by workColor.
func (img *Image) LchToRGB(workColor int) error {
	_, err := img.ConvertTo(WorkSpace(workColor))
	return err
}

func (img *Image) toLab() error {
	switch img.space {
	case Lab:
		return nil
	case RGB:
		return img.cvtColor(gocv.ColorRGBToLab, Lab)
	case LinearRGB:
		return img.cvtColor(gocv.ColorLRGBToLab, Lab)
	case Lch:
		return img.polarToLab()
	default:
		return fmt.Errorf("unknown color space %v", img.space)
	}
}

func (img *Image) fromLab(target ColorSpace) error {
	switch target {
	case Lab:
		return nil
	case RGB:
		return img.cvtColor(gocv.ColorLabToRGB, RGB)
	case LinearRGB:
		return img.cvtColor(gocv.ColorLabToLRGB, LinearRGB)
	case Lch:
		return img.labToPolar()
	default:
		return fmt.Errorf("unknown color space %v", target)
	}
}

func (img *Image) cvtColor(code gocv.ColorConversionCode, result ColorSpace) error {
	dst := gocv.NewMat()
	if err := gocv.CvtColor(img.mat, &dst, code); err != nil {
		dst.Close()
		return fmt.Errorf("convert %v to %v: %w", img.space, result, err)
	}
	if err := img.Replace(dst); err != nil {
		return err
	}
	img.space = result
	return nil
}

// labToPolar turns (a,b) into (chroma,hue) keeping L.
func (img *Image) labToPolar() error {
	channels := gocv.Split(img.mat)
	defer closeAll(channels)

	chroma := gocv.NewMat()
	hue := gocv.NewMat()
	defer chroma.Close()
	defer hue.Close()
	gocv.CartToPolar(channels[1], channels[2], &chroma, &hue, true)

	return img.merge(Lch, channels[0], chroma, hue)
}

// polarToLab turns (chroma,hue) back into (a,b) keeping L.
func (img *Image) polarToLab() error {
	channels := gocv.Split(img.mat)
	defer closeAll(channels)

	a := gocv.NewMat()
	b := gocv.NewMat()
	defer a.Close()
	defer b.Close()
	gocv.PolarToCart(channels[1], channels[2], &a, &b, true)

	return img.merge(Lab, channels[0], a, b)
}

func (img *Image) merge(result ColorSpace, c0, c1, c2 gocv.Mat) error {
	dst := gocv.NewMat()
	gocv.Merge([]gocv.Mat{c0, c1, c2}, &dst)
	if err := img.Replace(dst); err != nil {
		return err
	}
	img.space = result
	return nil
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
