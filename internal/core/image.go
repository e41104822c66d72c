// Core image buffer: a float Mat tagged with the color space it is in
package core

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// maxDimension keeps a single buffer within a sane memory budget.
const maxDimension = 16384

// Image is the working buffer handed from filter to filter. The pixel data
// is always a continuous CV_32FC3 Mat; what the three channels mean is given
// by the color space tag.
type Image struct {
	mat   gocv.Mat
	space ColorSpace
	// scale is the buffer's size relative to the source photo. Geometry
	// given in source pixels (spot positions, radii) is multiplied by it.
	scale float64
}

// NewImage wraps mat and takes ownership of it. The Mat must already be a
// three channel 32 bit float buffer.
func NewImage(mat gocv.Mat, space ColorSpace) (*Image, error) {
	if err := ValidateMat(mat); err != nil {
		return nil, err
	}
	if mat.Type() != gocv.MatTypeCV32FC3 {
		return nil, fmt.Errorf("image buffer must be CV_32FC3, got %v", mat.Type())
	}
	return &Image{mat: mat, space: space, scale: 1}, nil
}

// NewFilledImage allocates a width x height buffer with every pixel set to
// the given channel values.
func NewFilledImage(width, height int, space ColorSpace, c0, c1, c2 float64) *Image {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(c0, c1, c2, 0), height, width, gocv.MatTypeCV32FC3)
	return &Image{mat: mat, space: space, scale: 1}
}

// FromBGR8 converts an 8 bit BGR Mat, as produced by gocv.IMRead, into an RGB
// float buffer in [0,1]. The input Mat is not consumed.
func FromBGR8(src gocv.Mat) (*Image, error) {
	if err := ValidateMat(src); err != nil {
		return nil, err
	}
	if src.Channels() != 3 {
		return nil, fmt.Errorf("unsupported number of channels: %d", src.Channels())
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	if err := gocv.CvtColor(src, &rgb, gocv.ColorBGRToRGB); err != nil {
		return nil, fmt.Errorf("convert BGR to RGB: %w", err)
	}

	f := gocv.NewMat()
	rgb.ConvertToWithParams(&f, gocv.MatTypeCV32FC3, 1.0/255.0, 0)
	return &Image{mat: f, space: RGB, scale: 1}, nil
}

// Mat exposes the underlying buffer. Filters mutate it in place or swap it
// through Replace.
func (img *Image) Mat() *gocv.Mat {
	return &img.mat
}

// ColorSpace reports what the channels currently hold.
func (img *Image) ColorSpace() ColorSpace {
	return img.space
}

// Scale reports the buffer size relative to the source photo.
func (img *Image) Scale() float64 {
	return img.scale
}

// SetScale records that the buffer was resized by s relative to the source.
func (img *Image) SetScale(s float64) {
	img.scale = s
}

// FromGoImage converts a decoded or resized Go image into an RGB float
// buffer.
func FromGoImage(src image.Image) (*Image, error) {
	bgr, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer bgr.Close()
	return FromBGR8(bgr)
}

func (img *Image) Width() int  { return img.mat.Cols() }
func (img *Image) Height() int { return img.mat.Rows() }

// Bounds returns the image rectangle anchored at the origin.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.mat.Cols(), img.mat.Rows())
}

// Empty is true for a closed or never filled buffer.
func (img *Image) Empty() bool {
	return img == nil || img.mat.Empty()
}

// Clone returns a deep copy with the same color space.
func (img *Image) Clone() *Image {
	return &Image{mat: img.mat.Clone(), space: img.space, scale: img.scale}
}

// Set makes img a deep copy of src, releasing the previous pixel data.
func (img *Image) Set(src *Image) {
	old := img.mat
	img.mat = src.mat.Clone()
	img.space = src.space
	img.scale = src.scale
	old.Close()
}

// Replace swaps in a freshly computed Mat of the same color space and takes
// ownership of it.
func (img *Image) Replace(mat gocv.Mat) error {
	if mat.Type() != gocv.MatTypeCV32FC3 {
		mat.Close()
		return fmt.Errorf("replacement buffer must be CV_32FC3, got %v", mat.Type())
	}
	img.mat.Close()
	img.mat = mat
	return nil
}

// Pixels returns the interleaved channel data. The slice aliases the Mat and
// is only valid until the next Replace or Close.
func (img *Image) Pixels() ([]float32, error) {
	if !img.mat.IsContinuous() {
		return nil, fmt.Errorf("image buffer is not continuous")
	}
	return img.mat.DataPtrFloat32()
}

// ToBGR8 renders the buffer as an 8 bit BGR Mat in the given RGB working
// space, ready for gocv.IMWrite or Mat.ToImage. The receiver is unchanged.
func (img *Image) ToBGR8(work ColorSpace) (gocv.Mat, error) {
	tmp := img.Clone()
	defer tmp.Close()

	if !work.IsRGB() {
		work = RGB
	}
	if _, err := tmp.ConvertTo(work); err != nil {
		return gocv.NewMat(), err
	}

	bgr := gocv.NewMat()
	defer bgr.Close()
	if err := gocv.CvtColor(tmp.mat, &bgr, gocv.ColorRGBToBGR); err != nil {
		return gocv.NewMat(), fmt.Errorf("convert RGB to BGR: %w", err)
	}

	out := gocv.NewMat()
	bgr.ConvertToWithParams(&out, gocv.MatTypeCV8UC3, 255.0, 0)
	return out, nil
}

// ToImage renders the buffer into a Go image for display.
func (img *Image) ToImage(work ColorSpace) (image.Image, error) {
	bgr, err := img.ToBGR8(work)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()
	return bgr.ToImage()
}

// Close releases the pixel data.
func (img *Image) Close() {
	if img == nil {
		return
	}
	img.mat.Close()
}

// ValidateMat validates an OpenCV Mat for basic requirements
func ValidateMat(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	if mat.Cols() > maxDimension || mat.Rows() > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), maxDimension)
	}

	return nil
}
