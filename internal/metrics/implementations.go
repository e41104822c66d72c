package metrics

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"raw-photo-editor/internal/core"
)

// MSE is the mean squared per channel difference, on the [0,1] scale.
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Calculate(original, processed *core.Image) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string        { return "MSE" }
func (m *MSE) GetDescription() string { return "Mean Squared Error" }
func (m *MSE) IsHigherBetter() bool   { return false }

// PSNR implements Peak Signal-to-Noise Ratio with a peak of 1.0. Identical
// images give +Inf.
type PSNR struct{}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Calculate(original, processed *core.Image) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(1/mse), nil
}

func (p *PSNR) GetName() string        { return "PSNR" }
func (p *PSNR) GetDescription() string { return "Peak Signal-to-Noise Ratio" }
func (p *PSNR) IsHigherBetter() bool   { return true }

// SSIM is the mean structural similarity of the luma planes, using an
// 11x11 Gaussian window with sigma 1.5.
type SSIM struct{}

func NewSSIM() *SSIM { return &SSIM{} }

func (s *SSIM) Calculate(original, processed *core.Image) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	gray1, err := luma(original)
	if err != nil {
		return 0, err
	}
	defer gray1.Close()
	gray2, err := luma(processed)
	if err != nil {
		return 0, err
	}
	defer gray2.Close()

	return structuralSimilarity(gray1, gray2)
}

func (s *SSIM) GetName() string        { return "SSIM" }
func (s *SSIM) GetDescription() string { return "Structural Similarity Index" }
func (s *SSIM) IsHigherBetter() bool   { return true }

func luma(img *core.Image) (gocv.Mat, error) {
	gray := gocv.NewMat()
	if err := gocv.CvtColor(*img.Mat(), &gray, gocv.ColorRGBToGray); err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("luma: %w", err)
	}
	return gray, nil
}

func structuralSimilarity(f1, f2 gocv.Mat) (float64, error) {
	// constants for a dynamic range of 1
	const (
		c1 = 0.01 * 0.01
		c2 = 0.03 * 0.03
	)
	window := image.Pt(11, 11)

	var mats []*gocv.Mat
	newMat := func() *gocv.Mat {
		m := gocv.NewMat()
		mats = append(mats, &m)
		return &m
	}
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()

	blur := func(src gocv.Mat) (*gocv.Mat, error) {
		dst := newMat()
		if err := gocv.GaussianBlur(src, dst, window, 1.5, 1.5, gocv.BorderDefault); err != nil {
			return nil, fmt.Errorf("ssim window: %w", err)
		}
		return dst, nil
	}
	product := func(a, b gocv.Mat) *gocv.Mat {
		dst := newMat()
		gocv.Multiply(a, b, dst)
		return dst
	}
	// blurred products minus the product of the means
	moment := func(a, b gocv.Mat, mu *gocv.Mat) (*gocv.Mat, error) {
		m, err := blur(*product(a, b))
		if err != nil {
			return nil, err
		}
		gocv.Subtract(*m, *mu, m)
		return m, nil
	}

	mu1, err := blur(f1)
	if err != nil {
		return 0, err
	}
	mu2, err := blur(f2)
	if err != nil {
		return 0, err
	}
	mu1Sq := product(*mu1, *mu1)
	mu2Sq := product(*mu2, *mu2)
	mu1Mu2 := product(*mu1, *mu2)

	sigma1Sq, err := moment(f1, f1, mu1Sq)
	if err != nil {
		return 0, err
	}
	sigma2Sq, err := moment(f2, f2, mu2Sq)
	if err != nil {
		return 0, err
	}
	sigma12, err := moment(f1, f2, mu1Mu2)
	if err != nil {
		return 0, err
	}

	num1 := newMat()
	mu1Mu2.CopyTo(num1)
	num1.MultiplyFloat(2)
	num1.AddFloat(c1)
	num2 := newMat()
	sigma12.CopyTo(num2)
	num2.MultiplyFloat(2)
	num2.AddFloat(c2)

	den1 := newMat()
	gocv.Add(*mu1Sq, *mu2Sq, den1)
	den1.AddFloat(c1)
	den2 := newMat()
	gocv.Add(*sigma1Sq, *sigma2Sq, den2)
	den2.AddFloat(c2)

	ssimMap := newMat()
	gocv.Divide(*product(*num1, *num2), *product(*den1, *den2), ssimMap)
	return ssimMap.Mean().Val1, nil
}

func checkPair(original, processed *core.Image) error {
	if original.Empty() || processed.Empty() {
		return fmt.Errorf("empty images")
	}
	if original.Bounds() != processed.Bounds() {
		return fmt.Errorf("image dimensions mismatch")
	}
	if original.ColorSpace() != processed.ColorSpace() {
		return fmt.Errorf("color space mismatch: %v vs %v", original.ColorSpace(), processed.ColorSpace())
	}
	return nil
}

func meanSquaredError(original, processed *core.Image) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	diff := gocv.NewMat()
	defer diff.Close()
	if err := gocv.Subtract(*original.Mat(), *processed.Mat(), &diff); err != nil {
		return 0, fmt.Errorf("difference: %w", err)
	}

	norm := gocv.Norm(diff, gocv.NormL2)
	n := float64(original.Width() * original.Height() * 3)
	return norm * norm / n, nil
}
