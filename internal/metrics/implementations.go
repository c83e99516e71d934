// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// grayscale returns a single-channel copy owned by the caller
func grayscale(input gocv.Mat) (gocv.Mat, error) {
	if input.Channels() == 1 {
		return input.Clone(), nil
	}

	gray := gocv.NewMat()
	if err := gocv.CvtColor(input, &gray, gocv.ColorBGRToGray); err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("grayscale conversion: %w", err)
	}
	return gray, nil
}

// meanSquaredError computes per-pixel MSE on the luminance channel
func meanSquaredError(original, processed gocv.Mat) (float64, error) {
	gray1, err := grayscale(original)
	if err != nil {
		return 0, err
	}
	defer gray1.Close()

	gray2, err := grayscale(processed)
	if err != nil {
		return 0, err
	}
	defer gray2.Close()

	f1 := gocv.NewMat()
	defer f1.Close()
	f2 := gocv.NewMat()
	defer f2.Close()

	gray1.ConvertTo(&f1, gocv.MatTypeCV64F)
	gray2.ConvertTo(&f2, gocv.MatTypeCV64F)

	diff := gocv.NewMat()
	defer diff.Close()

	if err := gocv.Subtract(f1, f2, &diff); err != nil {
		return 0, fmt.Errorf("difference image: %w", err)
	}

	normValue := gocv.Norm(diff, gocv.NormL2)
	totalPixels := float64(gray1.Total())
	if totalPixels == 0 {
		return 0, fmt.Errorf("empty images")
	}

	return normValue * normValue / totalPixels, nil
}

func checkPair(original, processed gocv.Mat) error {
	if original.Empty() || processed.Empty() {
		return fmt.Errorf("empty images")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return fmt.Errorf("image dimensions mismatch")
	}
	return nil
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}

	if mse < 1e-15 {
		return 100.0, nil
	}

	maxI := 255.0
	psnr := 20*math.Log10(maxI) - 10*math.Log10(mse)

	if math.IsInf(psnr, 0) || math.IsNaN(psnr) {
		return 100.0, nil
	}
	if psnr > 100 {
		return 100.0, nil
	}
	if psnr < 0 {
		return 0.0, nil
	}

	return psnr, nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio against the original image"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// SSIM implements Structural Similarity Index metric
type SSIM struct{}

// NewSSIM creates a new SSIM metric
func NewSSIM() *SSIM {
	return &SSIM{}
}

func (s *SSIM) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	gray1, err := grayscale(original)
	if err != nil {
		return 0, err
	}
	defer gray1.Close()

	gray2, err := grayscale(processed)
	if err != nil {
		return 0, err
	}
	defer gray2.Close()

	origF := gocv.NewMat()
	defer origF.Close()
	procF := gocv.NewMat()
	defer procF.Close()

	gray1.ConvertTo(&origF, gocv.MatTypeCV64F)
	gray2.ConvertTo(&procF, gocv.MatTypeCV64F)

	origF.DivideFloat(255.0)
	procF.DivideFloat(255.0)

	c1 := 0.01 * 0.01
	c2 := 0.03 * 0.03

	kernel := gocv.GetGaussianKernel(11, 1.5)
	defer kernel.Close()

	// Local means
	mu1 := gocv.NewMat()
	defer mu1.Close()
	mu2 := gocv.NewMat()
	defer mu2.Close()

	if err := gocv.Filter2D(origF, &mu1, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Filter2D(procF, &mu2, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	mu1Mu2 := gocv.NewMat()
	defer mu1Mu2.Close()
	mu1Sq := gocv.NewMat()
	defer mu1Sq.Close()
	mu2Sq := gocv.NewMat()
	defer mu2Sq.Close()

	if err := gocv.Multiply(mu1, mu2, &mu1Mu2); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Multiply(mu1, mu1, &mu1Sq); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Multiply(mu2, mu2, &mu2Sq); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	origF2 := gocv.NewMat()
	defer origF2.Close()
	procF2 := gocv.NewMat()
	defer procF2.Close()
	origFProcF := gocv.NewMat()
	defer origFProcF.Close()

	if err := gocv.Multiply(origF, origF, &origF2); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Multiply(procF, procF, &procF2); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Multiply(origF, procF, &origFProcF); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	// Local variances and covariance
	sigma1Sq := gocv.NewMat()
	defer sigma1Sq.Close()
	sigma2Sq := gocv.NewMat()
	defer sigma2Sq.Close()
	sigma12 := gocv.NewMat()
	defer sigma12.Close()

	temp1 := gocv.NewMat()
	defer temp1.Close()
	temp2 := gocv.NewMat()
	defer temp2.Close()
	temp3 := gocv.NewMat()
	defer temp3.Close()

	if err := gocv.Filter2D(origF2, &temp1, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Subtract(temp1, mu1Sq, &sigma1Sq); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	if err := gocv.Filter2D(procF2, &temp2, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Subtract(temp2, mu2Sq, &sigma2Sq); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	if err := gocv.Filter2D(origFProcF, &temp3, -1, kernel, image.Point{X: -1, Y: -1}, 0, gocv.BorderReflect101); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	if err := gocv.Subtract(temp3, mu1Mu2, &sigma12); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	// (2*mu1*mu2 + c1) * (2*sigma12 + c2)
	mu1Mu2.MultiplyFloat(2.0)
	mu1Mu2.AddFloat(float32(c1))
	sigma12.MultiplyFloat(2.0)
	sigma12.AddFloat(float32(c2))

	numerator := gocv.NewMat()
	defer numerator.Close()
	if err := gocv.Multiply(mu1Mu2, sigma12, &numerator); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	// (mu1^2 + mu2^2 + c1) * (sigma1^2 + sigma2^2 + c2)
	denominator1 := gocv.NewMat()
	defer denominator1.Close()
	denominator2 := gocv.NewMat()
	defer denominator2.Close()

	if err := gocv.Add(mu1Sq, mu2Sq, &denominator1); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	denominator1.AddFloat(float32(c1))

	if err := gocv.Add(sigma1Sq, sigma2Sq, &denominator2); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	denominator2.AddFloat(float32(c2))

	denominator := gocv.NewMat()
	defer denominator.Close()
	if err := gocv.Multiply(denominator1, denominator2, &denominator); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	ssimMap := gocv.NewMat()
	defer ssimMap.Close()
	if err := gocv.Divide(numerator, denominator, &ssimMap); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}

	ssim := ssimMap.Mean().Val1

	if math.IsInf(ssim, 0) || math.IsNaN(ssim) {
		return 0, fmt.Errorf("ssim produced a non-finite value")
	}

	if ssim > 1.0 {
		ssim = 1.0
	}
	if ssim < 0.0 {
		ssim = 0.0
	}

	return ssim, nil
}

func (s *SSIM) GetName() string {
	return "SSIM"
}

func (s *SSIM) GetDescription() string {
	return "Structural Similarity Index against the original image"
}

func (s *SSIM) GetRange() (float64, float64) {
	return 0, 1
}

func (s *SSIM) IsHigherBetter() bool {
	return true
}

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error between images"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025 // 255^2
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// ContrastRatio measures contrast preservation as the ratio of the
// standard deviations of the two images
type ContrastRatio struct{}

// NewContrastRatio creates a new contrast ratio metric
func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

func (c *ContrastRatio) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	origContrast, err := standardDeviation(original)
	if err != nil {
		return 0, err
	}
	procContrast, err := standardDeviation(processed)
	if err != nil {
		return 0, err
	}

	if origContrast == 0 {
		return 1.0, nil
	}

	return procContrast / origContrast, nil
}

// standardDeviation computes the luminance standard deviation from the
// first two moments
func standardDeviation(input gocv.Mat) (float64, error) {
	gray, err := grayscale(input)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	f := gocv.NewMat()
	defer f.Close()
	gray.ConvertTo(&f, gocv.MatTypeCV64F)

	squared := gocv.NewMat()
	defer squared.Close()
	if err := gocv.Multiply(f, f, &squared); err != nil {
		return 0, fmt.Errorf("standard deviation: %w", err)
	}

	mean := f.Mean().Val1
	meanSq := squared.Mean().Val1

	variance := meanSq - mean*mean
	if variance < 0 {
		variance = 0
	}

	return math.Sqrt(variance), nil
}

func (c *ContrastRatio) GetName() string {
	return "Contrast Ratio"
}

func (c *ContrastRatio) GetDescription() string {
	return "Ratio of contrast preservation"
}

func (c *ContrastRatio) GetRange() (float64, float64) {
	return 0, 2
}

func (c *ContrastRatio) IsHigherBetter() bool {
	return true
}

// Sharpness measures edge preservation as the ratio of the Laplacian
// variances of the two images
type Sharpness struct{}

// NewSharpness creates a new sharpness metric
func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty images")
	}

	origSharpness, err := laplacianVariance(original)
	if err != nil {
		return 0, err
	}
	procSharpness, err := laplacianVariance(processed)
	if err != nil {
		return 0, err
	}

	if origSharpness == 0 {
		return 1.0, nil
	}

	return procSharpness / origSharpness, nil
}

// laplacianVariance is the classic focus measure: the variance of the
// Laplacian response over the luminance channel
func laplacianVariance(input gocv.Mat) (float64, error) {
	gray, err := grayscale(input)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	laplacian := gocv.NewMat()
	defer laplacian.Close()
	gocv.Laplacian(gray, &laplacian, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	squared := gocv.NewMat()
	defer squared.Close()
	if err := gocv.Multiply(laplacian, laplacian, &squared); err != nil {
		return 0, fmt.Errorf("laplacian variance: %w", err)
	}

	mean := laplacian.Mean().Val1
	meanSq := squared.Mean().Val1

	variance := meanSq - mean*mean
	if variance < 0 {
		variance = 0
	}

	return variance, nil
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetDescription() string {
	return "Edge preservation measure"
}

func (s *Sharpness) GetRange() (float64, float64) {
	return 0, 2
}

func (s *Sharpness) IsHigherBetter() bool {
	return true
}
