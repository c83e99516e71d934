package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// uniformImage builds a BGR image with every channel set to value
func uniformImage(t *testing.T, rows, cols int, value uint8) gocv.Mat {
	t.Helper()

	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for c := 0; c < 3; c++ {
				mat.SetUCharAt(y, x*3+c, value)
			}
		}
	}
	return mat
}

// gradientImage builds a deterministic BGR gradient
func gradientImage(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()

	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			mat.SetUCharAt(y, x*3+0, uint8((x*3+y)%256))
			mat.SetUCharAt(y, x*3+1, uint8((x+y*2)%256))
			mat.SetUCharAt(y, x*3+2, uint8((x*x+y)%256))
		}
	}
	return mat
}

// TestPSNRIdentical verifies a perfect match saturates at the cap
func TestPSNRIdentical(t *testing.T) {
	img := gradientImage(t, 32, 32)
	defer img.Close()
	same := img.Clone()
	defer same.Close()

	psnr, err := NewPSNR().Calculate(img, same)
	require.NoError(t, err)
	assert.Equal(t, 100.0, psnr)
}

// TestPSNRUniformDelta verifies the value for a known uniform error.
// A constant difference of one gray level gives MSE 1 and therefore
// PSNR of 20*log10(255).
func TestPSNRUniformDelta(t *testing.T) {
	a := uniformImage(t, 32, 32, 100)
	defer a.Close()
	b := uniformImage(t, 32, 32, 101)
	defer b.Close()

	psnr, err := NewPSNR().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 20*math.Log10(255), psnr, 0.01)
}

// TestPSNRInvalidPairs verifies input validation
func TestPSNRInvalidPairs(t *testing.T) {
	img := gradientImage(t, 32, 32)
	defer img.Close()
	bigger := gradientImage(t, 64, 64)
	defer bigger.Close()
	empty := gocv.NewMat()
	defer empty.Close()

	tests := []struct {
		name      string
		original  gocv.Mat
		processed gocv.Mat
	}{
		{name: "empty original", original: empty, processed: img},
		{name: "empty processed", original: img, processed: empty},
		{name: "dimension mismatch", original: img, processed: bigger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPSNR().Calculate(tt.original, tt.processed)
			assert.Error(t, err)
		})
	}
}

// TestMSEUniformDelta verifies the exact MSE for a known difference
func TestMSEUniformDelta(t *testing.T) {
	a := uniformImage(t, 16, 16, 50)
	defer a.Close()
	b := uniformImage(t, 16, 16, 53)
	defer b.Close()

	mse, err := NewMSE().Calculate(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, mse, 1e-9)
}

// TestSSIMIdentical verifies structural similarity of an image with
// itself is one
func TestSSIMIdentical(t *testing.T) {
	img := gradientImage(t, 48, 48)
	defer img.Close()
	same := img.Clone()
	defer same.Close()

	ssim, err := NewSSIM().Calculate(img, same)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ssim, 1e-6)
}

// TestSSIMBounds verifies the result stays in range for dissimilar
// images
func TestSSIMBounds(t *testing.T) {
	a := gradientImage(t, 48, 48)
	defer a.Close()
	b := uniformImage(t, 48, 48, 200)
	defer b.Close()

	ssim, err := NewSSIM().Calculate(a, b)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ssim, 0.0)
	assert.LessOrEqual(t, ssim, 1.0)
}

// TestSSIMDimensionMismatch verifies input validation
func TestSSIMDimensionMismatch(t *testing.T) {
	a := gradientImage(t, 32, 32)
	defer a.Close()
	b := gradientImage(t, 64, 64)
	defer b.Close()

	_, err := NewSSIM().Calculate(a, b)
	assert.Error(t, err)
}

// TestContrastRatioIdentity verifies a no-op preserves contrast exactly
func TestContrastRatioIdentity(t *testing.T) {
	img := gradientImage(t, 32, 32)
	defer img.Close()
	same := img.Clone()
	defer same.Close()

	ratio, err := NewContrastRatio().Calculate(img, same)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 1e-9)
}

// TestContrastRatioFlatOriginal verifies the zero-contrast guard
func TestContrastRatioFlatOriginal(t *testing.T) {
	flat := uniformImage(t, 32, 32, 128)
	defer flat.Close()
	img := gradientImage(t, 32, 32)
	defer img.Close()

	ratio, err := NewContrastRatio().Calculate(flat, img)
	require.NoError(t, err)
	assert.Equal(t, 1.0, ratio)
}

// TestSharpnessIdentity verifies a no-op preserves sharpness exactly
func TestSharpnessIdentity(t *testing.T) {
	img := gradientImage(t, 32, 32)
	defer img.Close()
	same := img.Clone()
	defer same.Close()

	ratio, err := NewSharpness().Calculate(img, same)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 1e-9)
}

// TestEvaluatorUnknownMetric verifies lookup failure is an error
func TestEvaluatorUnknownMetric(t *testing.T) {
	img := gradientImage(t, 16, 16)
	defer img.Close()

	_, err := NewEvaluator().Calculate("entropy", img, img)
	assert.Error(t, err)
}

// TestCalculateAllSkipsInapplicable verifies reference metrics drop out
// when the geometry changed, while per-image metrics remain
func TestCalculateAllSkipsInapplicable(t *testing.T) {
	small := gradientImage(t, 32, 32)
	defer small.Close()
	upscaled := gradientImage(t, 64, 64)
	defer upscaled.Close()

	results := NewEvaluator().CalculateAll(small, upscaled)

	assert.NotContains(t, results, "psnr")
	assert.NotContains(t, results, "ssim")
	assert.NotContains(t, results, "mse")
	assert.Contains(t, results, "contrast_ratio")
	assert.Contains(t, results, "sharpness")
}

// TestEvaluateOperationSharpnessGain verifies the operation-specific
// metric shows up for sharpening
func TestEvaluateOperationSharpnessGain(t *testing.T) {
	before := gradientImage(t, 32, 32)
	defer before.Close()
	after := before.Clone()
	defer after.Close()

	results := NewEvaluator().EvaluateOperation(before, after, "sharpen")

	assert.Contains(t, results, "psnr")
	assert.Contains(t, results, "ssim")
	assert.Contains(t, results, "sharpness_gain")
}

// TestGenerateReportIdentical verifies a clean report for a perfect
// pair
func TestGenerateReportIdentical(t *testing.T) {
	img := gradientImage(t, 32, 32)
	defer img.Close()
	same := img.Clone()
	defer same.Close()

	report := NewEvaluator().GenerateReport(img, same)

	assert.Empty(t, report.Analysis.Issues)
	assert.Greater(t, report.OverallScore, 75.0)
	assert.Contains(t, report.Metrics, "psnr")
	assert.NotEmpty(t, report.Timestamp)
}

// TestMetricInfo verifies metadata for every registered metric
func TestMetricInfo(t *testing.T) {
	info := NewEvaluator().GetMetricInfo()

	require.Contains(t, info, "psnr")
	assert.True(t, info["psnr"].HigherBetter)
	assert.Equal(t, [2]float64{0, 100}, info["psnr"].Range)

	require.Contains(t, info, "mse")
	assert.False(t, info["mse"].HigherBetter)
}
