package segment

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestU2NetMissingModel verifies a missing weight file leaves the
// remover unavailable without failing construction
func TestU2NetMissingModel(t *testing.T) {
	opts := DefaultOptions()
	opts.ModelDir = t.TempDir()

	remover := NewU2Net(opts, testLogger())
	assert.False(t, remover.Available())

	img := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8UC3)
	defer img.Close()

	_, err := remover.Remove(img)
	assert.Error(t, err)

	// The load outcome is fixed after the first attempt
	assert.False(t, remover.Available())
}

// TestNormalizeNCHW verifies tensor layout and ImageNet scaling
func TestNormalizeNCHW(t *testing.T) {
	img := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3)
	defer img.Close()

	// One pure red pixel at (0,0): BGR = (0, 0, 255)
	img.SetUCharAt(0, 0*3+0, 0)
	img.SetUCharAt(0, 0*3+1, 0)
	img.SetUCharAt(0, 0*3+2, 255)

	data := normalizeNCHW(img)
	require.Len(t, data, 3*2*2)

	// R channel of pixel (0,0): (1.0 - mean) / std
	assert.InDelta(t, (1.0-0.485)/0.229, data[0], 1e-5)
	// G channel: (0.0 - mean) / std
	assert.InDelta(t, (0.0-0.456)/0.224, data[4], 1e-5)
	// B channel
	assert.InDelta(t, (0.0-0.406)/0.225, data[8], 1e-5)
}

// TestSaliencyToAlpha verifies min-max normalization and rescaling
func TestSaliencyToAlpha(t *testing.T) {
	saliency := make([]float32, u2netInputSize*u2netInputSize)
	for i := range saliency {
		saliency[i] = 0.25
	}
	saliency[0] = 1.0 // max
	saliency[1] = 0.0 // min

	alpha, err := saliencyToAlpha(saliency, 64, 48)
	require.NoError(t, err)
	defer alpha.Close()

	assert.Equal(t, 48, alpha.Rows())
	assert.Equal(t, 64, alpha.Cols())
	assert.Equal(t, 1, alpha.Channels())
}

// TestSaliencyToAlphaFlat verifies a constant saliency map does not
// divide by zero
func TestSaliencyToAlphaFlat(t *testing.T) {
	saliency := make([]float32, u2netInputSize*u2netInputSize)
	for i := range saliency {
		saliency[i] = 0.5
	}

	alpha, err := saliencyToAlpha(saliency, 32, 32)
	require.NoError(t, err)
	defer alpha.Close()

	assert.Equal(t, uint8(0), alpha.GetUCharAt(0, 0))
}

// TestApplyAlpha verifies BGR plus mask merges into BGRA
func TestApplyAlpha(t *testing.T) {
	img := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer img.Close()

	alpha := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8U)
	defer alpha.Close()

	out, err := applyAlpha(img, alpha)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 4, out.Channels())
	assert.Equal(t, 10, out.Rows())
	assert.Equal(t, 10, out.Cols())
}
