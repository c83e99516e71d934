package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// makeTestImage builds a deterministic BGR gradient image
func makeTestImage(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()

	mat := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			mat.SetUCharAt(y, x*3+0, uint8((x*3+y)%256))
			mat.SetUCharAt(y, x*3+1, uint8((x+y*2)%256))
			mat.SetUCharAt(y, x*3+2, uint8((x*y)%256))
		}
	}
	return mat
}

// TestRegistryLookup verifies registration of the algorithm set
func TestRegistryLookup(t *testing.T) {
	names := []string{"sharpen", "clahe", "face_classic", "denoise", "bilateral", "upscale"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			algorithm, exists := Get(name)
			require.True(t, exists)
			assert.NotEmpty(t, algorithm.GetName())
			assert.NoError(t, algorithm.Validate(algorithm.GetDefaultParams()))
		})
	}

	_, exists := Get("nonexistent")
	assert.False(t, exists)
}

// TestApplyRejectsEmptyInput verifies every algorithm fails cleanly on
// an empty Mat
func TestApplyRejectsEmptyInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	for name := range GetAllAlgorithms() {
		t.Run(name, func(t *testing.T) {
			out, err := Apply(name, empty, nil)
			defer out.Close()
			assert.Error(t, err)
		})
	}
}

// TestSharpenDeterministic verifies sharpening is reproducible byte
// for byte on identical input
func TestSharpenDeterministic(t *testing.T) {
	input := makeTestImage(t, 64, 64)
	defer input.Close()

	first, err := Apply("sharpen", input, nil)
	require.NoError(t, err)
	defer first.Close()

	second, err := Apply("sharpen", input, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, input.Rows(), first.Rows())
	assert.Equal(t, input.Cols(), first.Cols())
	assert.Equal(t, first.ToBytes(), second.ToBytes())
}

// TestSharpenPreservesInput verifies the source image is not written
func TestSharpenPreservesInput(t *testing.T) {
	input := makeTestImage(t, 32, 32)
	defer input.Close()
	before := input.Clone()
	defer before.Close()

	out, err := Apply("sharpen", input, nil)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, before.ToBytes(), input.ToBytes())
}

// TestContrastEnhancerDeterministic verifies CLAHE color correction is
// reproducible and shape-preserving
func TestContrastEnhancerDeterministic(t *testing.T) {
	input := makeTestImage(t, 64, 48)
	defer input.Close()

	first, err := Apply("clahe", input, nil)
	require.NoError(t, err)
	defer first.Close()

	second, err := Apply("clahe", input, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, input.Rows(), first.Rows())
	assert.Equal(t, input.Cols(), first.Cols())
	assert.Equal(t, 3, first.Channels())
	assert.Equal(t, first.ToBytes(), second.ToBytes())
}

// TestClassicFacePipelineComposition verifies the pipeline equals its
// three stages composed by hand in the fixed order
func TestClassicFacePipelineComposition(t *testing.T) {
	input := makeTestImage(t, 48, 48)
	defer input.Close()

	pipeline, err := Apply("face_classic", input, nil)
	require.NoError(t, err)
	defer pipeline.Close()

	contrasted, err := Apply("clahe", input, nil)
	require.NoError(t, err)
	defer contrasted.Close()

	sharpened, err := Apply("sharpen", contrasted, nil)
	require.NoError(t, err)
	defer sharpened.Close()

	manual, err := Apply("bilateral", sharpened, nil)
	require.NoError(t, err)
	defer manual.Close()

	assert.Equal(t, manual.ToBytes(), pipeline.ToBytes())
}

// TestBicubicUpscale verifies exact output dimensions per scale factor
func TestBicubicUpscale(t *testing.T) {
	tests := []struct {
		name  string
		rows  int
		cols  int
		scale float64
	}{
		{name: "default doubles dimensions", rows: 100, cols: 100, scale: 0},
		{name: "triple", rows: 40, cols: 60, scale: 3},
		{name: "quadruple", rows: 25, cols: 25, scale: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := makeTestImage(t, tt.rows, tt.cols)
			defer input.Close()

			params := map[string]interface{}{}
			scale := 2
			if tt.scale != 0 {
				params["scale"] = tt.scale
				scale = int(tt.scale)
			}

			out, err := Apply("upscale", input, params)
			require.NoError(t, err)
			defer out.Close()

			assert.Equal(t, tt.rows*scale, out.Rows())
			assert.Equal(t, tt.cols*scale, out.Cols())
		})
	}
}

// TestDenoisePreservesShape verifies denoising keeps dimensions and
// accepts the full strength range
func TestDenoisePreservesShape(t *testing.T) {
	input := makeTestImage(t, 40, 40)
	defer input.Close()

	for _, strength := range []float64{1, 5, 10} {
		out, err := Apply("denoise", input, map[string]interface{}{"strength": strength})
		require.NoError(t, err)

		assert.Equal(t, input.Rows(), out.Rows())
		assert.Equal(t, input.Cols(), out.Cols())
		out.Close()
	}
}

// TestBilateralPreservesShape verifies bilateral filtering keeps
// dimensions and channels
func TestBilateralPreservesShape(t *testing.T) {
	input := makeTestImage(t, 40, 56)
	defer input.Close()

	out, err := Apply("bilateral", input, nil)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, input.Rows(), out.Rows())
	assert.Equal(t, input.Cols(), out.Cols())
	assert.Equal(t, 3, out.Channels())
}

// TestValidateParameters verifies range checks on tunable algorithms
func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		params    map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "bilateral defaults",
			algorithm: "bilateral",
			params:    map[string]interface{}{"d": 9.0},
		},
		{
			name:      "bilateral d too large",
			algorithm: "bilateral",
			params:    map[string]interface{}{"d": 31.0},
			wantErr:   true,
		},
		{
			name:      "denoise strength out of range",
			algorithm: "denoise",
			params:    map[string]interface{}{"strength": 50.0},
			wantErr:   true,
		},
		{
			name:      "clahe clip limit out of range",
			algorithm: "clahe",
			params:    map[string]interface{}{"clip_limit": 0.1},
			wantErr:   true,
		},
		{
			name:      "upscale factor out of range",
			algorithm: "upscale",
			params:    map[string]interface{}{"scale": 8.0},
			wantErr:   true,
		},
		{
			name:      "unknown algorithm",
			algorithm: "emboss",
			params:    nil,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.algorithm, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
