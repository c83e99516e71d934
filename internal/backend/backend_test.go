package backend

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestBlendWeight verifies the strength to blend weight mapping
func TestBlendWeight(t *testing.T) {
	tests := []struct {
		name     string
		strength int
		want     float64
	}{
		{name: "minimum strength", strength: 1, want: 0.55},
		{name: "default strength", strength: 7, want: 0.85},
		{name: "capped below maximum", strength: 8, want: 0.9},
		{name: "maximum strength", strength: 10, want: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BlendWeight(tt.strength), 1e-9)
		})
	}
}

// TestBlendWeightMonotonic verifies the weight never decreases with
// strength and stays inside [0.5, 0.9]
func TestBlendWeightMonotonic(t *testing.T) {
	previous := 0.0
	for strength := 1; strength <= 10; strength++ {
		weight := BlendWeight(strength)

		assert.GreaterOrEqual(t, weight, previous, "strength %d", strength)
		assert.GreaterOrEqual(t, weight, 0.5)
		assert.LessOrEqual(t, weight, 0.9)
		previous = weight
	}
}

// TestSelectDeviceForced verifies explicit device names skip probing
func TestSelectDeviceForced(t *testing.T) {
	tests := []struct {
		input string
		want  Device
	}{
		{input: "cpu", want: DeviceCPU},
		{input: "CPU", want: DeviceCPU},
		{input: "cuda", want: DeviceCUDA},
		{input: " CUDA ", want: DeviceCUDA},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectDevice(tt.input))
		})
	}
}

// TestNewSessionMissingModel verifies a missing weight file fails
// construction instead of crashing later
func TestNewSessionMissingModel(t *testing.T) {
	_, err := NewSession(t.TempDir()+"/absent.onnx", []string{"input"}, []string{"output"}, DeviceCPU, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")
}

// TestRegistryMissingWeights verifies lazy load with absent weight
// files: load completes, backends report unavailable, repeated calls
// are stable
func TestRegistryMissingWeights(t *testing.T) {
	opts := DefaultOptions()
	opts.ModelDir = t.TempDir()

	registry := NewRegistry(opts, testLogger())
	defer registry.Close()

	// Loading must never panic or fail outward
	registry.EnsureLoaded()
	registry.EnsureLoaded()

	state := registry.State()
	assert.False(t, state.FaceRestoration)
	assert.False(t, state.SuperResolution)
	assert.Equal(t, string(DeviceCPU), state.Device)

	assert.Nil(t, registry.Face())
	assert.Nil(t, registry.SuperRes())

	// Snapshot stays identical on repeated reads
	assert.Equal(t, state, registry.State())
}

// TestRegistryConcurrentLoad verifies concurrent EnsureLoaded and
// State calls are safe
func TestRegistryConcurrentLoad(t *testing.T) {
	opts := DefaultOptions()
	opts.ModelDir = t.TempDir()

	registry := NewRegistry(opts, testLogger())
	defer registry.Close()

	done := make(chan State, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- registry.State()
		}()
	}

	first := <-done
	for i := 1; i < 8; i++ {
		assert.Equal(t, first, <-done)
	}
}

// TestDefaultOptions verifies the standard model layout
func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "models", opts.ModelDir)
	assert.Equal(t, "gfpgan.onnx", opts.FaceModel)
	assert.Equal(t, "realesrgan_x4plus.onnx", opts.SuperResModel)
	assert.Equal(t, "auto", opts.Device)
}
