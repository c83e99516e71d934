package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// TestValidateImage verifies input validation rules
func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		build   func() gocv.Mat
		wantErr bool
	}{
		{
			name:  "valid color image",
			build: func() gocv.Mat { return gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3) },
		},
		{
			name:  "valid image with alpha",
			build: func() gocv.Mat { return gocv.NewMatWithSize(50, 80, gocv.MatTypeCV8UC4) },
		},
		{
			name:    "empty image",
			build:   func() gocv.Mat { return gocv.NewMat() },
			wantErr: true,
		},
		{
			name:    "grayscale image",
			build:   func() gocv.Mat { return gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8U) },
			wantErr: true,
		},
		{
			name:    "oversized image",
			build:   func() gocv.Mat { return gocv.NewMatWithSize(10, MaxDimension+1, gocv.MatTypeCV8UC3) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := tt.build()
			defer mat.Close()

			err := ValidateImage(mat)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestMetadataOf verifies metadata extraction
func TestMetadataOf(t *testing.T) {
	mat := gocv.NewMatWithSize(120, 200, gocv.MatTypeCV8UC3)
	defer mat.Close()

	meta := MetadataOf(mat)
	require.Equal(t, 200, meta.Width)
	require.Equal(t, 120, meta.Height)
	assert.Equal(t, 3, meta.Channels)
	assert.Equal(t, gocv.MatTypeCV8UC3, meta.Type)
}
