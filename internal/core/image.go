// Image validation and metadata for enhancement requests
package core

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Enhancement works on 8-bit BGR images. Channel order follows the
// OpenCV convention; decode and encode convert at the boundary.
const (
	// MaxDimension caps the longest accepted image side.
	MaxDimension = 8192
)

// ImageMetadata contains image information.
type ImageMetadata struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Channels int          `json:"channels"`
	Type     gocv.MatType `json:"-"`
}

// MetadataOf reads metadata from a Mat.
func MetadataOf(mat gocv.Mat) ImageMetadata {
	return ImageMetadata{
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Type:     mat.Type(),
	}
}

// ValidateImage validates an OpenCV Mat for enhancement input.
func ValidateImage(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	channels := mat.Channels()
	if channels != 3 && channels != 4 {
		return fmt.Errorf("unsupported channel count: %d", channels)
	}

	// Check for reasonable size limits (prevent memory issues)
	if mat.Cols() > MaxDimension || mat.Rows() > MaxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), MaxDimension)
	}

	return nil
}
