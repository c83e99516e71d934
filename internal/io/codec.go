// In-memory codecs for the HTTP upload and download path
package io

import (
	"bytes"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"photo-enhancer/internal/core"
)

// ThumbnailSize is the bounding box for preview images
const ThumbnailSize = 256

// uploadExtensions is the whitelist for client uploads
var uploadExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tiff", ".tif"}

// IsAllowedUpload reports whether the upload filename carries an
// accepted extension
func IsAllowedUpload(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range uploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// AllowedUploadExtensions returns the accepted upload extensions
func AllowedUploadExtensions() []string {
	out := make([]string, len(uploadExtensions))
	copy(out, uploadExtensions)
	return out
}

// DecodeUpload decodes raw upload bytes into a BGR image. Alpha is
// dropped the same way a fresh camera export would arrive.
func DecodeUpload(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("empty upload")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode upload: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("decode upload: not a valid image")
	}

	return mat, nil
}

// EncodePNG encodes a BGR or BGRA image losslessly for download
func EncodePNG(mat gocv.Mat) ([]byte, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot encode empty image")
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// ThumbnailPNG downscales an image to fit the preview bounding box and
// encodes it as PNG. Images already inside the box are returned at
// their own size.
func ThumbnailPNG(mat gocv.Mat, maxSize int) ([]byte, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot thumbnail empty image")
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}

	thumb := imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// OutputFilename names the download artifact after its operation
func OutputFilename(op core.Operation) string {
	return "enhanced_" + op.Snake() + ".png"
}
