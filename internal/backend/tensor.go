// Tensor conversion between OpenCV Mats and NCHW float data
package backend

import (
	"fmt"

	"gocv.io/x/gocv"
)

// matToNCHW converts an 8-bit BGR Mat into NCHW float32 data in RGB
// channel order, normalized to [0, 1].
func matToNCHW(img gocv.Mat) []float32 {
	height := img.Rows()
	width := img.Cols()
	plane := height * width

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := img.GetVecbAt(y, x)
			idx := y*width + x
			data[0*plane+idx] = float32(pixel[2]) / 255.0 // R
			data[1*plane+idx] = float32(pixel[1]) / 255.0 // G
			data[2*plane+idx] = float32(pixel[0]) / 255.0 // B
		}
	}
	return data
}

// nchwToMat converts NCHW float32 data (RGB order, [0, 1]) back into
// an 8-bit BGR Mat, clamping out-of-range values.
func nchwToMat(data []float32, height, width int) (gocv.Mat, error) {
	plane := height * width
	if len(data) < 3*plane {
		return gocv.NewMat(), fmt.Errorf("output tensor too small: %d values for %dx%d", len(data), width, height)
	}

	pixels := make([]byte, plane*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x

			r := clamp(data[0*plane+idx]*255.0, 0, 255)
			g := clamp(data[1*plane+idx]*255.0, 0, 255)
			b := clamp(data[2*plane+idx]*255.0, 0, 255)

			pixIdx := idx * 3
			pixels[pixIdx+0] = uint8(b)
			pixels[pixIdx+1] = uint8(g)
			pixels[pixIdx+2] = uint8(r)
		}
	}

	result, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, pixels)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("build image from tensor: %w", err)
	}
	return result, nil
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
