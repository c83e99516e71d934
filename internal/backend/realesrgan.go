// Real-ESRGAN super-resolution backend
package backend

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// UpscaleFactor is the fixed scale of the super-resolution network.
const UpscaleFactor = 4

// Upscaler performs 4x super-resolution with a Real-ESRGAN model. The
// network accepts any input size; output dimensions are exactly 4x the
// input.
type Upscaler struct {
	session *Session
}

// NewUpscaler builds the super-resolution session.
func NewUpscaler(modelPath string, device Device, threads int) (*Upscaler, error) {
	session, err := NewSession(modelPath, []string{"input"}, []string{"output"}, device, threads)
	if err != nil {
		return nil, fmt.Errorf("super-resolution session: %w", err)
	}

	return &Upscaler{session: session}, nil
}

// Upscale returns the input scaled by UpscaleFactor.
func (u *Upscaler) Upscale(img gocv.Mat) (gocv.Mat, error) {
	height := img.Rows()
	width := img.Cols()

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(height), int64(width)),
		matToNCHW(img),
	)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("upscale input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outHeight := height * UpscaleFactor
	outWidth := width * UpscaleFactor

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, int64(outHeight), int64(outWidth)))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("upscale output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := u.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return gocv.NewMat(), fmt.Errorf("super-resolution inference: %w", err)
	}

	return nchwToMat(outputTensor.GetData(), outHeight, outWidth)
}

// Close releases the session.
func (u *Upscaler) Close() error {
	return u.session.Destroy()
}
