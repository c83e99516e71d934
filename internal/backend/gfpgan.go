// GFPGAN face restoration backend
package backend

import (
	"fmt"
	"image"

	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

const (
	faceInputSize = 512

	// facePadding grows detected face boxes so restoration covers the
	// hairline and jaw, not just the detector's tight crop.
	facePadding = 0.15
)

// FaceRestorer restores faces with a GFPGAN model and blends the
// result back into the frame.
type FaceRestorer struct {
	session  *Session
	detector gocv.CascadeClassifier
}

// NewFaceRestorer builds the restoration session and loads the face
// detection cascade used to locate restoration targets.
func NewFaceRestorer(modelPath, cascadePath string, device Device, threads int) (*FaceRestorer, error) {
	session, err := NewSession(modelPath, []string{"input"}, []string{"output"}, device, threads)
	if err != nil {
		return nil, fmt.Errorf("face restoration session: %w", err)
	}

	detector := gocv.NewCascadeClassifier()
	if !detector.Load(cascadePath) {
		session.Destroy()
		detector.Close()
		return nil, fmt.Errorf("failed to load face cascade: %s", cascadePath)
	}

	return &FaceRestorer{session: session, detector: detector}, nil
}

// BlendWeight maps an operation strength onto the restored/original
// mix weight: 0.5 + strength/20, capped at 0.9. Strength 1 gives 0.55,
// strength 10 gives the cap.
func BlendWeight(strength int) float64 {
	weight := 0.5 + float64(strength)/20.0
	if weight > 0.9 {
		weight = 0.9
	}
	return weight
}

// Restore detects faces, restores each through the network and blends
// the restored frame with the original by BlendWeight(strength).
// A frame without detectable faces comes back unchanged.
func (f *FaceRestorer) Restore(img gocv.Mat, strength int) (gocv.Mat, error) {
	faces := f.detectFaces(img)
	if len(faces) == 0 {
		return img.Clone(), nil
	}

	restored := img.Clone()
	for _, rect := range faces {
		if err := f.restoreRegion(restored, rect); err != nil {
			restored.Close()
			return gocv.NewMat(), err
		}
	}

	weight := BlendWeight(strength)
	output := gocv.NewMat()
	gocv.AddWeighted(restored, weight, img, 1.0-weight, 0, &output)
	restored.Close()

	return output, nil
}

// detectFaces returns padded face rectangles clamped to the frame.
func (f *FaceRestorer) detectFaces(img gocv.Mat) []image.Rectangle {
	detected := f.detector.DetectMultiScale(img)
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())

	faces := make([]image.Rectangle, 0, len(detected))
	for _, rect := range detected {
		padX := int(float64(rect.Dx()) * facePadding)
		padY := int(float64(rect.Dy()) * facePadding)
		padded := image.Rect(rect.Min.X-padX, rect.Min.Y-padY, rect.Max.X+padX, rect.Max.Y+padY)

		clamped := padded.Intersect(bounds)
		if clamped.Dx() > 0 && clamped.Dy() > 0 {
			faces = append(faces, clamped)
		}
	}
	return faces
}

// restoreRegion runs one face crop through the network and pastes the
// result back into frame.
func (f *FaceRestorer) restoreRegion(frame gocv.Mat, rect image.Rectangle) error {
	region := frame.Region(rect)
	defer region.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	if err := gocv.Resize(region, &resized, image.Point{X: faceInputSize, Y: faceInputSize}, 0, 0, gocv.InterpolationLinear); err != nil {
		return fmt.Errorf("face crop resize: %w", err)
	}

	restored, err := f.runModel(resized)
	if err != nil {
		return err
	}
	defer restored.Close()

	back := gocv.NewMat()
	defer back.Close()
	if err := gocv.Resize(restored, &back, image.Point{X: rect.Dx(), Y: rect.Dy()}, 0, 0, gocv.InterpolationLinear); err != nil {
		return fmt.Errorf("face paste resize: %w", err)
	}

	back.CopyTo(&region)
	return nil
}

// runModel executes the network on a 512x512 face crop.
func (f *FaceRestorer) runModel(face gocv.Mat) (gocv.Mat, error) {
	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, faceInputSize, faceInputSize),
		matToNCHW(face),
	)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("face input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, faceInputSize, faceInputSize))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("face output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := f.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return gocv.NewMat(), fmt.Errorf("face restoration inference: %w", err)
	}

	return nchwToMat(outputTensor.GetData(), faceInputSize, faceInputSize)
}

// Close releases the session and detector.
func (f *FaceRestorer) Close() error {
	f.detector.Close()
	return f.session.Destroy()
}
