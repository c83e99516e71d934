// Background removal via salient object segmentation
package segment

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"

	"photo-enhancer/internal/backend"
)

const u2netInputSize = 320

// ImageNet statistics used by the segmentation model, RGB order.
var (
	segMean = [3]float32{0.485, 0.456, 0.406}
	segStd  = [3]float32{0.229, 0.224, 0.225}
)

// Remover produces a foreground image with an alpha channel.
type Remover interface {
	// Remove returns a 4-channel BGRA image whose alpha encodes the
	// foreground mask.
	Remove(img gocv.Mat) (gocv.Mat, error)

	// Available reports whether the segmentation model is loaded.
	Available() bool
}

// Options configures the U^2-Net remover.
type Options struct {
	ModelDir    string
	ModelFile   string
	Device      string
	Threads     int
	LibraryPath string
}

// DefaultOptions returns the standard model layout.
func DefaultOptions() Options {
	return Options{
		ModelDir:  "models",
		ModelFile: "u2net.onnx",
		Device:    "auto",
	}
}

// U2Net implements Remover with a U^2-Net saliency model. The session
// loads lazily on first use; a failed load is recorded once and every
// later call reports it without retrying.
type U2Net struct {
	opts   Options
	logger *logrus.Logger

	loadOnce sync.Once
	session  *backend.Session
	loadErr  error
}

// NewU2Net creates an unloaded remover. No model I/O happens until the
// first Remove or Available call.
func NewU2Net(opts Options, logger *logrus.Logger) *U2Net {
	return &U2Net{opts: opts, logger: logger}
}

func (u *U2Net) ensureLoaded() {
	u.loadOnce.Do(func() {
		log := u.logger.WithField("component", "segment")

		if err := backend.InitRuntime(u.opts.LibraryPath); err != nil {
			u.loadErr = err
			log.WithError(err).Warn("background matting unavailable")
			return
		}

		modelPath := filepath.Join(u.opts.ModelDir, u.opts.ModelFile)

		// Tensor names differ between model exports, so read them
		// from the model itself
		inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
		if err != nil {
			u.loadErr = fmt.Errorf("model io info: %w", err)
			log.WithError(u.loadErr).WithField("model", modelPath).Warn("background matting unavailable")
			return
		}
		if len(inputs) < 1 || len(outputs) < 1 {
			u.loadErr = fmt.Errorf("model has no usable inputs or outputs")
			log.WithError(u.loadErr).WithField("model", modelPath).Warn("background matting unavailable")
			return
		}

		device := backend.SelectDevice(u.opts.Device)

		session, err := backend.NewSession(modelPath, []string{inputs[0].Name}, []string{outputs[0].Name}, device, u.opts.Threads)
		if err != nil {
			u.loadErr = err
			log.WithError(err).WithField("model", modelPath).Warn("background matting unavailable")
			return
		}

		u.session = session
		log.WithField("model", modelPath).Info("background matting model loaded")
	})
}

// Available reports whether the model loaded, loading on first call.
func (u *U2Net) Available() bool {
	u.ensureLoaded()
	return u.session != nil
}

// Close releases the inference session if one was created.
func (u *U2Net) Close() {
	if u.session != nil {
		u.session.Destroy()
		u.session = nil
	}
}

// Remove segments the foreground and returns the input as BGRA with
// the saliency mask in the alpha channel.
func (u *U2Net) Remove(img gocv.Mat) (gocv.Mat, error) {
	u.ensureLoaded()
	if u.session == nil {
		return gocv.NewMat(), fmt.Errorf("segmentation model not loaded: %w", u.loadErr)
	}

	if img.Empty() || img.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("segmentation requires a 3-channel image")
	}

	saliency, err := u.runModel(img)
	if err != nil {
		return gocv.NewMat(), err
	}

	alpha, err := saliencyToAlpha(saliency, img.Cols(), img.Rows())
	if err != nil {
		return gocv.NewMat(), err
	}
	defer alpha.Close()

	return applyAlpha(img, alpha)
}

// runModel returns the raw 320x320 saliency plane.
func (u *U2Net) runModel(img gocv.Mat) ([]float32, error) {
	resized := gocv.NewMat()
	defer resized.Close()
	if err := gocv.Resize(img, &resized, image.Point{X: u2netInputSize, Y: u2netInputSize}, 0, 0, gocv.InterpolationLinear); err != nil {
		return nil, fmt.Errorf("segmentation resize: %w", err)
	}

	inputTensor, err := ort.NewTensor(
		ort.NewShape(1, 3, u2netInputSize, u2netInputSize),
		normalizeNCHW(resized),
	)
	if err != nil {
		return nil, fmt.Errorf("segmentation input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, u2netInputSize, u2netInputSize))
	if err != nil {
		return nil, fmt.Errorf("segmentation output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := u.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, fmt.Errorf("segmentation inference: %w", err)
	}

	data := outputTensor.GetData()
	saliency := make([]float32, len(data))
	copy(saliency, data)
	return saliency, nil
}

// normalizeNCHW converts a BGR Mat to NCHW float32 with ImageNet
// mean/std normalization, RGB order.
func normalizeNCHW(img gocv.Mat) []float32 {
	height := img.Rows()
	width := img.Cols()
	plane := height * width

	data := make([]float32, 3*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := img.GetVecbAt(y, x)
			idx := y*width + x
			data[0*plane+idx] = (float32(pixel[2])/255.0 - segMean[0]) / segStd[0]
			data[1*plane+idx] = (float32(pixel[1])/255.0 - segMean[1]) / segStd[1]
			data[2*plane+idx] = (float32(pixel[0])/255.0 - segMean[2]) / segStd[2]
		}
	}
	return data
}

// saliencyToAlpha min-max normalizes the saliency plane to [0, 255]
// and rescales it to the source dimensions.
func saliencyToAlpha(saliency []float32, width, height int) (gocv.Mat, error) {
	minVal := saliency[0]
	maxVal := saliency[0]
	for _, v := range saliency {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	scale := float32(0)
	if maxVal > minVal {
		scale = 255.0 / (maxVal - minVal)
	}

	bytes := make([]byte, len(saliency))
	for i, v := range saliency {
		bytes[i] = uint8((v - minVal) * scale)
	}

	mask, err := gocv.NewMatFromBytes(u2netInputSize, u2netInputSize, gocv.MatTypeCV8U, bytes)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("build saliency mask: %w", err)
	}
	defer mask.Close()

	alpha := gocv.NewMat()
	if err := gocv.Resize(mask, &alpha, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear); err != nil {
		alpha.Close()
		return gocv.NewMat(), fmt.Errorf("alpha resize: %w", err)
	}
	return alpha, nil
}

// applyAlpha merges a BGR image with a single-channel alpha mask into
// a BGRA result.
func applyAlpha(img gocv.Mat, alpha gocv.Mat) (gocv.Mat, error) {
	channels := gocv.Split(img)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	if len(channels) != 3 {
		return gocv.NewMat(), fmt.Errorf("unexpected channel split: %d", len(channels))
	}

	output := gocv.NewMat()
	gocv.Merge([]gocv.Mat{channels[0], channels[1], channels[2], alpha}, &output)
	return output, nil
}
