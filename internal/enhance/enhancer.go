// Enhancement dispatch with failure masking
package enhance

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"photo-enhancer/internal/algorithms"
	"photo-enhancer/internal/backend"
	"photo-enhancer/internal/core"
)

// Outcome records what actually happened during an enhancement. The
// masking contract hides failures from callers; the outcome lets
// operators tell a fallback result from a recovered one.
type Outcome struct {
	Op        core.Operation // requested operation
	Strength  int            // effective strength after clamping
	Applied   bool           // the operation produced the result
	Fallback  bool           // a classical fallback served instead of a model
	Recovered bool           // a failure was masked, original returned
	Err       error          // the masked failure, nil unless Recovered
}

// Status reports model availability for the whole enhancement surface.
type Status struct {
	backend.State
	BackgroundMatting bool `json:"background_matting"`
}

// Enhancer routes operations to neural backends and classical
// algorithms. Enhance never returns an error and never panics: any
// internal failure is logged and masked by returning a copy of the
// input image.
type Enhancer struct {
	registry *backend.Registry
	remover  Remover
	logger   *logrus.Logger
}

// Remover is the background segmentation dependency. It matches
// segment.Remover; the indirection keeps tests free to stub it.
type Remover interface {
	Remove(img gocv.Mat) (gocv.Mat, error)
	Available() bool
}

// NewEnhancer creates a dispatcher over the given backends. remover
// may be nil, which leaves background removal permanently recovered.
func NewEnhancer(registry *backend.Registry, remover Remover, logger *logrus.Logger) *Enhancer {
	return &Enhancer{registry: registry, remover: remover, logger: logger}
}

// Enhance applies op to img at the given strength. The returned Mat is
// always a new image owned by the caller, including on the identity
// and recovery paths. Model loading happens lazily on the first call.
func (e *Enhancer) Enhance(img gocv.Mat, op core.Operation, strength int) (gocv.Mat, Outcome) {
	strength = core.ClampStrength(strength)
	outcome := Outcome{Op: op, Strength: strength}

	log := e.logger.WithFields(logrus.Fields{
		"component": "enhance",
		"operation": op.String(),
		"strength":  strength,
	})

	result, err := e.run(img, op, strength, &outcome)
	if err != nil {
		log.WithError(err).Error("enhancement failed, returning original image")
		outcome.Applied = false
		outcome.Fallback = false
		outcome.Recovered = true
		outcome.Err = err
		return img.Clone(), outcome
	}

	log.WithFields(logrus.Fields{
		"applied":  outcome.Applied,
		"fallback": outcome.Fallback,
		"width":    result.Cols(),
		"height":   result.Rows(),
	}).Info("enhancement complete")

	return result, outcome
}

// run executes the dispatch and converts panics from the imaging layer
// into ordinary errors so the masking contract holds.
func (e *Enhancer) run(img gocv.Mat, op core.Operation, strength int, outcome *Outcome) (result gocv.Mat, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = gocv.NewMat()
			err = fmt.Errorf("panic during enhancement: %v", r)
		}
	}()

	if err := core.ValidateImage(img); err != nil {
		return gocv.NewMat(), err
	}

	// Unknown operations are the identity: the caller gets back an
	// untouched copy, alpha channel included
	switch op {
	case core.FaceEnhancement, core.SuperResolution, core.Denoise,
		core.Sharpen, core.RemoveBackground, core.ColorCorrection:
	default:
		return img.Clone(), nil
	}

	working, cleanup, err := ensureBGR(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer cleanup()

	return e.dispatch(working, op, strength, outcome)
}

func (e *Enhancer) dispatch(img gocv.Mat, op core.Operation, strength int, outcome *Outcome) (gocv.Mat, error) {
	switch op {
	case core.FaceEnhancement:
		return e.enhanceFace(img, strength, outcome)

	case core.SuperResolution:
		return e.superResolve(img, outcome)

	case core.Denoise:
		out, err := algorithms.Apply("denoise", img, map[string]interface{}{
			"strength": float64(strength),
		})
		if err != nil {
			return gocv.NewMat(), err
		}
		outcome.Applied = true
		return out, nil

	case core.Sharpen:
		out, err := algorithms.Apply("sharpen", img, nil)
		if err != nil {
			return gocv.NewMat(), err
		}
		outcome.Applied = true
		return out, nil

	case core.RemoveBackground:
		return e.removeBackground(img, outcome)

	case core.ColorCorrection:
		out, err := algorithms.Apply("clahe", img, nil)
		if err != nil {
			return gocv.NewMat(), err
		}
		outcome.Applied = true
		return out, nil
	}

	return img.Clone(), nil
}

// enhanceFace uses the restoration model when loaded, otherwise the
// classical portrait pipeline.
func (e *Enhancer) enhanceFace(img gocv.Mat, strength int, outcome *Outcome) (gocv.Mat, error) {
	if face := e.registry.Face(); face != nil {
		out, err := face.Restore(img, strength)
		if err != nil {
			return gocv.NewMat(), err
		}
		outcome.Applied = true
		return out, nil
	}

	outcome.Fallback = true
	out, err := algorithms.Apply("face_classic", img, nil)
	if err != nil {
		return gocv.NewMat(), err
	}
	outcome.Applied = true
	return out, nil
}

// superResolve uses the 4x model when loaded, otherwise 2x bicubic.
func (e *Enhancer) superResolve(img gocv.Mat, outcome *Outcome) (gocv.Mat, error) {
	if upscaler := e.registry.SuperRes(); upscaler != nil {
		out, err := upscaler.Upscale(img)
		if err != nil {
			return gocv.NewMat(), err
		}
		outcome.Applied = true
		return out, nil
	}

	outcome.Fallback = true
	out, err := algorithms.Apply("upscale", img, map[string]interface{}{"scale": 2.0})
	if err != nil {
		return gocv.NewMat(), err
	}
	outcome.Applied = true
	return out, nil
}

// removeBackground has no classical fallback; an unavailable model is
// a masked failure.
func (e *Enhancer) removeBackground(img gocv.Mat, outcome *Outcome) (gocv.Mat, error) {
	if e.remover == nil {
		return gocv.NewMat(), fmt.Errorf("background removal not configured")
	}

	out, err := e.remover.Remove(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	outcome.Applied = true
	return out, nil
}

// Status returns the availability snapshot across all backends,
// triggering the lazy load.
func (e *Enhancer) Status() Status {
	status := Status{State: e.registry.State()}
	if e.remover != nil {
		status.BackgroundMatting = e.remover.Available()
	}
	return status
}

// ensureBGR hands back a 3-channel view of the input. A BGRA input is
// converted; the cleanup func closes the conversion when one was made.
func ensureBGR(img gocv.Mat) (gocv.Mat, func(), error) {
	if img.Channels() == 3 {
		return img, func() {}, nil
	}

	converted := gocv.NewMat()
	if err := gocv.CvtColor(img, &converted, gocv.ColorBGRAToBGR); err != nil {
		converted.Close()
		return gocv.NewMat(), func() {}, fmt.Errorf("alpha strip: %w", err)
	}
	return converted, func() { converted.Close() }, nil
}
