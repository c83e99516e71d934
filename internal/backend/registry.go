// Lazy model registry for the neural backends
package backend

import (
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options configures the registry.
type Options struct {
	ModelDir      string // directory holding the weight files
	FaceModel     string // face restoration weights, relative to ModelDir
	SuperResModel string // super-resolution weights, relative to ModelDir
	CascadeFile   string // Haar cascade for face detection
	Device        string // "auto", "cpu" or "cuda"
	Threads       int    // intra-op thread cap, 0 for runtime default
	LibraryPath   string // onnxruntime shared library, empty to search
}

// DefaultOptions returns the standard model layout.
func DefaultOptions() Options {
	return Options{
		ModelDir:      "models",
		FaceModel:     "gfpgan.onnx",
		SuperResModel: "realesrgan_x4plus.onnx",
		CascadeFile:   "haarcascade_frontalface_default.xml",
		Device:        "auto",
	}
}

// State is an immutable availability snapshot. It is fixed once the
// first load attempt completes.
type State struct {
	FaceRestoration bool   `json:"face_restoration"`
	SuperResolution bool   `json:"super_resolution"`
	Device          string `json:"device"`
}

// Registry owns the neural backends and loads them lazily. The first
// EnsureLoaded call attempts every backend; one backend failing to
// load never aborts the others, and load failures are logged rather
// than surfaced to enhancement callers.
type Registry struct {
	opts   Options
	logger *logrus.Logger

	loadOnce sync.Once
	device   Device
	face     *FaceRestorer
	superRes *Upscaler
}

// NewRegistry creates an unloaded registry. No model I/O happens until
// the first EnsureLoaded.
func NewRegistry(opts Options, logger *logrus.Logger) *Registry {
	return &Registry{opts: opts, logger: logger}
}

// EnsureLoaded performs the one-time backend load. Safe for concurrent
// use; later calls return immediately.
func (r *Registry) EnsureLoaded() {
	r.loadOnce.Do(r.load)
}

func (r *Registry) load() {
	log := r.logger.WithField("component", "backend")
	r.device = DeviceCPU

	if err := InitRuntime(r.opts.LibraryPath); err != nil {
		log.WithError(err).Warn("ONNX runtime unavailable, classical fallbacks only")
		return
	}

	// Device is decided once, before any session exists
	r.device = SelectDevice(r.opts.Device)
	log.WithField("device", r.device).Debug("inference device selected")

	facePath := filepath.Join(r.opts.ModelDir, r.opts.FaceModel)
	cascadePath := filepath.Join(r.opts.ModelDir, r.opts.CascadeFile)
	face, err := NewFaceRestorer(facePath, cascadePath, r.device, r.opts.Threads)
	if err != nil {
		log.WithError(err).WithField("model", facePath).Warn("face restoration backend unavailable")
	} else {
		r.face = face
	}

	srPath := filepath.Join(r.opts.ModelDir, r.opts.SuperResModel)
	superRes, err := NewUpscaler(srPath, r.device, r.opts.Threads)
	if err != nil {
		log.WithError(err).WithField("model", srPath).Warn("super-resolution backend unavailable")
	} else {
		r.superRes = superRes
	}

	log.WithFields(logrus.Fields{
		"face_restoration": r.face != nil,
		"super_resolution": r.superRes != nil,
		"device":           r.device,
	}).Info("model registry loaded")
}

// State returns the availability snapshot, loading first if needed.
func (r *Registry) State() State {
	r.EnsureLoaded()
	return State{
		FaceRestoration: r.face != nil,
		SuperResolution: r.superRes != nil,
		Device:          string(r.device),
	}
}

// Face returns the face restoration backend, or nil when unavailable.
func (r *Registry) Face() *FaceRestorer {
	r.EnsureLoaded()
	return r.face
}

// SuperRes returns the super-resolution backend, or nil when
// unavailable.
func (r *Registry) SuperRes() *Upscaler {
	r.EnsureLoaded()
	return r.superRes
}

// Close releases every loaded backend.
func (r *Registry) Close() {
	if r.face != nil {
		r.face.Close()
		r.face = nil
	}
	if r.superRes != nil {
		r.superRes.Close()
		r.superRes = nil
	}
}
