// ONNX inference session wrapper
package backend

import (
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// Session wraps a dynamic ONNX session with fixed input and output
// names. Construction fails when the model file is missing or the
// session cannot be built; both are reported to the caller, never
// masked here.
type Session struct {
	session *ort.DynamicAdvancedSession
	device  Device
}

// NewSession builds a session for the model at modelPath on the given
// device. threads caps intra-op parallelism when positive.
func NewSession(modelPath string, inputNames, outputNames []string, device Device, threads int) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer opts.Destroy()

	if threads > 0 {
		_ = opts.SetIntraOpNumThreads(threads)
	}

	if device == DeviceCUDA {
		cudaOpts, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, fmt.Errorf("cuda provider: %w", err)
		}
		defer cudaOpts.Destroy()

		if err := cudaOpts.Update(map[string]string{"device_id": "0"}); err != nil {
			return nil, fmt.Errorf("cuda provider options: %w", err)
		}
		if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
			return nil, fmt.Errorf("append cuda provider: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session{session: session, device: device}, nil
}

// Run executes the model with the given inputs and outputs.
func (s *Session) Run(inputs, outputs []ort.Value) error {
	return s.session.Run(inputs, outputs)
}

// Device returns the device the session was built for.
func (s *Session) Device() Device {
	return s.device
}

// Destroy releases the underlying session.
func (s *Session) Destroy() error {
	if s.session == nil {
		return nil
	}
	return s.session.Destroy()
}
