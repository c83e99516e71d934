// Inference device selection
package backend

import (
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

// Device names the execution provider all sessions run on.
type Device string

const (
	DeviceCPU  Device = "cpu"
	DeviceCUDA Device = "cuda"
)

// SelectDevice resolves a configured device name. "cpu" and "cuda"
// force the choice; anything else (the "auto" default) probes CUDA
// support in the loaded runtime and falls back to CPU. The result is
// decided once, before any session is built, and applies to all of
// them.
func SelectDevice(configured string) Device {
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "cuda":
		return DeviceCUDA
	case "cpu":
		return DeviceCPU
	}

	if cudaAvailable() {
		return DeviceCUDA
	}
	return DeviceCPU
}

// cudaAvailable reports whether the runtime can construct CUDA
// provider options. Runtimes built without the CUDA execution
// provider fail here.
func cudaAvailable() bool {
	opts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return false
	}
	opts.Destroy()
	return true
}
