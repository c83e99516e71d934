// ONNX Runtime environment management
package backend

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// InitRuntime locates the ONNX Runtime shared library and initializes
// the process-wide environment. Only the first call does work; every
// call returns the outcome of that first attempt.
func InitRuntime(libraryPath string) error {
	runtimeOnce.Do(func() {
		path, err := resolveLibraryPath(libraryPath)
		if err != nil {
			runtimeErr = err
			return
		}
		ort.SetSharedLibraryPath(path)

		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				runtimeErr = fmt.Errorf("initialize onnxruntime: %w", err)
				return
			}
		}
	})
	return runtimeErr
}

// resolveLibraryPath returns the first usable shared library location:
// the configured path if set, otherwise the common system paths.
func resolveLibraryPath(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("onnxruntime library not found at %s", configured)
		}
		return configured, nil
	}

	libName, err := sharedLibraryName()
	if err != nil {
		return "", err
	}

	candidates := []string{
		"/usr/local/lib/" + libName,
		"/usr/lib/" + libName,
		"/opt/onnxruntime/lib/" + libName,
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("onnxruntime library not found (searched %v)", candidates)
}

// sharedLibraryName returns the library filename for the current OS.
func sharedLibraryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
