// Enhancement operation identifiers and request parameters
package core

import (
	"fmt"
	"strings"
)

// Operation identifies a single enhancement applied to an image.
type Operation string

const (
	FaceEnhancement  Operation = "Face Enhancement"
	SuperResolution  Operation = "Super Resolution"
	Denoise          Operation = "Denoise"
	Sharpen          Operation = "Sharpen"
	RemoveBackground Operation = "Remove Background"
	ColorCorrection  Operation = "Color Correction"
)

// Strength bounds for every operation. Values outside the range are
// clamped, never rejected.
const (
	MinStrength     = 1
	MaxStrength     = 10
	DefaultStrength = 7
)

// AllOperations returns the supported operations in display order.
func AllOperations() []Operation {
	return []Operation{
		FaceEnhancement,
		SuperResolution,
		Denoise,
		Sharpen,
		RemoveBackground,
		ColorCorrection,
	}
}

// ParseOperation maps an external operation name onto an Operation.
// Matching is case-insensitive and accepts both display names
// ("Face Enhancement") and snake_case names ("face_enhancement").
func ParseOperation(name string) (Operation, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "_", " ")

	for _, op := range AllOperations() {
		if normalized == strings.ToLower(string(op)) {
			return op, nil
		}
	}

	return "", fmt.Errorf("unknown operation: %q", name)
}

// String returns the display name.
func (op Operation) String() string {
	return string(op)
}

// Snake returns the lower snake_case form used in download filenames,
// e.g. "Face Enhancement" -> "face_enhancement".
func (op Operation) Snake() string {
	return strings.ReplaceAll(strings.ToLower(string(op)), " ", "_")
}

// ClampStrength forces a strength value into [MinStrength, MaxStrength].
// Zero selects the default.
func ClampStrength(strength int) int {
	if strength == 0 {
		return DefaultStrength
	}
	if strength < MinStrength {
		return MinStrength
	}
	if strength > MaxStrength {
		return MaxStrength
	}
	return strength
}
