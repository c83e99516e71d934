package entity

// OperationInfo describes one enhancement operation for API listings
type OperationInfo struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// OperationsResponse lists the supported enhancement operations
type OperationsResponse struct {
	Operations      []OperationInfo `json:"operations"`
	DefaultStrength int             `json:"default_strength"`
	StrengthRange   [2]int          `json:"strength_range"`
}

// StatusResponse reports model availability and the inference device
type StatusResponse struct {
	FaceRestoration   bool   `json:"face_restoration"`
	SuperResolution   bool   `json:"super_resolution"`
	BackgroundMatting bool   `json:"background_matting"`
	Device            string `json:"device"`
	Version           string `json:"version"`
}

// HealthResponse answers liveness probes
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is the JSON body for 4xx and 5xx answers
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ImageSize holds pixel dimensions for report payloads
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PreviewResponse is the before/after report for one enhancement. The
// thumbnails are base64-encoded PNGs sized for display.
type PreviewResponse struct {
	Operation       string             `json:"operation"`
	Strength        int                `json:"strength"`
	Applied         bool               `json:"applied"`
	Fallback        bool               `json:"fallback"`
	Recovered       bool               `json:"recovered"`
	Original        ImageSize          `json:"original"`
	Result          ImageSize          `json:"result"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
	BeforeThumbnail string             `json:"before_thumbnail"`
	AfterThumbnail  string             `json:"after_thumbnail"`
}
