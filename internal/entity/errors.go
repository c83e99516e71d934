package entity

import "errors"

var (
	// Upload errors
	ErrMissingFile     = errors.New("no image file in request")
	ErrFileTooLarge    = errors.New("uploaded file exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrInvalidImage    = errors.New("invalid or corrupted image data")

	// Request errors
	ErrUnknownOperation = errors.New("unknown enhancement operation")
	ErrInvalidStrength  = errors.New("strength must be an integer")

	// Processing errors
	ErrEncodeFailed = errors.New("failed to encode result image")
)
