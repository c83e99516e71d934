// HTTP handlers for the enhancement API
package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"photo-enhancer/internal/enhance"
	"photo-enhancer/internal/entity"
	"photo-enhancer/internal/metrics"
	"photo-enhancer/internal/transport/middleware"
)

type EnhanceHandler struct {
	service        *enhance.Enhancer
	evaluator      *metrics.Evaluator
	logger         *logrus.Logger
	maxUploadBytes int64
	version        string
}

func NewEnhanceHandler(service *enhance.Enhancer, logger *logrus.Logger, maxUploadBytes int64, version string) *EnhanceHandler {
	return &EnhanceHandler{
		service:        service,
		evaluator:      metrics.NewEvaluator(),
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		version:        version,
	}
}

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, entity.ErrorResponse{
		Error:     err.Error(),
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}

// statusFor maps request validation errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrMissingFile),
		errors.Is(err, entity.ErrUnsupportedType),
		errors.Is(err, entity.ErrInvalidImage),
		errors.Is(err, entity.ErrUnknownOperation),
		errors.Is(err, entity.ErrInvalidStrength):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
