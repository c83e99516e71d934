package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photo-enhancer/internal/core"
	"photo-enhancer/internal/entity"
)

// operationDescriptions is presentation text for the listing endpoint
var operationDescriptions = map[core.Operation]string{
	core.FaceEnhancement:  "Restore and sharpen faces, classical portrait pipeline as fallback",
	core.SuperResolution:  "Upscale 4x with Real-ESRGAN, 2x bicubic as fallback",
	core.Denoise:          "Non-local means noise removal",
	core.Sharpen:          "Edge-enhancing convolution",
	core.RemoveBackground: "Salient-object matting to transparent background",
	core.ColorCorrection:  "Adaptive histogram equalization on the luminance channel",
}

// Operations lists the supported enhancement operations
func (h *EnhanceHandler) Operations(c *gin.Context) {
	ops := core.AllOperations()
	infos := make([]entity.OperationInfo, 0, len(ops))
	for _, op := range ops {
		infos = append(infos, entity.OperationInfo{
			Name:        op.String(),
			Slug:        op.Snake(),
			Description: operationDescriptions[op],
		})
	}

	c.JSON(http.StatusOK, entity.OperationsResponse{
		Operations:      infos,
		DefaultStrength: core.DefaultStrength,
		StrengthRange:   [2]int{core.MinStrength, core.MaxStrength},
	})
}

// Status reports which models are loaded and on which device. The
// first call triggers the model load.
func (h *EnhanceHandler) Status(c *gin.Context) {
	status := h.service.Status()

	c.JSON(http.StatusOK, entity.StatusResponse{
		FaceRestoration:   status.FaceRestoration,
		SuperResolution:   status.SuperResolution,
		BackgroundMatting: status.BackgroundMatting,
		Device:            status.Device,
		Version:           h.version,
	})
}

// Health answers liveness probes without touching the models
func (h *EnhanceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, entity.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}
