package transport

import (
	"encoding/base64"
	"fmt"
	stdio "io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gocv.io/x/gocv"

	"photo-enhancer/internal/core"
	"photo-enhancer/internal/entity"
	imageio "photo-enhancer/internal/io"
)

// parseEnhanceForm validates the multipart request and decodes the
// uploaded image. The caller owns the returned Mat.
func (h *EnhanceHandler) parseEnhanceForm(c *gin.Context) (gocv.Mat, core.Operation, int, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return gocv.NewMat(), "", 0, entity.ErrMissingFile
	}

	if file.Size > h.maxUploadBytes {
		return gocv.NewMat(), "", 0, entity.ErrFileTooLarge
	}

	if !imageio.IsAllowedUpload(file.Filename) {
		return gocv.NewMat(), "", 0, entity.ErrUnsupportedType
	}

	op, err := core.ParseOperation(c.PostForm("operation"))
	if err != nil {
		return gocv.NewMat(), "", 0, entity.ErrUnknownOperation
	}

	strength := core.DefaultStrength
	if raw := c.PostForm("strength"); raw != "" {
		strength, err = strconv.Atoi(raw)
		if err != nil {
			return gocv.NewMat(), "", 0, entity.ErrInvalidStrength
		}
	}

	src, err := file.Open()
	if err != nil {
		return gocv.NewMat(), "", 0, entity.ErrInvalidImage
	}
	defer src.Close()

	data, err := stdio.ReadAll(src)
	if err != nil {
		return gocv.NewMat(), "", 0, entity.ErrInvalidImage
	}

	img, err := imageio.DecodeUpload(data)
	if err != nil {
		return gocv.NewMat(), "", 0, entity.ErrInvalidImage
	}

	return img, op, strength, nil
}

// scaleLabel reports the resolution boost between input and output
func scaleLabel(original, result gocv.Mat) string {
	if original.Cols() <= 0 || result.Cols()%original.Cols() != 0 {
		return "1x"
	}
	return fmt.Sprintf("%dx", result.Cols()/original.Cols())
}

// Enhance runs one enhancement operation on the uploaded image and
// streams the result back as a PNG attachment
func (h *EnhanceHandler) Enhance(c *gin.Context) {
	img, op, strength, err := h.parseEnhanceForm(c)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	defer img.Close()

	result, outcome := h.service.Enhance(img, op, strength)
	defer result.Close()

	data, err := imageio.EncodePNG(result)
	if err != nil {
		respondError(c, http.StatusInternalServerError, entity.ErrEncodeFailed)
		return
	}

	c.Header("X-Enhance-Operation", outcome.Op.String())
	c.Header("X-Enhance-Strength", strconv.Itoa(outcome.Strength))
	c.Header("X-Enhance-Applied", strconv.FormatBool(outcome.Applied))
	c.Header("X-Enhance-Fallback", strconv.FormatBool(outcome.Fallback))
	c.Header("X-Enhance-Recovered", strconv.FormatBool(outcome.Recovered))
	c.Header("X-Enhance-Width", strconv.Itoa(result.Cols()))
	c.Header("X-Enhance-Height", strconv.Itoa(result.Rows()))
	c.Header("X-Enhance-Scale", scaleLabel(img, result))
	c.Header("Content-Disposition", `attachment; filename="`+imageio.OutputFilename(op)+`"`)

	c.Data(http.StatusOK, "image/png", data)
}

// Preview runs an enhancement and answers with a before/after report
// instead of the full-size result: thumbnails, quality metrics and the
// outcome flags
func (h *EnhanceHandler) Preview(c *gin.Context) {
	img, op, strength, err := h.parseEnhanceForm(c)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	defer img.Close()

	result, outcome := h.service.Enhance(img, op, strength)
	defer result.Close()

	before, err := imageio.ThumbnailPNG(img, imageio.ThumbnailSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, entity.ErrEncodeFailed)
		return
	}
	after, err := imageio.ThumbnailPNG(result, imageio.ThumbnailSize)
	if err != nil {
		respondError(c, http.StatusInternalServerError, entity.ErrEncodeFailed)
		return
	}

	c.JSON(http.StatusOK, entity.PreviewResponse{
		Operation: outcome.Op.String(),
		Strength:  outcome.Strength,
		Applied:   outcome.Applied,
		Fallback:  outcome.Fallback,
		Recovered: outcome.Recovered,
		Original: entity.ImageSize{
			Width:  img.Cols(),
			Height: img.Rows(),
		},
		Result: entity.ImageSize{
			Width:  result.Cols(),
			Height: result.Rows(),
		},
		Metrics:         h.evaluator.EvaluateOperation(img, result, op.Snake()),
		BeforeThumbnail: base64.StdEncoding.EncodeToString(before),
		AfterThumbnail:  base64.StdEncoding.EncodeToString(after),
	})
}
