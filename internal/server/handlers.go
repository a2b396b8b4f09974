package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pixel-filter-engine/internal/algorithms"
	"pixel-filter-engine/internal/imageio"
	"pixel-filter-engine/internal/metrics"
	"pixel-filter-engine/internal/pixel"
)

type filterInfo struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Parameters  []algorithms.ParameterInfo `json:"parameters"`
}

type processResponse struct {
	Success        bool               `json:"success"`
	ProcessedImage string             `json:"processed_image"`
	ProcessType    string             `json:"process_type"`
	AppliedFilter  string             `json:"applied_filter"`
	Fallback       bool               `json:"fallback"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Metrics        map[string]float64 `json:"metrics"`
}

func respondError(ctx *gin.Context, code int, message string) {
	ctx.AbortWithStatusJSON(code, gin.H{"error": message})
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Image Processing API is running",
	})
}

func (s *Server) listFilters(ctx *gin.Context) {
	filters := make([]filterInfo, 0, len(algorithms.Kinds()))
	for _, kind := range algorithms.Kinds() {
		alg, ok := algorithms.Get(kind.String())
		if !ok {
			continue
		}
		filters = append(filters, filterInfo{
			ID:          kind.String(),
			Name:        alg.GetName(),
			Description: alg.GetDescription(),
			Parameters:  alg.GetParameterInfo(),
		})
	}
	ctx.JSON(http.StatusOK, gin.H{
		"filters": filters,
		"strict":  s.processor.Settings().Strict,
		"formats": s.processor.Loader().GetSupportedFormats(),
	})
}

func (s *Server) stats(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.processor.Stats().Snapshot())
}

func (s *Server) processImage(ctx *gin.Context) {
	header, err := ctx.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(ctx, http.StatusRequestEntityTooLarge, "Image file too large")
			return
		}
		respondError(ctx, http.StatusBadRequest, "No image file provided")
		return
	}
	if header.Filename == "" {
		respondError(ctx, http.StatusBadRequest, "No image file selected")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Could not read uploaded image")
		return
	}
	defer file.Close()

	processType := ctx.DefaultPostForm("type", algorithms.Grayscale.String())

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.processor.Process(reqCtx, file, processType, ctx.PostForm("format"))
	if err != nil {
		code := statusFor(err)
		s.logger.WithFields(logrus.Fields{
			"request_id": ctx.GetString("request_id"),
			"filter":     processType,
			"error":      err,
		}).Warn("Image processing failed")
		respondError(ctx, code, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, processResponse{
		Success:        true,
		ProcessedImage: imageio.DataURL(result.Format, result.Data),
		ProcessType:    processType,
		AppliedFilter:  result.Kind.String(),
		Fallback:       result.Fallback,
		Width:          result.Width,
		Height:         result.Height,
		Metrics:        metrics.Finite(result.Metrics),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, algorithms.ErrUnknownFilter),
		errors.Is(err, imageio.ErrDecode),
		errors.Is(err, pixel.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
