package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vcalderon2009/note-taker/internal/domain/pipeline"
	"github.com/vcalderon2009/note-taker/internal/infrastructure/observability"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/dto"
	"github.com/vcalderon2009/note-taker/internal/interfaces/httpserver/responses"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

// ClassifyHandler exposes a classification preview that persists nothing.
type ClassifyHandler struct {
	classifier pipeline.Classifier
	log        zerolog.Logger
}

// NewClassifyHandler constructs the handler.
func NewClassifyHandler(classifier pipeline.Classifier, log zerolog.Logger) *ClassifyHandler {
	return &ClassifyHandler{
		classifier: classifier,
		log:        log.With().Str("handler", "classify").Logger(),
	}
}

// Preview handles POST /v1/classify.
func (h *ClassifyHandler) Preview(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			"text is required", "classify-bind")
		return
	}

	ctx, span := observability.StartStageSpan(c.Request.Context(), "classify_preview")
	defer span.End()

	result := h.classifier.Classify(ctx, req.Text, nil)
	observability.AnnotateClassification(span, string(result.Category), string(result.Source), result.Confidence)

	c.JSON(http.StatusOK, dto.ClassifyResponse{
		Category:   result.Category,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
		Source:     result.Source,
	})
}
