// Package handlers provides HTTP handlers for the translation API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"linguatranslate/internal/config"
	"linguatranslate/internal/middleware"
	"linguatranslate/internal/models"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/serviceinterfaces"
	contextutils "linguatranslate/internal/utils"
)

// TranslationHandler handles translation related HTTP requests
type TranslationHandler struct {
	pipeline serviceinterfaces.TranslationPipeline
	cfg      *config.Config
	logger   *observability.Logger
}

// NewTranslationHandler creates a new TranslationHandler instance
func NewTranslationHandler(pipeline serviceinterfaces.TranslationPipeline, cfg *config.Config, logger *observability.Logger) *TranslationHandler {
	return &TranslationHandler{
		pipeline: pipeline,
		cfg:      cfg,
		logger:   logger,
	}
}

// TranslateText handles single text translation requests
func (h *TranslationHandler) TranslateText(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "translate_text")
	defer observability.FinishSpan(span, nil)

	var req models.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid translation request format", map[string]interface{}{"error": err.Error()})
		middleware.HandleAppError(c, contextutils.NewAppError(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request format",
			err.Error(),
		))
		return
	}

	// Fall back to the cookie session when the body carries no session ID
	if req.SessionID == "" {
		req.SessionID = contextutils.GetSessionIDFromContext(ctx)
	}

	span.SetAttributes(
		attribute.String("translation.target_lang", req.TargetLang),
		attribute.String("translation.source_lang", req.SourceLang),
		attribute.Int("translation.text_length", len(req.Text)),
	)

	result, err := h.pipeline.Translate(ctx, &req)
	if err != nil {
		h.logger.Warn(ctx, "Translation request rejected", map[string]interface{}{
			"error": err.Error(),
			"code":  string(contextutils.GetErrorCode(err)),
		})
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// BatchTranslate handles batch translation requests
func (h *TranslationHandler) BatchTranslate(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "batch_translate")
	defer observability.FinishSpan(span, nil)

	var req models.BatchTranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn(ctx, "Invalid batch translation request format", map[string]interface{}{"error": err.Error()})
		middleware.HandleAppError(c, contextutils.NewAppError(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid request format",
			err.Error(),
		))
		return
	}

	span.SetAttributes(
		attribute.String("translation.target_lang", req.TargetLang),
		attribute.Int("translation.batch_size", len(req.Texts)),
	)

	result, err := h.pipeline.TranslateBatch(ctx, &req)
	if err != nil {
		h.logger.Warn(ctx, "Batch translation request rejected", map[string]interface{}{
			"error": err.Error(),
			"code":  string(contextutils.GetErrorCode(err)),
		})
		middleware.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLanguages returns the supported target languages and their capabilities
func (h *TranslationHandler) GetLanguages(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_languages")
	defer observability.FinishSpan(span, nil)

	languages := h.pipeline.Languages(ctx)
	c.JSON(http.StatusOK, gin.H{
		"supported_languages": languages,
		"total_count":         len(languages),
	})
}
