package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"linguatranslate/internal/config"
	"linguatranslate/internal/models"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/serviceinterfaces"
)

// LayeredResolver resolves translations through an ordered fallback chain:
// phrase dictionary, backend model, placeholder. Resolve always produces a
// result; a panic anywhere in the chain yields an error-method result
// instead of propagating.
type LayeredResolver struct {
	config  *config.Config
	backend serviceinterfaces.BackendTranslator
	logger  *observability.Logger
}

// NewLayeredResolver creates a resolver over the configured phrase tables
// and backend models.
func NewLayeredResolver(cfg *config.Config, backend serviceinterfaces.BackendTranslator, logger *observability.Logger) *LayeredResolver {
	return &LayeredResolver{
		config:  cfg,
		backend: backend,
		logger:  logger,
	}
}

// Resolve produces a translation for the request. The conversationContext
// string, when present, is forwarded to the backend model and echoed on the
// result.
func (r *LayeredResolver) Resolve(ctx context.Context, req *models.TranslationRequest, conversationContext string) (result *models.TranslationResult) {
	ctx, span := observability.TraceResolverFunction(ctx, "Resolve",
		observability.AttributeSourceLang(req.SourceLang),
		observability.AttributeTargetLang(req.TargetLang),
		observability.AttributeStyle(req.Style),
		observability.AttributeTextLength(len(req.Text)),
	)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(ctx, "Resolver panicked", fmt.Errorf("panic: %v", rec), map[string]interface{}{
				"target_lang": req.TargetLang,
			})
			result = r.errorResult(req, conversationContext)
		}
		span.SetAttributes(observability.AttributeMethod(string(result.Method)))
		span.End()
	}()

	start := time.Now()

	style := req.Style
	if style == "" {
		style = r.config.Translation.DefaultStyle
	}

	base := models.TranslationResult{
		OriginalText: req.Text,
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		Style:        style,
		Context:      conversationContext,
		ProcessedAt:  time.Now().UTC(),
	}
	if req.SourceLang == "auto" {
		base.DetectedLang = config.DetectedSourceLanguage
	}

	// Layer 1: phrase dictionary, exact match on the normalized text.
	if table := r.config.PhraseTableForLanguage(req.TargetLang); table != nil {
		normalized := strings.ToLower(strings.TrimSpace(req.Text))
		if translation, ok := table[normalized]; ok {
			result = base.Clone()
			result.TranslatedText = translation
			result.Method = models.MethodDictionary
			result.Confidence = config.DictionaryConfidence
			result.Latency = time.Since(start).Seconds()
			return result
		}
	}

	// Layer 2: backend model, for English (or auto-detected) source text
	// with a model configured for the target language.
	if r.backendEligible(req) {
		backendResult, err := r.backend.Translate(ctx, serviceinterfaces.BackendTranslateRequest{
			Text:       buildBackendPrompt(req.Text, style, conversationContext),
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
			Style:      style,
			Model:      r.config.ModelForLanguage(req.TargetLang),
			Context:    conversationContext,
		})
		if err == nil {
			result = base.Clone()
			result.TranslatedText = postProcessTranslation(backendResult.TranslatedText)
			result.Method = models.MethodBackendModel
			result.Confidence = config.BackendConfidence
			result.Model = backendResult.Model
			result.Latency = time.Since(start).Seconds()
			return result
		}
		r.logger.Warn(ctx, "Backend translation failed, falling back to placeholder", map[string]interface{}{
			"target_lang": req.TargetLang,
			"error":       err.Error(),
		})
	}

	// Layer 3: placeholder, so the caller always receives a rendering.
	result = base.Clone()
	result.TranslatedText = fmt.Sprintf("[%s] %s", strings.ToUpper(req.TargetLang), req.Text)
	result.Method = models.MethodPlaceholder
	result.Confidence = config.PlaceholderConfidence
	result.Latency = time.Since(start).Seconds()
	return result
}

// buildBackendPrompt prepends the style and conversation context as
// natural-language instructions to the text sent to the backend model.
func buildBackendPrompt(text, style, conversationContext string) string {
	var b strings.Builder
	if style != "" {
		fmt.Fprintf(&b, "Translate in a %s style. ", style)
	}
	if conversationContext != "" {
		fmt.Fprintf(&b, "Context: %s. ", conversationContext)
	}
	b.WriteString(text)
	return b.String()
}

// postProcessTranslation normalizes whitespace in backend model output.
func postProcessTranslation(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// backendEligible reports whether the backend model layer applies to the
// request: the source must be English or auto-detected, a model must be
// configured for the target, and the backend must be reachable.
func (r *LayeredResolver) backendEligible(req *models.TranslationRequest) bool {
	if req.SourceLang != "auto" && req.SourceLang != "en" {
		return false
	}
	if r.config.ModelForLanguage(req.TargetLang) == "" {
		return false
	}
	return r.backend != nil && r.backend.IsAvailable()
}

func (r *LayeredResolver) errorResult(req *models.TranslationRequest, conversationContext string) *models.TranslationResult {
	style := req.Style
	if style == "" {
		style = r.config.Translation.DefaultStyle
	}
	return &models.TranslationResult{
		OriginalText:   req.Text,
		TranslatedText: "[translation error]",
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		Style:          style,
		Method:         models.MethodError,
		Confidence:     0.0,
		Context:        conversationContext,
		ProcessedAt:    time.Now().UTC(),
	}
}
