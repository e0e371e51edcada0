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
	contextutils "linguatranslate/internal/utils"
)

// TranslationPipeline runs the full request flow: validation, admission,
// cache lookup, conversation context, resolution, and write-back.
type TranslationPipeline struct {
	config       *config.Config
	limiter      serviceinterfaces.RateLimiter
	cache        serviceinterfaces.ResponseCache
	contextStore serviceinterfaces.ContextStore
	resolver     serviceinterfaces.TranslationResolver
	logger       *observability.Logger
}

// NewTranslationPipeline creates a pipeline over the given services.
func NewTranslationPipeline(
	cfg *config.Config,
	limiter serviceinterfaces.RateLimiter,
	cache serviceinterfaces.ResponseCache,
	contextStore serviceinterfaces.ContextStore,
	resolver serviceinterfaces.TranslationResolver,
	logger *observability.Logger,
) *TranslationPipeline {
	return &TranslationPipeline{
		config:       cfg,
		limiter:      limiter,
		cache:        cache,
		contextStore: contextStore,
		resolver:     resolver,
		logger:       logger,
	}
}

// Translate processes a single translation request.
func (p *TranslationPipeline) Translate(ctx context.Context, req *models.TranslationRequest) (result *models.TranslationResult, err error) {
	ctx, span := observability.TracePipelineFunction(ctx, "Translate",
		observability.AttributeSourceLang(req.SourceLang),
		observability.AttributeTargetLang(req.TargetLang),
	)
	defer observability.FinishSpan(span, &err)

	start := time.Now()

	if err := p.validateRequest(req); err != nil {
		return nil, err
	}

	clientID := contextutils.GetClientIDFromContext(ctx)
	allowed, err := p.limiter.Allow(ctx, clientID)
	if err != nil {
		// Admission control fails open
		p.logger.Warn(ctx, "Rate limit check failed, admitting request", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		allowed = true
	}
	if !allowed {
		observability.RecordRateLimitRejection("translate")
		return nil, contextutils.NewAppError(contextutils.ErrorCodeRateLimit, contextutils.SeverityWarn, "Rate limit exceeded", fmt.Sprintf("limit is %d requests per %s", p.config.RateLimit.Limit, p.config.RateLimit.Window))
	}

	result, err = p.resolveWithCache(ctx, req)
	if err != nil {
		return nil, err
	}

	observability.RecordTranslationMethod(string(result.Method), result.TargetLang)
	observability.RecordTranslationRequest("translate", "success", time.Since(start).Seconds())
	return result, nil
}

// TranslateBatch processes a batch of translation requests. Admission is
// checked once for the whole batch; items resolve independently, in input
// order, without per-item caching or conversation context. Individual item
// failures produce error-method results rather than failing the batch.
func (p *TranslationPipeline) TranslateBatch(ctx context.Context, batch *models.BatchTranslationRequest) (result *models.BatchTranslationResult, err error) {
	ctx, span := observability.TracePipelineFunction(ctx, "TranslateBatch",
		observability.AttributeTargetLang(batch.TargetLang),
		observability.AttributeBatchSize(len(batch.Texts)),
	)
	defer observability.FinishSpan(span, &err)

	start := time.Now()

	if len(batch.Texts) == 0 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn, "Batch must contain at least one text", "")
	}
	if len(batch.Texts) > p.config.Translation.MaxBatchSize {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeBatchTooLarge, contextutils.SeverityWarn, "Batch exceeds maximum size", fmt.Sprintf("%d texts, maximum is %d", len(batch.Texts), p.config.Translation.MaxBatchSize))
	}

	clientID := contextutils.GetClientIDFromContext(ctx)
	allowed, err := p.limiter.Allow(ctx, clientID)
	if err != nil {
		p.logger.Warn(ctx, "Rate limit check failed, admitting request", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		allowed = true
	}
	if !allowed {
		observability.RecordRateLimitRejection("batch-translate")
		return nil, contextutils.NewAppError(contextutils.ErrorCodeRateLimit, contextutils.SeverityWarn, "Rate limit exceeded", fmt.Sprintf("limit is %d requests per %s", p.config.RateLimit.Limit, p.config.RateLimit.Window))
	}

	observability.RecordBatchSize("batch-translate", len(batch.Texts))

	sourceLang := batch.SourceLang
	if sourceLang == "" {
		sourceLang = "auto"
	}

	results := make([]*models.TranslationResult, 0, len(batch.Texts))
	errorCount := 0
	for _, text := range batch.Texts {
		itemReq := &models.TranslationRequest{
			Text:       text,
			SourceLang: sourceLang,
			TargetLang: batch.TargetLang,
			Style:      batch.Style,
		}
		if err := p.validateRequest(itemReq); err != nil {
			p.logger.Debug(ctx, "Batch item failed validation", map[string]interface{}{
				"error": err.Error(),
			})
			results = append(results, &models.TranslationResult{
				OriginalText:   text,
				TranslatedText: "[translation error]",
				SourceLang:     itemReq.SourceLang,
				TargetLang:     itemReq.TargetLang,
				Style:          itemReq.Style,
				Method:         models.MethodError,
				Confidence:     0.0,
				ProcessedAt:    time.Now().UTC(),
			})
			errorCount++
			continue
		}

		itemResult := p.resolver.Resolve(ctx, itemReq, "")
		if itemResult.Method == models.MethodError {
			errorCount++
		}
		observability.RecordTranslationMethod(string(itemResult.Method), itemResult.TargetLang)
		results = append(results, itemResult)
	}

	observability.RecordTranslationRequest("batch-translate", "success", time.Since(start).Seconds())
	return &models.BatchTranslationResult{
		Results:    results,
		TotalCount: len(results),
		SourceLang: sourceLang,
		TargetLang: batch.TargetLang,
		Errors:     errorCount,
	}, nil
}

// Languages returns the supported target languages with their capabilities.
func (p *TranslationPipeline) Languages(_ context.Context) []models.Language {
	codes := p.config.GetLanguages()
	languages := make([]models.Language, 0, len(codes))
	for _, code := range codes {
		languages = append(languages, models.Language{
			Code:       code,
			Name:       p.config.Translation.SupportedLanguages[code],
			HasModel:   p.config.ModelForLanguage(code) != "",
			HasPhrases: p.config.PhraseTableForLanguage(code) != nil,
		})
	}
	return languages
}

// resolveWithCache runs the cache-context-resolve-writeback sequence for a
// validated request.
func (p *TranslationPipeline) resolveWithCache(ctx context.Context, req *models.TranslationRequest) (*models.TranslationResult, error) {
	// Cache and context are enhancements; an erroring implementation
	// degrades to a miss or an empty context, never a failed request.
	cached, err := p.cache.Get(ctx, req)
	if err != nil {
		p.logger.Warn(ctx, "Cache lookup failed, treating as miss", map[string]interface{}{
			"error": err.Error(),
		})
		cached = nil
	}
	if cached != nil {
		observability.RecordCacheOperation("hit")
		return cached, nil
	}
	observability.RecordCacheOperation("miss")

	var conversationContext string
	if req.ShouldUseContext() {
		conversationContext, err = p.contextStore.GetContext(ctx, req.SessionID)
		if err != nil {
			p.logger.Warn(ctx, "Context lookup failed, continuing without context", map[string]interface{}{
				"session_id": req.SessionID,
				"error":      err.Error(),
			})
			conversationContext = ""
		}
	}

	result := p.resolver.Resolve(ctx, req, conversationContext)

	if req.ShouldUseContext() && req.SessionID != "" && result.Method != models.MethodError {
		if err := p.contextStore.AddExchange(ctx, req.SessionID, models.Exchange{
			UserText:    req.Text,
			Translation: result.TranslatedText,
			TargetLang:  result.TargetLang,
		}); err != nil {
			p.logger.Warn(ctx, "Failed to record exchange", map[string]interface{}{
				"session_id": req.SessionID,
				"error":      err.Error(),
			})
		}
	}

	if err := p.cache.Put(ctx, req, result); err != nil {
		p.logger.Warn(ctx, "Failed to cache result", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return result, nil
}

// validateRequest checks request fields against configured limits and
// normalizes the source language.
func (p *TranslationPipeline) validateRequest(req *models.TranslationRequest) error {
	if err := contextutils.ValidateText(req.Text, p.config.Translation.MaxTextLength); err != nil {
		return err
	}

	if req.SourceLang == "" {
		req.SourceLang = "auto"
	}
	if req.SourceLang != "auto" {
		if err := contextutils.ValidateLanguageCode(req.SourceLang); err != nil {
			return err
		}
	}

	if req.TargetLang == "" {
		return contextutils.NewAppError(contextutils.ErrorCodeMissingRequired, contextutils.SeverityWarn, "Target language is required", "")
	}
	if err := contextutils.ValidateLanguageCode(req.TargetLang); err != nil {
		return err
	}
	if !p.config.IsSupportedLanguage(req.TargetLang) {
		return contextutils.NewAppError(contextutils.ErrorCodeUnsupportedLanguage, contextutils.SeverityWarn, "Unsupported target language", req.TargetLang)
	}

	if req.Style != "" && !p.styleSupported(req.Style) {
		return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn, "Unsupported translation style", req.Style)
	}

	return nil
}

func (p *TranslationPipeline) styleSupported(style string) bool {
	for _, s := range p.config.Translation.Styles {
		if strings.EqualFold(s, style) {
			return true
		}
	}
	return false
}
