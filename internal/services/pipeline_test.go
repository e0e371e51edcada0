package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguatranslate/internal/models"
	"linguatranslate/internal/storage"
	contextutils "linguatranslate/internal/utils"
)

func newTestPipeline(t *testing.T) (*TranslationPipeline, *mockBackend) {
	t.Helper()
	cfg := testConfig()
	store := storage.NewMemoryStore(1000)
	backend := &mockBackend{available: false}
	logger := testLogger()

	pipeline := NewTranslationPipeline(
		cfg,
		NewSlidingWindowLimiter(store, &cfg.RateLimit, logger),
		NewTranslationCache(store, &cfg.Cache, logger),
		NewSessionContextStore(store, &cfg.ContextStore, logger),
		NewLayeredResolver(cfg, backend, logger),
		logger,
	)
	return pipeline, backend
}

func TestTranslationPipeline_DictionaryTranslation(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	result, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, "hola", result.TranslatedText)
	assert.Equal(t, models.MethodDictionary, result.Method)
	assert.False(t, result.Cached)
}

func TestTranslationPipeline_SecondRequestServedFromCache(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	req := &models.TranslationRequest{Text: "walk", SourceLang: "en", TargetLang: "zh"}

	first, err := pipeline.Translate(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, models.MethodPlaceholder, first.Method)

	second, err := pipeline.Translate(ctx, &models.TranslationRequest{Text: "walk", SourceLang: "en", TargetLang: "zh"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.TranslatedText, second.TranslatedText)
}

func TestTranslationPipeline_Validation(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	tests := []struct {
		name     string
		req      *models.TranslationRequest
		wantCode contextutils.ErrorCode
	}{
		{
			name:     "empty text",
			req:      &models.TranslationRequest{Text: "", TargetLang: "es"},
			wantCode: contextutils.ErrorCodeMissingRequired,
		},
		{
			name:     "text too long",
			req:      &models.TranslationRequest{Text: strings.Repeat("a", 5001), TargetLang: "es"},
			wantCode: contextutils.ErrorCodeTextTooLong,
		},
		{
			name:     "missing target language",
			req:      &models.TranslationRequest{Text: "hello"},
			wantCode: contextutils.ErrorCodeMissingRequired,
		},
		{
			name:     "malformed target language",
			req:      &models.TranslationRequest{Text: "hello", TargetLang: "e$"},
			wantCode: contextutils.ErrorCodeInvalidInput,
		},
		{
			name:     "unsupported target language",
			req:      &models.TranslationRequest{Text: "hello", TargetLang: "fr"},
			wantCode: contextutils.ErrorCodeUnsupportedLanguage,
		},
		{
			name:     "unsupported style",
			req:      &models.TranslationRequest{Text: "hello", TargetLang: "es", Style: "poetic"},
			wantCode: contextutils.ErrorCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Translate(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, contextutils.GetErrorCode(err))
		})
	}
}

func TestTranslationPipeline_TextLengthBoundary(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.MaxTextLength = 10
	store := storage.NewMemoryStore(1000)
	logger := testLogger()
	pipeline := NewTranslationPipeline(
		cfg,
		NewSlidingWindowLimiter(store, &cfg.RateLimit, logger),
		NewTranslationCache(store, &cfg.Cache, logger),
		NewSessionContextStore(store, &cfg.ContextStore, logger),
		NewLayeredResolver(cfg, &mockBackend{}, logger),
		logger,
	)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	// Exactly at the maximum is accepted
	result, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       strings.Repeat("a", 10),
		TargetLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, models.MethodPlaceholder, result.Method)

	// One past the maximum is rejected
	_, err = pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       strings.Repeat("a", 11),
		TargetLang: "es",
	})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeTextTooLong, contextutils.GetErrorCode(err))
}

func TestTranslationPipeline_SourceDefaultsToAuto(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	result, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "hello",
		TargetLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, "auto", result.SourceLang)
	assert.Equal(t, "en", result.DetectedLang)
}

func TestTranslationPipeline_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Limit = 2
	store := storage.NewMemoryStore(1000)
	logger := testLogger()
	pipeline := NewTranslationPipeline(
		cfg,
		NewSlidingWindowLimiter(store, &cfg.RateLimit, logger),
		NewTranslationCache(store, &cfg.Cache, logger),
		NewSessionContextStore(store, &cfg.ContextStore, logger),
		NewLayeredResolver(cfg, &mockBackend{}, logger),
		logger,
	)

	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	for i := 0; i < 2; i++ {
		_, err := pipeline.Translate(ctx, &models.TranslationRequest{Text: "hello", TargetLang: "es"})
		require.NoError(t, err)
	}

	_, err := pipeline.Translate(ctx, &models.TranslationRequest{Text: "hello", TargetLang: "es"})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeRateLimit, contextutils.GetErrorCode(err))

	// A different client is unaffected
	otherCtx := contextutils.WithClientID(context.Background(), "10.0.0.2")
	_, err = pipeline.Translate(otherCtx, &models.TranslationRequest{Text: "hello", TargetLang: "es"})
	assert.NoError(t, err)
}

func TestTranslationPipeline_SessionContextFlows(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	_, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "s1",
	})
	require.NoError(t, err)

	// The second request in the session carries the first exchange as context
	result, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "goodbye",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Previous: hello -> hola", result.Context)
}

func TestTranslationPipeline_CacheHitCarriesNoForeignContext(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	// Session A builds up history, then resolves a request that gets cached
	_, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "session-a",
	})
	require.NoError(t, err)

	fromA, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "goodbye",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "session-a",
	})
	require.NoError(t, err)
	require.Equal(t, "Previous: hello -> hola", fromA.Context)

	// Session B sends the identical request and is served from cache;
	// session A's conversation must not replay into B's response
	fromB, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "goodbye",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "session-b",
	})
	require.NoError(t, err)
	assert.True(t, fromB.Cached)
	assert.NotContains(t, fromB.Context, "hello")
	assert.Empty(t, fromB.Context)
}

func TestTranslationPipeline_ContextOptOut(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")
	noContext := false

	_, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "s2",
		UseContext: &noContext,
	})
	require.NoError(t, err)

	// Opted-out requests neither read nor record session history
	result, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "goodbye",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "s2",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Context)
}

func TestTranslationPipeline_Batch(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	result, err := pipeline.TranslateBatch(ctx, &models.BatchTranslationRequest{
		Texts:      []string{"hello", "goodbye", "something else"},
		SourceLang: "en",
		TargetLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, "en", result.SourceLang)
	assert.Equal(t, "es", result.TargetLang)
	assert.Equal(t, "hola", result.Results[0].TranslatedText)
	assert.Equal(t, "hello", result.Results[0].OriginalText)
	assert.Equal(t, "adios", result.Results[1].TranslatedText)
	assert.Equal(t, models.MethodPlaceholder, result.Results[2].Method)
}

func TestTranslationPipeline_BatchItemErrorsCounted(t *testing.T) {
	pipeline, _ := newTestPipeline(t)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	result, err := pipeline.TranslateBatch(ctx, &models.BatchTranslationRequest{
		Texts:      []string{"hello", ""},
		SourceLang: "en",
		TargetLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, models.MethodError, result.Results[1].Method)
	assert.Equal(t, "[translation error]", result.Results[1].TranslatedText)
}

func TestTranslationPipeline_BatchSizeLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Translation.MaxBatchSize = 2
	store := storage.NewMemoryStore(1000)
	logger := testLogger()
	pipeline := NewTranslationPipeline(
		cfg,
		NewSlidingWindowLimiter(store, &cfg.RateLimit, logger),
		NewTranslationCache(store, &cfg.Cache, logger),
		NewSessionContextStore(store, &cfg.ContextStore, logger),
		NewLayeredResolver(cfg, &mockBackend{}, logger),
		logger,
	)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	_, err := pipeline.TranslateBatch(ctx, &models.BatchTranslationRequest{
		Texts:      []string{},
		TargetLang: "es",
	})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeMissingRequired, contextutils.GetErrorCode(err))

	_, err = pipeline.TranslateBatch(ctx, &models.BatchTranslationRequest{
		Texts:      []string{"a", "b", "c"},
		TargetLang: "es",
	})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeBatchTooLarge, contextutils.GetErrorCode(err))
}

func TestTranslationPipeline_BatchCountsAsOneAdmission(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Limit = 1
	store := storage.NewMemoryStore(1000)
	logger := testLogger()
	pipeline := NewTranslationPipeline(
		cfg,
		NewSlidingWindowLimiter(store, &cfg.RateLimit, logger),
		NewTranslationCache(store, &cfg.Cache, logger),
		NewSessionContextStore(store, &cfg.ContextStore, logger),
		NewLayeredResolver(cfg, &mockBackend{}, logger),
		logger,
	)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	result, err := pipeline.TranslateBatch(ctx, &models.BatchTranslationRequest{
		Texts:      []string{"hello", "goodbye"},
		TargetLang: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)

	_, err = pipeline.TranslateBatch(ctx, &models.BatchTranslationRequest{
		Texts:      []string{"hello"},
		TargetLang: "es",
	})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeRateLimit, contextutils.GetErrorCode(err))
}

// erroringCache, erroringContextStore, and erroringLimiter return errors
// from every call; the pipeline must degrade, not fail the request.
type erroringCache struct{}

func (e *erroringCache) Get(_ context.Context, _ *models.TranslationRequest) (*models.TranslationResult, error) {
	return nil, assert.AnError
}

func (e *erroringCache) Put(_ context.Context, _ *models.TranslationRequest, _ *models.TranslationResult) error {
	return assert.AnError
}

type erroringContextStore struct{}

func (e *erroringContextStore) GetContext(_ context.Context, _ string) (string, error) {
	return "", assert.AnError
}

func (e *erroringContextStore) AddExchange(_ context.Context, _ string, _ models.Exchange) error {
	return assert.AnError
}

func (e *erroringContextStore) GetHistory(_ context.Context, _ string) (*models.SessionHistory, error) {
	return nil, assert.AnError
}

type erroringLimiter struct{}

func (e *erroringLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return false, assert.AnError
}

func TestTranslationPipeline_StorageErrorsDegrade(t *testing.T) {
	cfg := testConfig()
	logger := testLogger()
	pipeline := NewTranslationPipeline(
		cfg,
		&erroringLimiter{},
		&erroringCache{},
		&erroringContextStore{},
		NewLayeredResolver(cfg, &mockBackend{}, logger),
		logger,
	)
	ctx := contextutils.WithClientID(context.Background(), "10.0.0.1")

	result, err := pipeline.Translate(ctx, &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
		SessionID:  "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "hola", result.TranslatedText)
	assert.Empty(t, result.Context)
	assert.False(t, result.Cached)
}

func TestTranslationPipeline_Languages(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	languages := pipeline.Languages(context.Background())
	require.Len(t, languages, 3)

	// Sorted by code
	assert.Equal(t, "ar", languages[0].Code)
	assert.Equal(t, "es", languages[1].Code)
	assert.Equal(t, "zh", languages[2].Code)

	assert.True(t, languages[1].HasModel)
	assert.True(t, languages[1].HasPhrases)
	assert.False(t, languages[2].HasModel)
	assert.False(t, languages[2].HasPhrases)
}
