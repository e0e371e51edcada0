package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linguatranslate/internal/config"
	"linguatranslate/internal/models"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/serviceinterfaces"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func testConfig() *config.Config {
	return &config.Config{
		Translation: config.TranslationConfig{
			SupportedLanguages: map[string]string{
				"es": "Spanish",
				"ar": "Arabic",
				"zh": "Chinese",
			},
			MaxTextLength: 5000,
			MaxBatchSize:  100,
			Styles:        []string{"general", "formal", "casual", "technical", "literary"},
			DefaultStyle:  "general",
			PhraseTables: map[string]map[string]string{
				"es": {
					"hello":   "hola",
					"goodbye": "adios",
				},
				"ar": {
					"hello": "مرحبا",
				},
			},
			Backend: config.BackendConfig{
				URL: "http://backend:9000",
				Models: map[string]string{
					"es": "marian-en-es",
				},
			},
		},
		RateLimit:    config.RateLimitConfig{Window: config.DefaultRateLimitWindow, Limit: config.DefaultRateLimitMax},
		Cache:        config.CacheConfig{TTL: config.DefaultCacheTTL, MaxEntries: 100},
		ContextStore: config.ContextStoreConfig{MaxHistory: 10, ContextWindow: 3, TTL: config.DefaultContextTTL},
	}
}

// mockBackend is a hand-rolled BackendTranslator for resolver tests.
type mockBackend struct {
	available bool
	response  *serviceinterfaces.BackendTranslateResponse
	err       error
	calls     int
	lastReq   serviceinterfaces.BackendTranslateRequest
}

func (m *mockBackend) IsAvailable() bool {
	return m.available
}

func (m *mockBackend) Translate(_ context.Context, req serviceinterfaces.BackendTranslateRequest) (*serviceinterfaces.BackendTranslateResponse, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func TestLayeredResolver_DictionaryHit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		targetLang string
		expected   string
	}{
		{name: "exact match", text: "hello", targetLang: "es", expected: "hola"},
		{name: "case folded", text: "HELLO", targetLang: "es", expected: "hola"},
		{name: "whitespace trimmed", text: "  hello  ", targetLang: "es", expected: "hola"},
		{name: "arabic table", text: "hello", targetLang: "ar", expected: "مرحبا"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{available: true}
			resolver := NewLayeredResolver(testConfig(), backend, testLogger())

			result := resolver.Resolve(context.Background(), &models.TranslationRequest{
				Text:       tt.text,
				SourceLang: "en",
				TargetLang: tt.targetLang,
			}, "")

			require.NotNil(t, result)
			assert.Equal(t, tt.expected, result.TranslatedText)
			assert.Equal(t, models.MethodDictionary, result.Method)
			assert.Equal(t, 1.0, result.Confidence)
			assert.Equal(t, 0, backend.calls, "dictionary hit must not reach the backend")
		})
	}
}

func TestLayeredResolver_BackendModel(t *testing.T) {
	backend := &mockBackend{
		available: true,
		response: &serviceinterfaces.BackendTranslateResponse{
			TranslatedText: "el gato come",
			Model:          "marian-en-es",
		},
	}
	resolver := NewLayeredResolver(testConfig(), backend, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "the cat eats",
		SourceLang: "en",
		TargetLang: "es",
	}, "Previous: hello -> hola")

	require.NotNil(t, result)
	assert.Equal(t, "el gato come", result.TranslatedText)
	assert.Equal(t, models.MethodBackendModel, result.Method)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, "marian-en-es", result.Model)
	assert.Equal(t, "Previous: hello -> hola", result.Context)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, "marian-en-es", backend.lastReq.Model)
	assert.Equal(t, "Previous: hello -> hola", backend.lastReq.Context)
	assert.Equal(t, "Translate in a general style. Context: Previous: hello -> hola. the cat eats", backend.lastReq.Text)
}

func TestLayeredResolver_BackendOutputWhitespaceNormalized(t *testing.T) {
	backend := &mockBackend{
		available: true,
		response: &serviceinterfaces.BackendTranslateResponse{
			TranslatedText: "  el gato \n\t come  ",
			Model:          "marian-en-es",
		},
	}
	resolver := NewLayeredResolver(testConfig(), backend, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "the cat eats",
		SourceLang: "en",
		TargetLang: "es",
	}, "")

	assert.Equal(t, "el gato come", result.TranslatedText)
}

func TestLayeredResolver_BackendEligibility(t *testing.T) {
	tests := []struct {
		name       string
		sourceLang string
		targetLang string
		available  bool
		wantCalls  int
	}{
		{name: "english source eligible", sourceLang: "en", targetLang: "es", available: true, wantCalls: 1},
		{name: "auto source eligible", sourceLang: "auto", targetLang: "es", available: true, wantCalls: 1},
		{name: "non-english source skips backend", sourceLang: "fr", targetLang: "es", available: true, wantCalls: 0},
		{name: "no model for target", sourceLang: "en", targetLang: "zh", available: true, wantCalls: 0},
		{name: "backend unavailable", sourceLang: "en", targetLang: "es", available: false, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{
				available: tt.available,
				response:  &serviceinterfaces.BackendTranslateResponse{TranslatedText: "x", Model: "m"},
			}
			resolver := NewLayeredResolver(testConfig(), backend, testLogger())

			resolver.Resolve(context.Background(), &models.TranslationRequest{
				Text:       "the cat eats",
				SourceLang: tt.sourceLang,
				TargetLang: tt.targetLang,
			}, "")

			assert.Equal(t, tt.wantCalls, backend.calls)
		})
	}
}

func TestLayeredResolver_PlaceholderFallback(t *testing.T) {
	backend := &mockBackend{available: false}
	resolver := NewLayeredResolver(testConfig(), backend, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "untranslatable phrase",
		SourceLang: "en",
		TargetLang: "zh",
	}, "")

	require.NotNil(t, result)
	assert.Equal(t, "[ZH] untranslatable phrase", result.TranslatedText)
	assert.Equal(t, models.MethodPlaceholder, result.Method)
	assert.Equal(t, 0.0, result.Confidence)

	// Any target works at this layer; support checks happen upstream.
	generic := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "foo",
		SourceLang: "auto",
		TargetLang: "xx",
	}, "")
	assert.Equal(t, "[XX] foo", generic.TranslatedText)
	assert.Equal(t, models.MethodPlaceholder, generic.Method)
}

func TestLayeredResolver_BackendFailureFallsBackToPlaceholder(t *testing.T) {
	backend := &mockBackend{available: true, err: assert.AnError}
	resolver := NewLayeredResolver(testConfig(), backend, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "the cat eats",
		SourceLang: "en",
		TargetLang: "es",
	}, "")

	require.NotNil(t, result)
	assert.Equal(t, "[ES] the cat eats", result.TranslatedText)
	assert.Equal(t, models.MethodPlaceholder, result.Method)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, 1, backend.calls)
}

func TestLayeredResolver_AutoSourceReportsDetectedLang(t *testing.T) {
	backend := &mockBackend{available: false}
	resolver := NewLayeredResolver(testConfig(), backend, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "auto",
		TargetLang: "es",
	}, "")

	require.NotNil(t, result)
	assert.Equal(t, "en", result.DetectedLang)

	explicit := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
	}, "")
	assert.Empty(t, explicit.DetectedLang)
}

func TestLayeredResolver_DefaultStyleApplied(t *testing.T) {
	backend := &mockBackend{available: false}
	resolver := NewLayeredResolver(testConfig(), backend, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
	}, "")

	assert.Equal(t, "general", result.Style)

	styled := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "hello",
		SourceLang: "en",
		TargetLang: "es",
		Style:      "formal",
	}, "")
	assert.Equal(t, "formal", styled.Style)
}

// panicBackend panics on every call, exercising the error-result recovery.
type panicBackend struct{}

func (p *panicBackend) IsAvailable() bool { return true }

func (p *panicBackend) Translate(_ context.Context, _ serviceinterfaces.BackendTranslateRequest) (*serviceinterfaces.BackendTranslateResponse, error) {
	panic("backend exploded")
}

func TestLayeredResolver_PanicYieldsErrorResult(t *testing.T) {
	resolver := NewLayeredResolver(testConfig(), &panicBackend{}, testLogger())

	result := resolver.Resolve(context.Background(), &models.TranslationRequest{
		Text:       "the cat eats",
		SourceLang: "en",
		TargetLang: "es",
	}, "")

	require.NotNil(t, result)
	assert.Equal(t, models.MethodError, result.Method)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "[translation error]", result.TranslatedText)
	assert.Equal(t, "the cat eats", result.OriginalText)
}
