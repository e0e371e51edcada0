// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"linguatranslate/internal/models"
)

// BackendTranslateRequest represents a request to the model backend
type BackendTranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Style      string `json:"style,omitempty"`
	Model      string `json:"model"`
	Context    string `json:"context,omitempty"`
}

// BackendTranslateResponse represents a response from the model backend
type BackendTranslateResponse struct {
	TranslatedText string  `json:"translated_text"`
	Model          string  `json:"model"`
	Confidence     float64 `json:"confidence,omitempty"`
}

// BackendTranslator defines the interface to the translation model backend
type BackendTranslator interface {
	// Translate sends a translation request to the backend model
	Translate(ctx context.Context, req BackendTranslateRequest) (*BackendTranslateResponse, error)

	// IsAvailable reports whether the backend can serve requests
	IsAvailable() bool
}

// TranslationResolver defines the layered translation resolution chain
type TranslationResolver interface {
	// Resolve produces a translation for the request, falling back
	// through the resolution layers
	Resolve(ctx context.Context, req *models.TranslationRequest, conversationContext string) *models.TranslationResult
}

// RateLimiter defines admission control for translation requests
type RateLimiter interface {
	// Allow reports whether the client may proceed, recording the
	// request when admitted
	Allow(ctx context.Context, clientID string) (bool, error)
}

// ResponseCache defines the translation response cache
type ResponseCache interface {
	// Get returns the cached result for the request, or nil on a miss
	Get(ctx context.Context, req *models.TranslationRequest) (*models.TranslationResult, error)

	// Put stores the result for the request
	Put(ctx context.Context, req *models.TranslationRequest, result *models.TranslationResult) error
}

// TranslationPipeline defines the full request flow exposed to the HTTP layer
type TranslationPipeline interface {
	// Translate processes a single translation request
	Translate(ctx context.Context, req *models.TranslationRequest) (*models.TranslationResult, error)

	// TranslateBatch processes a batch of translation requests
	TranslateBatch(ctx context.Context, batch *models.BatchTranslationRequest) (*models.BatchTranslationResult, error)

	// Languages returns the supported target languages with their capabilities
	Languages(ctx context.Context) []models.Language
}

// ContextStore defines per-session conversation context tracking
type ContextStore interface {
	// GetContext renders the recent conversation context for a session
	GetContext(ctx context.Context, sessionID string) (string, error)

	// AddExchange records a completed translation exchange for a session
	AddExchange(ctx context.Context, sessionID string, exchange models.Exchange) error

	// GetHistory returns the retained history for a session
	GetHistory(ctx context.Context, sessionID string) (*models.SessionHistory, error)
}
