// Package models defines data structures used throughout the translation service.
package models

import (
	"time"
)

// ResolutionMethod identifies which layer of the resolution chain produced a translation
type ResolutionMethod string

// Resolution methods, in fallback order
const (
	MethodDictionary   ResolutionMethod = "dictionary"
	MethodBackendModel ResolutionMethod = "backend_model"
	MethodPlaceholder  ResolutionMethod = "placeholder"
	MethodError        ResolutionMethod = "error"
)

// TranslationRequest represents a single translation request
type TranslationRequest struct {
	Text       string `json:"text" yaml:"text"`
	SourceLang string `json:"source_lang" yaml:"source_lang"`
	TargetLang string `json:"target_lang" yaml:"target_lang"`
	Style      string `json:"style,omitempty" yaml:"style,omitempty"`
	SessionID  string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	// UseContext controls whether conversation context is fetched and
	// recorded; nil means true
	UseContext *bool `json:"use_context,omitempty" yaml:"use_context,omitempty"`
}

// ShouldUseContext reports whether conversation context applies to the request
func (r *TranslationRequest) ShouldUseContext() bool {
	return r.UseContext == nil || *r.UseContext
}

// BatchTranslationRequest represents a batch of translation requests
type BatchTranslationRequest struct {
	Texts      []string `json:"texts" yaml:"texts"`
	TargetLang string   `json:"target_lang" yaml:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty" yaml:"source_lang,omitempty"`
	Style      string   `json:"style,omitempty" yaml:"style,omitempty"`
}

// TranslationResult represents a resolved translation
type TranslationResult struct {
	OriginalText   string           `json:"original_text" yaml:"original_text"`
	TranslatedText string           `json:"translated_text" yaml:"translated_text"`
	SourceLang     string           `json:"source_lang" yaml:"source_lang"`
	TargetLang     string           `json:"target_lang" yaml:"target_lang"`
	DetectedLang   string           `json:"detected_lang,omitempty" yaml:"detected_lang,omitempty"`
	Style          string           `json:"style" yaml:"style"`
	Method         ResolutionMethod `json:"method" yaml:"method"`
	Confidence     float64          `json:"confidence" yaml:"confidence"`
	Model          string           `json:"model,omitempty" yaml:"model,omitempty"`
	Context        string           `json:"context,omitempty" yaml:"context,omitempty"`
	Cached         bool             `json:"cached" yaml:"cached"`
	// Latency is the resolution time in seconds; cache replays carry the
	// replay latency, not the original resolution time
	Latency     float64   `json:"latency" yaml:"latency"`
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// Clone returns a copy of the result. Cached results are cloned before being
// served so callers can annotate the copy without mutating the stored value.
func (r *TranslationResult) Clone() *TranslationResult {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// BatchTranslationResult represents the outcome of a batch translation request
type BatchTranslationResult struct {
	Results    []*TranslationResult `json:"results" yaml:"results"`
	TotalCount int                  `json:"total_count" yaml:"total_count"`
	SourceLang string               `json:"source_language" yaml:"source_language"`
	TargetLang string               `json:"target_language" yaml:"target_language"`
	Errors     int                  `json:"errors" yaml:"errors"`
}

// Exchange represents one user-text/translation pair in a conversation session
type Exchange struct {
	UserText    string    `json:"user_text" yaml:"user_text"`
	Translation string    `json:"translation" yaml:"translation"`
	TargetLang  string    `json:"target_lang" yaml:"target_lang"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// SessionHistory holds the retained exchanges for one conversation session
type SessionHistory struct {
	SessionID string     `json:"session_id" yaml:"session_id"`
	Exchanges []Exchange `json:"exchanges" yaml:"exchanges"`
	UpdatedAt time.Time  `json:"updated_at" yaml:"updated_at"`
}

// CacheEnvelope is the versioned wrapper stored in the response cache.
// The schema version guards against deserializing entries written by an
// incompatible build.
type CacheEnvelope struct {
	SchemaVersion int                `json:"schema_version" yaml:"schema_version"`
	Result        *TranslationResult `json:"result" yaml:"result"`
}

// CacheSchemaVersion is the current cache envelope schema version
const CacheSchemaVersion = 1

// Language represents a supported target language
type Language struct {
	Code       string `json:"code" yaml:"code"`
	Name       string `json:"name" yaml:"name"`
	HasModel   bool   `json:"has_model" yaml:"has_model"`
	HasPhrases bool   `json:"has_phrases" yaml:"has_phrases"`
}
