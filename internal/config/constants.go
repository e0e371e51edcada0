package config

import "time"

// Server defaults
const (
	DefaultServerPort = "8080"
)

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout    = 60 * time.Second
	DefaultBackendTimeout = 30 * time.Second
	ServerShutdownTimeout = 30 * time.Second
	CLICommandTimeout     = 10 * time.Minute
	TestTimeout           = 100 * time.Millisecond

	// Session timeouts
	SessionMaxAge = 7 * 24 * time.Hour // 7 days
)

// Translation defaults
const (
	DefaultMaxTextLength = 5000
	DefaultMaxBatchSize  = 100
	DefaultStyle         = "general"

	// DetectedSourceLanguage is reported when the request asked for
	// automatic source language detection
	DetectedSourceLanguage = "en"
)

// Resolution confidence levels
const (
	DictionaryConfidence  = 1.0
	BackendConfidence     = 0.95
	PlaceholderConfidence = 0.0
)

// Rate limiter defaults
const (
	DefaultRateLimitWindow = 60 * time.Second
	DefaultRateLimitMax    = 100
)

// Response cache defaults
const (
	DefaultCacheTTL        = time.Hour
	DefaultCacheMaxEntries = 10000
)

// Conversation context defaults
const (
	DefaultContextMaxHistory = 10
	DefaultContextWindow     = 3
	DefaultContextTTL        = time.Hour
)

// Session configuration constants
const (
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	// Session name
	SessionName = "lingua-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:;"
)
