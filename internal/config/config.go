// Package config handles application configuration loading from YAML files
// and environment variables.
package config

import (
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	contextutils "linguatranslate/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Translation resolution configuration
	Translation TranslationConfig `json:"translation" yaml:"translation"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// Response cache configuration
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Conversation context configuration
	ContextStore ContextStoreConfig `json:"context_store" yaml:"context_store"`

	// Redis configuration (optional shared storage backend)
	Redis RedisConfig `json:"redis" yaml:"redis"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	AppBaseURL    string   `json:"app_base_url" yaml:"app_base_url"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
}

// TranslationConfig represents translation resolution configuration
type TranslationConfig struct {
	// SupportedLanguages maps language codes to display names
	SupportedLanguages map[string]string `json:"supported_languages" yaml:"supported_languages"`
	MaxTextLength      int               `json:"max_text_length" yaml:"max_text_length"`
	MaxBatchSize       int               `json:"max_batch_size" yaml:"max_batch_size"`
	Styles             []string          `json:"styles" yaml:"styles"`
	DefaultStyle       string            `json:"default_style" yaml:"default_style"`
	// PhraseTables maps target language code to a phrase dictionary
	// (lower-cased source phrase -> translation)
	PhraseTables map[string]map[string]string `json:"phrase_tables" yaml:"phrase_tables"`
	Backend      BackendConfig                `json:"backend" yaml:"backend"`
}

// BackendConfig represents the translation model backend configuration
type BackendConfig struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// Models maps target language code to the model identifier served
	// by the backend for that language
	Models map[string]string `json:"models" yaml:"models"`
}

// RateLimitConfig represents sliding-window rate limiter configuration
type RateLimitConfig struct {
	Window time.Duration `json:"window" yaml:"window"`
	Limit  int           `json:"limit" yaml:"limit"`
}

// CacheConfig represents response cache configuration
type CacheConfig struct {
	TTL        time.Duration `json:"ttl" yaml:"ttl"`
	MaxEntries int           `json:"max_entries" yaml:"max_entries"`
}

// ContextStoreConfig represents conversation context configuration
type ContextStoreConfig struct {
	// MaxHistory is the number of exchanges retained per session
	MaxHistory int `json:"max_history" yaml:"max_history"`
	// ContextWindow is the number of most recent exchanges rendered
	// into the context string
	ContextWindow int           `json:"context_window" yaml:"context_window"`
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
}

// RedisConfig represents Redis connection configuration
type RedisConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// OpenTelemetryConfig represents OpenTelemetry configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "lingua-translate"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`   // Default: true
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`   // Default: true
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`   // Default: true
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`       // Default: true (compatible with OBI)
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"`     // Default: 1.0 (100%)
}

// GetLanguages returns a sorted slice of all supported language codes
func (c *Config) GetLanguages() []string {
	if c.Translation.SupportedLanguages == nil {
		return []string{}
	}
	languages := make([]string, 0, len(c.Translation.SupportedLanguages))
	for code := range c.Translation.SupportedLanguages {
		languages = append(languages, code)
	}
	sort.Strings(languages)
	return languages
}

// IsSupportedLanguage reports whether the given code is a supported target language
func (c *Config) IsSupportedLanguage(code string) bool {
	if c.Translation.SupportedLanguages == nil {
		return false
	}
	_, ok := c.Translation.SupportedLanguages[code]
	return ok
}

// ModelForLanguage returns the backend model identifier for a target language,
// or the empty string when no model is configured
func (c *Config) ModelForLanguage(code string) string {
	if c.Translation.Backend.Models == nil {
		return ""
	}
	return c.Translation.Backend.Models[code]
}

// PhraseTableForLanguage returns the phrase dictionary for a target language,
// or nil when no table is configured
func (c *Config) PhraseTableForLanguage(code string) map[string]string {
	if c.Translation.PhraseTables == nil {
		return nil
	}
	return c.Translation.PhraseTables[code]
}

// Redacted returns a copy of the config with secrets masked, suitable for
// the configz dump endpoint.
func (c *Config) Redacted() *Config {
	redacted := *c
	if redacted.Server.SessionSecret != "" {
		redacted.Server.SessionSecret = "[REDACTED]"
	}
	if redacted.Redis.Password != "" {
		redacted.Redis.Password = "[REDACTED]"
	}
	return &redacted
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	// Override with environment variables
	config.overrideFromEnv()
	config.applyDefaults()

	return config, nil
}

// applyDefaults fills in defaults for values the config file left unset
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.Translation.MaxTextLength == 0 {
		c.Translation.MaxTextLength = DefaultMaxTextLength
	}
	if c.Translation.MaxBatchSize == 0 {
		c.Translation.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.Translation.DefaultStyle == "" {
		c.Translation.DefaultStyle = DefaultStyle
	}
	if len(c.Translation.Styles) == 0 {
		c.Translation.Styles = []string{"general", "formal", "casual", "technical", "literary"}
	}
	if c.Translation.Backend.Timeout == 0 {
		c.Translation.Backend.Timeout = DefaultBackendTimeout
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = DefaultRateLimitWindow
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = DefaultRateLimitMax
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if c.ContextStore.MaxHistory == 0 {
		c.ContextStore.MaxHistory = DefaultContextMaxHistory
	}
	if c.ContextStore.ContextWindow == 0 {
		c.ContextStore.ContextWindow = DefaultContextWindow
	}
	if c.ContextStore.TTL == 0 {
		c.ContextStore.TTL = DefaultContextTTL
	}
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		// Get the yaml tag for the field
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if field.Type() == reflect.TypeOf(time.Duration(0)) {
					if d, err := time.ParseDuration(envVal); err == nil {
						field.SetInt(int64(d))
					}
				} else if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if uintVal, err := strconv.ParseUint(envVal, 10, 64); err == nil {
					field.SetUint(uintVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		case reflect.Ptr:
			// Handle pointer to struct
			if !field.IsNil() && field.Elem().Kind() == reflect.Struct {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file with potential local overrides
func loadConfigWithOverrides() (result0 *Config, err error) {
	// Try to load from environment variable first
	if envPath := os.Getenv("LINGUA_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	// If no environment variable is set, try default config.yaml
	return loadConfigFromFile("config.yaml")
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
