package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"linguatranslate/internal/config"
	"linguatranslate/internal/models"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/storage"
)

// TranslationCache caches resolved translations keyed by a fingerprint of
// the request. Storage failures degrade to cache misses.
type TranslationCache struct {
	store  storage.Store
	ttl    time.Duration
	logger *observability.Logger
}

// NewTranslationCache creates a response cache over the given store.
func NewTranslationCache(store storage.Store, cfg *config.CacheConfig, logger *observability.Logger) *TranslationCache {
	return &TranslationCache{
		store:  store,
		ttl:    cfg.TTL,
		logger: logger,
	}
}

// CacheKey computes the fingerprint for a translation request. Each field is
// length-prefixed before hashing so distinct tuples can never collide by
// concatenation. The text is hashed exactly as submitted; only the resolver
// normalizes case.
func CacheKey(req *models.TranslationRequest) string {
	h := sha256.New()
	for _, field := range []string{req.SourceLang, req.TargetLang, req.Style, req.Text} {
		h.Write([]byte(strconv.Itoa(len(field))))
		h.Write([]byte(":"))
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for the request, or nil on a miss. The
// returned result is a clone annotated with Cached=true.
func (c *TranslationCache) Get(ctx context.Context, req *models.TranslationRequest) (result *models.TranslationResult, err error) {
	ctx, span := observability.TraceCacheFunction(ctx, "Get",
		observability.AttributeTargetLang(req.TargetLang),
	)
	defer observability.FinishSpan(span, &err)

	start := time.Now()
	key := "cache:" + CacheKey(req)

	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "Cache lookup failed, treating as miss", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}
	if !found {
		span.SetAttributes(observability.AttributeCacheHit(false))
		return nil, nil
	}

	var envelope models.CacheEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logger.Warn(ctx, "Cache entry is not valid JSON, treating as miss", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}
	if envelope.SchemaVersion != models.CacheSchemaVersion || envelope.Result == nil {
		c.logger.Debug(ctx, "Cache entry has stale schema, treating as miss", map[string]interface{}{
			"schema_version": envelope.SchemaVersion,
		})
		return nil, nil
	}

	span.SetAttributes(observability.AttributeCacheHit(true))
	hit := envelope.Result.Clone()
	hit.Cached = true
	// Replays report the replay latency, not the original resolution time.
	hit.Latency = time.Since(start).Seconds()
	return hit, nil
}

// Put stores the result for the request. Error-method results are never
// cached; a transient failure must not be replayed for the TTL.
func (c *TranslationCache) Put(ctx context.Context, req *models.TranslationRequest, result *models.TranslationResult) (err error) {
	ctx, span := observability.TraceCacheFunction(ctx, "Put",
		observability.AttributeTargetLang(req.TargetLang),
		observability.AttributeMethod(string(result.Method)),
	)
	defer observability.FinishSpan(span, &err)

	if result.Method == models.MethodError {
		return nil
	}

	// The key excludes the session, so the stored result must not carry
	// session-scoped fields: one caller's conversation history must never
	// replay into another caller's response.
	stored := result.Clone()
	stored.Context = ""

	envelope := models.CacheEnvelope{
		SchemaVersion: models.CacheSchemaVersion,
		Result:        stored,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	key := "cache:" + CacheKey(req)
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn(ctx, "Failed to store cache entry", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return nil
}
