// Package di provides a dependency injection container for managing service
// lifecycle and dependencies.
package di

import (
	"context"
	"sync"

	"linguatranslate/internal/config"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/serviceinterfaces"
	"linguatranslate/internal/services"
	"linguatranslate/internal/storage"
	contextutils "linguatranslate/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetPipeline() (serviceinterfaces.TranslationPipeline, error)
	GetRateLimiter() (serviceinterfaces.RateLimiter, error)
	GetResponseCache() (serviceinterfaces.ResponseCache, error)
	GetContextStore() (serviceinterfaces.ContextStore, error)
	GetBackendTranslator() (serviceinterfaces.BackendTranslator, error)
	GetStore() storage.Store
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	store         storage.Store
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Initialize the storage backend: Redis when configured, in-process
	// memory otherwise
	if sc.cfg.Redis.Enabled {
		redisStore, err := storage.NewRedisStore(&sc.cfg.Redis, "")
		if err != nil {
			return contextutils.WrapError(err, "failed to initialize redis storage")
		}
		sc.store = redisStore
		sc.logger.Info(ctx, "Using redis storage backend", map[string]interface{}{
			"addr": sc.cfg.Redis.Addr,
		})
	} else {
		sc.store = storage.NewMemoryStore(sc.cfg.Cache.MaxEntries)
		sc.logger.Info(ctx, "Using in-memory storage backend", map[string]interface{}{
			"max_entries": sc.cfg.Cache.MaxEntries,
		})
	}
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return sc.store.Close()
	})

	sc.initializeServices(ctx)

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetPipeline returns the translation pipeline
func (sc *ServiceContainer) GetPipeline() (serviceinterfaces.TranslationPipeline, error) {
	return GetServiceAs[serviceinterfaces.TranslationPipeline](sc, "pipeline")
}

// GetRateLimiter returns the rate limiter
func (sc *ServiceContainer) GetRateLimiter() (serviceinterfaces.RateLimiter, error) {
	return GetServiceAs[serviceinterfaces.RateLimiter](sc, "rate_limiter")
}

// GetResponseCache returns the response cache
func (sc *ServiceContainer) GetResponseCache() (serviceinterfaces.ResponseCache, error) {
	return GetServiceAs[serviceinterfaces.ResponseCache](sc, "response_cache")
}

// GetContextStore returns the conversation context store
func (sc *ServiceContainer) GetContextStore() (serviceinterfaces.ContextStore, error) {
	return GetServiceAs[serviceinterfaces.ContextStore](sc, "context_store")
}

// GetBackendTranslator returns the backend translator
func (sc *ServiceContainer) GetBackendTranslator() (serviceinterfaces.BackendTranslator, error) {
	return GetServiceAs[serviceinterfaces.BackendTranslator](sc, "backend_translator")
}

// GetStore returns the storage backend
func (sc *ServiceContainer) GetStore() storage.Store {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.store
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var errors []error

	// Shutdown in reverse order of initialization
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errors)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	// Backend translator: HTTP when a backend URL is configured, noop
	// otherwise
	var backend serviceinterfaces.BackendTranslator
	if sc.cfg.Translation.Backend.URL != "" {
		backend = services.NewHTTPBackendTranslator(&sc.cfg.Translation.Backend, sc.logger)
	} else {
		backend = services.NewNoopBackendTranslator()
	}
	sc.services["backend_translator"] = backend

	limiter := services.NewSlidingWindowLimiter(sc.store, &sc.cfg.RateLimit, sc.logger)
	sc.services["rate_limiter"] = limiter

	cache := services.NewTranslationCache(sc.store, &sc.cfg.Cache, sc.logger)
	sc.services["response_cache"] = cache

	contextStore := services.NewSessionContextStore(sc.store, &sc.cfg.ContextStore, sc.logger)
	sc.services["context_store"] = contextStore

	resolver := services.NewLayeredResolver(sc.cfg, backend, sc.logger)
	sc.services["resolver"] = resolver

	pipeline := services.NewTranslationPipeline(sc.cfg, limiter, cache, contextStore, resolver, sc.logger)
	sc.services["pipeline"] = pipeline
}
