package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("lingua-translate")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("lingua-translate")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TracePipelineFunction starts a new span for a translation pipeline function.
func TracePipelineFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "pipeline", functionName, attributes...)
}

// TraceResolverFunction starts a new span for a translation resolver function.
func TraceResolverFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "resolver", functionName, attributes...)
}

// TraceBackendFunction starts a new span for a backend model call.
func TraceBackendFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "backend", functionName, attributes...)
}

// TraceCacheFunction starts a new span for a response cache function.
func TraceCacheFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "cache", functionName, attributes...)
}

// TraceContextFunction starts a new span for a conversation context function.
func TraceContextFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "context", functionName, attributes...)
}

// TraceRateLimitFunction starts a new span for a rate limiter function.
func TraceRateLimitFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "ratelimit", functionName, attributes...)
}

// TraceStorageFunction starts a new span for a storage function.
func TraceStorageFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "storage", functionName, attributes...)
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// AttributeSourceLang returns a tracing attribute for a source language.
func AttributeSourceLang(lang string) attribute.KeyValue {
	return attribute.String("translation.source_lang", lang)
}

// AttributeTargetLang returns a tracing attribute for a target language.
func AttributeTargetLang(lang string) attribute.KeyValue {
	return attribute.String("translation.target_lang", lang)
}

// AttributeStyle returns a tracing attribute for a translation style.
func AttributeStyle(style string) attribute.KeyValue {
	return attribute.String("translation.style", style)
}

// AttributeMethod returns a tracing attribute for a resolution method.
func AttributeMethod(method string) attribute.KeyValue {
	return attribute.String("translation.method", method)
}

// AttributeTextLength returns a tracing attribute for the input text length.
func AttributeTextLength(length int) attribute.KeyValue {
	return attribute.Int("translation.text_length", length)
}

// AttributeBatchSize returns a tracing attribute for a batch size.
func AttributeBatchSize(size int) attribute.KeyValue {
	return attribute.Int("translation.batch_size", size)
}

// AttributeSessionID returns a tracing attribute for a session ID.
func AttributeSessionID(id string) attribute.KeyValue {
	return attribute.String("session.id", id)
}

// AttributeClientID returns a tracing attribute for a client ID.
func AttributeClientID(id string) attribute.KeyValue {
	return attribute.String("client.id", id)
}

// AttributeCacheHit returns a tracing attribute for a cache hit or miss.
func AttributeCacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool("cache.hit", hit)
}
