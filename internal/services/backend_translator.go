package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"linguatranslate/internal/config"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/serviceinterfaces"
	contextutils "linguatranslate/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// HTTPBackendTranslator calls the translation model backend over HTTP.
type HTTPBackendTranslator struct {
	baseURL    string
	httpClient *http.Client
	logger     *observability.Logger
}

// NewHTTPBackendTranslator creates a backend translator for the configured
// model backend.
func NewHTTPBackendTranslator(cfg *config.BackendConfig, logger *observability.Logger) *HTTPBackendTranslator {
	return &HTTPBackendTranslator{
		baseURL: cfg.URL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// IsAvailable reports whether a backend URL is configured.
func (t *HTTPBackendTranslator) IsAvailable() bool {
	return t.baseURL != ""
}

// Translate sends a translation request to the backend model.
func (t *HTTPBackendTranslator) Translate(ctx context.Context, req serviceinterfaces.BackendTranslateRequest) (result *serviceinterfaces.BackendTranslateResponse, err error) {
	ctx, span := observability.TraceBackendFunction(ctx, "Translate",
		observability.AttributeSourceLang(req.SourceLang),
		observability.AttributeTargetLang(req.TargetLang),
		observability.AttributeTextLength(len(req.Text)),
		attribute.String("backend.model", req.Model),
	)
	defer observability.FinishSpan(span, &err)

	if !t.IsAvailable() {
		return nil, contextutils.ErrBackendUnavailable
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to marshal backend request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to create backend request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrBackendUnavailable, "backend request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.logger.Warn(ctx, "Failed to close backend response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, contextutils.WrapErrorf(contextutils.ErrBackendUnavailable, "backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var backendResp serviceinterfaces.BackendTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&backendResp); err != nil {
		return nil, contextutils.WrapError(err, "failed to decode backend response")
	}
	if backendResp.TranslatedText == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeBackendUnavailable, contextutils.SeverityWarn, "Backend returned an empty translation", fmt.Sprintf("model=%s", req.Model))
	}
	if backendResp.Model == "" {
		backendResp.Model = req.Model
	}

	return &backendResp, nil
}

// NoopBackendTranslator is used when no model backend is configured. Every
// call reports the backend unavailable so the resolver falls through to the
// placeholder layer.
type NoopBackendTranslator struct{}

// NewNoopBackendTranslator creates a backend translator that never serves.
func NewNoopBackendTranslator() *NoopBackendTranslator {
	return &NoopBackendTranslator{}
}

// IsAvailable always reports false.
func (t *NoopBackendTranslator) IsAvailable() bool {
	return false
}

// Translate always fails with a backend-unavailable error.
func (t *NoopBackendTranslator) Translate(_ context.Context, _ serviceinterfaces.BackendTranslateRequest) (*serviceinterfaces.BackendTranslateResponse, error) {
	return nil, contextutils.ErrBackendUnavailable
}
