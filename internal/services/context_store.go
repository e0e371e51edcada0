package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"linguatranslate/internal/config"
	"linguatranslate/internal/models"
	"linguatranslate/internal/observability"
	"linguatranslate/internal/storage"
)

// SessionContextStore tracks recent exchanges per conversation session and
// renders them into a context string for the resolver. Storage failures
// degrade to an empty context; context is an enhancement, never a
// prerequisite.
type SessionContextStore struct {
	store         storage.Store
	maxHistory    int
	contextWindow int
	ttl           time.Duration
	logger        *observability.Logger

	// sessionLocks serializes the append+trim read-modify-write per
	// session; without it two concurrent exchanges can lose one.
	sessionLocks [64]sync.Mutex
}

// NewSessionContextStore creates a context store over the given storage.
func NewSessionContextStore(store storage.Store, cfg *config.ContextStoreConfig, logger *observability.Logger) *SessionContextStore {
	return &SessionContextStore{
		store:         store,
		maxHistory:    cfg.MaxHistory,
		contextWindow: cfg.ContextWindow,
		ttl:           cfg.TTL,
		logger:        logger,
	}
}

func contextKey(sessionID string) string {
	return "context:" + sessionID
}

func (s *SessionContextStore) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.sessionLocks[h.Sum32()%uint32(len(s.sessionLocks))]
}

// GetHistory returns the retained history for a session, or an empty history
// when none exists.
func (s *SessionContextStore) GetHistory(ctx context.Context, sessionID string) (history *models.SessionHistory, err error) {
	ctx, span := observability.TraceContextFunction(ctx, "GetHistory",
		observability.AttributeSessionID(sessionID),
	)
	defer observability.FinishSpan(span, &err)

	empty := &models.SessionHistory{SessionID: sessionID}
	if sessionID == "" {
		return empty, nil
	}

	data, found, err := s.store.Get(ctx, contextKey(sessionID))
	if err != nil {
		s.logger.Warn(ctx, "Context lookup failed, returning empty history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return empty, nil
	}
	if !found {
		return empty, nil
	}

	var stored models.SessionHistory
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn(ctx, "Context entry is not valid JSON, returning empty history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return empty, nil
	}
	return &stored, nil
}

// GetContext renders the most recent exchanges for a session, oldest first,
// as "Previous: <user_text> -> <translation>" segments joined by " | ".
func (s *SessionContextStore) GetContext(ctx context.Context, sessionID string) (rendered string, err error) {
	ctx, span := observability.TraceContextFunction(ctx, "GetContext",
		observability.AttributeSessionID(sessionID),
	)
	defer observability.FinishSpan(span, &err)

	if sessionID == "" {
		return "", nil
	}

	history, err := s.GetHistory(ctx, sessionID)
	if err != nil || history == nil || len(history.Exchanges) == 0 {
		return "", nil
	}

	exchanges := history.Exchanges
	if s.contextWindow > 0 && len(exchanges) > s.contextWindow {
		exchanges = exchanges[len(exchanges)-s.contextWindow:]
	}

	segments := make([]string, 0, len(exchanges))
	for _, exchange := range exchanges {
		segments = append(segments, fmt.Sprintf("Previous: %s -> %s", exchange.UserText, exchange.Translation))
	}
	return strings.Join(segments, " | "), nil
}

// AddExchange records a completed exchange for a session, trimming history
// to the configured bound and refreshing the session TTL.
func (s *SessionContextStore) AddExchange(ctx context.Context, sessionID string, exchange models.Exchange) (err error) {
	ctx, span := observability.TraceContextFunction(ctx, "AddExchange",
		observability.AttributeSessionID(sessionID),
		observability.AttributeTargetLang(exchange.TargetLang),
	)
	defer observability.FinishSpan(span, &err)

	if sessionID == "" {
		return nil
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.GetHistory(ctx, sessionID)
	if err != nil || history == nil {
		history = &models.SessionHistory{SessionID: sessionID}
	}

	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}
	history.Exchanges = append(history.Exchanges, exchange)
	if s.maxHistory > 0 && len(history.Exchanges) > s.maxHistory {
		history.Exchanges = history.Exchanges[len(history.Exchanges)-s.maxHistory:]
	}
	history.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(history)
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, contextKey(sessionID), data, s.ttl); err != nil {
		s.logger.Warn(ctx, "Failed to store session context", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil
	}
	return nil
}
