package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	contextutils "linguatranslate/internal/utils"
)

// Session keys for storing request identity
const (
	// SessionIDKey is the key used to store the conversation session ID in the cookie session
	SessionIDKey = "session_id"
)

// RequestIdentity returns a middleware that establishes caller and session
// identity for every request. The caller ID used for admission control is the
// client IP. The conversation session ID comes from the cookie session when
// present; a request may also pin an explicit session via the X-Session-ID
// header, which takes precedence and is persisted back to the cookie session.
func RequestIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			if stored, ok := session.Get(SessionIDKey).(string); ok && stored != "" {
				sessionID = stored
			}
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		if stored, ok := session.Get(SessionIDKey).(string); !ok || stored != sessionID {
			session.Set(SessionIDKey, sessionID)
			// Session save failures are not fatal; the ID still applies to this request
			_ = session.Save()
		}

		ctx := contextutils.WithClientID(c.Request.Context(), c.ClientIP())
		ctx = contextutils.WithSessionID(ctx, sessionID)
		c.Request = c.Request.WithContext(ctx)

		c.Set(SessionIDKey, sessionID)

		c.Next()
	}
}
