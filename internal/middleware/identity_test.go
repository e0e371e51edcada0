package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	contextutils "linguatranslate/internal/utils"
)

func setupIdentityRouter(t *testing.T) (*gin.Engine, *string, *string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cookie.NewStore([]byte("test-secret"))
	router := gin.New()
	router.Use(sessions.Sessions("test-session", store))
	router.Use(RequestIdentity())

	var gotClientID, gotSessionID string
	router.GET("/whoami", func(c *gin.Context) {
		gotClientID = contextutils.GetClientIDFromContext(c.Request.Context())
		gotSessionID = contextutils.GetSessionIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"session_id": gotSessionID})
	})

	return router, &gotClientID, &gotSessionID
}

func TestRequestIdentity_AssignsSessionAndClient(t *testing.T) {
	router, clientID, sessionID := setupIdentityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.7", *clientID)
	assert.NotEmpty(t, *sessionID)
}

func TestRequestIdentity_HeaderPinsSession(t *testing.T) {
	router, _, sessionID := setupIdentityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Session-ID", "pinned-session")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pinned-session", *sessionID)
}

func TestRequestIdentity_PersistsSessionAcrossRequests(t *testing.T) {
	router, _, sessionID := setupIdentityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)
	first := *sessionID
	assert.NotEmpty(t, first)

	// Replay the session cookie from the first response
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range w.Result().Cookies() {
		req2.AddCookie(c)
	}
	router.ServeHTTP(w2, req2)

	assert.Equal(t, first, *sessionID)
}
