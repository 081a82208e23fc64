package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/admin"
	"github.com/ringtoss/backend/internal/auth"
	"github.com/ringtoss/backend/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session": c.GetString(SessionIDKey)})
	})
	r.GET("/sessions/:id", handlers...)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionAuth(t *testing.T) {
	iss := auth.NewIssuer("secret", time.Hour)
	r := newRouter(SessionAuth(iss))
	token, _, err := iss.Issue("s1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/s1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"s1"`)

	req = httptest.NewRequest(http.MethodGet, "/sessions/s1?token="+token, nil)
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/s2?token="+token, nil)
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/s1?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestAdminAuth(t *testing.T) {
	hash, err := admin.HashAdminToken("a-very-long-admin-token")
	require.NoError(t, err)
	r := newRouter(AdminAuth(hash))

	req := httptest.NewRequest(http.MethodGet, "/sessions/x", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/x", nil)
	req.Header.Set("X-Admin-Token", "a-very-long-admin-token")
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	unconfigured := newRouter(AdminAuth(""))
	req = httptest.NewRequest(http.MethodGet, "/sessions/x", nil)
	req.Header.Set("X-Admin-Token", "anything")
	assert.Equal(t, http.StatusServiceUnavailable, do(unconfigured, req).Code)
}

func TestWebSocketCORSCheck(t *testing.T) {
	cfg := &config.Config{Environment: "production", FrontendURL: "https://rings.example"}
	r := newRouter(WebSocketCORSCheck(cfg))

	upgrade := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/sessions/x", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		return req
	}

	assert.Equal(t, http.StatusOK, do(r, upgrade("https://rings.example")).Code)
	assert.Equal(t, http.StatusForbidden, do(r, upgrade("https://evil.example")).Code)
	assert.Equal(t, http.StatusOK, do(r, upgrade("")).Code)

	dev := newRouter(WebSocketCORSCheck(&config.Config{Environment: "development"}))
	assert.Equal(t, http.StatusOK, do(dev, upgrade("http://localhost:3000")).Code)
}
