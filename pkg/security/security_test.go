package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func doRequest(router *gin.Engine, method, origin, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSAllowedOrigin(t *testing.T) {
	router := newTestRouter(CORS([]string{"https://app.levelup.dev"}))

	w := doRequest(router, "GET", "https://app.levelup.dev", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.levelup.dev", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORSUnknownOrigin(t *testing.T) {
	router := newTestRouter(CORS([]string{"https://app.levelup.dev"}))

	w := doRequest(router, "GET", "https://evil.example.net", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(CORS([]string{"https://app.levelup.dev"}))

	w := doRequest(router, "OPTIONS", "https://app.levelup.dev", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, POST, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestSecureHeaders(t *testing.T) {
	router := newTestRouter(Secure())

	w := doRequest(router, "GET", "", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	router := newTestRouter(RateLimiter(2, time.Minute))

	assert.Equal(t, http.StatusOK, doRequest(router, "GET", "", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "GET", "", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "GET", "", "10.0.0.1:1234").Code)
}

func TestRateLimiterPerIP(t *testing.T) {
	router := newTestRouter(RateLimiter(1, time.Minute))

	assert.Equal(t, http.StatusOK, doRequest(router, "GET", "", "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "GET", "", "10.0.0.1:1234").Code)

	// 另一个来源不受影响
	assert.Equal(t, http.StatusOK, doRequest(router, "GET", "", "10.0.0.2:1234").Code)
}
