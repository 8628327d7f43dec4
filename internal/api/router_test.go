package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/sport-hall-booking/internal/auth"
)

func newTestRouter(t *testing.T, logBuf *bytes.Buffer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(Config{
		Logger:     slog.New(slog.NewTextHandler(logBuf, nil)),
		JWTManager: auth.NewJWTManager("secret", time.Hour),
	})
}

func TestHealthAndMetrics(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hallbooking_http_requests_total")

	assert.Contains(t, logs.String(), "path=/healthz")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	for _, path := range []string{"/v1/bookings", "/v1/me/bookings", "/v1/bookings/pending"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestAllowedOrigins(t *testing.T) {
	assert.Contains(t, allowedOrigins(false, ""), "http://localhost:3000")
	assert.Equal(t, []string{"https://halls.example.org", "https://admin.example.org"},
		allowedOrigins(true, "https://halls.example.org, https://admin.example.org,"))
}
