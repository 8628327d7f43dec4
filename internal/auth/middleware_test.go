package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(m *JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(m), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "admin": IsAdmin(c)})
	})
	r.POST("/decide", AuthRequired(m), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	r := newTestRouter(m)

	token, err := m.GenerateAccessToken("u1", false)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"u1","admin":false}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := do(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Minute)
		forged, err := other.GenerateAccessToken("u1", true)
		require.NoError(t, err)
		w := do(r, http.MethodGet, "/me", forged)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewJWTManager("test-secret", -time.Minute)
		expired, err := short.GenerateAccessToken("u1", false)
		require.NoError(t, err)
		w := do(r, http.MethodGet, "/me", expired)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)
	r := newTestRouter(m)

	userToken, _ := m.GenerateAccessToken("u1", false)
	adminToken, _ := m.GenerateAccessToken("admin1", true)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/decide", userToken).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/decide", adminToken).Code)
}
