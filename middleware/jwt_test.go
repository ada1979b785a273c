package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finanalyst/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withJWT(t *testing.T) {
	t.Helper()
	config.GlobalConfig = &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{Secret: "test-jwt-secret-key"},
	}
	InitJWT(config.GlobalConfig)
	t.Cleanup(func() { config.GlobalConfig = nil })
}

func TestTokenRoundTrip(t *testing.T) {
	withJWT(t)

	token, err := GenerateToken(42, "analyst", 24*time.Hour)
	require.NoError(t, err)
	require.Greater(t, len(token), 20)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "analyst", claims.Username)
}

func TestParseToken_Invalid(t *testing.T) {
	withJWT(t)

	for _, bad := range []string{
		"",
		"not.a.valid.jwt",
		"eyJhbGciOiJmb29iIn0.xxxx.yyyy",
	} {
		_, err := ParseToken(bad)
		assert.Error(t, err, "token=%q", bad)
	}
}

func TestJWTAuth(t *testing.T) {
	withJWT(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.String(200, "id:%d", GetCurrentUserID(c))
	})

	do := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/protected", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// 缺失、非 Bearer、空 Bearer 均拒绝
	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Basic xyz").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer ").Code)

	token, err := GenerateToken(7, "user7", time.Hour)
	require.NoError(t, err)
	w := do("Bearer " + token)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "id:7", w.Body.String())
}

func TestGetCurrentUserID_NoContextValue(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), GetCurrentUserID(c))

	c.Set("userID", uint(99))
	assert.Equal(t, uint(99), GetCurrentUserID(c))
}
