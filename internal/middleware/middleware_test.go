package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contentgen_backend/internal/auth"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/testutils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(resolver auth.IdentityResolver) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/me", AuthMiddleware(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":    GetUserID(c),
			"logUserId": logger.GetUserID(c.Request.Context()),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	r := newAuthRouter(tokens)

	token, err := tokens.GenerateToken("user-7", "u@example.com")
	require.NoError(t, err)

	rec := testutils.SendRequest(t, r, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := testutils.DecodeJSON(t, rec)
	assert.Equal(t, "user-7", body["userId"])
	assert.Equal(t, "user-7", body["logUserId"])

	rec = testutils.SendRequest(t, r, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", testutils.ErrorCode(t, rec))

	rec = testutils.SendRequest(t, r, http.MethodGet, "/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", testutils.ErrorCode(t, rec))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := auth.NewTokenManager("test-secret", -time.Minute)
	token, err := expired.GenerateToken("user-7", "")
	require.NoError(t, err)

	r := newAuthRouter(auth.NewTokenManager("test-secret", time.Hour))
	rec := testutils.SendRequest(t, r, http.MethodGet, "/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", testutils.ErrorCode(t, rec))
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-abc", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-abc", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("http://localhost:3000/"))
	r.POST("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDBMiddleware(t *testing.T) {
	db, _ := testutils.SetupMockDB(t)

	r := gin.New()
	r.Use(DBMiddleware(db))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Get("db")
		c.JSON(http.StatusOK, gin.H{"hasDB": ok})
	})

	rec := testutils.SendRequest(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, true, testutils.DecodeJSON(t, rec)["hasDB"])
}
