package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	"portfolio-chat/internal/models"
)

type stubVerifier struct {
	valid string
}

func (s stubVerifier) Verify(_ context.Context, token string) (models.AdminIdentity, error) {
	if token != s.valid {
		return models.AdminIdentity{}, errors.New("bad token")
	}
	return models.AdminIdentity{ID: "admin-1", Username: "root"}, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin", AdminAuth(stubVerifier{valid: "good"}), func(c *gin.Context) {
		admin, ok := AdminFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		var body struct {
			Action string `json:"action"`
		}
		_ = c.ShouldBindBodyWith(&body, binding.JSON)
		c.JSON(http.StatusOK, gin.H{"admin": admin.Username, "action": body.Action})
	})
	return r
}

func TestAdminAuthBearerHeader(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(`{"action":"getRoomStats"}`))
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin":"root"`)
}

func TestAdminAuthBodyTokenKeepsBodyReadable(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader(`{"token":"good","action":"deleteRoom"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"deleteRoom"`)
}

func TestAdminAuthRejects(t *testing.T) {
	r := newAuthRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization")

	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("abc"))
}

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	rl.cleanup(time.Now().Add(time.Second))
	assert.Empty(t, rl.limiters)
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, time.Minute)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
