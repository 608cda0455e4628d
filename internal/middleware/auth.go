package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/models"
)

// AdminKey is the gin context key holding the authenticated admin.
const AdminKey = "admin"

// TokenVerifier resolves an admin session token to its admin.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.AdminIdentity, error)
}

// AdminAuth rejects requests without a valid admin token.
func AdminAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Authenticate(c, verifier); !ok {
			return
		}
		c.Next()
	}
}

// Authenticate verifies the request's admin token and stores the admin in
// the context. On failure it aborts with 401 and returns false.
func Authenticate(c *gin.Context, verifier TokenVerifier) (models.AdminIdentity, bool) {
	token := RequestToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
		return models.AdminIdentity{}, false
	}

	admin, err := verifier.Verify(c.Request.Context(), token)
	if err != nil {
		logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("admin token rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return models.AdminIdentity{}, false
	}

	c.Set(AdminKey, admin)
	c.Set(logging.FieldAdminID, admin.ID)
	return admin, true
}

// RequestToken returns the bearer token of the Authorization header or,
// when absent, the "token" field of a JSON body. The body stays readable
// through ShouldBindBodyWith.
func RequestToken(c *gin.Context) string {
	if token := BearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}
	return body.Token
}

// BearerToken extracts the token of a "Bearer <token>" header value.
func BearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AdminFromContext returns the admin stored by Authenticate.
func AdminFromContext(c *gin.Context) (models.AdminIdentity, bool) {
	val, ok := c.Get(AdminKey)
	if !ok {
		return models.AdminIdentity{}, false
	}
	admin, ok := val.(models.AdminIdentity)
	return admin, ok
}
