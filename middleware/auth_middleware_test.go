package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/clients"
	"storefront-service/common/auth"
)

const secret = "test-secret"

func token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(auth.NewTokenValidator(secret)))
	authed.GET("/me", func(c *gin.Context) {
		uid, err := GetUserID(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		tok, _ := clients.ContextTokenSource{}.Token(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": uid, "email": GetEmail(c), "has_token": tok != ""})
	})
	authed.GET("/seller", RequireRole("seller"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter()

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Basic abc").Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("nope"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer "+bad).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := do(r, "/me", "Bearer "+token(t, jwt.MapClaims{"sub": "u1", "email": "jane@example.com"}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"u1","email":"jane@example.com","has_token":true}`, w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter()

	buyer := token(t, jwt.MapClaims{"sub": "u1", "role": "buyer"})
	assert.Equal(t, http.StatusForbidden, do(r, "/seller", "Bearer "+buyer).Code)

	seller := token(t, jwt.MapClaims{"sub": "u2", "role": "seller"})
	assert.Equal(t, http.StatusNoContent, do(r, "/seller", "bearer "+seller).Code)
}
