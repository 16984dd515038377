package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/common/auth"
	"storefront-service/controllers"
)

const testSecret = "routes-secret"

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, Controllers{
		Health: controllers.NewHealthController(map[string]controllers.Pinger{
			"redis": func(ctx context.Context) error { return nil },
		}),
	}, auth.NewTokenValidator(testSecret))
	return r
}

func bearer(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(t).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","dependencies":{"redis":"ok"}}`, w.Body.String())
}

func TestRoutes_CartRequiresSession(t *testing.T) {
	r := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutes_SellerRoleEnforced(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/seller/products", nil)
	req.Header.Set("Authorization", bearer(t, jwt.MapClaims{"sub": "u1", "role": "customer"}))
	w := httptest.NewRecorder()
	newRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
