package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/saicherry93479/little-loopies-fulfillment/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter() *gin.Engine {
	router := gin.New()
	router.GET("/protected",
		middleware.RequireAuth(),
		middleware.RequireRole(middleware.AdminRole, middleware.OperatorRole),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"actor": middleware.ActorID(c)})
		},
	)
	return router
}

func TestRequireAuth_NoIdentity(t *testing.T) {
	router := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_AllowsAdminAndOperator(t *testing.T) {
	router := protectedRouter()

	for _, role := range []string{middleware.AdminRole, middleware.OperatorRole} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-User-ID", "user-1")
		req.Header.Set("X-User-Role", role)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, role)
	}
}

func TestRequireRole_RejectsOtherRoles(t *testing.T) {
	router := protectedRouter()

	for _, role := range []string{"customer", ""} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-User-ID", "user-1")
		req.Header.Set("X-User-Role", role)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code, "role %q", role)
	}
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	router := protectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "user_id", Value: "user-2"})
	req.AddCookie(&http.Cookie{Name: "user_role", Value: middleware.OperatorRole})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-2")
}
