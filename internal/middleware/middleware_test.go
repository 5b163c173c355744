package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gearguard/gearguard-api/internal/models"
	"github.com/gearguard/gearguard-api/internal/service"
)

const testSecret = "middleware-secret"

type userLookup map[string]*models.User

func (u userLookup) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func testToken(t *testing.T, subject string) string {
	t.Helper()
	claims := &models.JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestRouter(guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(userLookup{
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin, Active: true},
		"tech-1":  {ID: "tech-1", Role: models.RoleTechnician, Active: true},
		"gone-1":  {ID: "gone-1", Role: models.RoleManager, Active: false},
	}, nil, service.AuthConfig{Secret: testSecret})

	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(auth)}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserIDKey))
	})
	router.GET("/protected", handlers...)
	return router
}

func call(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTMiddleware(t *testing.T) {
	router := newTestRouter()

	ok := call(router, "Bearer "+testToken(t, "tech-1"))
	require.Equal(t, http.StatusOK, ok.Code)
	require.Equal(t, "tech-1", ok.Body.String())

	require.Equal(t, http.StatusUnauthorized, call(router, "").Code)
	require.Equal(t, http.StatusUnauthorized, call(router, "Basic abc").Code)
	require.Equal(t, http.StatusUnauthorized, call(router, "Bearer garbage").Code)
	require.Equal(t, http.StatusUnauthorized, call(router, "Bearer "+testToken(t, "ghost")).Code)
	require.Equal(t, http.StatusForbidden, call(router, "Bearer "+testToken(t, "gone-1")).Code)
}

func TestRequireRoles(t *testing.T) {
	router := newTestRouter(RequireRoles(models.RolesRunJobs...))

	require.Equal(t, http.StatusOK, call(router, "Bearer "+testToken(t, "admin-1")).Code)
	require.Equal(t, http.StatusForbidden, call(router, "Bearer "+testToken(t, "tech-1")).Code)
}

func TestRequireMinimumRole(t *testing.T) {
	router := newTestRouter(RequireMinimumRole(models.RoleTechnician))
	require.Equal(t, http.StatusOK, call(router, "Bearer "+testToken(t, "tech-1")).Code)

	router = newTestRouter(RequireMinimumRole(models.RoleManager))
	require.Equal(t, http.StatusForbidden, call(router, "Bearer "+testToken(t, "tech-1")).Code)
	require.Equal(t, http.StatusOK, call(router, "Bearer "+testToken(t, "admin-1")).Code)
}

func TestGuardWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	require.Equal(t, http.StatusUnauthorized, call(router, "").Code)
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/requests/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/requests/abc", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	count, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMetricsMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/nope/123", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
	expected := `
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",path="unmatched",status="404"} 1
`
	require.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "http_requests_total"))
}
