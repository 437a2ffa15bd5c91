package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/handler"
	"bankmetrics/internal/logging"
	"bankmetrics/internal/metrics"
	"bankmetrics/internal/router"
	"bankmetrics/internal/service"
	"bankmetrics/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, authSvc service.AuthService) (*gin.Engine, *mocks.MockResultService) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/ws", 0o755))

	reg := prometheus.NewRegistry()
	metrics.New(reg)

	resultSvc := new(mocks.MockResultService)
	r := router.Setup(
		router.Options{AuthService: authSvc, Gatherer: reg, Logger: logging.Discard()},
		handler.NewAnalysisHandler(new(mocks.MockAnalysisService)),
		handler.NewResultHandler(resultSvc, 5),
		handler.NewHealthHandler(fs, "/ws", nil),
	)
	return r, resultSvc
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r, _ := setupRouter(t, nil)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_WindowRouteOpenWithoutAuth(t *testing.T) {
	r, resultSvc := setupRouter(t, nil)
	resultSvc.On("Window", "Q12025", 2).Return([]string{"Q42024", "Q12025"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/quarters/Q12025/window?count=2", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `["Q42024","Q12025"]`)
}

func TestRouter_APIRequiresTokenWhenAuthEnabled(t *testing.T) {
	authSvc := new(mocks.MockAuthService)
	r, resultSvc := setupRouter(t, authSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/results/Q12025", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	authSvc.On("ValidateToken", "good").
		Return(&service.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "ops"}}, nil)
	resultSvc.On("Get", mock.Anything, "Q12025").Return(nil, domain.ErrResultNotFound)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/results/Q12025", http.NoBody)
	req.Header.Set("Authorization", "Bearer good")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/nope", http.NoBody)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}
