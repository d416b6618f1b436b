package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencyhub/internal/complexity"
	"agencyhub/internal/handler"
	"agencyhub/pkg/trace"
	"agencyhub/pkg/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "router-secret"

func newTestRouter(checks map[string]ReadinessCheck) *gin.Engine {
	log := zap.NewNop()
	h := Handlers{
		Auth:         handler.NewAuthHandler(nil, log),
		Lead:         handler.NewLeadHandler(nil, nil, nil, nil, log),
		Project:      handler.NewProjectHandler(nil, log),
		Analysis:     handler.NewAnalysisHandler(complexity.DefaultRules(), log),
		Notification: handler.NewNotificationHandler(nil, nil, log),
	}
	return NewRouter(h, testSecret, checks, log)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_AdminRoutesNeedToken(t *testing.T) {
	r := newTestRouter(nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/leads", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/admin/outbox/replay", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	token, err := util.GenerateJWT("admin", testSecret, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(adminContextKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestRouter_HealthAndReadiness(t *testing.T) {
	r := newTestRouter(map[string]ReadinessCheck{
		"db": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)

	r = newTestRouter(map[string]ReadinessCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis_not_ready")
}

func TestRouter_PublicAnalyzeAndTraceHeader(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/ai-analyze", nil)
	req.Header.Set(trace.HeaderName, "trace-123")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get(trace.HeaderName))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
