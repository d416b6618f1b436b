package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencyhub/internal/apperr"
	"agencyhub/internal/complexity"
	"agencyhub/internal/model"
	"agencyhub/internal/notification"
	"agencyhub/internal/service/auth"
	"agencyhub/internal/service/project"
	"agencyhub/pkg/outbox"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

type fakeIntake struct{}

func (fakeIntake) Submit(_ context.Context, in model.LeadInput) (*model.Lead, error) {
	in, st, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	return &model.Lead{ID: "lead-1", ShortID: "AB12CD", Name: in.Name, ServiceType: st}, nil
}

type fakeLeadStore struct {
	leads map[string]model.Lead
}

func (s *fakeLeadStore) List(context.Context) []model.Lead {
	var out []model.Lead
	for _, l := range s.leads {
		out = append(out, l)
	}
	return out
}

func (s *fakeLeadStore) Get(_ context.Context, id string) (*model.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, fmt.Errorf("find lead: %w", apperr.ErrNotFound)
	}
	return &l, nil
}

func (s *fakeLeadStore) Update(_ context.Context, id string, patch model.LeadPatch) (*model.Lead, error) {
	if patch.Empty() {
		return nil, apperr.Validation("body", "no updatable fields provided")
	}
	l, ok := s.leads[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	l.Apply(patch)
	s.leads[id] = l
	return &l, nil
}

func (s *fakeLeadStore) Delete(_ context.Context, id string) error {
	if _, ok := s.leads[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

type fakeConverter struct{ err error }

func (c fakeConverter) Convert(_ context.Context, leadID string) (*model.Project, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	return &model.Project{ID: "p1", ShortID: "AB12CD", Status: model.StatusDiskusi, LeadID: &leadID}, true, nil
}

type fakeAttempts struct{}

func (fakeAttempts) FindByLeadID(context.Context, string) ([]model.NotificationAttempt, error) {
	return nil, nil
}

func leadRouter(converter LeadConverter) (*gin.Engine, *fakeLeadStore) {
	store := &fakeLeadStore{leads: map[string]model.Lead{"lead-1": {ID: "lead-1", ShortID: "AB12CD", Name: "Budi"}}}
	h := NewLeadHandler(fakeIntake{}, store, converter, fakeAttempts{}, zap.NewNop())

	r := gin.New()
	r.POST("/leads", h.Submit)
	r.GET("/leads", h.List)
	r.GET("/leads/:id", h.Get)
	r.PUT("/leads/:id", h.Update)
	r.DELETE("/leads/:id", h.Delete)
	r.POST("/leads/:id/convert", h.Convert)
	r.GET("/leads/:id/notifications", h.Notifications)
	return r, store
}

func TestLeadHandler_Submit(t *testing.T) {
	r, _ := leadRouter(fakeConverter{})

	w, body := doJSON(t, r, http.MethodPost, "/leads", map[string]string{
		"name": "Budi", "address": "Jakarta", "service_type": "website",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "AB12CD", body["short_id"])

	w, body = doJSON(t, r, http.MethodPost, "/leads", map[string]string{"name": "Budi", "service_type": "website"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "address", body["field"])

	w, _ = doJSON(t, r, http.MethodPost, "/leads", "{broken")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_CRUD(t *testing.T) {
	r, store := leadRouter(fakeConverter{})

	w, body := doJSON(t, r, http.MethodGet, "/leads", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["leads"], 1)

	w, _ = doJSON(t, r, http.MethodGet, "/leads/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPut, "/leads/lead-1", map[string]interface{}{"processed": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.leads["lead-1"].Processed)

	w, _ = doJSON(t, r, http.MethodPut, "/leads/lead-1", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = doJSON(t, r, http.MethodGet, "/leads/lead-1/notifications", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, body["attempts"])

	w, _ = doJSON(t, r, http.MethodDelete, "/leads/lead-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodDelete, "/leads/lead-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadHandler_Convert(t *testing.T) {
	r, _ := leadRouter(fakeConverter{})
	w, body := doJSON(t, r, http.MethodPost, "/leads/lead-1/convert", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["created"])
	assert.Equal(t, float64(10), body["progress"])

	r, _ = leadRouter(fakeConverter{err: fmt.Errorf("convert: %w", apperr.ErrConversionInProgress)})
	w, _ = doJSON(t, r, http.MethodPost, "/leads/lead-1/convert", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	r, _ = leadRouter(fakeConverter{err: apperr.Storage("insert project", fmt.Errorf("boom"))})
	w, body = doJSON(t, r, http.MethodPost, "/leads/lead-1/convert", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", body["error"])
}

type fakeProjectService struct {
	ProjectService
	statusErr error
}

func (f *fakeProjectService) SetStatus(_ context.Context, id, status string, _ bool) (*model.Project, bool, error) {
	if f.statusErr != nil {
		return nil, false, f.statusErr
	}
	st, err := model.ParseProjectStatus(status)
	if err != nil {
		return nil, false, err
	}
	return &model.Project{ID: id, Status: st}, true, nil
}

func (f *fakeProjectService) Progress(_ context.Context, code string) (*project.ProgressView, error) {
	if code != "AB12CD" {
		return nil, apperr.ErrNotFound
	}
	return &project.ProgressView{ShortID: code, Status: model.StatusTest, Progress: 90, Timeline: model.Timeline(model.StatusTest)}, nil
}

func TestProjectHandler_SetStatus(t *testing.T) {
	svc := &fakeProjectService{}
	h := NewProjectHandler(svc, zap.NewNop())
	r := gin.New()
	r.PUT("/projects/:id/status", h.SetStatus)

	w, body := doJSON(t, r, http.MethodPut, "/projects/p1/status", map[string]interface{}{"status": "Development"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["changed"])
	proj := body["project"].(map[string]interface{})
	assert.Equal(t, float64(60), proj["progress"])
	assert.Len(t, body["timeline"], 5)

	w, _ = doJSON(t, r, http.MethodPut, "/projects/p1/status", map[string]interface{}{"status": "Launch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.statusErr = fmt.Errorf("%w: Test -> Desain requires reopen", apperr.ErrInvalidTransition)
	w, _ = doJSON(t, r, http.MethodPut, "/projects/p1/status", map[string]interface{}{"status": "Desain"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_Progress(t *testing.T) {
	h := NewProjectHandler(&fakeProjectService{}, zap.NewNop())
	r := gin.New()
	r.GET("/progress/:short_id", h.Progress)

	w, body := doJSON(t, r, http.MethodGet, "/progress/AB12CD", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(90), body["progress"])

	w, _ = doJSON(t, r, http.MethodGet, "/progress/NOPE00", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalysisHandler(t *testing.T) {
	h := NewAnalysisHandler(complexity.DefaultRules(), zap.NewNop())
	r := gin.New()
	r.POST("/ai-analyze", h.Analyze)

	w, body := doJSON(t, r, http.MethodPost, "/ai-analyze", map[string]string{
		"name":                "Budi",
		"service_type":        "website",
		"project_description": "Toko online",
		"features":            "login, payment gateway, dashboard",
		"budget":              "25jt-50jt",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["analysis"], "Budi")
	assessment := body["assessment"].(map[string]interface{})
	assert.Equal(t, "High", assessment["tier"])

	w, body = doJSON(t, r, http.MethodPost, "/ai-analyze", "not json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, complexity.FallbackReply, body["analysis"])
}

func TestAnalysisHandler_GreetsInAgencyTime(t *testing.T) {
	h := NewAnalysisHandler(complexity.DefaultRules(), zap.NewNop())
	assert.Equal(t, model.WIB, h.now().Location())

	// 23:30 UTC is already morning in Jakarta.
	h.now = func() time.Time { return time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC).In(model.WIB) }
	r := gin.New()
	r.POST("/ai-analyze", h.Analyze)

	_, body := doJSON(t, r, http.MethodPost, "/ai-analyze", map[string]string{
		"name":         "Budi",
		"service_type": "website",
		"features":     "login",
	})
	assert.True(t, strings.HasPrefix(body["analysis"].(string), "Selamat pagi Budi!"))
}

type fakeFanout struct {
	got []model.Lead
}

func (f *fakeFanout) NotifyLeadFanout(_ context.Context, lead model.Lead) notification.FanoutResult {
	f.got = append(f.got, lead)
	return notification.FanoutResult{Mode: notification.ModeDirect, BusinessSent: true, ClientSkipped: lead.PhoneNumber == nil}
}

func TestNotificationHandler_Send(t *testing.T) {
	fanout := &fakeFanout{}
	store := &fakeLeadStore{leads: map[string]model.Lead{"lead-1": {ID: "lead-1", Name: "Budi"}}}
	h := NewNotificationHandler(fanout, store, zap.NewNop())
	r := gin.New()
	r.POST("/send-notification", h.Send)

	w, body := doJSON(t, r, http.MethodPost, "/send-notification", map[string]string{"lead_id": "lead-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	w, _ = doJSON(t, r, http.MethodPost, "/send-notification", map[string]string{
		"name": "Sari", "address": "Bandung", "service_type": "app", "phone_number": "0812",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, fanout.got, 2)
	assert.Equal(t, model.ServiceAplikasi, fanout.got[1].ServiceType)

	w, _ = doJSON(t, r, http.MethodPost, "/send-notification", map[string]string{"lead_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/send-notification", map[string]string{"name": "Sari"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, username, password string) (string, error) {
	if username == "admin" && password == "rahasia" {
		return "signed-token", nil
	}
	return "", auth.ErrInvalidCredentials
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(fakeAuth{}, zap.NewNop())
	r := gin.New()
	r.POST("/admin/login", h.Login)

	w, body := doJSON(t, r, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "rahasia"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "signed-token", body["token"])

	w, _ = doJSON(t, r, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type fakeReplayer struct{ replayed []int64 }

func (f *fakeReplayer) ReplayEvent(_ context.Context, id int64) error {
	if id == 404 {
		return outbox.ErrEventNotFound
	}
	f.replayed = append(f.replayed, id)
	return nil
}

func (f *fakeReplayer) ReplayFailedEvents(_ context.Context, limit int) (int, error) {
	return limit, nil
}

func TestAdminHandler_ReplayOutbox(t *testing.T) {
	replayer := &fakeReplayer{}
	h := NewAdminHandler(replayer, zap.NewNop())
	r := gin.New()
	r.POST("/admin/outbox/replay", h.ReplayOutbox)

	w, _ := doJSON(t, r, http.MethodPost, "/admin/outbox/replay?id=7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{7}, replayer.replayed)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/outbox/replay?id=404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/admin/outbox/replay?id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := doJSON(t, r, http.MethodPost, "/admin/outbox/replay?limit=3", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["replayed"])
}
