package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/app"
	iauth "github.com/sitedesk/sitedesk/internal/auth"
	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/realtime"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/internal/storage"
	"github.com/sitedesk/sitedesk/pkg/response"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "router-test-secret",
		Issuer:         "sitedesk-test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)
	guard := iauth.NewLoginGuard(iauth.GuardConfig{})

	rules, err := services.NewNotificationRuleService(db)
	require.NoError(t, err)
	activity, err := services.NewActivityService(db, services.ActivityServiceOptions{
		Hub:   realtime.NewHub(),
		Rules: rules,
	})
	require.NoError(t, err)

	users, err := services.NewUserService(db, jwt, guard)
	require.NoError(t, err)
	projects, err := services.NewProjectService(db, activity)
	require.NoError(t, err)
	expenses, err := services.NewExpenseService(db, activity)
	require.NoError(t, err)
	materials, err := services.NewMaterialService(db, activity)
	require.NoError(t, err)
	equipment, err := services.NewEquipmentService(db, activity)
	require.NoError(t, err)
	workers, err := services.NewWorkerService(db, activity)
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	documents, err := services.NewDocumentService(db, store, activity)
	require.NoError(t, err)
	feedback, err := services.NewFeedbackService(db, activity)
	require.NoError(t, err)
	dashboard, err := services.NewDashboardService(db)
	require.NoError(t, err)
	reports, err := services.NewReportService(db)
	require.NoError(t, err)

	cfg := &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}

	router, err := NewRouter(db, jwt, cfg, &Services{
		Users:     users,
		Projects:  projects,
		Expenses:  expenses,
		Materials: materials,
		Equipment: equipment,
		Workers:   workers,
		Documents: documents,
		Feedback:  feedback,
		Dashboard: dashboard,
		Reports:   reports,
		Activity:  activity,
		Rules:     rules,
		Hub:       realtime.NewHub(),
	})
	require.NoError(t, err)

	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouterRegisterLoginAndBootstrap(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodGet, "/api/setup/admin-exists", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "owner@example.com",
		"name":     "Site Owner",
		"password": "builders-pass-1",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "owner@example.com",
		"password": "builders-pass-1",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)

	var auth services.AuthResult
	require.NoError(t, json.Unmarshal(raw, &auth))
	require.NotEmpty(t, auth.Token)

	recorder = doJSON(t, router, http.MethodPost, "/api/setup/bootstrap-admin", auth.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Second bootstrap attempt conflicts.
	recorder = doJSON(t, router, http.MethodPost, "/api/setup/bootstrap-admin", auth.Token, nil)
	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestRouterActivityRequiresAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "member@example.com",
		"name":     "Member",
		"password": "builders-pass-2",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "member@example.com",
		"password": "builders-pass-2",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)

	var auth services.AuthResult
	require.NoError(t, json.Unmarshal(raw, &auth))

	// A plain member cannot see the activity feed.
	recorder = doJSON(t, router, http.MethodGet, "/api/activity", auth.Token, nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	// After bootstrap the same account is an admin; a fresh token carries the role.
	recorder = doJSON(t, router, http.MethodPost, "/api/setup/bootstrap-admin", auth.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "member@example.com",
		"password": "builders-pass-2",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	raw, err = json.Marshal(payload.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &auth))

	recorder = doJSON(t, router, http.MethodGet, "/api/activity", auth.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
}
