package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/database/testutil"
	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/models"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/response"
)

func newActivityHandler(t *testing.T) (*ActivityHandler, *services.ActivityService, *gorm.DB) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	rules, err := services.NewNotificationRuleService(db)
	require.NoError(t, err)
	activity, err := services.NewActivityService(db, services.ActivityServiceOptions{Rules: rules})
	require.NoError(t, err)

	return NewActivityHandler(activity, rules), activity, db
}

func seedHandlerUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	user := models.User{
		BaseModel:    models.BaseModel{ID: id},
		Email:        id + "@example.com",
		Name:         id,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.UserRole{UserID: id, Role: "admin"}).Error)
}

func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()

	var payload response.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)

	raw, err := json.Marshal(payload.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestActivityHandlerListAndMarkRead(t *testing.T) {
	handler, activity, db := newActivityHandler(t)
	seedHandlerUser(t, db, "user-feed")

	item, err := activity.Log(context.Background(), services.LogActivityInput{
		Action:      services.ActionCreated,
		EntityTable: "projects",
		Message:     "Project created",
	})
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/activity", nil)
	c.Set(middleware.CtxUserIDKey, "user-feed")
	handler.List(c)

	require.Equal(t, http.StatusOK, recorder.Code)

	var feed services.ActivityFeed
	decodeData(t, recorder, &feed)
	require.Len(t, feed.Items, 1)
	require.Equal(t, 1, feed.UnreadCount)
	require.Nil(t, feed.Items[0].ReadAt)

	readRecorder := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(readRecorder)
	c2.Request = httptest.NewRequest(http.MethodPost, "/api/activity/"+item.ID+"/read", nil)
	c2.Params = gin.Params{gin.Param{Key: "id", Value: item.ID}}
	c2.Set(middleware.CtxUserIDKey, "user-feed")
	handler.MarkRead(c2)

	require.Equal(t, http.StatusOK, readRecorder.Code)

	var dto services.ActivityItemDTO
	decodeData(t, readRecorder, &dto)
	require.NotNil(t, dto.ReadAt)
}

func TestActivityHandlerMarkAllRead(t *testing.T) {
	handler, activity, db := newActivityHandler(t)
	seedHandlerUser(t, db, "user-bulk")

	for _, message := range []string{"one", "two", "three"} {
		_, err := activity.Log(context.Background(), services.LogActivityInput{
			Action:      services.ActionUpdated,
			EntityTable: "projects",
			Message:     message,
		})
		require.NoError(t, err)
	}

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/activity/read-all", nil)
	c.Set(middleware.CtxUserIDKey, "user-bulk")
	handler.MarkAllRead(c)

	require.Equal(t, http.StatusOK, recorder.Code)

	var result map[string]int
	decodeData(t, recorder, &result)
	require.Equal(t, 3, result["marked"])
}

func TestActivityHandlerUpdateRule(t *testing.T) {
	handler, _, db := newActivityHandler(t)
	seedHandlerUser(t, db, "user-rules")

	body := `{"enabled": false}`
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPatch, "/api/notification-rules/low_stock", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "type", Value: "low_stock"}}
	c.Set(middleware.CtxUserIDKey, "user-rules")
	handler.UpdateRule(c)

	require.Equal(t, http.StatusOK, recorder.Code)

	var rule services.NotificationRuleDTO
	decodeData(t, recorder, &rule)
	require.False(t, rule.Enabled)
	require.Equal(t, "low_stock", rule.Type)
}

func TestActivityHandlerRejectsMissingBody(t *testing.T) {
	handler, _, db := newActivityHandler(t)
	seedHandlerUser(t, db, "user-empty")

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPatch, "/api/notification-rules/low_stock", strings.NewReader(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "type", Value: "low_stock"}}
	c.Set(middleware.CtxUserIDKey, "user-empty")
	handler.UpdateRule(c)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
