package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// ActivityHandler exposes the activity feed and per-user overlay endpoints.
type ActivityHandler struct {
	activity *services.ActivityService
	rules    *services.NotificationRuleService
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(activity *services.ActivityService, rules *services.NotificationRuleService) *ActivityHandler {
	return &ActivityHandler{activity: activity, rules: rules}
}

// List returns the merged feed for the current user.
func (h *ActivityHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	limit := parseIntQuery(c, "limit", 0)
	feed, err := h.activity.List(requestContext(c), userID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, feed)
}

// MarkRead stamps read_at on the caller's overlay for the event.
func (h *ActivityHandler) MarkRead(c *gin.Context) {
	h.updateReadState(c, true)
}

// MarkUnread clears read_at on the caller's overlay for the event.
func (h *ActivityHandler) MarkUnread(c *gin.Context) {
	h.updateReadState(c, false)
}

func (h *ActivityHandler) updateReadState(c *gin.Context, read bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	item, err := h.activity.MarkRead(requestContext(c), userID, strings.TrimSpace(c.Param("id")), read)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// Archive stamps archived_at on the caller's overlay for the event.
func (h *ActivityHandler) Archive(c *gin.Context) {
	h.updateArchivedState(c, true)
}

// Unarchive clears archived_at on the caller's overlay for the event.
func (h *ActivityHandler) Unarchive(c *gin.Context) {
	h.updateArchivedState(c, false)
}

func (h *ActivityHandler) updateArchivedState(c *gin.Context, archived bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	item, err := h.activity.SetArchived(requestContext(c), userID, strings.TrimSpace(c.Param("id")), archived)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// MarkAllRead stamps read_at on every active unread event for the caller.
func (h *ActivityHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	touched, err := h.activity.MarkAllRead(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"marked": touched})
}

// ListRules returns the caller's stored notification rules.
func (h *ActivityHandler) ListRules(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	rules, err := h.rules.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, rules)
}

type updateRuleRequest struct {
	Enabled *bool          `json:"enabled"`
	Config  map[string]any `json:"config"`
}

// UpdateRule upserts the caller's rule for an event type. Enabled toggles
// never clobber the stored config blob.
func (h *ActivityHandler) UpdateRule(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	ruleType := strings.TrimSpace(c.Param("type"))

	var req updateRuleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Enabled == nil && req.Config == nil {
		response.Error(c, errors.NewBadRequest("enabled or config must be provided"))
		return
	}

	var rule *services.NotificationRuleDTO
	var err error
	if req.Config != nil {
		rule, err = h.rules.UpdateConfig(requestContext(c), userID, ruleType, req.Config)
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.Enabled != nil {
		rule, err = h.rules.SetEnabled(requestContext(c), userID, ruleType, *req.Enabled)
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	response.Success(c, http.StatusOK, rule)
}
