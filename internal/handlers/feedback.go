package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// FeedbackHandler exposes feedback submission and triage endpoints.
type FeedbackHandler struct {
	feedback *services.FeedbackService
}

// NewFeedbackHandler constructs a FeedbackHandler.
func NewFeedbackHandler(feedback *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

type submitFeedbackRequest struct {
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required"`
}

// Submit stores a feedback message from the signed-in user.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req submitFeedbackRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.feedback.Submit(requestContext(c), services.SubmitFeedbackInput{
		UserID:  userID,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, message)
}

// List returns feedback messages, optionally filtered by status.
func (h *FeedbackHandler) List(c *gin.Context) {
	messages, err := h.feedback.List(requestContext(c), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, messages)
}

// Resolve marks a feedback message as handled.
func (h *FeedbackHandler) Resolve(c *gin.Context) {
	message, err := h.feedback.Resolve(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, message)
}
