package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// UserHandler exposes admin user management endpoints.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin member"`
}

// List returns every account with its roles.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, users)
}

// Get returns a single account.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}

// GrantRole assigns a role to the account. Granting an already-held role
// succeeds without change.
func (h *UserHandler) GrantRole(c *gin.Context) {
	var req roleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.users.GrantRole(requestContext(c), c.Param("id"), req.Role); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"granted": true})
}

// RevokeRole removes a role from the account.
func (h *UserHandler) RevokeRole(c *gin.Context) {
	role := c.Param("role")
	if role == "" {
		response.Error(c, errors.NewBadRequest("role is required"))
		return
	}

	if err := h.users.RevokeRole(requestContext(c), c.Param("id"), role); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}
