package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/pkg/errors"
	"github.com/sitedesk/sitedesk/pkg/response"
)

// SetupHandler exposes the first-run admin bootstrap endpoints.
type SetupHandler struct {
	users *services.UserService
}

// NewSetupHandler constructs a SetupHandler.
func NewSetupHandler(users *services.UserService) *SetupHandler {
	return &SetupHandler{users: users}
}

// AdminExists reports whether an administrator account exists. On lookup
// failure it fails closed and reports true so the bootstrap path stays shut.
func (h *SetupHandler) AdminExists(c *gin.Context) {
	exists, err := h.users.AdminExists(requestContext(c))
	if err != nil {
		response.Success(c, http.StatusOK, gin.H{"adminExists": true})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"adminExists": exists})
}

// BootstrapAdmin promotes the authenticated caller to admin when no admin
// exists yet. Later calls conflict.
func (h *SetupHandler) BootstrapAdmin(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.users.BootstrapAdmin(requestContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"granted": true})
}
