package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitedesk/sitedesk/internal/handlers"
	"github.com/sitedesk/sitedesk/internal/middleware"
)

func registerAuthRoutes(r *gin.Engine, auth *handlers.AuthHandler, setup *handlers.SetupHandler, loginRate middleware.RateStore) {
	group := r.Group("/api/auth")
	if loginRate != nil {
		// Tighter budget on credential endpoints than the global limiter.
		group.Use(middleware.RateLimitWithStore(loginRate, 10, time.Minute))
	}
	{
		group.POST("/login", auth.Login)
		group.POST("/register", auth.Register)
	}

	r.GET("/api/setup/admin-exists", setup.AdminExists)
}
