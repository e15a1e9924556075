package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/app"
	iauth "github.com/sitedesk/sitedesk/internal/auth"
	"github.com/sitedesk/sitedesk/internal/handlers"
	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/realtime"
	"github.com/sitedesk/sitedesk/internal/services"
)

// Services bundles the constructed domain services the router wires into
// handlers. Bootstrap builds one of these before starting the server.
type Services struct {
	Users     *services.UserService
	Projects  *services.ProjectService
	Expenses  *services.ExpenseService
	Materials *services.MaterialService
	Equipment *services.EquipmentService
	Workers   *services.WorkerService
	Documents *services.DocumentService
	Feedback  *services.FeedbackService
	Dashboard *services.DashboardService
	Reports   *services.ReportService
	Activity  *services.ActivityService
	Rules     *services.NotificationRuleService

	Hub       *realtime.Hub
	LoginRate middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, svcs *Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svcs == nil {
		return nil, fmt.Errorf("services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(svcs.Users)
	setupHandler := handlers.NewSetupHandler(svcs.Users)

	registerAuthRoutes(r, authHandler, setupHandler, svcs.LoginRate)

	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)
	api.POST("/setup/bootstrap-admin", setupHandler.BootstrapAdmin)

	registerProjectRoutes(api, handlers.NewProjectHandler(svcs.Projects), handlers.NewExpenseHandler(svcs.Expenses))
	registerInventoryRoutes(api, handlers.NewMaterialHandler(svcs.Materials), handlers.NewEquipmentHandler(svcs.Equipment))
	registerWorkerRoutes(api, handlers.NewWorkerHandler(svcs.Workers))
	registerDocumentRoutes(api, handlers.NewDocumentHandler(svcs.Documents))
	registerFeedbackRoutes(api, handlers.NewFeedbackHandler(svcs.Feedback))
	registerActivityRoutes(api, handlers.NewActivityHandler(svcs.Activity, svcs.Rules))
	registerUserRoutes(api, handlers.NewUserHandler(svcs.Users))

	dashboardHandler := handlers.NewDashboardHandler(svcs.Dashboard)
	api.GET("/dashboard/stats", dashboardHandler.Stats)

	reportHandler := handlers.NewReportHandler(svcs.Reports)
	reports := api.Group("/reports")
	{
		reports.GET("/financial", reportHandler.Financial)
		reports.GET("/projects", reportHandler.ProjectSummary)
	}

	if svcs.Hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(svcs.Hub, jwt)
		r.GET("/api/ws", realtimeHandler.Stream)
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
