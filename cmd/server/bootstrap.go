package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitedesk/sitedesk/internal/api"
	"github.com/sitedesk/sitedesk/internal/app"
	"github.com/sitedesk/sitedesk/internal/app/maintenance"
	iauth "github.com/sitedesk/sitedesk/internal/auth"
	"github.com/sitedesk/sitedesk/internal/cache"
	"github.com/sitedesk/sitedesk/internal/database"
	"github.com/sitedesk/sitedesk/internal/middleware"
	"github.com/sitedesk/sitedesk/internal/realtime"
	"github.com/sitedesk/sitedesk/internal/services"
	"github.com/sitedesk/sitedesk/internal/storage"
	"github.com/sitedesk/sitedesk/pkg/logger"
	"github.com/sitedesk/sitedesk/pkg/mail"
)

// runtimeStack bundles long-lived resources used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     cache.Store
	Hub       *realtime.Hub
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the database, caches, services, background jobs
// and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(ctx, log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisClient(cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}
	guard := iauth.NewLoginGuard(cfg.Auth.LoginGuardConfig())

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	stack.Hub = realtime.NewHub()

	rules, err := services.NewNotificationRuleService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise notification rules: %w", err)
	}

	activity, err := services.NewActivityService(stack.DB, services.ActivityServiceOptions{
		Hub:          stack.Hub,
		Rules:        rules,
		Mailer:       mailer,
		FetchLimit:   cfg.Activity.FetchLimit,
		RetentionMax: cfg.Activity.RetentionMax,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise activity service: %w", err)
	}

	users, err := services.NewUserService(stack.DB, jwtSvc, guard)
	if err != nil {
		return nil, fmt.Errorf("initialise user service: %w", err)
	}
	projects, err := services.NewProjectService(stack.DB, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise project service: %w", err)
	}
	expenses, err := services.NewExpenseService(stack.DB, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise expense service: %w", err)
	}
	materials, err := services.NewMaterialService(stack.DB, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise material service: %w", err)
	}
	equipment, err := services.NewEquipmentService(stack.DB, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise equipment service: %w", err)
	}
	workers, err := services.NewWorkerService(stack.DB, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise worker service: %w", err)
	}

	store, err := storage.NewLocalStore(cfg.Storage.DocumentsPath)
	if err != nil {
		return nil, fmt.Errorf("initialise document store: %w", err)
	}
	documents, err := services.NewDocumentService(stack.DB, store, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise document service: %w", err)
	}

	feedback, err := services.NewFeedbackService(stack.DB, activity)
	if err != nil {
		return nil, fmt.Errorf("initialise feedback service: %w", err)
	}
	dashboard, err := services.NewDashboardService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise dashboard service: %w", err)
	}
	reports, err := services.NewReportService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise report service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(activity, materials, dbStore,
		maintenance.WithSweepSchedule(cfg.Activity.SweepSchedule),
		maintenance.WithLowStockSchedule(cfg.Activity.LowStockSchedule))
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	switch {
	case stack.Redis != nil:
		stack.RateStore = middleware.NewRedisRateStore(stack.Redis)
	case dbStore != nil:
		stack.RateStore = middleware.NewDatabaseRateStore(dbStore)
	}

	stack.Router, err = api.NewRouter(stack.DB, jwtSvc, cfg, &api.Services{
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
		Hub:       stack.Hub,
		LoginRate: stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if rc, ok := s.Redis.(*cache.RedisClient); ok && rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("database handle unavailable during shutdown", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}
