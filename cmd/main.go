package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"backoffice/docs"
	"backoffice/internal/caching"
	"backoffice/internal/common"
	"backoffice/internal/config"
	"backoffice/internal/deprovision"
	"backoffice/internal/handlers"
	"backoffice/internal/identity"
	"backoffice/internal/jobs"
	"backoffice/internal/ledger"
	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/services"
	"backoffice/internal/storage"
	"backoffice/pkg/database"
)

const version = "1.0.0"

// @title        Back-office API
// @version      1.0
// @description  Multi-tenant back-office: ledger, team, booking and organization administration.
// @BasePath     /v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		config.GetLogger().WithError(err).Fatal("Invalid configuration")
	}
	logger := config.ConfigureLogger(cfg.Log)
	docs.SwaggerInfo.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.ClosePool(pool)

	redisClient := caching.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	cacheSvc := caching.NewRedisCacheService(redisClient)
	locker := caching.NewRedisLocker(redisClient)

	logos, err := storage.NewMinioLogoStore(cfg.Storage)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize object storage")
	}
	if err := logos.EnsureBucket(ctx); err != nil {
		logger.WithError(err).Warn("Logo bucket is not ready")
	}

	// Repositories
	accountRepo := repositories.NewAccountRepo(pool)
	orgRepo := repositories.NewOrganizationRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	moduleRepo := repositories.NewModuleRepo(pool)
	txRepo := repositories.NewTransactionRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	payeeRepo := repositories.NewPayeeRepo(pool)
	serviceRepo := repositories.NewServiceRepo(pool)
	hoursRepo := repositories.NewWorkingHoursRepo(pool)
	appointmentRepo := repositories.NewAppointmentRepo(pool)

	// Identity
	identitySvc := identity.NewService(accountRepo, cfg.Identity)
	verifier, err := identity.NewVerifier(cfg.Identity)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize token verifier")
	}
	if jwks, ok := verifier.(*identity.JWKSVerifier); ok {
		defer jwks.Close()
	}

	// Services
	moduleSvc := services.NewModuleService(moduleRepo, cacheSvc)
	deprovisioner := deprovision.New(deprovision.Stores{
		Organizations: orgRepo,
		Profiles:      profileRepo,
		Transactions:  txRepo,
		Categories:    categoryRepo,
		Payees:        payeeRepo,
		Appointments:  appointmentRepo,
		Services:      serviceRepo,
		WorkingHours:  hoursRepo,
		Modules:       moduleRepo,
	}, identitySvc, logos, cacheSvc, locker)
	organizationSvc := services.NewOrganizationService(orgRepo, profileRepo, moduleRepo, identitySvc, logos, cacheSvc, deprovisioner)
	memberSvc := services.NewMemberService(profileRepo, identitySvc)
	transactionSvc := services.NewTransactionService(txRepo, categoryRepo, payeeRepo)
	catalogSvc := services.NewCatalogService(categoryRepo, payeeRepo)
	bookingSvc := services.NewBookingService(orgRepo, serviceRepo, hoursRepo, appointmentRepo, moduleSvc, logos, cacheSvc, locker, cfg.Booking)
	ledgerSvc := ledger.NewService(txRepo)

	loc := cfg.Booking.Location()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(identitySvc, moduleSvc)
	organizationHandlers := handlers.NewOrganizationHandlers(organizationSvc, moduleSvc)
	ledgerHandlers := handlers.NewLedgerHandlers(ledgerSvc, transactionSvc, loc)
	transactionHandlers := handlers.NewTransactionHandlers(transactionSvc, loc)
	catalogHandlers := handlers.NewCatalogHandlers(catalogSvc)
	teamHandlers := handlers.NewTeamHandlers(memberSvc)
	bookingHandlers := handlers.NewBookingHandlers(bookingSvc, loc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, logos, version)

	e := echo.New()
	e.HideBanner = true
	e.Validator = common.NewRequestValidator()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.ViewHeader},
		ExposeHeaders: []string{middleware.ViewHeader, echo.HeaderContentDisposition},
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Audit(logger))

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := middleware.VersionRoute(e, middleware.CurrentAPIVersion)

	// Public routes
	api.POST("/auth/sign-in", authHandlers.SignIn, middleware.RateLimit(cacheSvc, 10, time.Minute))

	public := api.Group("/public/:slug", middleware.RateLimit(cacheSvc, 60, time.Minute))
	public.GET("", bookingHandlers.PublicPage)
	public.GET("/availability", bookingHandlers.Availability)
	public.POST("/appointments", bookingHandlers.Book)

	// Authenticated routes
	auth := api.Group("", middleware.Authenticate(verifier, profileRepo))
	auth.GET("/auth/me", authHandlers.Me)

	admin := auth.Group("/admin", middleware.RequireRole(models.RoleSuperadmin))
	admin.GET("/modules", organizationHandlers.ListModuleCatalog)
	admin.GET("/organizations", organizationHandlers.ListOrganizations)
	admin.POST("/organizations", organizationHandlers.ProvisionOrganization)
	admin.GET("/organizations/:id", organizationHandlers.GetOrganization)
	admin.PUT("/organizations/:id", organizationHandlers.UpdateOrganization)
	admin.POST("/organizations/:id/logo", organizationHandlers.UploadLogo)
	admin.GET("/organizations/:id/modules", organizationHandlers.ListOrganizationModules)
	admin.PUT("/organizations/:id/modules", organizationHandlers.SetModules)
	admin.DELETE("/organizations/:id", organizationHandlers.DeleteOrganization)

	tenant := auth.Group("", middleware.RequireTenant())

	finance := tenant.Group("", middleware.RequireModule(moduleSvc, models.ModuleFinance), middleware.ResolveView())
	finance.GET("/ledger/totals", ledgerHandlers.Totals)
	finance.GET("/ledger/dashboard", ledgerHandlers.Dashboard)
	finance.GET("/ledger/export", ledgerHandlers.Export)
	finance.GET("/transactions", transactionHandlers.ListTransactions)
	finance.POST("/transactions", transactionHandlers.CreateTransaction)
	finance.GET("/transactions/:id", transactionHandlers.GetTransaction)
	finance.PUT("/transactions/:id", transactionHandlers.UpdateTransaction)
	finance.DELETE("/transactions/:id", transactionHandlers.DeleteTransaction)
	finance.GET("/categories", catalogHandlers.ListCategories)
	finance.POST("/categories", catalogHandlers.CreateCategory)
	finance.PUT("/categories/:id", catalogHandlers.UpdateCategory)
	finance.DELETE("/categories/:id", catalogHandlers.DeleteCategory)
	finance.GET("/payees", catalogHandlers.ListPayees)
	finance.POST("/payees", catalogHandlers.CreatePayee)
	finance.PUT("/payees/:id", catalogHandlers.UpdatePayee)
	finance.DELETE("/payees/:id", catalogHandlers.DeletePayee)

	team := tenant.Group("/team", middleware.RequireModule(moduleSvc, models.ModuleTeam), middleware.RequireRole(models.RoleAdmin))
	team.GET("/members", teamHandlers.ListMembers)
	team.POST("/members", teamHandlers.InviteMember)
	team.PUT("/members/:id", teamHandlers.UpdateMember)
	team.DELETE("/members/:id", teamHandlers.RemoveMember)

	bookingAdmin := tenant.Group("/booking", middleware.RequireModule(moduleSvc, models.ModuleBooking))
	bookingAdmin.GET("/services", bookingHandlers.ListServices)
	bookingAdmin.POST("/services", bookingHandlers.CreateService)
	bookingAdmin.PUT("/services/:id", bookingHandlers.UpdateService)
	bookingAdmin.DELETE("/services/:id", bookingHandlers.DeleteService)
	bookingAdmin.GET("/hours", bookingHandlers.ListHours)
	bookingAdmin.PUT("/hours", bookingHandlers.ReplaceHours)
	bookingAdmin.GET("/appointments", bookingHandlers.ListAppointments)
	bookingAdmin.PUT("/appointments/:id/status", bookingHandlers.UpdateAppointmentStatus)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = jobs.NewScheduler(cfg.Scheduler, orgRepo, bookingSvc, organizationSvc)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create job scheduler")
		}
		scheduler.Start()
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.WithField("addr", addr).Info("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			logger.WithError(err).Error("Failed to stop job scheduler")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
