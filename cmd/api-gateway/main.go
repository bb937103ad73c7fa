package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-erp-api/api/swagger"
	"github.com/noah-isme/campus-erp-api/internal/handler"
	"github.com/noah-isme/campus-erp-api/internal/repository"
	"github.com/noah-isme/campus-erp-api/internal/service"
	"github.com/noah-isme/campus-erp-api/pkg/cache"
	"github.com/noah-isme/campus-erp-api/pkg/config"
	"github.com/noah-isme/campus-erp-api/pkg/database"
	"github.com/noah-isme/campus-erp-api/pkg/jobs"
	"github.com/noah-isme/campus-erp-api/pkg/logger"
	"github.com/noah-isme/campus-erp-api/pkg/mail"
	corsmiddleware "github.com/noah-isme/campus-erp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-erp-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-erp-api/pkg/payments"
	"github.com/noah-isme/campus-erp-api/pkg/storage"
)

// @title Campus ERP API
// @version 1.0.0
// @description Administration API for college admissions, student records, examinations, fees, library circulation and hostels.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: without it dashboards recompute on every call.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	admissionRepo := repository.NewAdmissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	examRepo := repository.NewExaminationRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	hostelRepo := repository.NewHostelRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	reportRepo := repository.NewReportRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	var sender mail.Sender = mail.NoopSender{}
	if cfg.Mail.Enabled {
		sender = mail.NewSendGridSender(cfg.Mail)
	}

	// The queue handler closes over the service, which in turn enqueues
	// through the queue; declare first, construct after.
	var notificationSvc *service.NotificationService
	notifyQueue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		return notificationSvc.HandleDelivery(ctx, job)
	}, jobs.QueueConfig{Workers: 2, BufferSize: 64, MaxRetries: 3, RetryDelay: 10 * time.Second, Logger: logr})
	notificationSvc = service.NewNotificationService(notifyQueue, sender, logr)

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "dir", cfg.Reports.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(examRepo, admissionRepo, feeRepo, libraryRepo, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)

	authSvc := service.NewAuthService(staffRepo, studentRepo, admissionRepo, tokenRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:    cfg.JWT.Secret,
		StaffTokenExpiry:     cfg.JWT.StaffExpiration,
		StaffRefreshExpiry:   cfg.JWT.StaffRefreshExpiration,
		StudentTokenExpiry:   cfg.JWT.StudentExpiration,
		StudentRefreshExpiry: cfg.JWT.StudentRefreshExpiration,
		Issuer:               "campus-erp-api",
	})

	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, validate, logr)

	admissionSvc := service.NewAdmissionService(admissionRepo, courseRepo, studentSvc, auditRepo, notificationSvc, validate, logr, service.AdmissionConfig{
		MinAge:            cfg.Admission.MinAge,
		MaxAge:            cfg.Admission.MaxAge,
		MinTenthPercent:   cfg.Admission.MinTenthPercent,
		MinTwelfthPercent: cfg.Admission.MinTwelfthPercent,
		RequiredDocuments: cfg.Admission.RequiredDocuments,
	})

	examSvc := service.NewExaminationService(examRepo, studentRepo, auditRepo, validate, logr)

	var gateway payments.Gateway
	if cfg.Payments.Enabled {
		gateway = payments.NewMidtransGateway(cfg.Payments)
	}
	feeSvc := service.NewFeeService(feeRepo, studentRepo, courseRepo, auditRepo, gateway, notificationSvc, validate, logr)

	librarySvc := service.NewLibraryService(libraryRepo, studentRepo, feeRepo, validate, logr)
	hostelSvc := service.NewHostelService(hostelRepo, studentRepo, validate, logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Admissions:      admissionSvc,
		Fees:            feeSvc,
		Library:         librarySvc,
		Hostels:         hostelSvc,
		Exams:           examSvc,
		Students:        studentRepo,
		Courses:         courseRepo,
		AdmissionCharts: admissionRepo,
		FeeCharts:       feeRepo,
		Cache:           cacheSvc,
		Logger:          logr,
		CacheTTL:        cfg.Dashboard.CacheTTL,
	})

	reportWorker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})
	reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})

	notifyQueue.Start(ctx)
	defer notifyQueue.Stop()

	if cfg.Reports.Enabled {
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	go sweepOverdueFees(ctx, feeSvc, cfg.Fees.OverdueSweepInterval, logr)
	go refreshDomainGauges(ctx, metricsSvc, admissionRepo, examRepo, feeRepo, libraryRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, routeDeps{
		cfg:        cfg,
		authSvc:    authSvc,
		metrics:    metricsSvc,
		auditRepo:  auditRepo,
		admissions: admissionSvc,
		students:   studentSvc,
		courses:    courseSvc,
		staff:      staffSvc,
		exams:      examSvc,
		fees:       feeSvc,
		library:    librarySvc,
		hostels:    hostelSvc,
		dashboard:  dashboardSvc,
		reports:    reportSvc,
		exporter:   exportSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("forced shutdown", "error", err)
	}
}

// sweepOverdueFees periodically flips pending demands past their due date
// to overdue and restamps their late fees.
func sweepOverdueFees(ctx context.Context, fees *service.FeeService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fees.SweepOverdue(ctx, time.Now().UTC()); err != nil {
				logr.Sugar().Warnw("overdue sweep failed", "error", err)
			}
		}
	}
}

// refreshDomainGauges keeps the business-level Prometheus gauges current.
func refreshDomainGauges(
	ctx context.Context,
	metrics *service.MetricsService,
	admissions *repository.AdmissionRepository,
	exams *repository.ExaminationRepository,
	fees *repository.FeeRepository,
	library *repository.LibraryRepository,
	logr *zap.Logger,
) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		if counts, err := admissions.CountByStatus(ctx); err == nil {
			metrics.SetApplicationsByStatus(counts)
		} else {
			logr.Sugar().Debugw("gauge refresh: applications", "error", err)
		}
		if pending, err := exams.PendingCount(ctx); err == nil {
			metrics.SetPendingResults(pending)
		}
		if stats, err := fees.Statistics(ctx, ""); err == nil {
			metrics.SetFeeCollection(stats.TotalCollected)
		}
		if stats, err := library.Statistics(ctx); err == nil {
			metrics.SetBooksIssued(stats.IssuedCopies)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
