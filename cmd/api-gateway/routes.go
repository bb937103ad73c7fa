package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/handler"
	"github.com/noah-isme/campus-erp-api/internal/middleware"
	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/repository"
	"github.com/noah-isme/campus-erp-api/internal/service"
	"github.com/noah-isme/campus-erp-api/pkg/config"
)

type routeDeps struct {
	cfg        *config.Config
	authSvc    *service.AuthService
	metrics    *service.MetricsService
	auditRepo  *repository.AuditRepository
	admissions *service.AdmissionService
	students   *service.StudentService
	courses    *service.CourseService
	staff      *service.StaffService
	exams      *service.ExaminationService
	fees       *service.FeeService
	library    *service.LibraryService
	hostels    *service.HostelService
	dashboard  *service.DashboardService
	reports    *service.ReportService
	exporter   *service.ExportService
}

// registerRoutes mounts the versioned API surface. Lifecycle mutations
// that services do not audit themselves carry the audit middleware.
func registerRoutes(r *gin.Engine, d routeDeps) {
	authHandler := handler.NewAuthHandler(d.authSvc)
	admissionHandler := handler.NewAdmissionHandler(d.admissions)
	studentHandler := handler.NewStudentHandler(d.students)
	courseHandler := handler.NewCourseHandler(d.courses)
	staffHandler := handler.NewStaffHandler(d.staff)
	examHandler := handler.NewExaminationHandler(d.exams, d.exporter)
	feeHandler := handler.NewFeeHandler(d.fees, d.exporter)
	libraryHandler := handler.NewLibraryHandler(d.library)
	hostelHandler := handler.NewHostelHandler(d.hostels)

	staffAny := middleware.RequireStaffRoles(models.RoleAdmin, models.RoleStaff, models.RoleFaculty)
	adminStaff := middleware.RequireStaffRoles(models.RoleAdmin, models.RoleStaff)
	adminOnly := middleware.RequireStaffRoles(models.RoleAdmin)
	adminFaculty := middleware.RequireStaffRoles(models.RoleAdmin, models.RoleFaculty)
	staffOrSelf := middleware.RBAC(string(models.RoleAdmin), string(models.RoleStaff), middleware.SelfAccess)
	staffAnyOrSelf := middleware.RBAC(string(models.RoleAdmin), string(models.RoleStaff), string(models.RoleFaculty), middleware.SelfAccess)
	anyPrincipal := middleware.RBAC(string(models.RoleAdmin), string(models.RoleStaff), string(models.RoleFaculty), models.RoleStudent)
	bustDash := middleware.BustDashboards(d.dashboard)

	api := r.Group(d.cfg.APIPrefix)
	api.Use(middleware.Metrics(d.metrics))
	api.Use(middleware.WithResponseMeta())

	// Public surface: login, the admission portal and signed downloads.
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/admissions/eligibility", admissionHandler.CheckEligibility)
	api.POST("/admissions/applications", bustDash, admissionHandler.Submit)
	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)

	auth := api.Group("")
	auth.Use(middleware.JWT(d.authSvc))

	auth.POST("/auth/logout", authHandler.Logout)
	auth.POST("/auth/change-password", authHandler.ChangePassword)
	auth.GET("/auth/me", authHandler.Profile)

	admissions := auth.Group("/admissions", bustDash)
	{
		admissions.GET("/applications", adminStaff, admissionHandler.List)
		admissions.GET("/applications/:id", staffOrSelf, admissionHandler.Get)
		admissions.POST("/applications/:id/approve", adminStaff, admissionHandler.Approve)
		admissions.POST("/applications/:id/decline", adminStaff, admissionHandler.Decline)
		admissions.POST("/applications/:id/request-documents", adminStaff, admissionHandler.RequestDocuments)
		admissions.POST("/applications/:id/waitlist", adminStaff, admissionHandler.Waitlist)
		admissions.POST("/applications/:id/review", adminStaff, admissionHandler.MarkUnderReview)
		admissions.POST("/applications/:id/verify-document", adminStaff, admissionHandler.VerifyDocument)
		admissions.GET("/statistics", adminStaff, admissionHandler.Statistics)
	}

	students := auth.Group("/students")
	{
		students.GET("", staffAny, studentHandler.List)
		students.POST("", adminStaff, middleware.Audit(d.auditRepo, models.AuditActionStudentCreate, "student"), studentHandler.Create)
		students.GET("/:rollNo", staffAnyOrSelf, studentHandler.Get)
		students.PUT("/:rollNo", adminStaff, studentHandler.Update)
		students.POST("/:rollNo/promote", adminStaff, studentHandler.Promote)
		students.DELETE("/:rollNo", adminOnly, studentHandler.Deactivate)

		students.GET("/:rollNo/results", staffAnyOrSelf, examHandler.StudentResults)
		students.GET("/:rollNo/sgpa", staffAnyOrSelf, examHandler.SemesterGPA)
		students.GET("/:rollNo/cgpa", staffAnyOrSelf, examHandler.CumulativeGPA)
		students.GET("/:rollNo/academic-record", staffAnyOrSelf, examHandler.AcademicRecord)
		students.GET("/:rollNo/marksheet", staffAnyOrSelf, examHandler.Marksheet)
		students.GET("/:rollNo/fees", staffOrSelf, feeHandler.StudentSummary)
		students.GET("/:rollNo/library", staffOrSelf, libraryHandler.StudentHistory)
	}

	courses := auth.Group("/courses")
	{
		courses.POST("", adminOnly, middleware.Audit(d.auditRepo, models.AuditActionCourseCreate, "course"), courseHandler.Create)
		courses.PUT("/:id", adminOnly, middleware.Audit(d.auditRepo, models.AuditActionCourseUpdate, "course"), courseHandler.Update)
		courses.PATCH("/:id/accepting", adminOnly, courseHandler.SetAccepting)
	}

	staffRoutes := auth.Group("/staff", adminOnly)
	{
		staffRoutes.GET("", staffHandler.List)
		staffRoutes.GET("/:id", staffHandler.Get)
		staffRoutes.POST("", middleware.Audit(d.auditRepo, models.AuditActionStaffCreate, "staff"), staffHandler.Create)
		staffRoutes.PUT("/:id", middleware.Audit(d.auditRepo, models.AuditActionStaffUpdate, "staff"), staffHandler.Update)
		staffRoutes.POST("/:id/reset-password", middleware.Audit(d.auditRepo, models.AuditActionPasswordReset, "staff"), staffHandler.ResetPassword)
	}

	exams := auth.Group("/examinations", bustDash)
	{
		exams.POST("/results", adminFaculty, examHandler.CreateResult)
		exams.GET("/results", staffAny, examHandler.List)
		exams.GET("/results/:id", staffAny, examHandler.Get)
		exams.GET("/results/:id/percentage", staffAny, examHandler.Percentage)
		exams.POST("/results/:id/declare", adminStaff, examHandler.Declare)
		exams.PUT("/results/:id", adminFaculty, examHandler.Update)
		exams.GET("/class-performance", staffAny, examHandler.ClassPerformance)
	}

	fees := auth.Group("/fees", bustDash)
	{
		fees.POST("/demands", adminStaff, feeHandler.GenerateDemands)
		fees.GET("", adminStaff, feeHandler.List)
		fees.GET("/statistics", adminStaff, feeHandler.Statistics)
		fees.GET("/:id", adminStaff, feeHandler.Get)
		fees.POST("/:id/payments", adminStaff, feeHandler.RecordPayment)
		fees.POST("/:id/checkout", anyPrincipal, feeHandler.CreateCheckout)
		fees.POST("/:id/confirm-payment", anyPrincipal, feeHandler.ConfirmPayment)
		fees.POST("/:id/cancel", adminOnly, feeHandler.Cancel)
		fees.POST("/:id/discount", adminOnly, feeHandler.ApplyDiscount)
		fees.GET("/:id/receipt", anyPrincipal, feeHandler.Receipt)
	}

	library := auth.Group("/library")
	{
		library.GET("/books", libraryHandler.ListBooks)
		library.GET("/books/:id", libraryHandler.GetBook)
		library.POST("/books", adminStaff, libraryHandler.AddBook)
		library.PUT("/books/:id", adminStaff, libraryHandler.UpdateBook)
		library.POST("/issues", adminStaff, libraryHandler.Issue)
		library.GET("/issues", adminStaff, libraryHandler.ListIssues)
		library.POST("/issues/:id/renew", adminStaff, libraryHandler.Renew)
		library.POST("/issues/:id/return", adminStaff, libraryHandler.Return)
		library.GET("/overdues", adminStaff, libraryHandler.Overdues)
		library.GET("/statistics", adminStaff, libraryHandler.Statistics)
	}

	hostels := auth.Group("/hostels")
	{
		hostels.GET("", adminStaff, hostelHandler.List)
		hostels.GET("/occupancy", adminStaff, hostelHandler.Occupancy)
		hostels.GET("/:id", adminStaff, hostelHandler.Get)
		hostels.POST("", adminOnly, hostelHandler.Create)
		hostels.PUT("/:id", adminOnly, hostelHandler.Update)
		hostels.POST("/allocations", adminStaff, middleware.Audit(d.auditRepo, models.AuditActionHostelAllocate, "hostel"), hostelHandler.Allocate)
		hostels.DELETE("/allocations/:rollNo", adminStaff, middleware.Audit(d.auditRepo, models.AuditActionHostelVacate, "hostel"), hostelHandler.Vacate)
	}

	if d.cfg.Dashboard.Enabled {
		dashboardHandler := handler.NewDashboardHandler(d.dashboard)
		dashboard := auth.Group("/dashboard")
		{
			dashboard.GET("/admin", adminOnly, dashboardHandler.Admin)
			dashboard.GET("/staff", staffAny, dashboardHandler.Staff)
			dashboard.GET("/student", middleware.RBAC(models.RoleStudent), dashboardHandler.Student)
			dashboard.GET("/charts/enrollment", adminStaff, dashboardHandler.EnrollmentChart)
			dashboard.GET("/charts/fees", adminOnly, dashboardHandler.FeeCollectionChart)
		}
	}

	if d.cfg.Reports.Enabled {
		reportHandler := handler.NewReportHandler(d.reports)
		api.GET("/reports/download", reportHandler.Download)
		reports := auth.Group("/reports", adminStaff)
		{
			reports.POST("", reportHandler.Create)
			reports.GET("/:id", reportHandler.Status)
		}
	}
}
