package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/dto"
	"github.com/noah-isme/campus-erp-api/internal/middleware"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/response"
)

type dashboardService interface {
	Admin(ctx context.Context, principalID string) (*dto.AdminDashboardResponse, bool, error)
	Staff(ctx context.Context, employeeID string) (*dto.StaffDashboardResponse, bool, error)
	Student(ctx context.Context, rollNo string) (*dto.StudentDashboardResponse, bool, error)
	EnrollmentChart(ctx context.Context, academicYear string) (*dto.EnrollmentChartResponse, error)
	FeeCollectionChart(ctx context.Context, academicYear string) (*dto.FeeCollectionChartResponse, error)
}

// DashboardHandler wires dashboard composition to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Admin godoc
// @Summary Institution-wide dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, cacheHit, err := h.service.Admin(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondWithMeta(c, cacheHit, summary)
}

// Staff godoc
// @Summary Staff work-queue dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/staff [get]
func (h *DashboardHandler) Staff(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, cacheHit, err := h.service.Staff(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondWithMeta(c, cacheHit, summary)
}

// Student godoc
// @Summary Student self-service dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, cacheHit, err := h.service.Student(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondWithMeta(c, cacheHit, summary)
}

// EnrollmentChart godoc
// @Summary Enrollment by course chart
// @Tags Dashboard
// @Produce json
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/charts/enrollment [get]
func (h *DashboardHandler) EnrollmentChart(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academicYear"))
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear is required"))
		return
	}

	chart, err := h.service.EnrollmentChart(c.Request.Context(), academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chart, nil)
}

// FeeCollectionChart godoc
// @Summary Monthly fee collection chart
// @Tags Dashboard
// @Produce json
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/charts/fees [get]
func (h *DashboardHandler) FeeCollectionChart(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academicYear"))
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear is required"))
		return
	}

	chart, err := h.service.FeeCollectionChart(c.Request.Context(), academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chart, nil)
}

func (h *DashboardHandler) respondWithMeta(c *gin.Context, cacheHit bool, payload interface{}) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = middleware.Elapsed(c).Milliseconds()
	response.JSON(c, http.StatusOK, payload, nil, meta)
}
