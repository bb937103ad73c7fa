package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/service"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/response"
)

// AdmissionHandler exposes the admission application workflow.
type AdmissionHandler struct {
	admissions *service.AdmissionService
}

// NewAdmissionHandler constructs AdmissionHandler.
func NewAdmissionHandler(admissions *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions}
}

// CheckEligibility godoc
// @Summary Pre-check admission eligibility
// @Description Screens age and qualifying percentages without creating an application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body object true "Eligibility payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/eligibility [post]
func (h *AdmissionHandler) CheckEligibility(c *gin.Context) {
	var payload struct {
		DateOfBirth       time.Time `json:"date_of_birth" binding:"required"`
		TenthPercentage   float64   `json:"tenth_percentage" binding:"required"`
		TwelfthPercentage *float64  `json:"twelfth_percentage"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid eligibility payload"))
		return
	}

	report := h.admissions.CheckEligibility(payload.DateOfBirth, payload.TenthPercentage, payload.TwelfthPercentage)
	response.JSON(c, http.StatusOK, report, nil)
}

// Submit godoc
// @Summary Submit admission application
// @Description Public endpoint; registers an application and emails an acknowledgement
// @Tags Admissions
// @Accept json
// @Produce json
// @Param payload body service.SubmitApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admissions/applications [post]
func (h *AdmissionHandler) Submit(c *gin.Context) {
	var req service.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	app, err := h.admissions.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Get godoc
// @Summary Get application detail
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/applications/{id} [get]
func (h *AdmissionHandler) Get(c *gin.Context) {
	app, err := h.admissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	// Applicants track their own application without the processing trail.
	if claims := claimsFromContext(c); claims != nil && claims.PrincipalType != models.PrincipalStaff {
		app.ProcessedBy = nil
		app.Remarks = nil
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// List godoc
// @Summary List applications
// @Tags Admissions
// @Produce json
// @Param status query string false "Filter by status"
// @Param courseId query string false "Filter by course"
// @Param year query int false "Filter by application year"
// @Param search query string false "Search by name, email or application ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admissions/applications [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	var filter models.ApplicationFilter
	if status := c.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		if !s.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown application status"))
			return
		}
		filter.Status = &s
	}
	filter.CourseID = c.Query("courseId")
	filter.Year = queryInt(c, "year")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	applications, pagination, err := h.admissions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applications, pagination)
}

// Approve godoc
// @Summary Approve application
// @Description Provisions the student record and returns the issued credentials
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.ApproveApplicationRequest false "Approval remarks"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admissions/applications/{id}/approve [post]
func (h *AdmissionHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ApproveApplicationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
			return
		}
	}

	result, err := h.admissions.Approve(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Decline godoc
// @Summary Decline application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.DeclineApplicationRequest true "Decline reason"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admissions/applications/{id}/decline [post]
func (h *AdmissionHandler) Decline(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.DeclineApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "decline reason is required"))
		return
	}

	app, err := h.admissions.Decline(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// RequestDocuments godoc
// @Summary Request missing documents
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.RequestDocumentsRequest true "Documents payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/applications/{id}/request-documents [post]
func (h *AdmissionHandler) RequestDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RequestDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid documents payload"))
		return
	}

	app, err := h.admissions.RequestDocuments(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Waitlist godoc
// @Summary Waitlist application
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/applications/{id}/waitlist [post]
func (h *AdmissionHandler) Waitlist(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Remarks *string `json:"remarks"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	app, err := h.admissions.Waitlist(c.Request.Context(), c.Param("id"), claims.PrincipalID, payload.Remarks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// MarkUnderReview godoc
// @Summary Move application into review
// @Tags Admissions
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admissions/applications/{id}/review [post]
func (h *AdmissionHandler) MarkUnderReview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	app, err := h.admissions.MarkUnderReview(c.Request.Context(), c.Param("id"), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// VerifyDocument godoc
// @Summary Verify a submitted document
// @Tags Admissions
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.VerifyDocumentRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/applications/{id}/verify-document [post]
func (h *AdmissionHandler) VerifyDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.VerifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}

	app, err := h.admissions.VerifyDocument(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Statistics godoc
// @Summary Admission pipeline statistics
// @Tags Admissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admissions/statistics [get]
func (h *AdmissionHandler) Statistics(c *gin.Context) {
	stats, err := h.admissions.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
