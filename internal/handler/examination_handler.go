package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/service"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/response"
)

// ExaminationHandler exposes exam results, GPA aggregates and marksheets.
type ExaminationHandler struct {
	exams    *service.ExaminationService
	exporter *service.ExportService
}

// NewExaminationHandler constructs ExaminationHandler.
func NewExaminationHandler(exams *service.ExaminationService, exporter *service.ExportService) *ExaminationHandler {
	return &ExaminationHandler{exams: exams, exporter: exporter}
}

// CreateResult godoc
// @Summary Create exam result record
// @Description Registers an undeclared result slot for a student and subject
// @Tags Examinations
// @Accept json
// @Produce json
// @Param payload body service.CreateExamResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Router /examinations/results [post]
func (h *ExaminationHandler) CreateResult(c *gin.Context) {
	var req service.CreateExamResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid result payload"))
		return
	}
	result, err := h.exams.CreateResult(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List exam results
// @Tags Examinations
// @Produce json
// @Param studentId query string false "Filter by roll number"
// @Param courseId query string false "Filter by course"
// @Param semester query int false "Filter by semester"
// @Param academicYear query string false "Filter by academic year"
// @Param examType query string false "Filter by exam type"
// @Param declared query bool false "Filter by declaration state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /examinations/results [get]
func (h *ExaminationHandler) List(c *gin.Context) {
	var filter models.ExamResultFilter
	filter.StudentID = c.Query("studentId")
	filter.CourseID = c.Query("courseId")
	filter.Semester = queryInt(c, "semester")
	filter.AcademicYear = c.Query("academicYear")
	if examType := c.Query("examType"); examType != "" {
		t := models.ExamType(examType)
		if !t.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown exam type"))
			return
		}
		filter.ExamType = &t
	}
	filter.Declared = queryBool(c, "declared")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	results, pagination, err := h.exams.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, pagination)
}

// Get godoc
// @Summary Get exam result
// @Tags Examinations
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /examinations/results/{id} [get]
func (h *ExaminationHandler) Get(c *gin.Context) {
	result, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Percentage godoc
// @Summary Result percentage breakdown
// @Tags Examinations
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /examinations/results/{id}/percentage [get]
func (h *ExaminationHandler) Percentage(c *gin.Context) {
	pct, err := h.exams.Percentage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pct, nil)
}

// Declare godoc
// @Summary Declare exam result
// @Description Enters marks, computes the grade and publishes the result
// @Tags Examinations
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.DeclareResultRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /examinations/results/{id}/declare [post]
func (h *ExaminationHandler) Declare(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.DeclareResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}

	result, err := h.exams.DeclareResult(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Update godoc
// @Summary Correct a declared result
// @Tags Examinations
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param payload body service.DeclareResultRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Router /examinations/results/{id} [put]
func (h *ExaminationHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.DeclareResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}

	result, err := h.exams.UpdateResult(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// StudentResults godoc
// @Summary List a student's declared results
// @Tags Examinations
// @Produce json
// @Param rollNo path string true "Roll number"
// @Param semester query int false "Filter by semester"
// @Param academicYear query string false "Filter by academic year"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/results [get]
func (h *ExaminationHandler) StudentResults(c *gin.Context) {
	results, err := h.exams.StudentResults(c.Request.Context(), c.Param("rollNo"), queryInt(c, "semester"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// SemesterGPA godoc
// @Summary Semester GPA for a student
// @Tags Examinations
// @Produce json
// @Param rollNo path string true "Roll number"
// @Param semester query int true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/sgpa [get]
func (h *ExaminationHandler) SemesterGPA(c *gin.Context) {
	semester, academicYear, err := semesterAndYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	gpa, err := h.exams.SemesterGPA(c.Request.Context(), c.Param("rollNo"), semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gpa, nil)
}

// CumulativeGPA godoc
// @Summary Cumulative GPA for a student
// @Tags Examinations
// @Produce json
// @Param rollNo path string true "Roll number"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/cgpa [get]
func (h *ExaminationHandler) CumulativeGPA(c *gin.Context) {
	gpa, err := h.exams.CumulativeGPA(c.Request.Context(), c.Param("rollNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gpa, nil)
}

// AcademicRecord godoc
// @Summary Full academic record for a student
// @Tags Examinations
// @Produce json
// @Param rollNo path string true "Roll number"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/academic-record [get]
func (h *ExaminationHandler) AcademicRecord(c *gin.Context) {
	record, err := h.exams.AcademicRecord(c.Request.Context(), c.Param("rollNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Marksheet godoc
// @Summary Semester marksheet for a student
// @Description Returns JSON by default; format=pdf downloads a rendered marksheet
// @Tags Examinations
// @Produce json
// @Produce application/pdf
// @Param rollNo path string true "Roll number"
// @Param semester query int true "Semester"
// @Param academicYear query string true "Academic year"
// @Param format query string false "Response format (json or pdf)"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/marksheet [get]
func (h *ExaminationHandler) Marksheet(c *gin.Context) {
	semester, academicYear, err := semesterAndYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rollNo := c.Param("rollNo")
	marksheet, err := h.exams.Marksheet(c.Request.Context(), rollNo, semester, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}

	if strings.EqualFold(c.Query("format"), "pdf") {
		data, err := h.exporter.MarksheetPDF(marksheet)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("marksheet_%s_sem%d.pdf", rollNo, semester)))
		c.Data(http.StatusOK, "application/pdf", data)
		return
	}

	response.JSON(c, http.StatusOK, marksheet, nil)
}

// ClassPerformance godoc
// @Summary Class performance summary
// @Tags Examinations
// @Produce json
// @Param courseId query string true "Course ID"
// @Param semester query int true "Semester"
// @Param academicYear query string true "Academic year"
// @Param examType query string false "Filter by exam type"
// @Success 200 {object} response.Envelope
// @Router /examinations/class-performance [get]
func (h *ExaminationHandler) ClassPerformance(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "courseId is required"))
		return
	}
	semester, academicYear, err := semesterAndYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var examType *models.ExamType
	if raw := c.Query("examType"); raw != "" {
		t := models.ExamType(raw)
		if !t.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown exam type"))
			return
		}
		examType = &t
	}

	performance, err := h.exams.ClassPerformance(c.Request.Context(), courseID, semester, academicYear, examType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, performance, nil)
}

func semesterAndYear(c *gin.Context) (int, string, error) {
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester < 1 {
		return 0, "", appErrors.Clone(appErrors.ErrValidation, "semester is required")
	}
	academicYear := strings.TrimSpace(c.Query("academicYear"))
	if academicYear == "" {
		return 0, "", appErrors.Clone(appErrors.ErrValidation, "academicYear is required")
	}
	return semester, academicYear, nil
}
