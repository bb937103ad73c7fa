package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-erp-api/internal/dto"
	"github.com/noah-isme/campus-erp-api/internal/middleware"
	"github.com/noah-isme/campus-erp-api/internal/models"
)

type fakeDashboardSrv struct {
	adminResp   *dto.AdminDashboardResponse
	adminErr    error
	adminHit    bool
	staffResp   *dto.StaffDashboardResponse
	studentResp *dto.StudentDashboardResponse
	chartResp   *dto.EnrollmentChartResponse
	feeResp     *dto.FeeCollectionChartResponse
	lastRollNo  string
	lastYear    string
}

func (f *fakeDashboardSrv) Admin(context.Context, string) (*dto.AdminDashboardResponse, bool, error) {
	return f.adminResp, f.adminHit, f.adminErr
}

func (f *fakeDashboardSrv) Staff(context.Context, string) (*dto.StaffDashboardResponse, bool, error) {
	return f.staffResp, false, nil
}

func (f *fakeDashboardSrv) Student(_ context.Context, rollNo string) (*dto.StudentDashboardResponse, bool, error) {
	f.lastRollNo = rollNo
	return f.studentResp, false, nil
}

func (f *fakeDashboardSrv) EnrollmentChart(_ context.Context, academicYear string) (*dto.EnrollmentChartResponse, error) {
	f.lastYear = academicYear
	return f.chartResp, nil
}

func (f *fakeDashboardSrv) FeeCollectionChart(_ context.Context, academicYear string) (*dto.FeeCollectionChartResponse, error) {
	f.lastYear = academicYear
	return f.feeResp, nil
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{
		PrincipalID:   "2025ADM0001",
		PrincipalType: models.PrincipalStaff,
		Role:          string(models.RoleAdmin),
	}
}

func TestDashboardHandlerAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		adminResp: &dto.AdminDashboardResponse{ActiveStudents: 120},
		adminHit:  true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Admin(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(120), envelope.Data["active_students"])
}

func TestDashboardHandlerAdminUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)

	handler.Admin(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerStudentUsesClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{studentResp: &dto.StudentDashboardResponse{}}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/student", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		PrincipalID:   "2025CS0001",
		PrincipalType: models.PrincipalStudent,
		Role:          models.RoleStudent,
	})

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025CS0001", service.lastRollNo)
}

func TestDashboardHandlerEnrollmentChartRequiresYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/charts/enrollment", nil)

	handler.EnrollmentChart(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerFeeCollectionChart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{feeResp: &dto.FeeCollectionChartResponse{AcademicYear: "2025-26"}}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/charts/fees?academicYear=2025-26", nil)

	handler.FeeCollectionChart(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-26", service.lastYear)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
