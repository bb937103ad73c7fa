package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/service"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/response"
)

// FeeHandler exposes fee demands, payments and receipts.
type FeeHandler struct {
	fees     *service.FeeService
	exporter *service.ExportService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService, exporter *service.ExportService) *FeeHandler {
	return &FeeHandler{fees: fees, exporter: exporter}
}

// GenerateDemands godoc
// @Summary Generate semester fee demands
// @Description Creates pending fee records for every active student of a course and semester
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.GenerateDemandsRequest true "Demand payload"
// @Success 201 {object} response.Envelope
// @Router /fees/demands [post]
func (h *FeeHandler) GenerateDemands(c *gin.Context) {
	var req service.GenerateDemandsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid demand payload"))
		return
	}
	result, err := h.fees.GenerateDemands(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List fees
// @Tags Fees
// @Produce json
// @Param studentId query string false "Filter by roll number"
// @Param type query string false "Filter by fee type"
// @Param status query string false "Filter by status"
// @Param semester query int false "Filter by semester"
// @Param academicYear query string false "Filter by academic year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	var filter models.FeeFilter
	filter.StudentID = c.Query("studentId")
	if feeType := c.Query("type"); feeType != "" {
		t := models.FeeType(feeType)
		if !t.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown fee type"))
			return
		}
		filter.FeeType = &t
	}
	if status := c.Query("status"); status != "" {
		s := models.FeeStatus(status)
		if !s.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown fee status"))
			return
		}
		filter.Status = &s
	}
	filter.Semester = queryInt(c, "semester")
	filter.AcademicYear = c.Query("academicYear")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	fees, pagination, err := h.fees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, pagination)
}

// Get godoc
// @Summary Get fee detail
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// RecordPayment godoc
// @Summary Record an offline payment
// @Description Marks a fee paid, assigns a receipt number and emails the receipt
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /fees/{id}/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	fee, err := h.fees.RecordPayment(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// CreateCheckout godoc
// @Summary Start an online payment
// @Description Creates a payment-gateway checkout session for the fee
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /fees/{id}/checkout [post]
func (h *FeeHandler) CreateCheckout(c *gin.Context) {
	checkout, err := h.fees.CreateCheckout(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, checkout)
}

// ConfirmPayment godoc
// @Summary Confirm an online payment
// @Description Settles the fee after the gateway reports a successful transaction
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body map[string]string true "Transaction reference"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/confirm-payment [post]
func (h *FeeHandler) ConfirmPayment(c *gin.Context) {
	var payload struct {
		TransactionRef string `json:"transaction_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "transaction reference is required"))
		return
	}

	fee, err := h.fees.ConfirmOnlinePayment(c.Request.Context(), c.Param("id"), payload.TransactionRef)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Cancel godoc
// @Summary Cancel a recorded payment
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.CancelFeeRequest true "Cancellation payload"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/cancel [post]
func (h *FeeHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CancelFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cancellation payload"))
		return
	}

	fee, err := h.fees.Cancel(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// ApplyDiscount godoc
// @Summary Apply a discount to a pending fee
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.ApplyDiscountRequest true "Discount payload"
// @Success 200 {object} response.Envelope
// @Router /fees/{id}/discount [post]
func (h *FeeHandler) ApplyDiscount(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid discount payload"))
		return
	}

	fee, err := h.fees.ApplyDiscount(c.Request.Context(), c.Param("id"), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Receipt godoc
// @Summary Download a payment receipt
// @Tags Fees
// @Produce application/pdf
// @Param id path string true "Fee ID"
// @Success 200 {file} binary
// @Failure 412 {object} response.Envelope
// @Router /fees/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if fee.Status != models.FeeStatusPaid || fee.ReceiptNumber == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "receipt is available only for paid fees"))
		return
	}

	data, err := h.exporter.ReceiptPDF(fee)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt"))
		return
	}

	filename := "receipt.pdf"
	if fee.ReceiptNumber != nil {
		filename = fmt.Sprintf("receipt_%s.pdf", *fee.ReceiptNumber)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

// StudentSummary godoc
// @Summary Fee summary for a student
// @Tags Fees
// @Produce json
// @Param rollNo path string true "Roll number"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/fees [get]
func (h *FeeHandler) StudentSummary(c *gin.Context) {
	summary, err := h.fees.StudentSummary(c.Request.Context(), c.Param("rollNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Statistics godoc
// @Summary Fee collection statistics
// @Tags Fees
// @Produce json
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /fees/statistics [get]
func (h *FeeHandler) Statistics(c *gin.Context) {
	stats, err := h.fees.Statistics(c.Request.Context(), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
