package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/service"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/response"
)

// HostelHandler exposes hostel blocks and bed allocation.
type HostelHandler struct {
	hostels *service.HostelService
}

// NewHostelHandler constructs HostelHandler.
func NewHostelHandler(hostels *service.HostelService) *HostelHandler {
	return &HostelHandler{hostels: hostels}
}

// List godoc
// @Summary List hostels
// @Tags Hostels
// @Produce json
// @Param type query string false "Filter by hostel type"
// @Param active query bool false "Only active hostels"
// @Success 200 {object} response.Envelope
// @Router /hostels [get]
func (h *HostelHandler) List(c *gin.Context) {
	var hostelType *models.HostelType
	if raw := c.Query("type"); raw != "" {
		t := models.HostelType(raw)
		if !t.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown hostel type"))
			return
		}
		hostelType = &t
	}
	activeOnly := c.Query("active") == "true"

	hostels, err := h.hostels.List(c.Request.Context(), hostelType, activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostels, nil)
}

// Get godoc
// @Summary Get hostel
// @Tags Hostels
// @Produce json
// @Param id path string true "Hostel ID"
// @Success 200 {object} response.Envelope
// @Router /hostels/{id} [get]
func (h *HostelHandler) Get(c *gin.Context) {
	hostel, err := h.hostels.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostel, nil)
}

// Create godoc
// @Summary Create hostel block
// @Tags Hostels
// @Accept json
// @Produce json
// @Param payload body service.CreateHostelRequest true "Hostel payload"
// @Success 201 {object} response.Envelope
// @Router /hostels [post]
func (h *HostelHandler) Create(c *gin.Context) {
	var req service.CreateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hostel payload"))
		return
	}
	hostel, err := h.hostels.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hostel)
}

// Update godoc
// @Summary Update hostel block
// @Tags Hostels
// @Accept json
// @Produce json
// @Param id path string true "Hostel ID"
// @Param payload body service.UpdateHostelRequest true "Hostel payload"
// @Success 200 {object} response.Envelope
// @Router /hostels/{id} [put]
func (h *HostelHandler) Update(c *gin.Context) {
	var req service.UpdateHostelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid hostel payload"))
		return
	}
	hostel, err := h.hostels.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hostel, nil)
}

// Allocate godoc
// @Summary Allocate a bed to a student
// @Tags Hostels
// @Accept json
// @Produce json
// @Param payload body service.AllocateRequest true "Allocation payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /hostels/allocations [post]
func (h *HostelHandler) Allocate(c *gin.Context) {
	var req service.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid allocation payload"))
		return
	}
	student, err := h.hostels.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Vacate godoc
// @Summary Vacate a student's bed
// @Tags Hostels
// @Produce json
// @Param rollNo path string true "Roll number"
// @Success 204
// @Router /hostels/allocations/{rollNo} [delete]
func (h *HostelHandler) Vacate(c *gin.Context) {
	if err := h.hostels.Vacate(c.Request.Context(), c.Param("rollNo")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Occupancy godoc
// @Summary Hostel occupancy statistics
// @Tags Hostels
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hostels/occupancy [get]
func (h *HostelHandler) Occupancy(c *gin.Context) {
	stats, err := h.hostels.OccupancyStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
