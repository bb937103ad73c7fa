package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/internal/service"
	appErrors "github.com/noah-isme/campus-erp-api/pkg/errors"
	"github.com/noah-isme/campus-erp-api/pkg/response"
)

// LibraryHandler exposes the book catalogue and circulation endpoints.
type LibraryHandler struct {
	library *service.LibraryService
}

// NewLibraryHandler constructs LibraryHandler.
func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// ListBooks godoc
// @Summary List books
// @Tags Library
// @Produce json
// @Param search query string false "Search by title, author or ISBN"
// @Param category query string false "Filter by category"
// @Param available query bool false "Only books with free copies"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /library/books [get]
func (h *LibraryHandler) ListBooks(c *gin.Context) {
	var filter models.BookFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Category = c.Query("category")
	filter.Available = queryBool(c, "available")
	filter.Active = queryBool(c, "active")
	filter.Page, filter.PageSize = pageParams(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	books, pagination, err := h.library.ListBooks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, books, pagination)
}

// GetBook godoc
// @Summary Get book detail
// @Tags Library
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id} [get]
func (h *LibraryHandler) GetBook(c *gin.Context) {
	book, err := h.library.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// AddBook godoc
// @Summary Add book to catalogue
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body service.CreateBookRequest true "Book payload"
// @Success 201 {object} response.Envelope
// @Router /library/books [post]
func (h *LibraryHandler) AddBook(c *gin.Context) {
	var req service.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}
	book, err := h.library.AddBook(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, book)
}

// UpdateBook godoc
// @Summary Update book
// @Tags Library
// @Accept json
// @Produce json
// @Param id path string true "Book ID"
// @Param payload body service.UpdateBookRequest true "Book payload"
// @Success 200 {object} response.Envelope
// @Router /library/books/{id} [put]
func (h *LibraryHandler) UpdateBook(c *gin.Context) {
	var req service.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid book payload"))
		return
	}
	book, err := h.library.UpdateBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book, nil)
}

// Issue godoc
// @Summary Issue a book to a student
// @Tags Library
// @Accept json
// @Produce json
// @Param payload body service.IssueBookRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /library/issues [post]
func (h *LibraryHandler) Issue(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.IssueBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid issue payload"))
		return
	}

	issue, err := h.library.Issue(c.Request.Context(), claims.PrincipalID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// Renew godoc
// @Summary Renew a book issue
// @Tags Library
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /library/issues/{id}/renew [post]
func (h *LibraryHandler) Renew(c *gin.Context) {
	issue, err := h.library.Renew(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue, nil)
}

// Return godoc
// @Summary Return a book
// @Description Closes the issue and reports any late fee raised against the student
// @Tags Library
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} response.Envelope
// @Router /library/issues/{id}/return [post]
func (h *LibraryHandler) Return(c *gin.Context) {
	result, err := h.library.Return(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListIssues godoc
// @Summary List book issues
// @Tags Library
// @Produce json
// @Param bookId query string false "Filter by book"
// @Param studentId query string false "Filter by roll number"
// @Param status query string false "Filter by status"
// @Param overdue query bool false "Only overdue issues"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /library/issues [get]
func (h *LibraryHandler) ListIssues(c *gin.Context) {
	var filter models.BookIssueFilter
	filter.BookID = c.Query("bookId")
	filter.StudentID = c.Query("studentId")
	if status := c.Query("status"); status != "" {
		s := models.IssueStatus(status)
		if !s.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown issue status"))
			return
		}
		filter.Status = &s
	}
	filter.Overdue = queryBool(c, "overdue")
	filter.Page, filter.PageSize = pageParams(c)

	issues, pagination, err := h.library.ListIssues(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues, pagination)
}

// Overdues godoc
// @Summary List overdue issues
// @Tags Library
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /library/overdues [get]
func (h *LibraryHandler) Overdues(c *gin.Context) {
	page, size := pageParams(c)
	issues, pagination, err := h.library.Overdues(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues, pagination)
}

// StudentHistory godoc
// @Summary Borrowing history for a student
// @Tags Library
// @Produce json
// @Param rollNo path string true "Roll number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students/{rollNo}/library [get]
func (h *LibraryHandler) StudentHistory(c *gin.Context) {
	page, size := pageParams(c)
	issues, pagination, err := h.library.StudentHistory(c.Request.Context(), c.Param("rollNo"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues, pagination)
}

// Statistics godoc
// @Summary Library circulation statistics
// @Tags Library
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /library/statistics [get]
func (h *LibraryHandler) Statistics(c *gin.Context) {
	stats, err := h.library.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
