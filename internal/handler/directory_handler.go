package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/service"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/response"
)

// DirectoryHandler exposes CRUD endpoints for one principal collection.
// The router mounts one instance per role (employees, managers, students).
type DirectoryHandler struct {
	service *service.DirectoryService
	role    models.Role
}

// NewDirectoryHandler creates a handler bound to a role's collection.
func NewDirectoryHandler(svc *service.DirectoryService, role models.Role) *DirectoryHandler {
	return &DirectoryHandler{service: svc, role: role}
}

// List godoc
// @Summary List principals in a collection
// @Tags Directory
// @Produce json
// @Param department query string false "Filter by department"
// @Param search query string false "Match against name or email"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *DirectoryHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filter := models.PersonFilter{
		Department: c.Query("department"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	}

	people, pagination, err := h.service.List(c.Request.Context(), h.role, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, people, pagination)
}

// Get godoc
// @Summary Get one principal
// @Tags Directory
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *DirectoryHandler) Get(c *gin.Context) {
	person, err := h.service.Get(c.Request.Context(), h.role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Create godoc
// @Summary Create a principal
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body service.PersonInput true "Person payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /employees [post]
func (h *DirectoryHandler) Create(c *gin.Context) {
	var input service.PersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid person payload"))
		return
	}

	person, err := h.service.Create(c.Request.Context(), h.role, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, person, nil)
}

// Update godoc
// @Summary Update a principal
// @Tags Directory
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param payload body service.PersonInput true "Person payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *DirectoryHandler) Update(c *gin.Context) {
	var input service.PersonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid person payload"))
		return
	}

	person, err := h.service.Update(c.Request.Context(), h.role, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, person, nil)
}

// Delete godoc
// @Summary Delete a principal and their attendance ledger
// @Tags Directory
// @Produce json
// @Param id path string true "Person ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /employees/{id} [delete]
func (h *DirectoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), h.role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
