package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawam-hq/dawam-api/internal/service"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/response"
)

// VacationHandler exposes the leave request workflow.
type VacationHandler struct {
	service *service.VacationService
}

// NewVacationHandler creates a new handler.
func NewVacationHandler(svc *service.VacationService) *VacationHandler {
	return &VacationHandler{service: svc}
}

// Submit godoc
// @Summary Submit a leave request
// @Description Start date must be in the future; end date must not precede it.
// @Tags Vacations
// @Accept json
// @Produce json
// @Param payload body service.VacationInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /vacations [post]
func (h *VacationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input service.VacationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vacation payload"))
		return
	}

	request, err := h.service.Submit(c.Request.Context(), claims.Person(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, request, nil)
}

// Mine godoc
// @Summary List the caller's leave requests
// @Tags Vacations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /vacations/mine [get]
func (h *VacationHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Review godoc
// @Summary List requests awaiting the caller's review
// @Description Admins see every request; managers see their department's.
// @Tags Vacations
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /vacations/review [get]
func (h *VacationHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.ListForReview(c.Request.Context(), claims.Person())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Decide godoc
// @Summary Approve or reject a leave request
// @Description Repeating a decision is a no-op; flipping a decided request conflicts.
// @Tags Vacations
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.ReviewInput true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /vacations/{id}/review [post]
func (h *VacationHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input service.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	request, err := h.service.Review(c.Request.Context(), claims.Person(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
