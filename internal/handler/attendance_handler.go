package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/service"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/response"
)

// AttendanceHandler exposes the daily ledger endpoints.
type AttendanceHandler struct {
	service   *service.AttendanceService
	directory *service.DirectoryService
	metrics   *service.MetricsService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, directory *service.DirectoryService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, directory: directory, metrics: metrics}
}

func (h *AttendanceHandler) countMark(kind string) {
	if h.metrics != nil {
		h.metrics.CountAttendanceMark(kind)
	}
}

type markRequest struct {
	PersonID string `json:"person_id"`
	Date     string `json:"date"`
}

// bindMark reads the optional mark payload. Endpoints accept an empty body
// for the common self-mark case.
func bindMark(c *gin.Context) (markRequest, error) {
	var req markRequest
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid mark payload")
	}
	return req, nil
}

// resolveTarget decides whose ledger a mark applies to. Without a person_id
// the caller targets themselves. Marking someone else requires the people
// management capability, and supervisors without cross-department access may
// only reach their own department.
func (h *AttendanceHandler) resolveTarget(c *gin.Context, claims *models.JWTClaims, requested string) (string, bool) {
	if requested == "" || requested == claims.UserID {
		return claims.UserID, true
	}
	if !claims.Role.Can(models.CapabilityManagePeople) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot mark attendance for another person"))
		return "", false
	}
	if !claims.Role.Can(models.CapabilityViewAllDepts) {
		person, err := h.directory.FindByID(c.Request.Context(), requested)
		if err != nil {
			response.Error(c, err)
			return "", false
		}
		if person.Department != claims.Department {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "person is outside your department"))
			return "", false
		}
	}
	return requested, true
}

// CheckIn godoc
// @Summary Record a check-in for today
// @Description Without a body the caller checks themselves in. Supervisors may pass person_id to check in someone from their own department.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body markRequest false "Optional target"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, err := bindMark(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	target, ok := h.resolveTarget(c, claims, req.PersonID)
	if !ok {
		return
	}

	record, err := h.service.CheckIn(c.Request.Context(), target)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.countMark("check_in")
	response.JSON(c, http.StatusOK, record, nil)
}

// CheckOut godoc
// @Summary Record a check-out for today
// @Description A check-out without a prior check-in is ignored and returns no record. Supervisors may pass person_id for someone in their own department.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body markRequest false "Optional target"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, err := bindMark(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	target, ok := h.resolveTarget(c, claims, req.PersonID)
	if !ok {
		return
	}

	record, err := h.service.CheckOut(c.Request.Context(), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	if record == nil {
		response.JSON(c, http.StatusOK, nil, nil, map[string]interface{}{"updated": false})
		return
	}

	h.countMark("check_out")
	response.JSON(c, http.StatusOK, record, nil)
}

// MarkAbsent godoc
// @Summary Mark a person absent for a day
// @Description Date defaults to today. person_id defaults to the caller; marking someone else follows the same rules as check-in.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body markRequest false "Absent payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/absent [post]
func (h *AttendanceHandler) MarkAbsent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, err := bindMark(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	target, ok := h.resolveTarget(c, claims, req.PersonID)
	if !ok {
		return
	}

	record, err := h.service.MarkAbsent(c.Request.Context(), target, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.countMark("absent")
	response.JSON(c, http.StatusOK, record, nil)
}

// Today godoc
// @Summary Get the caller's record for today
// @Description Returns an unmarked placeholder when nothing is recorded yet.
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendance/me [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	record, err := h.service.Today(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Board godoc
// @Summary Attendance board for a day
// @Description Managers without the view-all capability are pinned to their own department.
// @Tags Attendance
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Param department query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /attendance/board [get]
func (h *AttendanceHandler) Board(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	department := c.Query("department")
	if !claims.Role.Can(models.CapabilityViewAllDepts) {
		department = claims.Department
	}

	rows, err := h.service.Board(c.Request.Context(), c.Query("date"), department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// List godoc
// @Summary Paginated attendance history
// @Tags Attendance
// @Produce json
// @Param person_id query string false "Filter by person"
// @Param department query string false "Filter by department"
// @Param status query string false "present or absent"
// @Param from query string false "Start day (YYYY-MM-DD)"
// @Param to query string false "End day (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "date, status, name or timestamp"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

	filter := models.AttendanceFilter{
		PersonID:   c.Query("person_id"),
		Department: c.Query("department"),
		Page:       page,
		PageSize:   pageSize,
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if !claims.Role.Can(models.CapabilityViewAllDepts) {
		filter.Department = claims.Department
	}
	if raw := c.Query("status"); raw != "" {
		status := models.AttendanceStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be present or absent"))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("from"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
			return
		}
		filter.DateFrom = &day
	}
	if raw := c.Query("to"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
			return
		}
		filter.DateTo = &day
	}

	rows, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Stats godoc
// @Summary Lifetime attendance counters for a person
// @Tags Attendance
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/stats/{id} [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	personID := c.Param("id")
	if personID != claims.UserID && !claims.Role.Can(models.CapabilityReviewVacations) {
		response.Error(c, appErrors.ErrForbidden)
		return
	}

	stats, err := h.service.StatsFor(c.Request.Context(), personID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
