package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/service"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/response"
)

// StatsHandler exposes the aggregated statistics report.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Report godoc
// @Summary Aggregated attendance statistics
// @Description Managers without the view-all capability are pinned to their own department.
// @Tags Statistics
// @Produce json
// @Param period query string false "week, month, quarter or year (default month)"
// @Param department query string false "Scope to a department"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	period := models.Period(c.DefaultQuery("period", string(models.PeriodMonth)))
	if !period.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be week, month, quarter or year"))
		return
	}

	department := c.Query("department")
	if !claims.Role.Can(models.CapabilityViewAllDepts) {
		department = claims.Department
	}

	report, err := h.service.Report(c.Request.Context(), period, department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
