package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawam-hq/dawam-api/internal/service"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/response"
)

// DashboardHandler serves the role-scoped dashboard document.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Get godoc
// @Summary Role-scoped dashboard
// @Description Admins get an org-wide view, managers a department view, everyone else a personal view.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dashboard, err := h.service.For(c.Request.Context(), claims.Person())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
