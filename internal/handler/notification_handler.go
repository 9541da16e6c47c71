package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/service"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/response"
)

// NotificationHandler serves derived attendance alerts.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary Current attendance alerts
// @Description Late arrivals, absences and low attendance rates for today.
// @Tags Notifications
// @Produce json
// @Param department query string false "Scope to a department"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	department := c.Query("department")
	if !claims.Role.Can(models.CapabilityViewAllDepts) {
		department = claims.Department
	}

	notifications, err := h.service.List(c.Request.Context(), department)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}
