package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/middleware"
	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/service"
	"github.com/dawam-hq/dawam-api/pkg/logger"
	corsmiddleware "github.com/dawam-hq/dawam-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dawam-hq/dawam-api/pkg/middleware/requestid"
)

// RouterConfig carries the cross-cutting knobs the router needs.
type RouterConfig struct {
	Logger             *zap.Logger
	CORSAllowedOrigins []string
	// LocalMode is reported by /health so clients can tell they are
	// talking to the in-memory fallback instead of the database.
	LocalMode   bool
	EnableDocs  bool
	MetricsPath string
}

// Handlers bundles every mounted handler.
type Handlers struct {
	Auth          *AuthHandler
	Employees     *DirectoryHandler
	Managers      *DirectoryHandler
	Students      *DirectoryHandler
	Departments   *DepartmentHandler
	Attendance    *AttendanceHandler
	Vacations     *VacationHandler
	Stats         *StatsHandler
	Dashboard     *DashboardHandler
	Notifications *NotificationHandler
	Reports       *ReportHandler
}

// NewRouter assembles the gin engine with all middleware and routes.
func NewRouter(cfg RouterConfig, auth *service.AuthService, metrics *service.MetricsService, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if cfg.Logger != nil {
		r.Use(logger.GinMiddleware(cfg.Logger))
	}
	r.Use(corsmiddleware.New(cfg.CORSAllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		mode := "database"
		if cfg.LocalMode {
			mode = "local"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	if metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	v1.POST("/auth/login", h.Auth.Login)
	// Download authenticates with the signed token alone so spreadsheet
	// links keep working outside an authenticated client.
	v1.GET("/reports/download", h.Reports.Download)

	secured := v1.Group("", middleware.JWT(auth))

	secured.GET("/auth/me", h.Auth.Me)

	mountDirectory(secured.Group("/employees"), h.Employees)
	mountDirectory(secured.Group("/managers"), h.Managers)
	mountDirectory(secured.Group("/students"), h.Students)

	departments := secured.Group("/departments")
	departments.GET("", h.Departments.List)
	departments.GET("/:id", h.Departments.Get)
	manageDepts := middleware.RequireCapability(models.CapabilityManageDepartments)
	departments.POST("", manageDepts, h.Departments.Create)
	departments.PUT("/:id", manageDepts, h.Departments.Update)
	departments.DELETE("/:id", manageDepts, h.Departments.Delete)

	attendance := secured.Group("/attendance")
	mark := middleware.RequireCapability(models.CapabilityMarkAttendance)
	attendance.POST("/check-in", mark, h.Attendance.CheckIn)
	attendance.POST("/check-out", mark, h.Attendance.CheckOut)
	attendance.GET("/me", h.Attendance.Today)
	attendance.POST("/absent", mark, h.Attendance.MarkAbsent)
	supervise := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	attendance.GET("/board", supervise, h.Attendance.Board)
	attendance.GET("", supervise, h.Attendance.List)
	attendance.GET("/stats/:id", h.Attendance.Stats)

	vacations := secured.Group("/vacations")
	vacations.POST("", h.Vacations.Submit)
	vacations.GET("/mine", h.Vacations.Mine)
	review := middleware.RequireCapability(models.CapabilityReviewVacations)
	vacations.GET("/review", review, h.Vacations.Review)
	vacations.POST("/:id/review", review, h.Vacations.Decide)

	secured.GET("/stats", supervise, h.Stats.Report)
	secured.GET("/dashboard", h.Dashboard.Get)
	secured.GET("/notifications", supervise, h.Notifications.List)

	reports := secured.Group("/reports", middleware.RequireCapability(models.CapabilityExportReports))
	reports.POST("", h.Reports.Create)
	reports.GET("/:id", h.Reports.Status)

	return r
}

func mountDirectory(g *gin.RouterGroup, h *DirectoryHandler) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	manage := middleware.RequireCapability(models.CapabilityManagePeople)
	g.POST("", manage, h.Create)
	g.PUT("/:id", manage, h.Update)
	g.DELETE("/:id", manage, h.Delete)
}
