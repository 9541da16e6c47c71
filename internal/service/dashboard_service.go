package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

// AdminDashboard is the management view: global or department-scoped
// aggregation plus today's board and the review queue size.
type AdminDashboard struct {
	Overview       models.StatsOverview        `json:"overview"`
	TopPerformers  []models.EmployeeStat       `json:"top_performers"`
	Departments    []models.DepartmentStat     `json:"departments"`
	TodayBoard     []models.AttendanceBoardRow `json:"today_board"`
	PendingReviews int                         `json:"pending_reviews"`
	Capabilities   []models.Capability         `json:"capabilities"`
}

// PersonalDashboard is the self-service view for employees and students.
type PersonalDashboard struct {
	Today         *models.AttendanceRecord `json:"today"`
	LifetimeStats *models.LifetimeStats    `json:"lifetime_stats"`
	Vacations     []models.VacationRequest `json:"vacations"`
	Capabilities  []models.Capability      `json:"capabilities"`
}

// Dashboard is the role-dispatched payload; exactly one field is set.
type Dashboard struct {
	Admin    *AdminDashboard    `json:"admin,omitempty"`
	Personal *PersonalDashboard `json:"personal,omitempty"`
}

type dashboardAttendance interface {
	Board(ctx context.Context, date, department string) ([]models.AttendanceBoardRow, error)
	Today(ctx context.Context, personID string) (*models.AttendanceRecord, error)
	StatsFor(ctx context.Context, personID string) (*models.LifetimeStats, error)
}

type dashboardVacations interface {
	ListMine(ctx context.Context, requesterID string) ([]models.VacationRequest, error)
	ListForReview(ctx context.Context, reviewer models.Person) ([]models.VacationRequest, error)
}

type dashboardStats interface {
	Report(ctx context.Context, period models.Period, department string) (*models.StatsReport, error)
}

// DashboardService composes the per-role landing payloads. Admins see the
// whole company, managers see their department, everyone else sees
// themselves.
type DashboardService struct {
	attendance dashboardAttendance
	vacations  dashboardVacations
	stats      dashboardStats
	logger     *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(attendance dashboardAttendance, vacations dashboardVacations, stats dashboardStats, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{attendance: attendance, vacations: vacations, stats: stats, logger: logger}
}

func capabilitiesOf(role models.Role) []models.Capability {
	all := []models.Capability{
		models.CapabilityManagePeople,
		models.CapabilityManageDepartments,
		models.CapabilityReviewVacations,
		models.CapabilityViewAllDepts,
		models.CapabilityExportReports,
		models.CapabilityMarkAttendance,
	}
	granted := make([]models.Capability, 0, len(all))
	for _, c := range all {
		if role.Can(c) {
			granted = append(granted, c)
		}
	}
	return granted
}

// For returns the dashboard for the authenticated principal.
func (s *DashboardService) For(ctx context.Context, viewer models.Person) (*Dashboard, error) {
	switch viewer.Role {
	case models.RoleAdmin:
		dashboard, err := s.management(ctx, viewer, "")
		if err != nil {
			return nil, err
		}
		return &Dashboard{Admin: dashboard}, nil
	case models.RoleManager:
		dashboard, err := s.management(ctx, viewer, viewer.Department)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Admin: dashboard}, nil
	case models.RoleEmployee, models.RoleStudent:
		dashboard, err := s.personal(ctx, viewer)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Personal: dashboard}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	}
}

func (s *DashboardService) management(ctx context.Context, viewer models.Person, department string) (*AdminDashboard, error) {
	report, err := s.stats.Report(ctx, models.PeriodMonth, department)
	if err != nil {
		return nil, err
	}
	board, err := s.attendance.Board(ctx, "", department)
	if err != nil {
		return nil, err
	}
	reviews, err := s.vacations.ListForReview(ctx, viewer)
	if err != nil {
		return nil, err
	}
	pending := 0
	for _, request := range reviews {
		if request.Status == models.VacationStatusPending {
			pending++
		}
	}
	return &AdminDashboard{
		Overview:       report.Overview,
		TopPerformers:  report.TopPerformers,
		Departments:    report.Departments,
		TodayBoard:     board,
		PendingReviews: pending,
		Capabilities:   capabilitiesOf(viewer.Role),
	}, nil
}

func (s *DashboardService) personal(ctx context.Context, viewer models.Person) (*PersonalDashboard, error) {
	today, err := s.attendance.Today(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	lifetime, err := s.attendance.StatsFor(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	vacations, err := s.vacations.ListMine(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	return &PersonalDashboard{
		Today:         today,
		LifetimeStats: lifetime,
		Vacations:     vacations,
		Capabilities:  capabilitiesOf(viewer.Role),
	}, nil
}
