package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// NotificationConfig sets the alert thresholds.
type NotificationConfig struct {
	// Wall-clock HH:MM after which a check-in counts as late.
	LateAfter string
	// Monthly rate below which an employee triggers a low-rate alert.
	LowRateThreshold float64
}

type notificationBoard interface {
	Board(ctx context.Context, date, department string) ([]models.AttendanceBoardRow, error)
}

type notificationStats interface {
	Report(ctx context.Context, period models.Period, department string) (*models.StatsReport, error)
}

// NotificationService derives alerts on demand from today's board and the
// monthly aggregation. Nothing is stored; the list is recomputed per request.
type NotificationService struct {
	board  notificationBoard
	stats  notificationStats
	logger *zap.Logger
	config NotificationConfig
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(board notificationBoard, stats notificationStats, logger *zap.Logger, config NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.LateAfter == "" {
		config.LateAfter = "09:00"
	}
	return &NotificationService{board: board, stats: stats, logger: logger, config: config}
}

// List computes the current alerts, optionally scoped to a department.
func (s *NotificationService) List(ctx context.Context, department string) ([]models.Notification, error) {
	rows, err := s.board.Board(ctx, "", department)
	if err != nil {
		return nil, err
	}

	out := make([]models.Notification, 0)
	for _, row := range rows {
		switch {
		case row.Status == models.AttendanceStatusAbsent:
			out = append(out, models.Notification{
				ID:       "absent-" + row.PersonID,
				Kind:     models.NotificationAbsent,
				Title:    "Absence recorded",
				Message:  fmt.Sprintf("%s (%s) is marked absent today", row.PersonName, row.Department),
				Time:     row.Timestamp.Format(time.RFC3339),
				Priority: "high",
			})
		case row.Status == models.AttendanceStatusPresent && row.CheckIn > s.config.LateAfter:
			out = append(out, models.Notification{
				ID:       "late-" + row.PersonID,
				Kind:     models.NotificationLate,
				Title:    "Late arrival",
				Message:  fmt.Sprintf("%s checked in at %s", row.PersonName, row.CheckIn),
				Time:     row.Timestamp.Format(time.RFC3339),
				Priority: "medium",
			})
		}
	}

	report, err := s.stats.Report(ctx, models.PeriodMonth, department)
	if err != nil {
		// Low-rate alerts are best effort; the board alerts still stand.
		s.logger.Warn("failed to load monthly stats for notifications", zap.Error(err))
		return out, nil
	}
	for _, employee := range report.Employees {
		if float64(employee.Rate) < s.config.LowRateThreshold && employee.PresentDays+employee.AbsentDays > 0 {
			out = append(out, models.Notification{
				ID:       "low-rate-" + employee.ID,
				Kind:     models.NotificationLowRate,
				Title:    "Low attendance rate",
				Message:  fmt.Sprintf("%s is at %d%% this month", employee.Name, employee.Rate),
				Priority: "low",
			})
		}
	}
	return out, nil
}
