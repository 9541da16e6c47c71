package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type attendanceRepository interface {
	UpsertCheckIn(ctx context.Context, personID string, date time.Time, checkIn string, at time.Time) (*models.AttendanceRecord, error)
	UpsertAbsent(ctx context.Context, personID string, date time.Time, at time.Time) (*models.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, personID string, date time.Time, checkOut string, at time.Time) (bool, error)
	GetForDay(ctx context.Context, personID string, date time.Time) (*models.AttendanceRecord, error)
	Board(ctx context.Context, date time.Time, department string) ([]models.AttendanceBoardRow, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceBoardRow, int, error)
	LifetimeStats(ctx context.Context, personID string) (*models.LifetimeStats, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AttendanceService owns the daily ledger. Every mutation funnels through the
// repository upserts, so two concurrent marks for the same (person, day) can
// never produce two rows.
type AttendanceService struct {
	repo   attendanceRepository
	cache  cacheInvalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance. cache may be
// nil when no aggregation cache is wired.
func NewAttendanceService(repo attendanceRepository, cache cacheInvalidator, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func (s *AttendanceService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "stats:*"); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

// CheckIn marks the person present for today, stamping the current wall-clock
// time. Re-checking in overwrites the time; an earlier check-out and an
// earlier absent mark are both resolved in favour of presence.
func (s *AttendanceService) CheckIn(ctx context.Context, personID string) (*models.AttendanceRecord, error) {
	now := s.now()
	record, err := s.repo.UpsertCheckIn(ctx, personID, dayOf(now), clockTime(now), now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-in")
	}
	s.invalidateStats(ctx)
	s.logger.Info("check-in",
		zap.String("person_id", personID),
		zap.String("time", record.CheckIn))
	return record, nil
}

// CheckOut stamps today's check-out time. Without a prior check-in the call
// is silently ignored and returns nil.
func (s *AttendanceService) CheckOut(ctx context.Context, personID string) (*models.AttendanceRecord, error) {
	now := s.now()
	day := dayOf(now)
	updated, err := s.repo.SetCheckOut(ctx, personID, day, clockTime(now), now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record check-out")
	}
	if !updated {
		return nil, nil
	}
	s.invalidateStats(ctx)
	record, err := s.repo.GetForDay(ctx, personID, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance record")
	}
	return record, nil
}

// MarkAbsent records an absence for the given day (today when empty), wiping
// any stamped times. A later check-in overrides the absence.
func (s *AttendanceService) MarkAbsent(ctx context.Context, personID, date string) (*models.AttendanceRecord, error) {
	now := s.now()
	day := dayOf(now)
	if date != "" {
		parsed, err := parseDay(date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		day = parsed
	}
	record, err := s.repo.UpsertAbsent(ctx, personID, day, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record absence")
	}
	s.invalidateStats(ctx)
	s.logger.Info("absence marked",
		zap.String("person_id", personID),
		zap.Time("date", day))
	return record, nil
}

// Today returns the person's record for the current day, status unmarked when
// none exists.
func (s *AttendanceService) Today(ctx context.Context, personID string) (*models.AttendanceRecord, error) {
	day := dayOf(s.now())
	record, err := s.repo.GetForDay(ctx, personID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.AttendanceRecord{
				PersonID: personID,
				Date:     day,
				Status:   models.AttendanceStatusUnmarked,
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance record")
	}
	return record, nil
}

// Board lists the marked records for one day (today when empty), optionally
// scoped to a department.
func (s *AttendanceService) Board(ctx context.Context, date, department string) ([]models.AttendanceBoardRow, error) {
	day := dayOf(s.now())
	if date != "" {
		parsed, err := parseDay(date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		day = parsed
	}
	rows, err := s.repo.Board(ctx, day, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance board")
	}
	return rows, nil
}

// List returns ledger rows matching the filter plus pagination metadata.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceBoardRow, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// StatsFor returns a person's lifetime present/absent counters.
func (s *AttendanceService) StatsFor(ctx context.Context, personID string) (*models.LifetimeStats, error) {
	stats, err := s.repo.LifetimeStats(ctx, personID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute lifetime stats")
	}
	return stats, nil
}
