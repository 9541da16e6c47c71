package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/stats"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type statsDirectory interface {
	List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error)
}

type statsLedger interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// StatsService computes period aggregations over the employee ledger, with a
// short-lived cache in front. Aggregation itself lives in the stats package;
// this service only loads data and caches results.
type StatsService struct {
	directory statsDirectory
	ledger    statsLedger
	cache     statsCache
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewStatsService constructs a StatsService instance. cache may be nil.
func NewStatsService(directory statsDirectory, ledger statsLedger, cache statsCache, logger *zap.Logger, cacheTTL time.Duration) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		directory: directory,
		ledger:    ledger,
		cache:     cache,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// Report returns the full aggregation for a period, optionally scoped to one
// department. Unknown periods fall back to the trailing 30 days.
func (s *StatsService) Report(ctx context.Context, period models.Period, department string) (*models.StatsReport, error) {
	if period != "" && !period.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown period %q", period))
	}

	key := fmt.Sprintf("stats:%s:%s:%s", period, department, dayOf(s.now()).Format(dayLayout))
	if s.cache != nil {
		var cached models.StatsReport
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	report, err := s.compute(ctx, period, department)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return report, nil
}

func (s *StatsService) compute(ctx context.Context, period models.Period, department string) (*models.StatsReport, error) {
	people, err := listAllPeople(ctx, s.directory, models.RoleEmployee, department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}

	now := s.now()
	start, end := stats.PeriodBounds(period, now)
	records, err := s.ledger.ListBetween(ctx, dayOf(start), dayOf(end))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	if department != "" {
		// The ledger query cannot scope by department, so restrict records
		// to the loaded people.
		ids := make(map[string]struct{}, len(people))
		for _, p := range people {
			ids[p.ID] = struct{}{}
		}
		scoped := records[:0]
		for _, r := range records {
			if _, ok := ids[r.PersonID]; ok {
				scoped = append(scoped, r)
			}
		}
		records = scoped
	}

	report := stats.Report(people, records, period, now)
	return &report, nil
}
