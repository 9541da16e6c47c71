package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository/memory"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type fakeStatsCache struct {
	values map[string][]byte
	gets   int
	sets   int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{values: map[string][]byte{}}
}

func (c *fakeStatsCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeStatsCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func testStatsService(t *testing.T, cache statsCache, now time.Time) (*StatsService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.Seed(store))
	svc := NewStatsService(store.Directory(), store.Attendance(), cache, nil, 5*time.Minute)
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestStatsReportComputesAndCaches(t *testing.T) {
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	cache := newFakeStatsCache()
	svc, store := testStatsService(t, cache, now)
	ctx := context.Background()

	day := time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)
	_, err := store.Attendance().UpsertCheckIn(ctx, "emp-ahmed", day, "08:30", day)
	require.NoError(t, err)

	report, err := svc.Report(ctx, models.PeriodWeek, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Overview.PresentCount)
	assert.Equal(t, 2, report.Overview.TotalEmployees)
	assert.Len(t, report.Employees, 2)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from cache.
	cached, err := svc.Report(ctx, models.PeriodWeek, "")
	require.NoError(t, err)
	assert.Equal(t, report.Overview, cached.Overview)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestStatsReportDepartmentScoped(t *testing.T) {
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	svc, store := testStatsService(t, nil, now)
	ctx := context.Background()

	day := time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)
	_, err := store.Attendance().UpsertCheckIn(ctx, "emp-ahmed", day, "08:30", day)
	require.NoError(t, err)
	_, err = store.Attendance().UpsertAbsent(ctx, "emp-fatima", day, day)
	require.NoError(t, err)

	report, err := svc.Report(ctx, models.PeriodWeek, "Engineering")
	require.NoError(t, err)
	require.Len(t, report.Employees, 1)
	assert.Equal(t, "Ahmed Hassan", report.Employees[0].Name)
	// Fatima's absence is outside the scoped department.
	assert.Equal(t, 0, report.Overview.AbsentCount)
}

func TestStatsReportCoversLargeDirectory(t *testing.T) {
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	svc, store := testStatsService(t, nil, now)
	ctx := context.Background()

	// Push the directory past one repository page so the report has to
	// walk every page.
	for i := 0; i < 205; i++ {
		err := store.Directory().Create(ctx, &models.Person{
			ID:         fmt.Sprintf("bulk-%03d", i),
			Name:       fmt.Sprintf("Bulk Employee %03d", i),
			Email:      fmt.Sprintf("bulk%03d@company.local", i),
			Password:   "123456",
			Department: "Operations",
			Role:       models.RoleEmployee,
		})
		require.NoError(t, err)
	}
	day := time.Date(2026, time.August, 5, 0, 0, 0, 0, time.UTC)
	_, err := store.Attendance().UpsertCheckIn(ctx, "bulk-204", day, "08:30", day)
	require.NoError(t, err)

	report, err := svc.Report(ctx, models.PeriodWeek, "")
	require.NoError(t, err)
	assert.Equal(t, 207, report.Overview.TotalEmployees)
	assert.Len(t, report.Employees, 207)

	scoped, err := svc.Report(ctx, models.PeriodWeek, "Operations")
	require.NoError(t, err)
	assert.Equal(t, 205, scoped.Overview.TotalEmployees)
	assert.Equal(t, 1, scoped.Overview.PresentCount)
}

func TestStatsReportRejectsUnknownPeriod(t *testing.T) {
	svc, _ := testStatsService(t, nil, time.Now())

	_, err := svc.Report(context.Background(), "decade", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
