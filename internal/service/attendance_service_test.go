package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository/memory"
)

func testAttendanceService(t *testing.T, at time.Time) (*AttendanceService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.Seed(store))
	svc := NewAttendanceService(store.Attendance(), nil, nil)
	svc.now = func() time.Time { return at }
	return svc, store
}

func TestCheckInThenCheckOutYieldsSingleCompleteRecord(t *testing.T) {
	morning := time.Date(2026, time.August, 10, 8, 30, 0, 0, time.UTC)
	svc, store := testAttendanceService(t, morning)
	ctx := context.Background()

	record, err := svc.CheckIn(ctx, "emp-ahmed")
	require.NoError(t, err)
	assert.Equal(t, "08:30", record.CheckIn)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
	assert.Empty(t, record.CheckOut)

	svc.now = func() time.Time { return morning.Add(8*time.Hour + 35*time.Minute) }
	record, err = svc.CheckOut(ctx, "emp-ahmed")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "08:30", record.CheckIn)
	assert.Equal(t, "17:05", record.CheckOut)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)

	board, err := store.Attendance().Board(ctx, record.Date, "")
	require.NoError(t, err)
	assert.Len(t, board, 1)
}

func TestCheckInOverridesSameDayAbsence(t *testing.T) {
	now := time.Date(2026, time.August, 10, 10, 2, 0, 0, time.UTC)
	svc, _ := testAttendanceService(t, now)
	ctx := context.Background()

	_, err := svc.MarkAbsent(ctx, "emp-ahmed", "")
	require.NoError(t, err)

	record, err := svc.CheckIn(ctx, "emp-ahmed")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
	assert.Equal(t, "10:02", record.CheckIn)
}

func TestMarkAbsentBlanksStampedTimes(t *testing.T) {
	now := time.Date(2026, time.August, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := testAttendanceService(t, now)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "emp-ahmed")
	require.NoError(t, err)
	_, err = svc.CheckOut(ctx, "emp-ahmed")
	require.NoError(t, err)

	record, err := svc.MarkAbsent(ctx, "emp-ahmed", "")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusAbsent, record.Status)
	assert.Empty(t, record.CheckIn)
	assert.Empty(t, record.CheckOut)
}

func TestCheckOutWithoutCheckInSilentlyIgnored(t *testing.T) {
	now := time.Date(2026, time.August, 10, 17, 0, 0, 0, time.UTC)
	svc, _ := testAttendanceService(t, now)

	record, err := svc.CheckOut(context.Background(), "emp-ahmed")
	require.NoError(t, err)
	assert.Nil(t, record)

	today, err := svc.Today(context.Background(), "emp-ahmed")
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusUnmarked, today.Status)
}

func TestStatsForCountsDistinctDays(t *testing.T) {
	base := time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC)
	svc, _ := testAttendanceService(t, base)
	ctx := context.Background()

	// Three check-ins and two absence marks on five distinct days.
	for i := 0; i < 3; i++ {
		day := base.AddDate(0, 0, i)
		svc.now = func() time.Time { return day }
		_, err := svc.CheckIn(ctx, "emp-ahmed")
		require.NoError(t, err)
	}
	for i := 3; i < 5; i++ {
		day := base.AddDate(0, 0, i)
		svc.now = func() time.Time { return day }
		_, err := svc.MarkAbsent(ctx, "emp-ahmed", "")
		require.NoError(t, err)
	}

	stats, err := svc.StatsFor(ctx, "emp-ahmed")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Present)
	assert.Equal(t, 2, stats.Absent)
	assert.Equal(t, 5, stats.Total)
}

func TestMarkAbsentRejectsBadDate(t *testing.T) {
	svc, _ := testAttendanceService(t, time.Now())

	_, err := svc.MarkAbsent(context.Background(), "emp-ahmed", "10-08-2026")
	assert.Error(t, err)
}
