package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dawam-hq/dawam-api/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func record(personID, date string, status models.AttendanceStatus) models.AttendanceRecord {
	d, _ := time.Parse("2006-01-02", date)
	return models.AttendanceRecord{PersonID: personID, Date: d, Status: status}
}

func TestPeriodBounds(t *testing.T) {
	now := time.Date(2026, time.August, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		period models.Period
		start  time.Time
	}{
		{models.PeriodWeek, time.Date(2026, time.August, 8, 10, 30, 0, 0, time.UTC)},
		{models.PeriodMonth, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{models.PeriodQuarter, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{models.PeriodYear, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			start, end := PeriodBounds(tt.period, now)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, now, end)
		})
	}
}

func TestPeriodLengthDays(t *testing.T) {
	now := time.Date(2026, time.August, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, 7, PeriodLengthDays(models.PeriodWeek, now))
	// Aug 1 00:00 to Aug 15 10:30 is 14 days 10.5 hours, rounded up.
	assert.Equal(t, 15, PeriodLengthDays(models.PeriodMonth, now))
}

func TestEmployeeStatsCountsAndRate(t *testing.T) {
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	people := []models.Person{
		{ID: "e1", Name: "Ahmed", Department: "Engineering"},
		{ID: "e2", Name: "Fatima", Department: "Engineering"},
	}
	records := []models.AttendanceRecord{
		record("e1", "2026-08-04", models.AttendanceStatusPresent),
		record("e1", "2026-08-05", models.AttendanceStatusPresent),
		record("e1", "2026-08-06", models.AttendanceStatusAbsent),
		// Outside the week window, must be ignored.
		record("e1", "2026-07-01", models.AttendanceStatusPresent),
		record("e2", "2026-08-07", models.AttendanceStatusAbsent),
	}

	stats := EmployeeStats(people, records, models.PeriodWeek, now)

	assert.Len(t, stats, 2)
	assert.Equal(t, 2, stats[0].PresentDays)
	assert.Equal(t, 1, stats[0].AbsentDays)
	// 2 present over a 7-day window.
	assert.Equal(t, 29, stats[0].Rate)
	assert.Equal(t, 0, stats[1].PresentDays)
	assert.Equal(t, 1, stats[1].AbsentDays)
	assert.Equal(t, 0, stats[1].Rate)
}

func TestDepartmentStatsUsesRecordedDaysDenominator(t *testing.T) {
	employees := []models.EmployeeStat{
		{ID: "a", Department: "D", PresentDays: 8, AbsentDays: 2},
		{ID: "b", Department: "D", PresentDays: 5, AbsentDays: 5},
	}

	depts := DepartmentStats(employees)

	assert.Len(t, depts, 1)
	assert.Equal(t, 2, depts[0].Employees)
	assert.Equal(t, 13, depts[0].PresentDays)
	assert.Equal(t, 7, depts[0].AbsentDays)
	// 13 present over 20 recorded days, regardless of period length.
	assert.Equal(t, 65, depts[0].Rate)
}

func TestDepartmentStatsEmptyAndOrdering(t *testing.T) {
	employees := []models.EmployeeStat{
		{ID: "a", Department: "Sales"},
		{ID: "b", Department: "Engineering", PresentDays: 1},
		{ID: "c", Department: "Sales", PresentDays: 2},
	}

	depts := DepartmentStats(employees)

	assert.Len(t, depts, 2)
	assert.Equal(t, "Sales", depts[0].Department)
	assert.Equal(t, "Engineering", depts[1].Department)
	// No recorded days in Sales until c; a alone would be rate 0, not NaN.
	assert.Equal(t, 100, depts[0].Rate)
}

func TestTopPerformersStableAndCapped(t *testing.T) {
	employees := []models.EmployeeStat{
		{ID: "a", Rate: 50},
		{ID: "b", Rate: 90},
		{ID: "c", Rate: 90},
		{ID: "d", Rate: 10},
		{ID: "e", Rate: 70},
		{ID: "f", Rate: 60},
	}

	top := TopPerformers(employees, 0)

	assert.Len(t, top, DefaultTopPerformers)
	// Ties keep input order: b before c.
	assert.Equal(t, "b", top[0].ID)
	assert.Equal(t, "c", top[1].ID)
	assert.Equal(t, "e", top[2].ID)
	assert.Equal(t, "f", top[3].ID)
	assert.Equal(t, "a", top[4].ID)
	// Input untouched.
	assert.Equal(t, "a", employees[0].ID)
}

func TestTimeSeriesDailyBuckets(t *testing.T) {
	now := time.Date(2026, time.August, 10, 12, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record("e1", "2026-08-04", models.AttendanceStatusPresent),
		record("e2", "2026-08-04", models.AttendanceStatusAbsent),
		record("e1", "2026-08-09", models.AttendanceStatusPresent),
	}

	buckets := TimeSeries(records, models.PeriodWeek, now)

	// Aug 3 through Aug 10 inclusive.
	assert.Len(t, buckets, 8)
	assert.Equal(t, "2026-08-03", buckets[0].Label)
	assert.Equal(t, 1, buckets[1].Present)
	assert.Equal(t, 1, buckets[1].Absent)
	assert.Equal(t, 2, buckets[1].Total)
	assert.Equal(t, 1, buckets[6].Present)
	assert.Equal(t, 0, buckets[7].Total)
}

func TestTimeSeriesWeeklyBucketsForQuarter(t *testing.T) {
	now := time.Date(2026, time.July, 20, 8, 0, 0, 0, time.UTC)
	records := []models.AttendanceRecord{
		record("e1", "2026-07-01", models.AttendanceStatusPresent),
		record("e1", "2026-07-08", models.AttendanceStatusPresent),
		record("e1", "2026-07-09", models.AttendanceStatusAbsent),
	}

	buckets := TimeSeries(records, models.PeriodQuarter, now)

	// Jul 1, 8, 15 — the partial third week is still a bucket.
	assert.Len(t, buckets, 3)
	assert.Equal(t, 1, buckets[0].Present)
	assert.Equal(t, 1, buckets[1].Present)
	assert.Equal(t, 1, buckets[1].Absent)
	assert.Equal(t, 0, buckets[2].Total)
}

func TestOverview(t *testing.T) {
	now := time.Date(2026, time.August, 8, 0, 0, 0, 0, time.UTC)
	people := []models.Person{{ID: "e1"}, {ID: "e2"}}
	records := []models.AttendanceRecord{
		record("e1", "2026-08-02", models.AttendanceStatusPresent),
		record("e1", "2026-08-03", models.AttendanceStatusPresent),
		record("e2", "2026-08-02", models.AttendanceStatusPresent),
		record("e2", "2026-08-03", models.AttendanceStatusAbsent),
	}

	overview := Overview(people, records, models.PeriodWeek, now)

	assert.Equal(t, 7, overview.PeriodDays)
	assert.Equal(t, 2, overview.TotalEmployees)
	assert.Equal(t, 3, overview.PresentCount)
	assert.Equal(t, 1, overview.AbsentCount)
	// 3 present over 14 employee-days.
	assert.Equal(t, 21, overview.AttendanceRate)
}

func TestOverviewEmpty(t *testing.T) {
	now := day(t, "2026-08-08")
	overview := Overview(nil, nil, models.PeriodWeek, now)
	assert.Equal(t, 0, overview.AttendanceRate)
}

func TestReportAssemblesAllSections(t *testing.T) {
	now := time.Date(2026, time.August, 8, 0, 0, 0, 0, time.UTC)
	people := []models.Person{{ID: "e1", Name: "Ahmed", Department: "Engineering"}}
	records := []models.AttendanceRecord{
		record("e1", "2026-08-02", models.AttendanceStatusPresent),
	}

	report := Report(people, records, models.PeriodWeek, now)

	assert.Equal(t, models.PeriodWeek, report.Period)
	assert.Len(t, report.Employees, 1)
	assert.Len(t, report.Departments, 1)
	assert.Len(t, report.TopPerformers, 1)
	assert.NotEmpty(t, report.TimeSeries)
}
