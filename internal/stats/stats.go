// Package stats computes attendance aggregations over already-loaded slices.
// Every function is pure so dashboards, exports, and tests share one
// implementation.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// DefaultTopPerformers caps the leaderboard length.
const DefaultTopPerformers = 5

// PeriodBounds maps a period selector to its [start, now] window. Unknown
// periods fall back to the trailing 30 days.
func PeriodBounds(period models.Period, now time.Time) (time.Time, time.Time) {
	switch period {
	case models.PeriodWeek:
		return now.AddDate(0, 0, -7), now
	case models.PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case models.PeriodQuarter:
		quarter := (int(now.Month()) - 1) / 3
		return time.Date(now.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, now.Location()), now
	case models.PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now
	default:
		return now.AddDate(0, 0, -30), now
	}
}

// PeriodLengthDays is the window length in whole days, rounded up.
func PeriodLengthDays(period models.Period, now time.Time) int {
	start, end := PeriodBounds(period, now)
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// InWindow reports whether a record's calendar day falls inside [start, end].
func InWindow(record models.AttendanceRecord, start, end time.Time) bool {
	return !record.Date.Before(start) && !record.Date.After(end)
}

// FilterWindow returns the records inside the period window.
func FilterWindow(records []models.AttendanceRecord, period models.Period, now time.Time) []models.AttendanceRecord {
	start, end := PeriodBounds(period, now)
	filtered := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if InWindow(r, start, end) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// EmployeeStats computes per-person counts inside the period window. The
// rate denominator is the period length in days, so sparse ledgers suppress
// the rate; this mirrors the per-employee metric the dashboards expect and
// deliberately differs from DepartmentStats.
func EmployeeStats(people []models.Person, records []models.AttendanceRecord, period models.Period, now time.Time) []models.EmployeeStat {
	windowed := FilterWindow(records, period, now)
	periodDays := PeriodLengthDays(period, now)

	byPerson := make(map[string][]models.AttendanceRecord, len(people))
	for _, r := range windowed {
		byPerson[r.PersonID] = append(byPerson[r.PersonID], r)
	}

	out := make([]models.EmployeeStat, 0, len(people))
	for _, p := range people {
		stat := models.EmployeeStat{
			ID:         p.ID,
			Name:       p.Name,
			Department: p.Department,
			Specialty:  p.Specialty,
		}
		for _, r := range byPerson[p.ID] {
			switch r.Status {
			case models.AttendanceStatusPresent:
				stat.PresentDays++
			case models.AttendanceStatusAbsent:
				stat.AbsentDays++
			}
		}
		if periodDays > 0 {
			stat.Rate = int(math.Round(float64(stat.PresentDays) / float64(periodDays) * 100))
		}
		out = append(out, stat)
	}
	return out
}

// DepartmentStats groups employee stats by department, in order of first
// appearance. The rate denominator is recorded days (present+absent), not the
// period length; the asymmetry with EmployeeStats is intentional.
func DepartmentStats(employees []models.EmployeeStat) []models.DepartmentStat {
	index := make(map[string]int)
	out := make([]models.DepartmentStat, 0)
	for _, e := range employees {
		i, ok := index[e.Department]
		if !ok {
			i = len(out)
			index[e.Department] = i
			out = append(out, models.DepartmentStat{Department: e.Department})
		}
		out[i].Employees++
		out[i].PresentDays += e.PresentDays
		out[i].AbsentDays += e.AbsentDays
	}
	for i := range out {
		total := out[i].PresentDays + out[i].AbsentDays
		if total > 0 {
			out[i].Rate = int(math.Round(float64(out[i].PresentDays) / float64(total) * 100))
		}
	}
	return out
}

// TopPerformers returns the top n employees by rate, descending. The sort is
// stable so ties keep their input order.
func TopPerformers(employees []models.EmployeeStat, n int) []models.EmployeeStat {
	if n <= 0 {
		n = DefaultTopPerformers
	}
	ranked := make([]models.EmployeeStat, len(employees))
	copy(ranked, employees)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rate > ranked[j].Rate
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TimeSeries buckets the windowed records: one bucket per calendar day for
// week/month, one per 7-day window for quarter/year (final partial week
// included).
func TimeSeries(records []models.AttendanceRecord, period models.Period, now time.Time) []models.TimeBucket {
	start, end := PeriodBounds(period, now)
	windowed := FilterWindow(records, period, now)

	step := 1
	if period == models.PeriodQuarter || period == models.PeriodYear {
		step = 7
	}

	buckets := make([]models.TimeBucket, 0)
	for cursor := startOfDay(start); !cursor.After(end); cursor = cursor.AddDate(0, 0, step) {
		buckets = append(buckets, models.TimeBucket{
			Start: cursor,
			Label: cursor.Format("2006-01-02"),
		})
	}

	for _, r := range windowed {
		i := bucketIndex(buckets, r.Date, step)
		if i < 0 {
			continue
		}
		buckets[i].Total++
		switch r.Status {
		case models.AttendanceStatusPresent:
			buckets[i].Present++
		case models.AttendanceStatusAbsent:
			buckets[i].Absent++
		}
	}
	return buckets
}

// Overview computes the headline numbers: the overall rate spreads presence
// over every employee-day in the window.
func Overview(people []models.Person, records []models.AttendanceRecord, period models.Period, now time.Time) models.StatsOverview {
	windowed := FilterWindow(records, period, now)
	periodDays := PeriodLengthDays(period, now)

	overview := models.StatsOverview{
		PeriodDays:     periodDays,
		TotalEmployees: len(people),
	}
	for _, r := range windowed {
		switch r.Status {
		case models.AttendanceStatusPresent:
			overview.PresentCount++
		case models.AttendanceStatusAbsent:
			overview.AbsentCount++
		}
	}
	if periodDays > 0 && len(people) > 0 {
		overview.AttendanceRate = int(math.Round(float64(overview.PresentCount) / float64(periodDays*len(people)) * 100))
	}
	return overview
}

// Report assembles the full aggregation payload for a period.
func Report(people []models.Person, records []models.AttendanceRecord, period models.Period, now time.Time) models.StatsReport {
	employees := EmployeeStats(people, records, period, now)
	return models.StatsReport{
		Period:        period,
		Overview:      Overview(people, records, period, now),
		Employees:     employees,
		Departments:   DepartmentStats(employees),
		TopPerformers: TopPerformers(employees, DefaultTopPerformers),
		TimeSeries:    TimeSeries(records, period, now),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func bucketIndex(buckets []models.TimeBucket, date time.Time, step int) int {
	if len(buckets) == 0 {
		return -1
	}
	first := buckets[0].Start
	day := startOfDay(date)
	if day.Before(first) {
		return -1
	}
	offset := int(day.Sub(first).Hours()/24) / step
	if offset >= len(buckets) {
		return -1
	}
	return offset
}
