package models

import "time"

// Period selects the aggregation window.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Valid returns true when the period is a supported value.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	default:
		return false
	}
}

// EmployeeStat summarises one person's attendance inside a period window.
// Rate is present days over the period length in days, not over recorded days.
type EmployeeStat struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Specialty   string `json:"specialty"`
	PresentDays int    `json:"present_days"`
	AbsentDays  int    `json:"absent_days"`
	Rate        int    `json:"rate"`
}

// DepartmentStat aggregates employee stats per department. Rate here is
// present over (present+absent) recorded days, a different denominator than
// EmployeeStat.Rate.
type DepartmentStat struct {
	Department  string `json:"department"`
	Employees   int    `json:"employees"`
	PresentDays int    `json:"present_days"`
	AbsentDays  int    `json:"absent_days"`
	Rate        int    `json:"rate"`
}

// TimeBucket is one point of the attendance time series.
type TimeBucket struct {
	Start   time.Time `json:"start"`
	Label   string    `json:"label"`
	Present int       `json:"present"`
	Absent  int       `json:"absent"`
	Total   int       `json:"total"`
}

// StatsOverview captures the headline numbers for a period.
type StatsOverview struct {
	PeriodDays     int `json:"period_days"`
	PresentCount   int `json:"present_count"`
	AbsentCount    int `json:"absent_count"`
	AttendanceRate int `json:"attendance_rate"`
	TotalEmployees int `json:"total_employees"`
}

// StatsReport is the full aggregation payload for a period.
type StatsReport struct {
	Period        Period           `json:"period"`
	Overview      StatsOverview    `json:"overview"`
	Employees     []EmployeeStat   `json:"employees"`
	Departments   []DepartmentStat `json:"departments"`
	TopPerformers []EmployeeStat   `json:"top_performers"`
	TimeSeries    []TimeBucket     `json:"time_series"`
}
