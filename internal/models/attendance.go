package models

import "time"

// AttendanceStatus represents the stored state of a daily attendance record.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	// AttendanceStatusUnmarked is never persisted; it is the view state for a
	// (person, day) pair with no record.
	AttendanceStatusUnmarked AttendanceStatus = "unmarked"
)

// Valid returns true for statuses a stored record may carry.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is the single ledger row for a (person, calendar day).
// CheckIn/CheckOut are wall-clock "HH:MM" strings, empty when unset.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	PersonID  string           `db:"person_id" json:"person_id"`
	Date      time.Time        `db:"date" json:"date"`
	CheckIn   string           `db:"check_in" json:"check_in"`
	CheckOut  string           `db:"check_out" json:"check_out"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Timestamp time.Time        `db:"timestamp" json:"timestamp"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceBoardRow extends the record with directory metadata for dashboards.
type AttendanceBoardRow struct {
	AttendanceRecord
	PersonName string `db:"person_name" json:"person_name"`
	Department string `db:"department" json:"department"`
	Specialty  string `db:"specialty" json:"specialty"`
}

// AttendanceFilter defines ledger query filters.
type AttendanceFilter struct {
	PersonID   string
	Department string
	Status     *AttendanceStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// LifetimeStats counts every record a person has, with no time window.
type LifetimeStats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Total   int `json:"total"`
}
