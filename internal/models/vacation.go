package models

import "time"

// VacationStatus tracks the review state of a leave request.
type VacationStatus string

const (
	VacationStatusPending  VacationStatus = "pending"
	VacationStatusApproved VacationStatus = "approved"
	VacationStatusRejected VacationStatus = "rejected"
)

// Valid returns true when the status is a supported value.
func (s VacationStatus) Valid() bool {
	switch s {
	case VacationStatusPending, VacationStatusApproved, VacationStatusRejected:
		return true
	default:
		return false
	}
}

// Decided reports whether the request has reached a terminal state.
func (s VacationStatus) Decided() bool {
	return s == VacationStatusApproved || s == VacationStatusRejected
}

// VacationType enumerates the leave categories.
type VacationType string

const (
	VacationTypeRegular   VacationType = "regular"
	VacationTypeSick      VacationType = "sick"
	VacationTypeFamily    VacationType = "family"
	VacationTypeEmergency VacationType = "emergency"
	VacationTypeStudy     VacationType = "study"
	VacationTypeMaternity VacationType = "maternity"
	VacationTypePaternity VacationType = "paternity"
)

// Valid returns true when the type is a supported value.
func (t VacationType) Valid() bool {
	switch t {
	case VacationTypeRegular, VacationTypeSick, VacationTypeFamily,
		VacationTypeEmergency, VacationTypeStudy, VacationTypeMaternity, VacationTypePaternity:
		return true
	default:
		return false
	}
}

// VacationRequest is a leave request. Requester name/email/department are
// snapshotted at submit time so review listings need no directory join; later
// profile edits intentionally do not propagate.
type VacationRequest struct {
	ID            string         `db:"id" json:"id"`
	EmployeeID    string         `db:"employee_id" json:"employee_id"`
	EmployeeName  string         `db:"employee_name" json:"employee_name"`
	EmployeeEmail string         `db:"employee_email" json:"employee_email"`
	Department    string         `db:"department" json:"department"`
	StartDate     time.Time      `db:"start_date" json:"start_date"`
	EndDate       time.Time      `db:"end_date" json:"end_date"`
	Type          VacationType   `db:"type" json:"type"`
	Reason        string         `db:"reason" json:"reason"`
	Days          int            `db:"days" json:"days"`
	Status        VacationStatus `db:"status" json:"status"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	SubmittedAt   time.Time      `db:"submitted_at" json:"submitted_at"`
}
