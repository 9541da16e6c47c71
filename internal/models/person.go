package models

import "time"

// Role identifies which dashboard and capability set a principal gets.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
	RoleStudent  Role = "student"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleStudent:
		return true
	default:
		return false
	}
}

// Collection maps a role to its principal directory table. Admin principals
// are not stored in a directory collection (the bootstrap account comes from
// configuration), so the second return reports whether a collection exists.
func (r Role) Collection() (string, bool) {
	switch r {
	case RoleManager:
		return "managers", true
	case RoleEmployee:
		return "employees", true
	case RoleStudent:
		return "students", true
	default:
		return "", false
	}
}

// Capability names an action a role may perform. Services and middleware
// check capabilities instead of comparing role strings at call sites.
type Capability string

const (
	CapabilityManagePeople      Capability = "manage_people"
	CapabilityManageDepartments Capability = "manage_departments"
	CapabilityReviewVacations   Capability = "review_vacations"
	CapabilityViewAllDepts      Capability = "view_all_departments"
	CapabilityExportReports     Capability = "export_reports"
	CapabilityMarkAttendance    Capability = "mark_own_attendance"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapabilityManagePeople:      {},
		CapabilityManageDepartments: {},
		CapabilityReviewVacations:   {},
		CapabilityViewAllDepts:      {},
		CapabilityExportReports:     {},
		CapabilityMarkAttendance:    {},
	},
	RoleManager: {
		CapabilityManagePeople:    {},
		CapabilityReviewVacations: {},
		CapabilityExportReports:   {},
		CapabilityMarkAttendance:  {},
	},
	RoleEmployee: {
		CapabilityMarkAttendance: {},
	},
	RoleStudent: {
		CapabilityMarkAttendance: {},
	},
}

// Can reports whether the role grants the capability.
func (r Role) Can(cap Capability) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	_, ok = caps[cap]
	return ok
}

// Person is any principal in the directory. The four role variants share one
// stored shape; only capabilities differ.
type Person struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Password   string    `db:"password" json:"-"`
	Department string    `db:"department" json:"department"`
	Specialty  string    `db:"specialty" json:"specialty"`
	JoinDate   time.Time `db:"join_date" json:"join_date"`
	Role       Role      `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PersonFilter captures filtering criteria for directory listings.
type PersonFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
