// Package memory implements the persistence interfaces over process-local
// maps. It backs local mode when Postgres is unreachable: same query
// semantics as the sqlx repositories, filtering done in Go, nothing survives
// a restart.
package memory

import (
	"sync"
	"time"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// Store holds every collection behind one mutex. Contention is irrelevant at
// local-mode scale; a single lock keeps cross-collection operations atomic.
type Store struct {
	mu          sync.RWMutex
	people      map[models.Role]map[string]*models.Person
	departments map[string]*models.Department
	attendance  map[string]*models.AttendanceRecord // keyed person_id|date
	vacations   map[string]*models.VacationRequest
	reports     map[string]*models.ReportJob
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		people: map[models.Role]map[string]*models.Person{
			models.RoleManager:  {},
			models.RoleEmployee: {},
			models.RoleStudent:  {},
		},
		departments: map[string]*models.Department{},
		attendance:  map[string]*models.AttendanceRecord{},
		vacations:   map[string]*models.VacationRequest{},
		reports:     map[string]*models.ReportJob{},
	}
}

// Directory exposes the principal collections with the repository method set.
func (s *Store) Directory() *DirectoryStore { return &DirectoryStore{store: s} }

// Departments exposes the department collection.
func (s *Store) Departments() *DepartmentStore { return &DepartmentStore{store: s} }

// Attendance exposes the ledger collection.
func (s *Store) Attendance() *AttendanceStore { return &AttendanceStore{store: s} }

// Vacations exposes the leave request collection.
func (s *Store) Vacations() *VacationStore { return &VacationStore{store: s} }

// Reports exposes the export job collection.
func (s *Store) Reports() *ReportStore { return &ReportStore{store: s} }

func attendanceKey(personID string, date time.Time) string {
	return personID + "|" + date.Format("2006-01-02")
}

// allPrincipals resolves person metadata across every role collection.
// Callers must hold the lock.
func (s *Store) allPrincipals() map[string]*models.Person {
	out := make(map[string]*models.Person)
	for _, collection := range s.people {
		for id, p := range collection {
			out[id] = p
		}
	}
	return out
}
