package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// AttendanceStore is the in-memory counterpart of the attendance repository.
type AttendanceStore struct {
	store *Store
}

// UpsertCheckIn records a check-in for the day. An existing row keeps its
// check-out; an earlier absent mark is overridden to present.
func (a *AttendanceStore) UpsertCheckIn(ctx context.Context, personID string, date time.Time, checkIn string, at time.Time) (*models.AttendanceRecord, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	key := attendanceKey(personID, date)
	record, ok := a.store.attendance[key]
	if !ok {
		record = &models.AttendanceRecord{
			ID:        uuid.NewString(),
			PersonID:  personID,
			Date:      date,
			CreatedAt: at,
		}
		a.store.attendance[key] = record
	}
	record.CheckIn = checkIn
	record.Status = models.AttendanceStatusPresent
	record.Timestamp = at
	c := *record
	return &c, nil
}

// UpsertAbsent records an absence for the day, blanking both times.
func (a *AttendanceStore) UpsertAbsent(ctx context.Context, personID string, date time.Time, at time.Time) (*models.AttendanceRecord, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	key := attendanceKey(personID, date)
	record, ok := a.store.attendance[key]
	if !ok {
		record = &models.AttendanceRecord{
			ID:        uuid.NewString(),
			PersonID:  personID,
			Date:      date,
			CreatedAt: at,
		}
		a.store.attendance[key] = record
	}
	record.CheckIn = ""
	record.CheckOut = ""
	record.Status = models.AttendanceStatusAbsent
	record.Timestamp = at
	c := *record
	return &c, nil
}

// SetCheckOut stamps the check-out time on an existing present row. Returns
// false when no such row exists.
func (a *AttendanceStore) SetCheckOut(ctx context.Context, personID string, date time.Time, checkOut string, at time.Time) (bool, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	record, ok := a.store.attendance[attendanceKey(personID, date)]
	if !ok || record.Status != models.AttendanceStatusPresent {
		return false, nil
	}
	record.CheckOut = checkOut
	record.Timestamp = at
	return true, nil
}

// GetForDay returns the record for a (person, day) pair, or sql.ErrNoRows.
func (a *AttendanceStore) GetForDay(ctx context.Context, personID string, date time.Time) (*models.AttendanceRecord, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	record, ok := a.store.attendance[attendanceKey(personID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *record
	return &c, nil
}

func boardRow(record *models.AttendanceRecord, people map[string]*models.Person) (models.AttendanceBoardRow, bool) {
	p, ok := people[record.PersonID]
	if !ok {
		return models.AttendanceBoardRow{}, false
	}
	return models.AttendanceBoardRow{
		AttendanceRecord: *record,
		PersonName:       p.Name,
		Department:       p.Department,
		Specialty:        p.Specialty,
	}, true
}

// Board returns the marked records for one day with directory metadata.
func (a *AttendanceStore) Board(ctx context.Context, date time.Time, department string) ([]models.AttendanceBoardRow, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	people := a.store.allPrincipals()
	day := date.Format("2006-01-02")
	out := make([]models.AttendanceBoardRow, 0)
	for _, record := range a.store.attendance {
		if record.Date.Format("2006-01-02") != day {
			continue
		}
		row, ok := boardRow(record, people)
		if !ok {
			continue
		}
		if department != "" && row.Department != department {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PersonName < out[j].PersonName })
	return out, nil
}

// List returns ledger rows matching the filter, newest day first by default.
func (a *AttendanceStore) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceBoardRow, int, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	people := a.store.allPrincipals()
	matched := make([]models.AttendanceBoardRow, 0)
	for _, record := range a.store.attendance {
		if filter.PersonID != "" && record.PersonID != filter.PersonID {
			continue
		}
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		if filter.DateFrom != nil && record.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && record.Date.After(*filter.DateTo) {
			continue
		}
		row, ok := boardRow(record, people)
		if !ok {
			continue
		}
		if filter.Department != "" && row.Department != filter.Department {
			continue
		}
		matched = append(matched, row)
	}
	asc := strings.EqualFold(filter.SortOrder, "ASC")
	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch filter.SortBy {
		case "name":
			less = matched[i].PersonName < matched[j].PersonName
		case "status":
			less = matched[i].Status < matched[j].Status
		case "timestamp":
			less = matched[i].Timestamp.Before(matched[j].Timestamp)
		default:
			less = matched[i].Date.Before(matched[j].Date)
		}
		if asc {
			return less
		}
		return !less
	})

	total := len(matched)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// LifetimeStats counts every record a person has ever had.
func (a *AttendanceStore) LifetimeStats(ctx context.Context, personID string) (*models.LifetimeStats, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	stats := &models.LifetimeStats{}
	for _, record := range a.store.attendance {
		if record.PersonID != personID {
			continue
		}
		stats.Total++
		switch record.Status {
		case models.AttendanceStatusPresent:
			stats.Present++
		case models.AttendanceStatusAbsent:
			stats.Absent++
		}
	}
	return stats, nil
}

// ListBetween returns every ledger row with a date inside [from, to].
func (a *AttendanceStore) ListBetween(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()

	out := make([]models.AttendanceRecord, 0)
	for _, record := range a.store.attendance {
		if record.Date.Before(from) || record.Date.After(to) {
			continue
		}
		out = append(out, *record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
