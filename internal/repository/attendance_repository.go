package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// principalUnion resolves a person_id against every directory table that can
// hold attendance, so board queries need no role hint.
const principalUnion = `(SELECT id, name, department, specialty FROM employees
UNION ALL SELECT id, name, department, specialty FROM managers
UNION ALL SELECT id, name, department, specialty FROM students) p`

// AttendanceRepository persists the attendance ledger. One row per
// (person_id, date); concurrent marks for the same day converge through the
// unique constraint instead of read-modify-write.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// UpsertCheckIn records a check-in for the day. An existing row keeps its
// check_out; an earlier absent mark is overridden to present.
func (r *AttendanceRepository) UpsertCheckIn(ctx context.Context, personID string, date time.Time, checkIn string, at time.Time) (*models.AttendanceRecord, error) {
	const query = `INSERT INTO attendance (id, person_id, date, check_in, check_out, status, timestamp, created_at)
VALUES ($1, $2, $3, $4, '', $5, $6, $6)
ON CONFLICT (person_id, date)
DO UPDATE SET check_in = EXCLUDED.check_in, status = EXCLUDED.status, timestamp = EXCLUDED.timestamp
RETURNING id, person_id, date, check_in, check_out, status, timestamp, created_at`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query,
		uuid.NewString(), personID, date, checkIn, models.AttendanceStatusPresent, at); err != nil {
		return nil, fmt.Errorf("upsert check-in: %w", err)
	}
	return &record, nil
}

// UpsertAbsent records an absence for the day, blanking both times.
func (r *AttendanceRepository) UpsertAbsent(ctx context.Context, personID string, date time.Time, at time.Time) (*models.AttendanceRecord, error) {
	const query = `INSERT INTO attendance (id, person_id, date, check_in, check_out, status, timestamp, created_at)
VALUES ($1, $2, $3, '', '', $4, $5, $5)
ON CONFLICT (person_id, date)
DO UPDATE SET check_in = '', check_out = '', status = EXCLUDED.status, timestamp = EXCLUDED.timestamp
RETURNING id, person_id, date, check_in, check_out, status, timestamp, created_at`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query,
		uuid.NewString(), personID, date, models.AttendanceStatusAbsent, at); err != nil {
		return nil, fmt.Errorf("upsert absent: %w", err)
	}
	return &record, nil
}

// SetCheckOut stamps the check-out time on an existing present row. Returns
// false when no such row exists, so callers can treat the call as a no-op.
func (r *AttendanceRepository) SetCheckOut(ctx context.Context, personID string, date time.Time, checkOut string, at time.Time) (bool, error) {
	const query = `UPDATE attendance SET check_out = $1, timestamp = $2
WHERE person_id = $3 AND date = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query, checkOut, at, personID, date, models.AttendanceStatusPresent)
	if err != nil {
		return false, fmt.Errorf("set check-out: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set check-out rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetForDay returns the record for a (person, day) pair, or sql.ErrNoRows.
func (r *AttendanceRepository) GetForDay(ctx context.Context, personID string, date time.Time) (*models.AttendanceRecord, error) {
	const query = `SELECT id, person_id, date, check_in, check_out, status, timestamp, created_at
FROM attendance WHERE person_id = $1 AND date = $2`
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, personID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get attendance for day: %w", err)
	}
	return &record, nil
}

// Board returns the marked records for one day joined with directory
// metadata, optionally scoped to a department.
func (r *AttendanceRepository) Board(ctx context.Context, date time.Time, department string) ([]models.AttendanceBoardRow, error) {
	where := []string{"a.date = $1"}
	args := []interface{}{date}
	if department != "" {
		where = append(where, fmt.Sprintf("p.department = $%d", len(args)+1))
		args = append(args, department)
	}
	query := fmt.Sprintf(`SELECT a.id, a.person_id, a.date, a.check_in, a.check_out, a.status, a.timestamp, a.created_at,
p.name AS person_name, p.department, p.specialty
FROM attendance a
JOIN %s ON p.id = a.person_id
WHERE %s
ORDER BY p.name ASC`, principalUnion, strings.Join(where, " AND "))

	var rows []models.AttendanceBoardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("attendance board: %w", err)
	}
	return rows, nil
}

// List returns ledger rows matching the filter, newest day first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceBoardRow, int, error) {
	base := fmt.Sprintf(`FROM attendance a JOIN %s ON p.id = a.person_id`, principalUnion)
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.PersonID != "" {
		where = append(where, fmt.Sprintf("a.person_id = $%d", len(args)+1))
		args = append(args, filter.PersonID)
	}
	if filter.Department != "" {
		where = append(where, fmt.Sprintf("p.department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"date":      "a.date",
		"status":    "a.status",
		"name":      "p.name",
		"timestamp": "a.timestamp",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "a.date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.person_id, a.date, a.check_in, a.check_out, a.status, a.timestamp, a.created_at,
p.name AS person_name, p.department, p.specialty
%s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, whereClause, sortColumn, order, size, offset)

	var rows []models.AttendanceBoardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// LifetimeStats counts every record a person has ever had.
func (r *AttendanceRepository) LifetimeStats(ctx context.Context, personID string) (*models.LifetimeStats, error) {
	const query = `SELECT
COUNT(*) FILTER (WHERE status = 'present') AS present,
COUNT(*) FILTER (WHERE status = 'absent') AS absent,
COUNT(*) AS total
FROM attendance WHERE person_id = $1`
	var stats models.LifetimeStats
	if err := r.db.GetContext(ctx, &stats, query, personID); err != nil {
		return nil, fmt.Errorf("lifetime stats: %w", err)
	}
	return &stats, nil
}

// ListBetween returns every ledger row with a date inside [from, to], for
// aggregation and export.
func (r *AttendanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, person_id, date, check_in, check_out, status, timestamp, created_at
FROM attendance WHERE date >= $1 AND date <= $2 ORDER BY date ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, fmt.Errorf("list attendance between: %w", err)
	}
	return records, nil
}
