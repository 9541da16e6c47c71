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

const personColumns = "id, name, email, password, department, specialty, join_date, created_at, updated_at"

// DirectoryRepository persists directory principals. Employees, managers and
// students share one row shape but live in separate tables; the table is
// resolved from the role through an allowlist so it can never be interpolated
// from user input.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func tableFor(role models.Role) (string, error) {
	table, ok := role.Collection()
	if !ok {
		return "", fmt.Errorf("role %q has no directory table", role)
	}
	return table, nil
}

// List returns principals of one role matching the filter, with a total count.
func (r *DirectoryRepository) List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Department != "" {
		where = append(where, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`,
		personColumns, table, whereClause, size, offset)

	var people []models.Person
	if err := r.db.SelectContext(ctx, &people, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}
	for i := range people {
		people[i].Role = role
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}
	return people, total, nil
}

// GetByID fetches one principal by role and id.
func (r *DirectoryRepository) GetByID(ctx context.Context, role models.Role, id string) (*models.Person, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", personColumns, table)
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get %s %s: %w", table, id, err)
	}
	person.Role = role
	return &person, nil
}

// GetByEmail fetches one principal by role and email, used by login.
func (r *DirectoryRepository) GetByEmail(ctx context.Context, role models.Role, email string) (*models.Person, error) {
	table, err := tableFor(role)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE email = $1", personColumns, table)
	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get %s by email: %w", table, err)
	}
	person.Role = role
	return &person, nil
}

// Create inserts a principal and fills generated fields.
func (r *DirectoryRepository) Create(ctx context.Context, person *models.Person) error {
	table, err := tableFor(person.Role)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	if person.JoinDate.IsZero() {
		person.JoinDate = now
	}
	person.CreatedAt = now
	person.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (id, name, email, password, department, specialty, join_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, table)
	if _, err := r.db.ExecContext(ctx, query,
		person.ID, person.Name, person.Email, person.Password,
		person.Department, person.Specialty, person.JoinDate,
		person.CreatedAt, person.UpdatedAt); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// Update rewrites a principal's mutable fields.
func (r *DirectoryRepository) Update(ctx context.Context, person *models.Person) error {
	table, err := tableFor(person.Role)
	if err != nil {
		return err
	}
	person.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s
SET name = $1, email = $2, password = $3, department = $4, specialty = $5, join_date = $6, updated_at = $7
WHERE id = $8`, table)
	result, err := r.db.ExecContext(ctx, query,
		person.Name, person.Email, person.Password,
		person.Department, person.Specialty, person.JoinDate,
		person.UpdatedAt, person.ID)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, person.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a principal and their attendance ledger in one transaction.
func (r *DirectoryRepository) Delete(ctx context.Context, role models.Role, id string) error {
	table, err := tableFor(role)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", table, err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance WHERE person_id = $1", id); err != nil {
		return fmt.Errorf("delete attendance for %s: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows affected: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", table, err)
	}
	committed = true
	return nil
}
