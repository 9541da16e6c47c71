package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dawam-hq/dawam-api/internal/models"
)

const vacationColumns = `id, employee_id, employee_name, employee_email, department,
start_date, end_date, type, reason, days, status, created_at, submitted_at`

// VacationRepository persists leave requests.
type VacationRepository struct {
	db *sqlx.DB
}

// NewVacationRepository constructs the repository.
func NewVacationRepository(db *sqlx.DB) *VacationRepository {
	return &VacationRepository{db: db}
}

// Create inserts a leave request with generated defaults.
func (r *VacationRepository) Create(ctx context.Context, request *models.VacationRequest) error {
	now := time.Now().UTC()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.VacationStatusPending
	}
	request.CreatedAt = now
	request.SubmittedAt = now
	const query = `INSERT INTO vacation_requests (id, employee_id, employee_name, employee_email, department,
start_date, end_date, type, reason, days, status, created_at, submitted_at)
VALUES (:id, :employee_id, :employee_name, :employee_email, :department,
:start_date, :end_date, :type, :reason, :days, :status, :created_at, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create vacation request: %w", err)
	}
	return nil
}

// GetByID returns one request by its identifier.
func (r *VacationRepository) GetByID(ctx context.Context, id string) (*models.VacationRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM vacation_requests WHERE id = $1", vacationColumns)
	var request models.VacationRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("get vacation request %s: %w", id, err)
	}
	return &request, nil
}

// ListAll returns every request, newest submission first.
func (r *VacationRepository) ListAll(ctx context.Context) ([]models.VacationRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM vacation_requests ORDER BY created_at DESC", vacationColumns)
	var requests []models.VacationRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list vacation requests: %w", err)
	}
	return requests, nil
}

// ListByEmployee returns one employee's requests, newest first.
func (r *VacationRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.VacationRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM vacation_requests WHERE employee_id = $1 ORDER BY created_at DESC", vacationColumns)
	var requests []models.VacationRequest
	if err := r.db.SelectContext(ctx, &requests, query, employeeID); err != nil {
		return nil, fmt.Errorf("list vacation requests by employee: %w", err)
	}
	return requests, nil
}

// ListByDepartment returns a department's requests, newest first. The match
// runs against the snapshotted department, not the requester's current one.
func (r *VacationRepository) ListByDepartment(ctx context.Context, department string) ([]models.VacationRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM vacation_requests WHERE department = $1 ORDER BY created_at DESC", vacationColumns)
	var requests []models.VacationRequest
	if err := r.db.SelectContext(ctx, &requests, query, department); err != nil {
		return nil, fmt.Errorf("list vacation requests by department: %w", err)
	}
	return requests, nil
}

// UpdateStatus moves a request to a decided state.
func (r *VacationRepository) UpdateStatus(ctx context.Context, id string, status models.VacationStatus) error {
	result, err := r.db.ExecContext(ctx, "UPDATE vacation_requests SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update vacation status %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vacation status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
