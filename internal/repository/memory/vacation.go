package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// VacationStore is the in-memory counterpart of the vacation repository.
type VacationStore struct {
	store *Store
}

// Create inserts a leave request with generated defaults.
func (v *VacationStore) Create(ctx context.Context, request *models.VacationRequest) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	now := time.Now().UTC()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.VacationStatusPending
	}
	request.CreatedAt = now
	request.SubmittedAt = now
	c := *request
	v.store.vacations[request.ID] = &c
	return nil
}

// GetByID returns one request.
func (v *VacationStore) GetByID(ctx context.Context, id string) (*models.VacationRequest, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()

	request, ok := v.store.vacations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *request
	return &c, nil
}

func (v *VacationStore) list(match func(*models.VacationRequest) bool) []models.VacationRequest {
	out := make([]models.VacationRequest, 0)
	for _, request := range v.store.vacations {
		if match(request) {
			out = append(out, *request)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ListAll returns every request, newest submission first.
func (v *VacationStore) ListAll(ctx context.Context) ([]models.VacationRequest, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return v.list(func(*models.VacationRequest) bool { return true }), nil
}

// ListByEmployee returns one employee's requests, newest first.
func (v *VacationStore) ListByEmployee(ctx context.Context, employeeID string) ([]models.VacationRequest, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return v.list(func(r *models.VacationRequest) bool { return r.EmployeeID == employeeID }), nil
}

// ListByDepartment returns a department's requests matched against the
// snapshotted department, newest first.
func (v *VacationStore) ListByDepartment(ctx context.Context, department string) ([]models.VacationRequest, error) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return v.list(func(r *models.VacationRequest) bool { return r.Department == department }), nil
}

// UpdateStatus moves a request to a decided state.
func (v *VacationStore) UpdateStatus(ctx context.Context, id string, status models.VacationStatus) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	request, ok := v.store.vacations[id]
	if !ok {
		return sql.ErrNoRows
	}
	request.Status = status
	return nil
}
