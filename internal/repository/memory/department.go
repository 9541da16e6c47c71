package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// DepartmentStore is the in-memory counterpart of the department repository.
type DepartmentStore struct {
	store *Store
}

// List returns every department ordered by name.
func (d *DepartmentStore) List(ctx context.Context) ([]models.Department, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	out := make([]models.Department, 0, len(d.store.departments))
	for _, dept := range d.store.departments {
		out = append(out, *dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetByID returns one department.
func (d *DepartmentStore) GetByID(ctx context.Context, id string) (*models.Department, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	dept, ok := d.store.departments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *dept
	return &c, nil
}

// GetByName returns one department by display name.
func (d *DepartmentStore) GetByName(ctx context.Context, name string) (*models.Department, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	for _, dept := range d.store.departments {
		if dept.Name == name {
			c := *dept
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create inserts a department.
func (d *DepartmentStore) Create(ctx context.Context, department *models.Department) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	now := time.Now().UTC()
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	department.CreatedAt = now
	department.UpdatedAt = now
	c := *department
	d.store.departments[department.ID] = &c
	return nil
}

// Update rewrites the name and the full specialty list.
func (d *DepartmentStore) Update(ctx context.Context, department *models.Department) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	if _, ok := d.store.departments[department.ID]; !ok {
		return sql.ErrNoRows
	}
	department.UpdatedAt = time.Now().UTC()
	c := *department
	d.store.departments[department.ID] = &c
	return nil
}

// Delete removes a department row. Principals keep their department string.
func (d *DepartmentStore) Delete(ctx context.Context, id string) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	if _, ok := d.store.departments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(d.store.departments, id)
	return nil
}
