package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// DirectoryStore is the in-memory counterpart of the directory repository.
type DirectoryStore struct {
	store *Store
}

func clonePerson(p *models.Person) *models.Person {
	c := *p
	return &c
}

// List returns principals of one role matching the filter.
func (d *DirectoryStore) List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	collection, ok := d.store.people[role]
	if !ok {
		return nil, 0, fmt.Errorf("role %q has no directory table", role)
	}
	matched := make([]models.Person, 0, len(collection))
	needle := strings.ToLower(filter.Search)
	for _, p := range collection {
		if filter.Department != "" && p.Department != filter.Department {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Email), needle) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

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

// GetByID fetches one principal by role and id.
func (d *DirectoryStore) GetByID(ctx context.Context, role models.Role, id string) (*models.Person, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	collection, ok := d.store.people[role]
	if !ok {
		return nil, fmt.Errorf("role %q has no directory table", role)
	}
	p, ok := collection[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clonePerson(p), nil
}

// GetByEmail fetches one principal by role and email.
func (d *DirectoryStore) GetByEmail(ctx context.Context, role models.Role, email string) (*models.Person, error) {
	d.store.mu.RLock()
	defer d.store.mu.RUnlock()

	collection, ok := d.store.people[role]
	if !ok {
		return nil, fmt.Errorf("role %q has no directory table", role)
	}
	for _, p := range collection {
		if p.Email == email {
			return clonePerson(p), nil
		}
	}
	return nil, sql.ErrNoRows
}

// Create inserts a principal and fills generated fields.
func (d *DirectoryStore) Create(ctx context.Context, person *models.Person) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	collection, ok := d.store.people[person.Role]
	if !ok {
		return fmt.Errorf("role %q has no directory table", person.Role)
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
	collection[person.ID] = clonePerson(person)
	return nil
}

// Update rewrites a principal's mutable fields.
func (d *DirectoryStore) Update(ctx context.Context, person *models.Person) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	collection, ok := d.store.people[person.Role]
	if !ok {
		return fmt.Errorf("role %q has no directory table", person.Role)
	}
	if _, ok := collection[person.ID]; !ok {
		return sql.ErrNoRows
	}
	person.UpdatedAt = time.Now().UTC()
	collection[person.ID] = clonePerson(person)
	return nil
}

// Delete removes a principal and their attendance ledger.
func (d *DirectoryStore) Delete(ctx context.Context, role models.Role, id string) error {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	collection, ok := d.store.people[role]
	if !ok {
		return fmt.Errorf("role %q has no directory table", role)
	}
	if _, ok := collection[id]; !ok {
		return sql.ErrNoRows
	}
	delete(collection, id)
	for key, record := range d.store.attendance {
		if record.PersonID == id {
			delete(d.store.attendance, key)
		}
	}
	return nil
}
