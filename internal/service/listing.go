package service

import (
	"context"

	"github.com/dawam-hq/dawam-api/internal/models"
)

type personLister interface {
	List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error)
}

// listAllPeople drains every page of one role's directory. Repositories cap
// the page size, so callers that need the whole collection page through it.
func listAllPeople(ctx context.Context, directory personLister, role models.Role, department string) ([]models.Person, error) {
	const pageSize = 200
	var all []models.Person
	for page := 1; ; page++ {
		batch, total, err := directory.List(ctx, role, models.PersonFilter{
			Department: department,
			Page:       page,
			PageSize:   pageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}
