package memory

import (
	"context"
	"time"

	"github.com/dawam-hq/dawam-api/internal/models"
)

// Seed loads the local-mode fixture: five departments with their specialty
// taxonomies and two employees, enough to click through every screen without
// a database.
func Seed(store *Store) error {
	ctx := context.Background()
	departments := []models.Department{
		{
			ID:          "dept-engineering",
			Name:        "Engineering",
			Description: "Product development and infrastructure",
			Specialties: models.SpecialtyList{
				{ID: "spec-backend", Name: "Backend", Description: "Services and APIs"},
				{ID: "spec-frontend", Name: "Frontend", Description: "Web interfaces"},
				{ID: "spec-qa", Name: "Quality Assurance", Description: "Testing and release checks"},
			},
		},
		{
			ID:          "dept-hr",
			Name:        "Human Resources",
			Description: "People operations",
			Specialties: models.SpecialtyList{
				{ID: "spec-recruitment", Name: "Recruitment", Description: "Hiring pipeline"},
				{ID: "spec-payroll", Name: "Payroll", Description: "Salaries and benefits"},
			},
		},
		{
			ID:          "dept-finance",
			Name:        "Finance",
			Description: "Accounting and budget control",
			Specialties: models.SpecialtyList{
				{ID: "spec-accounting", Name: "Accounting", Description: "Books and invoicing"},
				{ID: "spec-audit", Name: "Audit", Description: "Internal audit"},
			},
		},
		{
			ID:          "dept-marketing",
			Name:        "Marketing",
			Description: "Brand and campaigns",
			Specialties: models.SpecialtyList{
				{ID: "spec-digital", Name: "Digital Marketing", Description: "Online campaigns"},
				{ID: "spec-content", Name: "Content", Description: "Copy and media"},
			},
		},
		{
			ID:          "dept-operations",
			Name:        "Operations",
			Description: "Logistics and facilities",
			Specialties: models.SpecialtyList{
				{ID: "spec-logistics", Name: "Logistics", Description: "Supply and delivery"},
				{ID: "spec-facilities", Name: "Facilities", Description: "Offices and equipment"},
			},
		},
	}
	for i := range departments {
		if err := store.Departments().Create(ctx, &departments[i]); err != nil {
			return err
		}
	}

	joined := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	people := []models.Person{
		{
			ID:         "emp-ahmed",
			Name:       "Ahmed Hassan",
			Email:      "ahmed@company.local",
			Password:   "123456",
			Department: "Engineering",
			Specialty:  "Backend",
			JoinDate:   joined,
			Role:       models.RoleEmployee,
		},
		{
			ID:         "emp-fatima",
			Name:       "Fatima Ali",
			Email:      "fatima@company.local",
			Password:   "123456",
			Department: "Human Resources",
			Specialty:  "Recruitment",
			JoinDate:   joined.AddDate(0, 2, 0),
			Role:       models.RoleEmployee,
		},
	}
	for i := range people {
		if err := store.Directory().Create(ctx, &people[i]); err != nil {
			return err
		}
	}
	return nil
}
