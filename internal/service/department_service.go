package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	GetByID(ctx context.Context, id string) (*models.Department, error)
	GetByName(ctx context.Context, name string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

// DepartmentInput is the payload for creating or updating a department. The
// specialty list always replaces the stored one wholesale.
type DepartmentInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Specialties []struct {
		ID          string `json:"id"`
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
	} `json:"specialties" validate:"dive"`
}

// DepartmentService manages departments and their specialty taxonomies.
type DepartmentService struct {
	repo      departmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs a DepartmentService instance.
func NewDepartmentService(repo departmentRepository, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DepartmentService{repo: repo, validator: validate, logger: logger}
}

// List returns every department.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Get returns one department.
func (s *DepartmentService) Get(ctx context.Context, id string) (*models.Department, error) {
	department, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch department")
	}
	return department, nil
}

func (s *DepartmentService) specialties(input DepartmentInput) models.SpecialtyList {
	list := make(models.SpecialtyList, 0, len(input.Specialties))
	for _, sp := range input.Specialties {
		id := sp.ID
		if id == "" {
			id = uuid.NewString()
		}
		list = append(list, models.Specialty{ID: id, Name: sp.Name, Description: sp.Description})
	}
	return list
}

// Create adds a department with a unique name.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*models.Department, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	if _, err := s.repo.GetByName(ctx, input.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department name already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department name")
	}

	department := &models.Department{
		Name:        input.Name,
		Description: input.Description,
		Specialties: s.specialties(input),
	}
	if err := s.repo.Create(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	s.logger.Info("department created", zap.String("department_id", department.ID))
	return department, nil
}

// Update rewrites a department, replacing the specialty list in full.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentInput) (*models.Department, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	department, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != department.Name {
		if _, err := s.repo.GetByName(ctx, input.Name); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department name already exists")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check department name")
		}
	}

	department.Name = input.Name
	department.Description = input.Description
	department.Specialties = s.specialties(input)
	if err := s.repo.Update(ctx, department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	return department, nil
}

// Delete removes a department. People referencing it keep the department
// string on their profile.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	s.logger.Info("department deleted", zap.String("department_id", id))
	return nil
}
