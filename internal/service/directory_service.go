package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type directoryRepository interface {
	List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error)
	GetByID(ctx context.Context, role models.Role, id string) (*models.Person, error)
	GetByEmail(ctx context.Context, role models.Role, email string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, role models.Role, id string) error
}

// PersonInput is the payload for creating or updating a principal.
type PersonInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=4"`
	Department string `json:"department"`
	Specialty  string `json:"specialty"`
	JoinDate   string `json:"join_date"`
}

// DirectoryService manages the employee, manager and student collections.
type DirectoryService struct {
	repo      directoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs a DirectoryService instance.
func NewDirectoryService(repo directoryRepository, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DirectoryService{repo: repo, validator: validate, logger: logger}
}

func directoryRole(role models.Role) error {
	if _, ok := role.Collection(); !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("role %q has no directory", role))
	}
	return nil
}

// List returns principals of one role matching the filter.
func (s *DirectoryService) List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, *models.Pagination, error) {
	if err := directoryRole(role); err != nil {
		return nil, nil, err
	}
	people, total, err := s.repo.List(ctx, role, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list directory")
	}
	for i := range people {
		people[i].Password = ""
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return people, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one principal.
func (s *DirectoryService) Get(ctx context.Context, role models.Role, id string) (*models.Person, error) {
	if err := directoryRole(role); err != nil {
		return nil, err
	}
	person, err := s.repo.GetByID(ctx, role, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch person")
	}
	person.Password = ""
	return person, nil
}

// FindByID resolves a principal without a role hint by probing each
// directory collection in turn.
func (s *DirectoryService) FindByID(ctx context.Context, id string) (*models.Person, error) {
	for _, role := range []models.Role{models.RoleEmployee, models.RoleManager, models.RoleStudent} {
		person, err := s.repo.GetByID(ctx, role, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch person")
		}
		person.Password = ""
		return person, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
}

// Create adds a principal after checking the email is unused in the role's
// collection. The same email may exist under a different role.
func (s *DirectoryService) Create(ctx context.Context, role models.Role, input PersonInput) (*models.Person, error) {
	if err := directoryRole(role); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid person payload")
	}

	if _, err := s.repo.GetByEmail(ctx, role, input.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	person := &models.Person{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Department: input.Department,
		Specialty:  input.Specialty,
		Role:       role,
	}
	if person.Department == "" {
		person.Department = "general"
	}
	if person.Specialty == "" {
		person.Specialty = "unspecified"
	}
	if input.JoinDate != "" {
		joined, err := parseDay(input.JoinDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "join_date must be YYYY-MM-DD")
		}
		person.JoinDate = joined
	}
	if err := s.repo.Create(ctx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create person")
	}
	s.logger.Info("person created",
		zap.String("person_id", person.ID),
		zap.String("role", string(role)))
	created := *person
	created.Password = ""
	return &created, nil
}

// Update rewrites a principal's profile.
func (s *DirectoryService) Update(ctx context.Context, role models.Role, id string, input PersonInput) (*models.Person, error) {
	if err := directoryRole(role); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid person payload")
	}

	person, err := s.repo.GetByID(ctx, role, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch person")
	}

	if input.Email != person.Email {
		if _, err := s.repo.GetByEmail(ctx, role, input.Email); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
	}

	person.Name = input.Name
	person.Email = input.Email
	person.Password = input.Password
	person.Department = input.Department
	person.Specialty = input.Specialty
	if input.JoinDate != "" {
		joined, err := parseDay(input.JoinDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "join_date must be YYYY-MM-DD")
		}
		person.JoinDate = joined
	}
	if err := s.repo.Update(ctx, person); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update person")
	}
	updated := *person
	updated.Password = ""
	return &updated, nil
}

// Delete removes a principal together with their attendance ledger.
func (s *DirectoryService) Delete(ctx context.Context, role models.Role, id string) error {
	if err := directoryRole(role); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, role, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete person")
	}
	s.logger.Info("person deleted",
		zap.String("person_id", id),
		zap.String("role", string(role)))
	return nil
}
