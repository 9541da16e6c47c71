package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

type vacationRepository interface {
	Create(ctx context.Context, request *models.VacationRequest) error
	GetByID(ctx context.Context, id string) (*models.VacationRequest, error)
	ListAll(ctx context.Context) ([]models.VacationRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.VacationRequest, error)
	ListByDepartment(ctx context.Context, department string) ([]models.VacationRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.VacationStatus) error
}

// VacationInput is the submit payload.
type VacationInput struct {
	StartDate string              `json:"start_date" validate:"required"`
	EndDate   string              `json:"end_date" validate:"required"`
	Type      models.VacationType `json:"type" validate:"required"`
	Reason    string              `json:"reason" validate:"required"`
}

// ReviewInput carries a review decision, either "approved" or "rejected".
// The decision is mandatory so an empty payload cannot silently reject.
type ReviewInput struct {
	Decision models.VacationStatus `json:"decision"`
}

// VacationService owns the leave request workflow: submission by the
// requester, review by admins globally or managers within their department.
type VacationService struct {
	repo      vacationRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewVacationService constructs a VacationService instance.
func NewVacationService(repo vacationRepository, validate *validator.Validate, logger *zap.Logger) *VacationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VacationService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Submit files a leave request for the authenticated principal. The start
// must be strictly in the future, the end on or after the start, and the day
// count is inclusive of both endpoints. The requester's name, email and
// department are snapshotted onto the request.
func (s *VacationService) Submit(ctx context.Context, requester models.Person, input VacationInput) (*models.VacationRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vacation payload")
	}
	if !input.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown vacation type")
	}
	start, err := parseDay(input.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	end, err := parseDay(input.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	today := dayOf(s.now())
	if !start.After(today) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be after today")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	days := int(end.Sub(start).Hours()/24) + 1
	request := &models.VacationRequest{
		EmployeeID:    requester.ID,
		EmployeeName:  requester.Name,
		EmployeeEmail: requester.Email,
		Department:    requester.Department,
		StartDate:     start,
		EndDate:       end,
		Type:          input.Type,
		Reason:        input.Reason,
		Days:          days,
		Status:        models.VacationStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vacation request")
	}
	s.logger.Info("vacation submitted",
		zap.String("request_id", request.ID),
		zap.String("employee_id", requester.ID),
		zap.Int("days", days))
	return request, nil
}

// ListMine returns the requester's own requests, newest first.
func (s *VacationService) ListMine(ctx context.Context, requesterID string) ([]models.VacationRequest, error) {
	requests, err := s.repo.ListByEmployee(ctx, requesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacation requests")
	}
	return requests, nil
}

// ListForReview returns the requests visible to the reviewer: every request
// for admins, the reviewer's department for managers.
func (s *VacationService) ListForReview(ctx context.Context, reviewer models.Person) ([]models.VacationRequest, error) {
	if !reviewer.Role.Can(models.CapabilityReviewVacations) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to review vacation requests")
	}
	var (
		requests []models.VacationRequest
		err      error
	)
	if reviewer.Role == models.RoleAdmin {
		requests, err = s.repo.ListAll(ctx)
	} else {
		requests, err = s.repo.ListByDepartment(ctx, reviewer.Department)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacation requests")
	}
	return requests, nil
}

// Review applies a decision. Repeating the same decision is a no-op;
// flipping an already decided request is rejected.
func (s *VacationService) Review(ctx context.Context, reviewer models.Person, id string, input ReviewInput) (*models.VacationRequest, error) {
	if !reviewer.Role.Can(models.CapabilityReviewVacations) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to review vacation requests")
	}
	if input.Decision != models.VacationStatusApproved && input.Decision != models.VacationStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approved or rejected")
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch vacation request")
	}
	if reviewer.Role == models.RoleManager && request.Department != reviewer.Department {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request belongs to another department")
	}

	decision := input.Decision
	if request.Status == decision {
		return request, nil
	}
	if request.Status.Decided() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request already decided")
	}

	if err := s.repo.UpdateStatus(ctx, id, decision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacation request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vacation request")
	}
	request.Status = decision
	s.logger.Info("vacation reviewed",
		zap.String("request_id", id),
		zap.String("decision", string(decision)),
		zap.String("reviewer_id", reviewer.ID))
	return request, nil
}
