package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository/memory"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
)

var (
	requester = models.Person{
		ID:         "emp-ahmed",
		Name:       "Ahmed Hassan",
		Email:      "ahmed@company.local",
		Department: "Engineering",
		Role:       models.RoleEmployee,
	}
	engineeringManager = models.Person{
		ID:         "mgr-1",
		Name:       "Lead One",
		Department: "Engineering",
		Role:       models.RoleManager,
	}
	salesManager = models.Person{
		ID:         "mgr-2",
		Name:       "Lead Two",
		Department: "Sales",
		Role:       models.RoleManager,
	}
	adminUser = models.Person{ID: "admin", Role: models.RoleAdmin}
)

func testVacationService(t *testing.T, today time.Time) *VacationService {
	t.Helper()
	store := memory.NewStore()
	svc := NewVacationService(store.Vacations(), nil, nil)
	svc.now = func() time.Time { return today }
	return svc
}

func TestSubmitValidRequest(t *testing.T) {
	today := time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)

	request, err := svc.Submit(context.Background(), requester, VacationInput{
		StartDate: "2025-01-10",
		EndDate:   "2025-01-12",
		Type:      models.VacationTypeRegular,
		Reason:    "family trip",
	})
	require.NoError(t, err)
	assert.Equal(t, models.VacationStatusPending, request.Status)
	// Inclusive of both endpoints.
	assert.Equal(t, 3, request.Days)
	// Requester snapshot.
	assert.Equal(t, "Ahmed Hassan", request.EmployeeName)
	assert.Equal(t, "ahmed@company.local", request.EmployeeEmail)
	assert.Equal(t, "Engineering", request.Department)
}

func TestSubmitValidationFailures(t *testing.T) {
	today := time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	ctx := context.Background()

	tests := []struct {
		name  string
		input VacationInput
	}{
		{"start in the past", VacationInput{StartDate: "2025-01-04", EndDate: "2025-01-06", Type: models.VacationTypeRegular, Reason: "x"}},
		{"start today", VacationInput{StartDate: "2025-01-05", EndDate: "2025-01-06", Type: models.VacationTypeRegular, Reason: "x"}},
		{"end before start", VacationInput{StartDate: "2025-01-10", EndDate: "2025-01-08", Type: models.VacationTypeRegular, Reason: "x"}},
		{"missing reason", VacationInput{StartDate: "2025-01-10", EndDate: "2025-01-12", Type: models.VacationTypeRegular}},
		{"unknown type", VacationInput{StartDate: "2025-01-10", EndDate: "2025-01-12", Type: "sabbatical", Reason: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, requester, tt.input)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func submitOne(t *testing.T, svc *VacationService) *models.VacationRequest {
	t.Helper()
	request, err := svc.Submit(context.Background(), requester, VacationInput{
		StartDate: "2025-01-10",
		EndDate:   "2025-01-12",
		Type:      models.VacationTypeSick,
		Reason:    "medical",
	})
	require.NoError(t, err)
	return request
}

func TestReviewDepartmentScope(t *testing.T) {
	today := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	ctx := context.Background()
	request := submitOne(t, svc)

	// A manager from another department neither lists nor reviews it.
	visible, err := svc.ListForReview(ctx, salesManager)
	require.NoError(t, err)
	assert.Empty(t, visible)

	_, err = svc.Review(ctx, salesManager, request.ID, ReviewInput{Decision: models.VacationStatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// The department's own manager sees and approves it.
	visible, err = svc.ListForReview(ctx, engineeringManager)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	reviewed, err := svc.Review(ctx, engineeringManager, request.ID, ReviewInput{Decision: models.VacationStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.VacationStatusApproved, reviewed.Status)
}

func TestReviewAdminSeesEverything(t *testing.T) {
	today := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	request := submitOne(t, svc)

	visible, err := svc.ListForReview(context.Background(), adminUser)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	reviewed, err := svc.Review(context.Background(), adminUser, request.ID, ReviewInput{Decision: models.VacationStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, models.VacationStatusRejected, reviewed.Status)
}

func TestReviewIdempotencyAndConflict(t *testing.T) {
	today := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	ctx := context.Background()
	request := submitOne(t, svc)

	_, err := svc.Review(ctx, adminUser, request.ID, ReviewInput{Decision: models.VacationStatusApproved})
	require.NoError(t, err)

	// Repeating the same decision is a no-op.
	reviewed, err := svc.Review(ctx, adminUser, request.ID, ReviewInput{Decision: models.VacationStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.VacationStatusApproved, reviewed.Status)

	// Flipping a decided request is rejected.
	_, err = svc.Review(ctx, adminUser, request.ID, ReviewInput{Decision: models.VacationStatusRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReviewRequiresExplicitDecision(t *testing.T) {
	today := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	ctx := context.Background()
	request := submitOne(t, svc)

	// A missing or unknown decision never turns into a rejection.
	for _, input := range []ReviewInput{{}, {Decision: models.VacationStatusPending}, {Decision: "maybe"}} {
		_, err := svc.Review(ctx, adminUser, request.ID, input)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	mine, err := svc.ListMine(ctx, requester.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.VacationStatusPending, mine[0].Status)
}

func TestReviewRequiresCapability(t *testing.T) {
	today := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	request := submitOne(t, svc)

	_, err := svc.Review(context.Background(), requester, request.ID, ReviewInput{Decision: models.VacationStatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.ListForReview(context.Background(), requester)
	assert.Error(t, err)
}

func TestListMine(t *testing.T) {
	today := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	svc := testVacationService(t, today)
	submitOne(t, svc)

	mine, err := svc.ListMine(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := svc.ListMine(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}
