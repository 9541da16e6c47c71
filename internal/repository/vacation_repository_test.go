package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
)

func vacationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "employee_id", "employee_name", "employee_email", "department",
		"start_date", "end_date", "type", "reason", "days", "status", "created_at", "submitted_at",
	}).AddRow("v1", "e1", "Ahmed", "ahmed@corp.test", "Engineering",
		time.Now(), time.Now().AddDate(0, 0, 2), models.VacationTypeRegular, "family trip", 3,
		models.VacationStatusPending, time.Now(), time.Now())
}

func TestVacationRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacationRepository(db)

	mock.ExpectExec("INSERT INTO vacation_requests").
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.VacationRequest{
		EmployeeID:   "e1",
		EmployeeName: "Ahmed",
		StartDate:    time.Now().AddDate(0, 0, 1),
		EndDate:      time.Now().AddDate(0, 0, 3),
		Type:         models.VacationTypeRegular,
		Reason:       "family trip",
		Days:         3,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, models.VacationStatusPending, request.Status)
	assert.False(t, request.SubmittedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVacationRepositoryListByDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacationRepository(db)

	mock.ExpectQuery("SELECT .* FROM vacation_requests WHERE department = \\$1 ORDER BY created_at DESC").
		WithArgs("Engineering").
		WillReturnRows(vacationRows())

	requests, err := repo.ListByDepartment(context.Background(), "Engineering")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "Engineering", requests[0].Department)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVacationRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewVacationRepository(db)

	mock.ExpectExec("UPDATE vacation_requests SET status").
		WithArgs(models.VacationStatusApproved, "v1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "v1", models.VacationStatusApproved))

	mock.ExpectExec("UPDATE vacation_requests SET status").
		WithArgs(models.VacationStatusApproved, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), "missing", models.VacationStatusApproved)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
