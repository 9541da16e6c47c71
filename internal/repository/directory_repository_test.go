package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
)

func personRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password", "department", "specialty", "join_date", "created_at", "updated_at",
	}).AddRow("e1", "Ahmed", "ahmed@corp.test", "secret", "Engineering", "Backend", time.Now(), time.Now(), time.Now())
}

func TestDirectoryRepositoryListResolvesTableFromRole(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password, department, specialty, join_date, created_at, updated_at FROM employees WHERE 1=1 ORDER BY name ASC LIMIT 50 OFFSET 0")).
		WillReturnRows(personRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	people, total, err := repo.List(context.Background(), models.RoleEmployee, models.PersonFilter{})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.RoleEmployee, people[0].Role)
}

func TestDirectoryRepositoryRejectsAdminRole(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	// Admin principals come from configuration, never from a table.
	_, _, err := repo.List(context.Background(), models.RoleAdmin, models.PersonFilter{})
	assert.Error(t, err)
	_, err = repo.GetByEmail(context.Background(), models.RoleAdmin, "admin@admin")
	assert.Error(t, err)
}

func TestDirectoryRepositoryGetByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password, department, specialty, join_date, created_at, updated_at FROM managers WHERE email = $1")).
		WithArgs("lead@corp.test").
		WillReturnRows(personRows())

	person, err := repo.GetByEmail(context.Background(), models.RoleManager, "lead@corp.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, person.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryRepositoryDeleteCascadesAttendance(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance WHERE person_id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id = $1")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), models.RoleEmployee, "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
