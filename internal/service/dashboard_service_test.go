package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository/memory"
)

func testDashboardService(t *testing.T) (*DashboardService, *AttendanceService, *VacationService) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.Seed(store))

	attendance := NewAttendanceService(store.Attendance(), nil, nil)
	vacations := NewVacationService(store.Vacations(), nil, nil)
	stats := NewStatsService(store.Directory(), store.Attendance(), nil, nil, time.Minute)
	return NewDashboardService(attendance, vacations, stats, nil), attendance, vacations
}

func TestDashboardAdminView(t *testing.T) {
	svc, attendance, vacations := testDashboardService(t)
	ctx := context.Background()

	_, err := attendance.CheckIn(ctx, "emp-ahmed")
	require.NoError(t, err)

	requester := models.Person{ID: "emp-ahmed", Name: "Ahmed Hassan", Department: "Engineering", Role: models.RoleEmployee}
	_, err = vacations.Submit(ctx, requester, VacationInput{
		StartDate: time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		EndDate:   time.Now().UTC().AddDate(0, 0, 8).Format("2006-01-02"),
		Type:      models.VacationTypeRegular,
		Reason:    "family visit",
	})
	require.NoError(t, err)

	dashboard, err := svc.For(ctx, models.Person{ID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, dashboard.Admin)
	assert.Nil(t, dashboard.Personal)

	assert.Len(t, dashboard.Admin.TodayBoard, 1)
	assert.Equal(t, 1, dashboard.Admin.PendingReviews)
	assert.Contains(t, dashboard.Admin.Capabilities, models.CapabilityManagePeople)
	assert.Contains(t, dashboard.Admin.Capabilities, models.CapabilityViewAllDepts)
}

func TestDashboardManagerScopedToDepartment(t *testing.T) {
	svc, attendance, _ := testDashboardService(t)
	ctx := context.Background()

	// Ahmed works in Engineering; an HR manager must not see his rows.
	_, err := attendance.CheckIn(ctx, "emp-ahmed")
	require.NoError(t, err)

	manager := models.Person{ID: "mgr-1", Name: "Huda Said", Department: "Human Resources", Role: models.RoleManager}
	dashboard, err := svc.For(ctx, manager)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Admin)

	assert.Empty(t, dashboard.Admin.TodayBoard)
	assert.Zero(t, dashboard.Admin.PendingReviews)
	assert.NotContains(t, dashboard.Admin.Capabilities, models.CapabilityViewAllDepts)
}

func TestDashboardPersonalView(t *testing.T) {
	svc, attendance, vacations := testDashboardService(t)
	ctx := context.Background()

	_, err := attendance.CheckIn(ctx, "emp-ahmed")
	require.NoError(t, err)

	requester := models.Person{ID: "emp-ahmed", Name: "Ahmed Hassan", Department: "Engineering", Role: models.RoleEmployee}
	_, err = vacations.Submit(ctx, requester, VacationInput{
		StartDate: time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02"),
		EndDate:   time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02"),
		Type:      models.VacationTypeSick,
		Reason:    "appointment",
	})
	require.NoError(t, err)

	dashboard, err := svc.For(ctx, requester)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Personal)
	assert.Nil(t, dashboard.Admin)

	require.NotNil(t, dashboard.Personal.Today)
	assert.Equal(t, models.AttendanceStatusPresent, dashboard.Personal.Today.Status)
	require.NotNil(t, dashboard.Personal.LifetimeStats)
	assert.Equal(t, 1, dashboard.Personal.LifetimeStats.Present)
	assert.Len(t, dashboard.Personal.Vacations, 1)
	assert.Equal(t, []models.Capability{models.CapabilityMarkAttendance}, dashboard.Personal.Capabilities)
}

func TestDashboardUnknownRole(t *testing.T) {
	svc, _, _ := testDashboardService(t)

	_, err := svc.For(context.Background(), models.Person{ID: "x", Role: models.Role("ghost")})
	assert.Error(t, err)
}
