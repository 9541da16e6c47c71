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

func testExportService(t *testing.T) (*ExportService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, memory.Seed(store))
	return NewExportService(store.Attendance(), store.Directory(), nil), store
}

func TestDailyDatasetColumns(t *testing.T) {
	svc, store := testExportService(t)
	ctx := context.Background()
	day := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)

	_, err := store.Attendance().UpsertCheckIn(ctx, "emp-ahmed", day, "08:30", day)
	require.NoError(t, err)

	data, title, err := svc.BuildDataset(ctx, models.ReportTypeDaily, models.ReportParams{Date: "2026-08-10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Department", "Specialty", "Check In", "Check Out", "Status", "Date"}, data.Headers)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Ahmed Hassan", data.Rows[0]["Name"])
	assert.Equal(t, "08:30", data.Rows[0]["Check In"])
	// Unset times render as a dash.
	assert.Equal(t, "-", data.Rows[0]["Check Out"])
	assert.Contains(t, title, "2026-08-10")
}

func TestMonthlyDatasetRates(t *testing.T) {
	svc, store := testExportService(t)
	ctx := context.Background()

	// Ahmed: 3 present, 1 absent inside July 2026.
	for day := 1; day <= 3; day++ {
		d := time.Date(2026, time.July, day, 0, 0, 0, 0, time.UTC)
		_, err := store.Attendance().UpsertCheckIn(ctx, "emp-ahmed", d, "08:00", d)
		require.NoError(t, err)
	}
	d := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	_, err := store.Attendance().UpsertAbsent(ctx, "emp-ahmed", d, d)
	require.NoError(t, err)

	data, _, err := svc.BuildDataset(ctx, models.ReportTypeMonthly, models.ReportParams{Year: 2026, Month: 7})
	require.NoError(t, err)
	require.Len(t, data.Rows, 2)

	var ahmed, fatima map[string]string
	for _, row := range data.Rows {
		switch row["Name"] {
		case "Ahmed Hassan":
			ahmed = row
		case "Fatima Ali":
			fatima = row
		}
	}
	require.NotNil(t, ahmed)
	require.NotNil(t, fatima)
	assert.Equal(t, "3", ahmed["Present Days"])
	assert.Equal(t, "1", ahmed["Absent Days"])
	assert.Equal(t, "4", ahmed["Total Days"])
	// 3 of 4 recorded days.
	assert.Equal(t, "75", ahmed["Rate %"])
	// No records still yields a zero-rate row, not NaN and not omission.
	assert.Equal(t, "0", fatima["Rate %"])
}

func TestDepartmentDatasetDropsConstantColumn(t *testing.T) {
	svc, _ := testExportService(t)

	data, title, err := svc.BuildDataset(context.Background(), models.ReportTypeDepartment,
		models.ReportParams{Year: 2026, Month: 7, Department: "Engineering"})
	require.NoError(t, err)
	assert.NotContains(t, data.Headers, "Department")
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Ahmed Hassan", data.Rows[0]["Name"])
	assert.Contains(t, title, "Engineering")
}

func TestYearlyDatasetTwelveMonths(t *testing.T) {
	svc, store := testExportService(t)
	ctx := context.Background()

	d := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	_, err := store.Attendance().UpsertCheckIn(ctx, "emp-ahmed", d, "08:00", d)
	require.NoError(t, err)

	data, _, err := svc.BuildDataset(ctx, models.ReportTypeYearly, models.ReportParams{Year: 2026})
	require.NoError(t, err)
	require.Len(t, data.Rows, 12)
	assert.Equal(t, "March", data.Rows[2]["Month"])
	assert.Equal(t, "1", data.Rows[2]["Present Count"])
	assert.Equal(t, "100", data.Rows[2]["Rate %"])
	assert.Equal(t, "0", data.Rows[0]["Total Count"])
}

func TestBuildDatasetValidation(t *testing.T) {
	svc, _ := testExportService(t)
	ctx := context.Background()

	_, _, err := svc.BuildDataset(ctx, models.ReportTypeDaily, models.ReportParams{Date: "bad"})
	assert.Error(t, err)
	_, _, err = svc.BuildDataset(ctx, models.ReportTypeMonthly, models.ReportParams{Year: 2026})
	assert.Error(t, err)
	_, _, err = svc.BuildDataset(ctx, "weekly", models.ReportParams{})
	assert.Error(t, err)
}

func TestRenderFormats(t *testing.T) {
	svc, _ := testExportService(t)
	data, _, err := svc.BuildDataset(context.Background(), models.ReportTypeYearly, models.ReportParams{Year: 2026})
	require.NoError(t, err)

	payload, ext, contentType, err := svc.Render(models.ReportFormatCSV, data, "Yearly")
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.Equal(t, "csv", ext)
	assert.Equal(t, "text/csv", contentType)

	payload, ext, _, err = svc.Render(models.ReportFormatXLSX, data, "Yearly")
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
	assert.Equal(t, "xlsx", ext)

	payload, ext, _, err = svc.Render(models.ReportFormatPDF, data, "Yearly")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(payload[:4]))
	assert.Equal(t, "pdf", ext)

	_, _, _, err = svc.Render("docx", data, "Yearly")
	assert.Error(t, err)
}
