package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/export"
)

type exportAttendance interface {
	Board(ctx context.Context, date time.Time, department string) ([]models.AttendanceBoardRow, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
}

type exportDirectory interface {
	List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error)
}

// ExportService turns ledger data into the tabular datasets the exporters
// render. Rates in exports are present over recorded days, matching what the
// spreadsheet consumers expect.
type ExportService struct {
	attendance exportAttendance
	directory  exportDirectory
	csv        *export.CSVExporter
	xlsx       *export.XLSXExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(attendance exportAttendance, directory exportDirectory, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		attendance: attendance,
		directory:  directory,
		csv:        export.NewCSVExporter(),
		xlsx:       export.NewXLSXExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// BuildDataset assembles the rows for a report job.
func (s *ExportService) BuildDataset(ctx context.Context, jobType models.ReportType, params models.ReportParams) (export.Dataset, string, error) {
	switch jobType {
	case models.ReportTypeDaily:
		return s.dailyDataset(ctx, params)
	case models.ReportTypeMonthly:
		return s.rangeDataset(ctx, params, "")
	case models.ReportTypeDepartment:
		return s.rangeDataset(ctx, params, params.Department)
	case models.ReportTypeYearly:
		return s.yearlyDataset(ctx, params)
	default:
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", jobType))
	}
}

// Render serializes a dataset in the requested format. Returns the payload
// plus the file extension and content type.
func (s *ExportService) Render(format models.ReportFormat, data export.Dataset, title string) ([]byte, string, string, error) {
	switch format {
	case models.ReportFormatCSV:
		payload, err := s.csv.Render(data)
		return payload, "csv", "text/csv", err
	case models.ReportFormatXLSX:
		payload, err := s.xlsx.Render(data, title)
		return payload, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	case models.ReportFormatPDF:
		payload, err := s.pdf.Render(data, title)
		return payload, "pdf", "application/pdf", err
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report format %q", format))
	}
}

func (s *ExportService) dailyDataset(ctx context.Context, params models.ReportParams) (export.Dataset, string, error) {
	day, err := parseDay(params.Date)
	if err != nil {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	rows, err := s.attendance.Board(ctx, day, params.Department)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load daily board")
	}

	data := export.Dataset{
		Headers: []string{"Name", "Department", "Specialty", "Check In", "Check Out", "Status", "Date"},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Name":       row.PersonName,
			"Department": row.Department,
			"Specialty":  row.Specialty,
			"Check In":   orDash(row.CheckIn),
			"Check Out":  orDash(row.CheckOut),
			"Status":     string(row.Status),
			"Date":       row.Date.Format(dayLayout),
		})
	}
	return data, "Daily Attendance " + params.Date, nil
}

// rangeDataset builds the per-person summary for a calendar month. When the
// report is department-scoped the constant department column is dropped.
func (s *ExportService) rangeDataset(ctx context.Context, params models.ReportParams, department string) (export.Dataset, string, error) {
	if params.Year == 0 || params.Month < 1 || params.Month > 12 {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, "year and month are required")
	}
	from := time.Date(params.Year, time.Month(params.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	people, err := listAllPeople(ctx, s.directory, models.RoleEmployee, department)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	records, err := s.attendance.ListBetween(ctx, from, to)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	type counts struct{ present, absent int }
	byPerson := make(map[string]*counts)
	for _, record := range records {
		c, ok := byPerson[record.PersonID]
		if !ok {
			c = &counts{}
			byPerson[record.PersonID] = c
		}
		switch record.Status {
		case models.AttendanceStatusPresent:
			c.present++
		case models.AttendanceStatusAbsent:
			c.absent++
		}
	}

	headers := []string{"Name", "Department", "Specialty", "Present Days", "Absent Days", "Total Days", "Rate %"}
	if department != "" {
		headers = []string{"Name", "Specialty", "Present Days", "Absent Days", "Total Days", "Rate %"}
	}
	data := export.Dataset{Headers: headers}
	for _, person := range people {
		c := byPerson[person.ID]
		if c == nil {
			c = &counts{}
		}
		total := c.present + c.absent
		rate := 0
		if total > 0 {
			rate = int(math.Round(float64(c.present) / float64(total) * 100))
		}
		row := map[string]string{
			"Name":         person.Name,
			"Specialty":    person.Specialty,
			"Present Days": fmt.Sprintf("%d", c.present),
			"Absent Days":  fmt.Sprintf("%d", c.absent),
			"Total Days":   fmt.Sprintf("%d", total),
			"Rate %":       fmt.Sprintf("%d", rate),
		}
		if department == "" {
			row["Department"] = person.Department
		}
		data.Rows = append(data.Rows, row)
	}

	title := fmt.Sprintf("Monthly Attendance %04d-%02d", params.Year, params.Month)
	if department != "" {
		title = fmt.Sprintf("%s Attendance %04d-%02d", department, params.Year, params.Month)
	}
	return data, title, nil
}

func (s *ExportService) yearlyDataset(ctx context.Context, params models.ReportParams) (export.Dataset, string, error) {
	if params.Year == 0 {
		return export.Dataset{}, "", appErrors.Clone(appErrors.ErrValidation, "year is required")
	}
	from := time.Date(params.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(params.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	records, err := s.attendance.ListBetween(ctx, from, to)
	if err != nil {
		return export.Dataset{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	var present, absent [12]int
	for _, record := range records {
		m := int(record.Date.Month()) - 1
		switch record.Status {
		case models.AttendanceStatusPresent:
			present[m]++
		case models.AttendanceStatusAbsent:
			absent[m]++
		}
	}

	data := export.Dataset{
		Headers: []string{"Month", "Present Count", "Absent Count", "Total Count", "Rate %"},
	}
	for m := 0; m < 12; m++ {
		total := present[m] + absent[m]
		rate := 0
		if total > 0 {
			rate = int(math.Round(float64(present[m]) / float64(total) * 100))
		}
		data.Rows = append(data.Rows, map[string]string{
			"Month":         time.Month(m + 1).String(),
			"Present Count": fmt.Sprintf("%d", present[m]),
			"Absent Count":  fmt.Sprintf("%d", absent[m]),
			"Total Count":   fmt.Sprintf("%d", total),
			"Rate %":        fmt.Sprintf("%d", rate),
		})
	}
	return data, fmt.Sprintf("Yearly Attendance %d", params.Year), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
