package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository/memory"
	"github.com/dawam-hq/dawam-api/internal/service"
	"github.com/dawam-hq/dawam-api/pkg/jobs"
	"github.com/dawam-hq/dawam-api/pkg/storage"
)

type recordingDispatcher struct {
	enqueued []jobs.Job
}

func (d *recordingDispatcher) Enqueue(job jobs.Job) error {
	d.enqueued = append(d.enqueued, job)
	return nil
}

type routerFixture struct {
	router     *gin.Engine
	store      *memory.Store
	dispatcher *recordingDispatcher
}

func buildTestRouter(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	require.NoError(t, memory.Seed(store))
	validate := validator.New()

	authSvc := service.NewAuthService(store.Directory(), validate, nil, service.AuthConfig{
		Secret:        "router-test-secret",
		Expiration:    time.Hour,
		Issuer:        "dawam-test",
		AdminEmail:    "admin@admin",
		AdminPassword: "123456",
		AdminName:     "Administrator",
	})
	directorySvc := service.NewDirectoryService(store.Directory(), validate, nil)
	departmentSvc := service.NewDepartmentService(store.Departments(), validate, nil)
	attendanceSvc := service.NewAttendanceService(store.Attendance(), nil, nil)
	vacationSvc := service.NewVacationService(store.Vacations(), validate, nil)
	statsSvc := service.NewStatsService(store.Directory(), store.Attendance(), nil, nil, time.Minute)
	notificationSvc := service.NewNotificationService(attendanceSvc, statsSvc, nil, service.NotificationConfig{LateAfter: "09:00", LowRateThreshold: 75})
	dashboardSvc := service.NewDashboardService(attendanceSvc, vacationSvc, statsSvc, nil)

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("router-test-signing", time.Hour)
	dispatcher := &recordingDispatcher{}
	reportSvc := service.NewReportService(store.Reports(), dispatcher, files, signer, nil, service.ReportServiceConfig{
		ResultTTL:       time.Hour,
		CleanupInterval: time.Hour,
	})

	h := Handlers{
		Auth:          NewAuthHandler(authSvc),
		Employees:     NewDirectoryHandler(directorySvc, models.RoleEmployee),
		Managers:      NewDirectoryHandler(directorySvc, models.RoleManager),
		Students:      NewDirectoryHandler(directorySvc, models.RoleStudent),
		Departments:   NewDepartmentHandler(departmentSvc),
		Attendance:    NewAttendanceHandler(attendanceSvc, directorySvc, nil),
		Vacations:     NewVacationHandler(vacationSvc),
		Stats:         NewStatsHandler(statsSvc),
		Dashboard:     NewDashboardHandler(dashboardSvc),
		Notifications: NewNotificationHandler(notificationSvc),
		Reports:       NewReportHandler(reportSvc, nil),
	}

	router := NewRouter(RouterConfig{LocalMode: true}, authSvc, nil, h)
	return &routerFixture{router: router, store: store, dispatcher: dispatcher}
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func login(t *testing.T, router *gin.Engine, email, password string, role models.Role) string {
	t.Helper()
	resp := performRequest(router, jsonRequest(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": password,
		"role":     role,
	}))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var session models.LoginResponse
	decodeData(t, resp, &session)
	require.NotEmpty(t, session.AccessToken)
	return session.AccessToken
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHealthReportsLocalMode(t *testing.T) {
	fx := buildTestRouter(t)

	resp := performRequest(fx.router, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"mode":"local"`)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	fx := buildTestRouter(t)

	for _, target := range []string{"/api/v1/dashboard", "/api/v1/employees", "/api/v1/attendance/me"} {
		resp := performRequest(fx.router, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, target)
	}
}

func TestEmployeeCheckInFlow(t *testing.T) {
	fx := buildTestRouter(t)
	token := login(t, fx.router, "ahmed@company.local", "123456", models.RoleEmployee)

	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/check-in", nil), token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var record models.AttendanceRecord
	decodeData(t, resp, &record)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)
	assert.NotEmpty(t, record.CheckIn)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/me", nil), token))
	require.Equal(t, http.StatusOK, resp.Code)
	decodeData(t, resp, &record)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)

	// Employees cannot reach the supervision surfaces.
	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/board", nil), token))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil), token))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAdminBoardAndStats(t *testing.T) {
	fx := buildTestRouter(t)
	employeeToken := login(t, fx.router, "ahmed@company.local", "123456", models.RoleEmployee)
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)

	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/check-in", nil), employeeToken))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/board", nil), adminToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var board []models.AttendanceBoardRow
	decodeData(t, resp, &board)
	require.Len(t, board, 1)
	assert.Equal(t, "Ahmed Hassan", board[0].PersonName)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/stats?period=week", nil), adminToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var report models.StatsReport
	decodeData(t, resp, &report)
	assert.Equal(t, models.PeriodWeek, report.Period)
}

func TestManagerLifecycleAndVacationReview(t *testing.T) {
	fx := buildTestRouter(t)
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)

	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/managers", gin.H{
		"name":       "Omar Khalid",
		"email":      "omar@company.local",
		"password":   "123456",
		"department": "Engineering",
		"specialty":  "Backend",
	}), adminToken))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	employeeToken := login(t, fx.router, "ahmed@company.local", "123456", models.RoleEmployee)
	managerToken := login(t, fx.router, "omar@company.local", "123456", models.RoleManager)

	start := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	end := time.Now().UTC().AddDate(0, 0, 9).Format("2006-01-02")
	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/vacations", gin.H{
		"start_date": start,
		"end_date":   end,
		"type":       "regular",
		"reason":     "family trip",
	}), employeeToken))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var request models.VacationRequest
	decodeData(t, resp, &request)
	assert.Equal(t, 3, request.Days)

	// The employee may not review; the same-department manager may.
	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/vacations/review", nil), employeeToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/vacations/review", nil), managerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var pending []models.VacationRequest
	decodeData(t, resp, &pending)
	require.Len(t, pending, 1)

	target := fmt.Sprintf("/api/v1/vacations/%s/review", request.ID)
	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, target, gin.H{"decision": "approved"}), managerToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var decided models.VacationRequest
	decodeData(t, resp, &decided)
	assert.Equal(t, models.VacationStatusApproved, decided.Status)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/vacations/mine", nil), employeeToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var mine []models.VacationRequest
	decodeData(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, models.VacationStatusApproved, mine[0].Status)
}

func TestAttendanceMarksOnBehalf(t *testing.T) {
	fx := buildTestRouter(t)
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)

	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/managers", gin.H{
		"name":       "Omar Khalid",
		"email":      "omar@company.local",
		"password":   "123456",
		"department": "Engineering",
		"specialty":  "Backend",
	}), adminToken))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	managerToken := login(t, fx.router, "omar@company.local", "123456", models.RoleManager)

	// A manager checks in an employee from their own department.
	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/check-in", gin.H{
		"person_id": "emp-ahmed",
	}), managerToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var record models.AttendanceRecord
	decodeData(t, resp, &record)
	assert.Equal(t, "emp-ahmed", record.PersonID)
	assert.Equal(t, models.AttendanceStatusPresent, record.Status)

	// Another department is out of reach for managers.
	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/absent", gin.H{
		"person_id": "emp-fatima",
	}), managerToken))
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())

	// Admins are not pinned to a department.
	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/absent", gin.H{
		"person_id": "emp-fatima",
	}), adminToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Employees may mark their own absence but nobody else's.
	employeeToken := login(t, fx.router, "ahmed@company.local", "123456", models.RoleEmployee)
	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/absent", nil), employeeToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	decodeData(t, resp, &record)
	assert.Equal(t, models.AttendanceStatusAbsent, record.Status)

	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/attendance/check-in", gin.H{
		"person_id": "emp-fatima",
	}), employeeToken))
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())
}

func TestReportQueueingAndAccess(t *testing.T) {
	fx := buildTestRouter(t)
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)

	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/reports", gin.H{
		"type":   "daily",
		"format": "csv",
		"date":   time.Now().UTC().Format("2006-01-02"),
	}), adminToken))
	require.Equal(t, http.StatusAccepted, resp.Code, resp.Body.String())

	var status service.ReportJobStatus
	decodeData(t, resp, &status)
	assert.Equal(t, models.ReportStatusQueued, status.Status)
	require.Len(t, fx.dispatcher.enqueued, 1)
	assert.Equal(t, status.ID, fx.dispatcher.enqueued[0].ID)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+status.ID, nil), adminToken))
	require.Equal(t, http.StatusOK, resp.Code)

	// Students cannot queue exports.
	studentToken := loginFirstStudent(t, fx)
	if studentToken != "" {
		resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/reports", gin.H{
			"type":   "daily",
			"format": "csv",
			"date":   time.Now().UTC().Format("2006-01-02"),
		}), studentToken))
		assert.Equal(t, http.StatusForbidden, resp.Code)
	}

	// Download without a token fails before auth is even consulted.
	resp = performRequest(fx.router, httptest.NewRequest(http.MethodGet, "/api/v1/reports/download", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func loginFirstStudent(t *testing.T, fx *routerFixture) string {
	t.Helper()
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)
	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/students", gin.H{
		"name":       "Layla Noor",
		"email":      "layla@school.local",
		"password":   "123456",
		"department": "Engineering",
	}), adminToken))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return login(t, fx.router, "layla@school.local", "123456", models.RoleStudent)
}

func TestDepartmentManagementRequiresAdmin(t *testing.T) {
	fx := buildTestRouter(t)
	employeeToken := login(t, fx.router, "ahmed@company.local", "123456", models.RoleEmployee)
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)

	payload := gin.H{"name": "Legal", "description": "Contracts and compliance"}

	resp := performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/departments", payload), employeeToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = performRequest(fx.router, authed(jsonRequest(http.MethodPost, "/api/v1/departments", payload), adminToken))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/departments", nil), employeeToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var departments []models.Department
	decodeData(t, resp, &departments)
	assert.Len(t, departments, 6)
}

func TestDashboardShapePerRole(t *testing.T) {
	fx := buildTestRouter(t)
	employeeToken := login(t, fx.router, "ahmed@company.local", "123456", models.RoleEmployee)
	adminToken := login(t, fx.router, "admin@admin", "123456", models.RoleAdmin)

	resp := performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil), employeeToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var personal service.Dashboard
	decodeData(t, resp, &personal)
	assert.Nil(t, personal.Admin)
	require.NotNil(t, personal.Personal)

	resp = performRequest(fx.router, authed(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil), adminToken))
	require.Equal(t, http.StatusOK, resp.Code)
	var admin service.Dashboard
	decodeData(t, resp, &admin)
	require.NotNil(t, admin.Admin)
	assert.Nil(t, admin.Personal)
}
