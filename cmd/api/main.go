package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/dawam-hq/dawam-api/api/swagger"
	"github.com/dawam-hq/dawam-api/internal/handler"
	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository"
	"github.com/dawam-hq/dawam-api/internal/repository/memory"
	"github.com/dawam-hq/dawam-api/internal/service"
	"github.com/dawam-hq/dawam-api/pkg/cache"
	"github.com/dawam-hq/dawam-api/pkg/config"
	"github.com/dawam-hq/dawam-api/pkg/database"
	"github.com/dawam-hq/dawam-api/pkg/jobs"
	"github.com/dawam-hq/dawam-api/pkg/logger"
	"github.com/dawam-hq/dawam-api/pkg/storage"
)

// The stores interface sets union everything the services need from each
// backend, so the Postgres repositories and the in-memory fallback plug into
// the same wiring.
type directoryBackend interface {
	List(ctx context.Context, role models.Role, filter models.PersonFilter) ([]models.Person, int, error)
	GetByID(ctx context.Context, role models.Role, id string) (*models.Person, error)
	GetByEmail(ctx context.Context, role models.Role, email string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, role models.Role, id string) error
}

type departmentBackend interface {
	List(ctx context.Context) ([]models.Department, error)
	GetByID(ctx context.Context, id string) (*models.Department, error)
	GetByName(ctx context.Context, name string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id string) error
}

type attendanceBackend interface {
	UpsertCheckIn(ctx context.Context, personID string, date time.Time, checkIn string, at time.Time) (*models.AttendanceRecord, error)
	UpsertAbsent(ctx context.Context, personID string, date time.Time, at time.Time) (*models.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, personID string, date time.Time, checkOut string, at time.Time) (bool, error)
	GetForDay(ctx context.Context, personID string, date time.Time) (*models.AttendanceRecord, error)
	Board(ctx context.Context, date time.Time, department string) ([]models.AttendanceBoardRow, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceBoardRow, int, error)
	LifetimeStats(ctx context.Context, personID string) (*models.LifetimeStats, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
}

type vacationBackend interface {
	Create(ctx context.Context, request *models.VacationRequest) error
	GetByID(ctx context.Context, id string) (*models.VacationRequest, error)
	ListAll(ctx context.Context) ([]models.VacationRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.VacationRequest, error)
	ListByDepartment(ctx context.Context, department string) ([]models.VacationRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.VacationStatus) error
}

type reportBackend interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type backends struct {
	directory  directoryBackend
	department departmentBackend
	attendance attendanceBackend
	vacation   vacationBackend
	report     reportBackend
	localMode  bool
}

// @title Dawam API
// @version 1.0.0
// @description Role-based attendance and leave tracking service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	stores := connectStores(cfg, logr)

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, aggregation cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init report storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	metricsSvc.SetLocalMode(stores.localMode)

	authSvc := service.NewAuthService(stores.directory, validate, logr, service.AuthConfig{
		Secret:        cfg.JWT.Secret,
		Expiration:    cfg.JWT.Expiration,
		Issuer:        cfg.JWT.Issuer,
		AdminEmail:    cfg.Admin.Email,
		AdminPassword: cfg.Admin.Password,
		AdminName:     cfg.Admin.Name,
	})
	directorySvc := service.NewDirectoryService(stores.directory, validate, logr)
	departmentSvc := service.NewDepartmentService(stores.department, validate, logr)
	attendanceSvc := service.NewAttendanceService(stores.attendance, cacheRepo, logr)
	vacationSvc := service.NewVacationService(stores.vacation, validate, logr)
	statsSvc := service.NewStatsService(stores.directory, stores.attendance, cacheRepo, logr, cfg.Stats.CacheTTL)
	notificationSvc := service.NewNotificationService(attendanceSvc, statsSvc, logr, service.NotificationConfig{
		LateAfter:        cfg.Workday.LateAfter,
		LowRateThreshold: cfg.Workday.LowRateThreshold,
	})
	dashboardSvc := service.NewDashboardService(attendanceSvc, vacationSvc, statsSvc, logr)
	exportSvc := service.NewExportService(stores.attendance, stores.directory, logr)

	const reportMaxRetries = 3
	worker := service.NewReportWorker(stores.report, exportSvc, files, signer, reportMaxRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: reportMaxRetries,
		Logger:     logr,
	})
	reportSvc := service.NewReportService(stores.report, queue, files, signer, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.ResultTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	defer queue.Stop()
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)

	h := handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Employees:     handler.NewDirectoryHandler(directorySvc, models.RoleEmployee),
		Managers:      handler.NewDirectoryHandler(directorySvc, models.RoleManager),
		Students:      handler.NewDirectoryHandler(directorySvc, models.RoleStudent),
		Departments:   handler.NewDepartmentHandler(departmentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc, directorySvc, metricsSvc),
		Vacations:     handler.NewVacationHandler(vacationSvc),
		Stats:         handler.NewStatsHandler(statsSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Reports:       handler.NewReportHandler(reportSvc, metricsSvc),
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:             logr,
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		LocalMode:          stores.localMode,
		EnableDocs:         cfg.Env != config.EnvProduction,
	}, authSvc, metricsSvc, h)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "local_mode", stores.localMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// connectStores opens Postgres, or falls back to the seeded in-memory store
// when the database is unreachable and the fallback is enabled.
func connectStores(cfg *config.Config, logr *zap.Logger) backends {
	db, err := database.NewPostgres(cfg.Database)
	if err == nil {
		return backends{
			directory:  repository.NewDirectoryRepository(db),
			department: repository.NewDepartmentRepository(db),
			attendance: repository.NewAttendanceRepository(db),
			vacation:   repository.NewVacationRepository(db),
			report:     repository.NewReportRepository(db),
		}
	}

	if !cfg.Offline.Fallback {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	logr.Warn("database unreachable, starting in local mode", zap.Error(err))

	store := memory.NewStore()
	if seedErr := memory.Seed(store); seedErr != nil {
		logr.Fatal("failed to seed local store", zap.Error(seedErr))
	}
	return backends{
		directory:  store.Directory(),
		department: store.Departments(),
		attendance: store.Attendance(),
		vacation:   store.Vacations(),
		report:     store.Reports(),
		localMode:  true,
	}
}
