package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository"
	appErrors "github.com/dawam-hq/dawam-api/pkg/errors"
	"github.com/dawam-hq/dawam-api/pkg/jobs"
	"github.com/dawam-hq/dawam-api/pkg/storage"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportRequest is the payload for queueing an export job.
type ReportRequest struct {
	Type       models.ReportType   `json:"type"`
	Format     models.ReportFormat `json:"format"`
	Date       string              `json:"date,omitempty"`
	Year       int                 `json:"year,omitempty"`
	Month      int                 `json:"month,omitempty"`
	Department string              `json:"department,omitempty"`
}

// ReportJobStatus is the client-facing job snapshot.
type ReportJobStatus struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReportFormat
	ExpiresAt time.Time
}

// ReportServiceConfig governs queue recovery and cleanup.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportService orchestrates the export job lifecycle: queueing, status,
// signed downloads and expired file cleanup.
type ReportService struct {
	repo    reportJobStore
	queue   jobDispatcher
	files   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, queue jobDispatcher, files *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{repo: repo, queue: queue, files: files, signer: signer, logger: logger, cfg: cfg}
}

func (s *ReportService) validateRequest(req ReportRequest) error {
	if !req.Type.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type %q", req.Type))
	}
	if !req.Format.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report format %q", req.Format))
	}
	switch req.Type {
	case models.ReportTypeDaily:
		if _, err := parseDay(req.Date); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
	case models.ReportTypeMonthly:
		if req.Year == 0 || req.Month < 1 || req.Month > 12 {
			return appErrors.Clone(appErrors.ErrValidation, "year and month are required")
		}
	case models.ReportTypeDepartment:
		if req.Department == "" {
			return appErrors.Clone(appErrors.ErrValidation, "department is required")
		}
		if req.Year == 0 || req.Month < 1 || req.Month > 12 {
			return appErrors.Clone(appErrors.ErrValidation, "year and month are required")
		}
	case models.ReportTypeYearly:
		if req.Year == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "year is required")
		}
	}
	return nil
}

// CreateJob persists and enqueues an export job.
func (s *ReportService) CreateJob(ctx context.Context, req ReportRequest, actorID string) (*ReportJobStatus, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	job := &models.ReportJob{
		Type: req.Type,
		Params: models.ReportParams{
			Format:     req.Format,
			Date:       req.Date,
			Year:       req.Year,
			Month:      req.Month,
			Department: req.Department,
		},
		Status:    models.ReportStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		status := models.ReportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return &ReportJobStatus{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata, enforcing ownership for non-admins.
func (s *ReportService) GetStatus(ctx context.Context, id, actorID string, role models.Role) (*ReportJobStatus, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if role != models.RoleAdmin && job.CreatedBy != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not your report")
	}
	status := &ReportJobStatus{
		ID:       job.ID,
		Status:   job.Status,
		Progress: job.Progress,
	}
	if job.ResultURL != nil {
		status.ResultURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		status.Error = job.ErrorMessage
	}
	return status, nil
}

// ResolveDownload validates a token and opens the stored export file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs after a restart.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued report jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue pending job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	finished, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Warn("cleanup list failed", zap.Error(err))
		return
	}
	for _, job := range finished {
		if job.ResultURL == nil {
			continue
		}
		token := extractToken(*job.ResultURL)
		if token == "" {
			continue
		}
		_, relPath, _, err := s.signer.Parse(token, true)
		if err != nil {
			continue
		}
		if err := s.files.Delete(relPath); err != nil {
			s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if _, err := s.files.CleanupOlderThan(s.cfg.ResultTTL); err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
}

func extractToken(url string) string {
	i := strings.Index(url, "token=")
	if i < 0 {
		return ""
	}
	return url[i+len("token="):]
}

// ReportWorker executes queued export jobs.
type ReportWorker struct {
	repo       reportJobStore
	exporter   *ExportService
	files      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	maxRetries int
	logger     *zap.Logger
}

// NewReportWorker constructs the queue handler for report jobs.
func NewReportWorker(repo reportJobStore, exporter *ExportService, files *storage.LocalStorage, signer *storage.SignedURLSigner, maxRetries int, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReportWorker{repo: repo, exporter: exporter, files: files, signer: signer, maxRetries: maxRetries, logger: logger}
}

// Handle generates one report. A returned error triggers a queue retry; the
// final attempt marks the job failed.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	stored, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return w.fail(ctx, job, fmt.Errorf("load report job: %w", err))
	}
	if stored.Status == models.ReportStatusFinished {
		return nil
	}

	processing := models.ReportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return w.fail(ctx, job, fmt.Errorf("mark processing: %w", err))
	}

	data, title, err := w.exporter.BuildDataset(ctx, stored.Type, stored.Params)
	if err != nil {
		return w.fail(ctx, job, err)
	}
	payload, ext, _, err := w.exporter.Render(stored.Params.Format, data, title)
	if err != nil {
		return w.fail(ctx, job, err)
	}

	filename := fmt.Sprintf("%s-%s.%s", stored.Type, stored.ID, ext)
	relPath, err := w.files.Save(filename, payload)
	if err != nil {
		return w.fail(ctx, job, fmt.Errorf("save export: %w", err))
	}
	token, _, err := w.signer.Generate(stored.ID, relPath)
	if err != nil {
		return w.fail(ctx, job, fmt.Errorf("sign download: %w", err))
	}

	finished := models.ReportStatusFinished
	done := 100
	now := time.Now().UTC()
	resultURL := "/api/v1/reports/download?token=" + token
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:     &finished,
		Progress:   &done,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	}); err != nil {
		return w.fail(ctx, job, fmt.Errorf("mark finished: %w", err))
	}
	w.logger.Info("report generated",
		zap.String("job_id", stored.ID),
		zap.String("type", string(stored.Type)),
		zap.String("format", string(stored.Params.Format)))
	return nil
}

// fail records the failure on the last attempt, otherwise propagates the
// error so the queue retries.
func (w *ReportWorker) fail(ctx context.Context, job jobs.Job, err error) error {
	if job.Attempt+1 < w.maxRetries {
		return err
	}
	status := models.ReportStatusFailed
	msg := err.Error()
	now := time.Now().UTC()
	progress := 100
	if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); updateErr != nil {
		w.logger.Error("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
	}
	w.logger.Error("report job failed", zap.String("job_id", job.ID), zap.Error(err))
	return nil
}
