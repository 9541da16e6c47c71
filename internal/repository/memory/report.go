package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dawam-hq/dawam-api/internal/models"
	"github.com/dawam-hq/dawam-api/internal/repository"
)

// ReportStore is the in-memory counterpart of the report repository.
type ReportStore struct {
	store *Store
}

// Create inserts a new job row with generated defaults.
func (r *ReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	c := *job
	r.store.reports[job.ID] = &c
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ReportStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	job, ok := r.store.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *job
	return &c, nil
}

// Update persists the provided changes for a job row.
func (r *ReportStore) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	job, ok := r.store.reports[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

// ListQueued fetches queued jobs, oldest first.
func (r *ReportStore) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	out := make([]models.ReportJob, 0)
	for _, job := range r.store.reports {
		if job.Status == models.ReportStatusQueued {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListFinishedBefore retrieves completed jobs prior to cutoff for cleanup.
func (r *ReportStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]models.ReportJob, 0)
	for _, job := range r.store.reports {
		if job.Status == models.ReportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt.Before(*out[j].FinishedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
