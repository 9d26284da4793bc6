// Package server exposes research runs as asynchronous jobs over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeboe/website-researcher/pkg/research"
)

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

type Job struct {
	ID         uuid.UUID `json:"id"`
	URL        string    `json:"url"`
	Topic      string    `json:"topic"`
	MaxPages   int       `json:"max_pages"`
	Status     JobStatus `json:"status"`
	ReportPath string    `json:"report_path,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Service tracks research jobs in memory. Each job runs in its own
// goroutine; the registry lives as long as the process.
type Service struct {
	researcher *research.Researcher
	logger     *slog.Logger

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

func NewService(researcher *research.Researcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		researcher: researcher,
		logger:     logger,
		jobs:       make(map[uuid.UUID]*Job),
	}
}

type CreateJobRequest struct {
	URL      string `json:"url" binding:"required"`
	Topic    string `json:"topic" binding:"required"`
	MaxPages int    `json:"max_pages"`
}

func (s *Service) CreateJob(req CreateJobRequest) *Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.New(),
		URL:       req.URL,
		Topic:     req.Topic,
		MaxPages:  req.MaxPages,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.runWorker(job.ID)

	snapshot := *job
	return &snapshot
}

func (s *Service) GetJob(id uuid.UUID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	snapshot := *job
	return &snapshot, nil
}

func (s *Service) ListJobs() []Job {
	s.mu.RLock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

func (s *Service) runWorker(id uuid.UUID) {
	ctx := context.Background()

	s.update(id, func(job *Job) {
		job.Status = StatusRunning
	})

	s.mu.RLock()
	job := s.jobs[id]
	url, topic, maxPages := job.URL, job.Topic, job.MaxPages
	s.mu.RUnlock()

	reportPath, err := s.researcher.Research(ctx, url, topic, maxPages)
	if err != nil {
		s.logger.Error("Research job failed", "job_id", id, "error", err)
		s.update(id, func(job *Job) {
			job.Status = StatusFailed
			job.Error = err.Error()
		})
		return
	}

	s.update(id, func(job *Job) {
		job.Status = StatusCompleted
		job.ReportPath = reportPath
	})
	s.logger.Info("Research job completed", "job_id", id, "report", reportPath)
}

func (s *Service) update(id uuid.UUID, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}
