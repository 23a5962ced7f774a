package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Mansoor88-6/project-timer/internal/models"
	"Mansoor88-6/project-timer/internal/repository"

	"go.uber.org/zap"
)

// ValidationError reports a request that the store refuses to persist.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TimeEntryService is the local record store backing projects and time entries.
type TimeEntryService struct {
	entries  *repository.TimeEntryRepository
	projects *repository.ProjectRepository
	latency  time.Duration
	logger   *zap.Logger
}

// NewTimeEntryService creates the local store. latency is applied to the
// regular creation path only; CreateTimedEntry never waits.
func NewTimeEntryService(
	entries *repository.TimeEntryRepository,
	projects *repository.ProjectRepository,
	latency time.Duration,
	logger *zap.Logger,
) *TimeEntryService {
	return &TimeEntryService{
		entries:  entries,
		projects: projects,
		latency:  latency,
		logger:   logger,
	}
}

// CreateTimeEntry is the regular creation path used by entry forms.
func (s *TimeEntryService) CreateTimeEntry(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	if err := s.validateEntry(ctx, req); err != nil {
		return nil, err
	}

	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}

	return s.create(ctx, req)
}

// CreateTimedEntry is the fast path used when a running timer is stopped.
func (s *TimeEntryService) CreateTimedEntry(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	if err := s.validateEntry(ctx, req); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

func (s *TimeEntryService) create(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	entry, err := s.entries.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Time entry created",
		zap.Int64("id", entry.ID),
		zap.Int64("project_id", entry.ProjectID),
		zap.Float64("duration_hours", entry.Duration),
	)
	return entry, nil
}

func (s *TimeEntryService) GetTimeEntry(ctx context.Context, id int64) (*models.TimeEntry, error) {
	return s.entries.GetByID(ctx, id)
}

func (s *TimeEntryService) ListTimeEntries(ctx context.Context, projectID int64, limit, offset int) ([]*models.TimeEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.entries.ListByProject(ctx, projectID, limit, offset)
}

func (s *TimeEntryService) ListTimeEntriesBetween(ctx context.Context, from, to string) ([]*models.TimeEntry, error) {
	if err := validateDate("from", from); err != nil {
		return nil, err
	}
	if err := validateDate("to", to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, &ValidationError{Field: "from", Message: "must not be after to"}
	}
	return s.entries.ListBetween(ctx, from, to)
}

func (s *TimeEntryService) UpdateTimeEntry(ctx context.Context, id int64, req *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	if req.ProjectID != nil {
		if err := s.requireProject(ctx, *req.ProjectID); err != nil {
			return nil, err
		}
	}
	if req.Date != nil {
		if err := validateDate("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.Duration != nil && *req.Duration < 0 {
		return nil, &ValidationError{Field: "duration", Message: "must not be negative"}
	}
	return s.entries.Update(ctx, id, req)
}

func (s *TimeEntryService) DeleteTimeEntry(ctx context.Context, id int64) error {
	return s.entries.Delete(ctx, id)
}

func (s *TimeEntryService) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}

func (s *TimeEntryService) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *TimeEntryService) CreateProject(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "is required"}
	}
	return s.projects.Create(ctx, req)
}

func (s *TimeEntryService) validateEntry(ctx context.Context, req *models.CreateTimeEntryRequest) error {
	if err := validateDate("date", req.Date); err != nil {
		return err
	}
	if req.Duration < 0 {
		return &ValidationError{Field: "duration", Message: "must not be negative"}
	}
	return s.requireProject(ctx, req.ProjectID)
}

func (s *TimeEntryService) requireProject(ctx context.Context, id int64) error {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ValidationError{Field: "projectId", Message: fmt.Sprintf("project %d does not exist", id)}
		}
		return err
	}
	return nil
}

func validateDate(field, value string) error {
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return &ValidationError{Field: field, Message: "expected YYYY-MM-DD"}
	}
	return nil
}
