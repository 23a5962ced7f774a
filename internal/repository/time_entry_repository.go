package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"Mansoor88-6/project-timer/internal/models"
)

var ErrNotFound = errors.New("record not found")

const timeEntryColumns = `id, project_id, description, date, duration, created_at, updated_at`

type TimeEntryRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewTimeEntryRepository(db *sql.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db, now: time.Now}
}

func (r *TimeEntryRepository) Create(ctx context.Context, req *models.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	now := r.now()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO time_entries (project_id, description, date, duration, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.ProjectID, req.Description, req.Date, req.Duration, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read time entry id: %w", err)
	}

	return &models.TimeEntry{
		ID:          id,
		ProjectID:   req.ProjectID,
		Description: req.Description,
		Date:        req.Date,
		Duration:    req.Duration,
		CreatedAt:   time.UnixMilli(now.UnixMilli()),
		UpdatedAt:   time.UnixMilli(now.UnixMilli()),
	}, nil
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id int64) (*models.TimeEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id = ?`, id)

	entry, err := scanTimeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time entry: %w", err)
	}
	return entry, nil
}

// ListByProject returns entries newest first. projectID 0 lists every project.
func (r *TimeEntryRepository) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*models.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
	args := []interface{}{}
	if projectID != 0 {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return r.query(ctx, query, args...)
}

// ListBetween returns entries whose date falls in [from, to], both YYYY-MM-DD.
func (r *TimeEntryRepository) ListBetween(ctx context.Context, from, to string) ([]*models.TimeEntry, error) {
	return r.query(ctx, `
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, id ASC
	`, from, to)
}

func (r *TimeEntryRepository) Update(ctx context.Context, id int64, update *models.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	setParts := []string{"updated_at = ?"}
	args := []interface{}{r.now().UnixMilli()}

	if update.ProjectID != nil {
		setParts = append(setParts, "project_id = ?")
		args = append(args, *update.ProjectID)
	}
	if update.Description != nil {
		setParts = append(setParts, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Date != nil {
		setParts = append(setParts, "date = ?")
		args = append(args, *update.Date)
	}
	if update.Duration != nil {
		setParts = append(setParts, "duration = ?")
		args = append(args, *update.Duration)
	}

	if len(setParts) == 1 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE time_entries SET %s WHERE id = ?`, strings.Join(setParts, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("time entry %d: %w", id, ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete time entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("time entry %d: %w", id, ErrNotFound)
	}

	return nil
}

func (r *TimeEntryRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.TimeEntry{}
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTimeEntry(s scanner) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	var createdAt, updatedAt int64
	err := s.Scan(
		&entry.ID,
		&entry.ProjectID,
		&entry.Description,
		&entry.Date,
		&entry.Duration,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = time.UnixMilli(createdAt)
	entry.UpdatedAt = time.UnixMilli(updatedAt)
	return &entry, nil
}
