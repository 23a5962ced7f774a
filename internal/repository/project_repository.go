package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"Mansoor88-6/project-timer/internal/models"
)

type ProjectRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db, now: time.Now}
}

func (r *ProjectRepository) Create(ctx context.Context, req *models.CreateProjectRequest) (*models.Project, error) {
	now := time.UnixMilli(r.now().UnixMilli())

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (name, client, created_at) VALUES (?, ?, ?)`,
		req.Name, req.Client, now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read project id: %w", err)
	}

	return &models.Project{ID: id, Name: req.Name, Client: req.Client, CreatedAt: now}, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	var createdAt int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, client, created_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Client, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.CreatedAt = time.UnixMilli(createdAt)
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, client, created_at FROM projects ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.CreatedAt = time.UnixMilli(createdAt)
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return projects, nil
}
