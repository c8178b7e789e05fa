// Package repository implements the port repository interfaces on
// SQLite. Every query filters by organization_id; a row outside the
// acting organization is indistinguishable from a missing row.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
)

// ProjectRepository implements port.ProjectRepository
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) port.ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new project record
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (
			organization_id, name, client_name, type, status,
			start_date, end_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		project.OrganizationID,
		project.Name,
		project.ClientName,
		string(project.Type),
		string(project.Status),
		project.StartDate,
		project.EndDate,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create project",
			zap.Int64("organization_id", project.OrganizationID),
			zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a project by ID within the organization
func (r *ProjectRepository) GetByID(ctx context.Context, orgID, id int64) (*entity.Project, error) {
	query := `
		SELECT id, organization_id, name, client_name, type, status,
			start_date, end_date, created_at, updated_at
		FROM projects
		WHERE organization_id = ? AND id = ?
	`

	project, err := scanProject(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get project",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// UpdateStatus writes a new lifecycle status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, orgID, id int64, status entity.ProjectStatus) error {
	query := `
		UPDATE projects
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE organization_id = ? AND id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, string(status), orgID, id)
	if err != nil {
		r.logger.Error("Failed to update project status",
			zap.Int64("id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update project status: %w", err)
	}
	return nil
}

// List returns a page of the organization's projects, newest first
func (r *ProjectRepository) List(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Project, error) {
	query := `
		SELECT id, organization_id, name, client_name, type, status,
			start_date, end_date, created_at, updated_at
		FROM projects
		WHERE organization_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list projects",
			zap.Int64("organization_id", orgID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Count returns the organization's project count
func (r *ProjectRepository) Count(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE organization_id = ?`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row scanner) (*entity.Project, error) {
	var project entity.Project
	var projectType, status string
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&project.ID,
		&project.OrganizationID,
		&project.Name,
		&project.ClientName,
		&projectType,
		&status,
		&startDate,
		&endDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Type = entity.ProjectType(projectType)
	project.Status = entity.ProjectStatus(status)
	if startDate.Valid {
		project.StartDate = &startDate.Time
	}
	if endDate.Valid {
		project.EndDate = &endDate.Time
	}
	return &project, nil
}

// Verify interface compliance
var _ port.ProjectRepository = (*ProjectRepository)(nil)
