package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository returns a Postgres-backed implementation of
// ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) repository.ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `
	id, name, description, owner_id, members, status, priority,
	start_date, end_date, deadline,
	gantt_data, mermaid_diagram, markdown_notes, tags,
	created_at, updated_at`

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `SELECT` + projectColumns + ` FROM projects WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanProject(row)
}

func (r *projectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	// Visibility: owner or member. The jsonb ? operator tests string
	// membership in the members array.
	const query = `
	SELECT` + projectColumns + `
	FROM projects
	WHERE (owner_id = $1 OR members ? $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY updated_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.AccountID, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.Name == "" || project.OwnerID == "" {
		return domain.ErrInvalidPayload
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO projects (
		id, name, description, owner_id, members, status, priority,
		start_date, end_date, deadline,
		gantt_data, mermaid_diagram, markdown_notes, tags
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		project.OwnerID,
		marshalJSON(project.Members),
		string(project.Status),
		string(project.Priority),
		nullTime(project.StartDate),
		nullTime(project.EndDate),
		nullTime(project.Deadline),
		project.GanttData,
		project.MermaidDiagram,
		project.MarkdownNotes,
		marshalJSON(project.Tags),
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrInvalidPayload
	}

	// owner_id is immutable after creation and deliberately absent here.
	const query = `
	UPDATE projects
	SET name = $2,
		description = $3,
		members = $4,
		status = $5,
		priority = $6,
		start_date = $7,
		end_date = $8,
		deadline = $9,
		gantt_data = $10,
		mermaid_diagram = $11,
		markdown_notes = $12,
		tags = $13,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		marshalJSON(project.Members),
		string(project.Status),
		string(project.Priority),
		nullTime(project.StartDate),
		nullTime(project.EndDate),
		nullTime(project.Deadline),
		project.GanttData,
		project.MermaidDiagram,
		project.MarkdownNotes,
		marshalJSON(project.Tags),
	).Scan(&project.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProjectNotFound
		}
		return err
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM projects WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func scanProject(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Project, error) {
	var project domain.Project
	var members, tags []byte

	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.OwnerID,
		&members,
		&project.Status,
		&project.Priority,
		&project.StartDate,
		&project.EndDate,
		&project.Deadline,
		&project.GanttData,
		&project.MermaidDiagram,
		&project.MarkdownNotes,
		&tags,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}

	unmarshalJSON(members, &project.Members)
	unmarshalJSON(tags, &project.Tags)
	return &project, nil
}
