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

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of
// TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `
	id, project_id, title, description, creator_id, assignee_id,
	status, priority,
	start_date, end_date, due_date, completed_date,
	estimated_hours, actual_hours,
	dependencies, subtasks, comments, tags,
	created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `SELECT` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT` + taskColumns + `
	FROM tasks
	WHERE (assignee_id = $1 OR creator_id = $1)
	  AND ($2 = '' OR project_id = $2)
	  AND ($3 = '' OR status = $3)
	  AND ($4 = '' OR priority = $4)
	  AND ($5 = '' OR assignee_id = $5)
	ORDER BY created_at DESC
	LIMIT $6 OFFSET $7
	`
	rows, err := r.pool.Query(ctx, query,
		filter.PrincipalID,
		filter.ProjectID,
		filter.Status,
		filter.Priority,
		filter.AssigneeID,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	const query = `
	SELECT` + taskColumns + `
	FROM tasks
	WHERE project_id = $1
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.Title == "" || task.ProjectID == "" {
		return domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (
		id, project_id, title, description, creator_id, assignee_id,
		status, priority,
		start_date, end_date, due_date, completed_date,
		estimated_hours, actual_hours,
		dependencies, subtasks, comments, tags
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.ProjectID,
		task.Title,
		task.Description,
		task.CreatorID,
		task.AssigneeID,
		string(task.Status),
		string(task.Priority),
		nullTime(task.StartDate),
		nullTime(task.EndDate),
		nullTime(task.DueDate),
		nullTime(task.CompletedDate),
		task.EstimatedHours,
		task.ActualHours,
		marshalJSON(task.Dependencies),
		marshalJSON(task.Subtasks),
		marshalJSON(task.Comments),
		marshalJSON(task.Tags),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	// project_id and creator_id are immutable after creation.
	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		assignee_id = $4,
		status = $5,
		priority = $6,
		start_date = $7,
		end_date = $8,
		due_date = $9,
		completed_date = $10,
		estimated_hours = $11,
		actual_hours = $12,
		dependencies = $13,
		subtasks = $14,
		comments = $15,
		tags = $16,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.AssigneeID,
		string(task.Status),
		string(task.Priority),
		nullTime(task.StartDate),
		nullTime(task.EndDate),
		nullTime(task.DueDate),
		nullTime(task.CompletedDate),
		task.EstimatedHours,
		task.ActualHours,
		marshalJSON(task.Dependencies),
		marshalJSON(task.Subtasks),
		marshalJSON(task.Comments),
		marshalJSON(task.Tags),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	const query = `DELETE FROM tasks WHERE project_id = $1`
	tag, err := r.pool.Exec(ctx, query, projectID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) Stats(ctx context.Context, filter repository.TaskFilter) (*repository.TaskStats, error) {
	stats := &repository.TaskStats{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}

	const byStatus = `
	SELECT status, COUNT(*)
	FROM tasks
	WHERE (assignee_id = $1 OR creator_id = $1)
	  AND ($2 = '' OR project_id = $2)
	GROUP BY status
	`
	if err := r.groupCount(ctx, byStatus, filter, stats.ByStatus); err != nil {
		return nil, err
	}

	const byPriority = `
	SELECT priority, COUNT(*)
	FROM tasks
	WHERE (assignee_id = $1 OR creator_id = $1)
	  AND ($2 = '' OR project_id = $2)
	GROUP BY priority
	`
	if err := r.groupCount(ctx, byPriority, filter, stats.ByPriority); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *taskRepository) groupCount(ctx context.Context, query string, filter repository.TaskFilter, out map[string]int) error {
	rows, err := r.pool.Query(ctx, query, filter.PrincipalID, filter.ProjectID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		out[key] = count
	}
	return rows.Err()
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var dependencies, subtasks, comments, tags []byte

	if err := row.Scan(
		&task.ID,
		&task.ProjectID,
		&task.Title,
		&task.Description,
		&task.CreatorID,
		&task.AssigneeID,
		&task.Status,
		&task.Priority,
		&task.StartDate,
		&task.EndDate,
		&task.DueDate,
		&task.CompletedDate,
		&task.EstimatedHours,
		&task.ActualHours,
		&dependencies,
		&subtasks,
		&comments,
		&tags,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	unmarshalJSON(dependencies, &task.Dependencies)
	unmarshalJSON(subtasks, &task.Subtasks)
	unmarshalJSON(comments, &task.Comments)
	unmarshalJSON(tags, &task.Tags)
	return &task, nil
}
