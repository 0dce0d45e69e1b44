package repository

import (
	"context"

	"github.com/planhub/backend/domain"
)

// TaskFilter selects tasks the principal is assigned to or created,
// optionally narrowed by project, status, priority or assignee.
type TaskFilter struct {
	PrincipalID string
	ProjectID   string
	Status      string
	Priority    string
	AssigneeID  string
	Limit       int
	Offset      int
}

// TaskStats aggregates task counts for a principal's visible tasks.
type TaskStats struct {
	ByStatus   map[string]int `json:"status_stats"`
	ByPriority map[string]int `json:"priority_stats"`
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// DeleteByProject removes every task referencing the project and returns
	// the number of tasks swept.
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
	Stats(ctx context.Context, filter TaskFilter) (*TaskStats, error)
}
