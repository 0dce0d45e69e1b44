package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task)}
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.tasks[id]; ok {
		return cloneTask(t), nil
	}
	return nil, domain.ErrTaskNotFound
}

func (r *TaskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []domain.Task
	for _, t := range r.tasks {
		if !matches(t, filter) {
			continue
		}
		tasks = append(tasks, *cloneTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tasks []domain.Task
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, *cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.Title == "" || task.ProjectID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	r.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept int64
	for id, t := range r.tasks {
		if t.ProjectID == projectID {
			delete(r.tasks, id)
			swept++
		}
	}
	return swept, nil
}

func (r *TaskRepository) Stats(ctx context.Context, filter repository.TaskFilter) (*repository.TaskStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &repository.TaskStats{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}
	for _, t := range r.tasks {
		if t.AssigneeID != filter.PrincipalID && t.CreatorID != filter.PrincipalID {
			continue
		}
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		stats.ByStatus[string(t.Status)]++
		stats.ByPriority[string(t.Priority)]++
	}
	return stats, nil
}

func matches(t *domain.Task, filter repository.TaskFilter) bool {
	if t.AssigneeID != filter.PrincipalID && t.CreatorID != filter.PrincipalID {
		return false
	}
	if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
		return false
	}
	if filter.Status != "" && string(t.Status) != filter.Status {
		return false
	}
	if filter.Priority != "" && string(t.Priority) != filter.Priority {
		return false
	}
	if filter.AssigneeID != "" && t.AssigneeID != filter.AssigneeID {
		return false
	}
	return true
}

func cloneTask(t *domain.Task) *domain.Task {
	out := *t
	out.Dependencies = append([]string(nil), t.Dependencies...)
	out.Subtasks = append([]domain.Subtask(nil), t.Subtasks...)
	out.Comments = append([]domain.Comment(nil), t.Comments...)
	out.Tags = append([]string(nil), t.Tags...)
	if t.StartDate != nil {
		d := *t.StartDate
		out.StartDate = &d
	}
	if t.EndDate != nil {
		d := *t.EndDate
		out.EndDate = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.CompletedDate != nil {
		d := *t.CompletedDate
		out.CompletedDate = &d
	}
	return &out
}
