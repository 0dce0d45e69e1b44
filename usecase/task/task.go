package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

// UseCase orchestrates the task lifecycle. Task rights derive from the
// parent project, so every call loads the current project alongside the
// task before consulting the policy.
type UseCase struct {
	tasks    repository.TaskRepository
	projects repository.ProjectRepository
	logger   *zap.Logger
}

func New(tasks repository.TaskRepository, projects repository.ProjectRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:    tasks,
		projects: projects,
		logger:   logger,
	}
}

type CreateInput struct {
	ProjectID      string
	Title          string
	Description    string
	AssigneeID     string
	Status         string
	Priority       string
	StartDate      *time.Time
	EndDate        *time.Time
	DueDate        *time.Time
	EstimatedHours float64
	ActualHours    float64
	Dependencies   []string
	Tags           []string
}

// Patch carries a partial task update; nil fields are left untouched.
type Patch struct {
	Title          *string
	Description    *string
	AssigneeID     *string
	Status         *string
	Priority       *string
	StartDate      *time.Time
	EndDate        *time.Time
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Dependencies   *[]string
	Tags           *[]string
}

// Create requires the parent project to exist and the principal to have at
// least member access to it. The principal becomes the immutable creator.
func (uc *UseCase) Create(ctx context.Context, principalID string, in CreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "task title is required", nil)
	}
	if in.ProjectID == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "task project is required", nil)
	}

	project, err := uc.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !domain.ProjectAllows(principalID, project, domain.ActionRead) {
		return nil, domain.ErrForbidden
	}

	status := domain.TaskStatus(in.Status)
	if in.Status == "" {
		status = domain.TaskTodo
	}
	if !domain.ValidTaskStatus(status) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown task status", nil)
	}

	priority := domain.Priority(in.Priority)
	if in.Priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
	}

	task := &domain.Task{
		ID:             uuid.NewString(),
		ProjectID:      in.ProjectID,
		Title:          title,
		Description:    in.Description,
		CreatorID:      principalID,
		AssigneeID:     in.AssigneeID,
		Status:         status,
		Priority:       priority,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		ActualHours:    in.ActualHours,
		Dependencies:   in.Dependencies,
		Subtasks:       []domain.Subtask{},
		Comments:       []domain.Comment{},
		Tags:           in.Tags,
	}
	task.DeriveCompletion(time.Now())

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "create task", err)
	}
	return task, nil
}

// List returns tasks the principal created or is assigned to, optionally
// narrowed by project, status, priority or assignee.
func (uc *UseCase) List(ctx context.Context, principalID string, filter repository.TaskFilter) ([]domain.Task, error) {
	filter.PrincipalID = principalID
	return uc.tasks.List(ctx, filter)
}

// Get returns a task if the principal is its creator, assignee, or an
// owner/member of the parent project.
func (uc *UseCase) Get(ctx context.Context, principalID, taskID string) (*domain.Task, error) {
	task, project, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.TaskAllows(principalID, task, project, domain.ActionRead) {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

// Update applies a partial update and re-derives the completed date from
// the resulting status.
func (uc *UseCase) Update(ctx context.Context, principalID, taskID string, patch Patch) (*domain.Task, error) {
	task, project, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.TaskAllows(principalID, task, project, domain.ActionUpdate) {
		return nil, domain.ErrForbidden
	}

	if err := applyPatch(task, patch); err != nil {
		return nil, err
	}
	task.DeriveCompletion(time.Now())

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "update task", err)
	}
	return task, nil
}

// Delete is restricted to the creator and the parent project's owner.
func (uc *UseCase) Delete(ctx context.Context, principalID, taskID string) error {
	task, project, err := uc.load(ctx, taskID)
	if err != nil {
		return err
	}
	if !domain.TaskAllows(principalID, task, project, domain.ActionDelete) {
		return domain.ErrForbidden
	}
	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "delete task", err)
	}
	return nil
}

// AddComment appends an authored, timestamped comment.
func (uc *UseCase) AddComment(ctx context.Context, principalID, taskID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "comment content is required", nil)
	}

	task, project, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.TaskAllows(principalID, task, project, domain.ActionComment) {
		return nil, domain.ErrForbidden
	}

	comment := domain.Comment{
		ID:        uuid.NewString(),
		AuthorID:  principalID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	task.Comments = append(task.Comments, comment)

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "add task comment", err)
	}
	return &comment, nil
}

// AddSubtask appends a subtask with a stable id scoped to the task.
func (uc *UseCase) AddSubtask(ctx context.Context, principalID, taskID, title string) (*domain.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "subtask title is required", nil)
	}

	task, project, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.TaskAllows(principalID, task, project, domain.ActionAddSubtask) {
		return nil, domain.ErrForbidden
	}

	subtask := domain.Subtask{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now(),
	}
	task.Subtasks = append(task.Subtasks, subtask)

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "add subtask", err)
	}
	return &subtask, nil
}

// ToggleSubtask sets the completed flag of an existing subtask.
func (uc *UseCase) ToggleSubtask(ctx context.Context, principalID, taskID, subtaskID string, completed bool) (*domain.Task, error) {
	task, project, err := uc.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !domain.TaskAllows(principalID, task, project, domain.ActionAddSubtask) {
		return nil, domain.ErrForbidden
	}

	subtask := task.Subtask(subtaskID)
	if subtask == nil {
		return nil, domain.ErrSubtaskNotFound
	}
	subtask.Completed = completed

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "toggle subtask", err)
	}
	return task, nil
}

// Stats aggregates status and priority counts over the principal's
// created-or-assigned tasks.
func (uc *UseCase) Stats(ctx context.Context, principalID, projectID string) (*repository.TaskStats, error) {
	return uc.tasks.Stats(ctx, repository.TaskFilter{
		PrincipalID: principalID,
		ProjectID:   projectID,
	})
}

// load fetches the task and its parent project. A project that no longer
// resolves (the cascade-delete window) yields a nil parent: creator and
// assignee rights still apply, derived project rights do not.
func (uc *UseCase) load(ctx context.Context, taskID string) (*domain.Task, *domain.Project, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	project, err := uc.projects.GetByID(ctx, task.ProjectID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return task, nil, nil
		}
		return nil, nil, err
	}
	return task, project, nil
}

func applyPatch(task *domain.Task, patch Patch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.WrapError(domain.ErrCodeInvalid, "task title is required", nil)
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.AssigneeID != nil {
		task.AssigneeID = *patch.AssigneeID
	}
	if patch.Status != nil {
		status := domain.TaskStatus(*patch.Status)
		if !domain.ValidTaskStatus(status) {
			return domain.WrapError(domain.ErrCodeInvalid, "unknown task status", nil)
		}
		task.Status = status
	}
	if patch.Priority != nil {
		priority := domain.Priority(*patch.Priority)
		if !domain.ValidPriority(priority) {
			return domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
		}
		task.Priority = priority
	}
	if patch.StartDate != nil {
		task.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		task.EndDate = patch.EndDate
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.EstimatedHours != nil {
		task.EstimatedHours = *patch.EstimatedHours
	}
	if patch.ActualHours != nil {
		task.ActualHours = *patch.ActualHours
	}
	if patch.Dependencies != nil {
		task.Dependencies = *patch.Dependencies
	}
	if patch.Tags != nil {
		task.Tags = *patch.Tags
	}
	return nil
}
