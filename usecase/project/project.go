package project

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
)

// UseCase orchestrates the project lifecycle. Every mutating call
// re-reads the project and consults the access policy against that fresh
// state before touching the store.
type UseCase struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	users    repository.UserRepository
	logger   *zap.Logger
}

func New(projects repository.ProjectRepository, tasks repository.TaskRepository, users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects: projects,
		tasks:    tasks,
		users:    users,
		logger:   logger,
	}
}

type CreateInput struct {
	Name           string
	Description    string
	Status         string
	Priority       string
	StartDate      *time.Time
	EndDate        *time.Time
	Deadline       *time.Time
	GanttData      string
	MermaidDiagram string
	MarkdownNotes  string
	Tags           []string
}

// Patch carries a partial update; nil fields are left untouched. The
// planning payload fields (gantt, mermaid, notes) are the member-editable
// subset.
type Patch struct {
	Name        *string
	Description *string
	Status      *string
	Priority    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Deadline    *time.Time
	Tags        *[]string

	GanttData      *string
	MermaidDiagram *string
	MarkdownNotes  *string
}

// PlanningOnly reports whether the patch touches nothing beyond the
// planning payload.
func (p Patch) PlanningOnly() bool {
	structural := p.Name != nil || p.Description != nil || p.Status != nil ||
		p.Priority != nil || p.StartDate != nil || p.EndDate != nil ||
		p.Deadline != nil || p.Tags != nil
	payload := p.GanttData != nil || p.MermaidDiagram != nil || p.MarkdownNotes != nil
	return payload && !structural
}

// Create makes the principal the owner. Any authenticated account may
// create a project; no policy check applies.
func (uc *UseCase) Create(ctx context.Context, principalID string, in CreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "project name is required", nil)
	}

	status := domain.ProjectStatus(in.Status)
	if in.Status == "" {
		status = domain.ProjectPlanning
	}
	if !domain.ValidProjectStatus(status) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown project status", nil)
	}

	priority := domain.Priority(in.Priority)
	if in.Priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
	}

	project := &domain.Project{
		ID:             uuid.NewString(),
		Name:           name,
		Description:    in.Description,
		OwnerID:        principalID,
		Members:        []string{},
		Status:         status,
		Priority:       priority,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Deadline:       in.Deadline,
		GanttData:      in.GanttData,
		MermaidDiagram: in.MermaidDiagram,
		MarkdownNotes:  in.MarkdownNotes,
		Tags:           in.Tags,
	}

	if err := uc.projects.Create(ctx, project); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "create project", err)
	}
	return project, nil
}

// List returns the projects the principal owns or belongs to.
func (uc *UseCase) List(ctx context.Context, principalID string, status string, limit, offset int) ([]domain.Project, error) {
	return uc.projects.List(ctx, repository.ProjectFilter{
		AccountID: principalID,
		Status:    status,
		Limit:     limit,
		Offset:    offset,
	})
}

// Get returns a project with its tasks, for owners and members only.
func (uc *UseCase) Get(ctx context.Context, principalID, projectID string) (*domain.Project, []domain.Task, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if !domain.ProjectAllows(principalID, project, domain.ActionRead) {
		return nil, nil, domain.ErrForbidden
	}

	tasks, err := uc.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrCodeInternal, "list project tasks", err)
	}
	return project, tasks, nil
}

// Update applies a partial update. Structural fields are owner-only; a
// patch limited to the planning payload is open to members as well.
func (uc *UseCase) Update(ctx context.Context, principalID, projectID string, patch Patch) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	action := domain.ActionUpdate
	if patch.PlanningOnly() {
		action = domain.ActionUpdatePlanning
	}
	if !domain.ProjectAllows(principalID, project, action) {
		return nil, domain.ErrForbidden
	}

	if err := applyPatch(project, patch); err != nil {
		return nil, err
	}

	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "update project", err)
	}
	return project, nil
}

// Delete removes the project and cascades to its tasks: the task sweep
// runs first, then the project delete. A failure in between is a fatal
// inconsistency and is surfaced as such, never retried.
func (uc *UseCase) Delete(ctx context.Context, principalID, projectID string) error {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if !domain.ProjectAllows(principalID, project, domain.ActionDelete) {
		return domain.ErrForbidden
	}

	swept, err := uc.tasks.DeleteByProject(ctx, projectID)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "sweep project tasks", err)
	}

	if err := uc.projects.Delete(ctx, projectID); err != nil {
		uc.logger.Error("project delete failed after task sweep",
			zap.String("project_id", projectID),
			zap.Int64("tasks_swept", swept),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeInconsistent, "project tasks deleted but project removal failed", err)
	}

	uc.logger.Info("project deleted",
		zap.String("project_id", projectID),
		zap.Int64("tasks_swept", swept))
	return nil
}

// AddMember is owner-only. Adding the owner or an existing member is a
// no-op reported as a duplicate-member condition.
func (uc *UseCase) AddMember(ctx context.Context, principalID, projectID, memberID string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.ProjectAllows(principalID, project, domain.ActionManageMembers) {
		return nil, domain.ErrForbidden
	}

	if _, err := uc.users.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	if project.IsOwner(memberID) || project.HasMember(memberID) {
		return project, domain.ErrDuplicateMember
	}

	project.Members = append(project.Members, memberID)
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "add project member", err)
	}
	return project, nil
}

// RemoveMember is owner-only. Removing a non-member is a silent no-op.
func (uc *UseCase) RemoveMember(ctx context.Context, principalID, projectID, memberID string) (*domain.Project, error) {
	project, err := uc.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !domain.ProjectAllows(principalID, project, domain.ActionManageMembers) {
		return nil, domain.ErrForbidden
	}

	members := project.Members[:0]
	for _, m := range project.Members {
		if m != memberID {
			members = append(members, m)
		}
	}
	project.Members = members

	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "remove project member", err)
	}
	return project, nil
}

func applyPatch(project *domain.Project, patch Patch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.WrapError(domain.ErrCodeInvalid, "project name is required", nil)
		}
		project.Name = name
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Status != nil {
		status := domain.ProjectStatus(*patch.Status)
		if !domain.ValidProjectStatus(status) {
			return domain.WrapError(domain.ErrCodeInvalid, "unknown project status", nil)
		}
		project.Status = status
	}
	if patch.Priority != nil {
		priority := domain.Priority(*patch.Priority)
		if !domain.ValidPriority(priority) {
			return domain.WrapError(domain.ErrCodeInvalid, "unknown priority", nil)
		}
		project.Priority = priority
	}
	if patch.StartDate != nil {
		project.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		project.EndDate = patch.EndDate
	}
	if patch.Deadline != nil {
		project.Deadline = patch.Deadline
	}
	if patch.Tags != nil {
		project.Tags = *patch.Tags
	}
	if patch.GanttData != nil {
		project.GanttData = *patch.GanttData
	}
	if patch.MermaidDiagram != nil {
		project.MermaidDiagram = *patch.MermaidDiagram
	}
	if patch.MarkdownNotes != nil {
		project.MarkdownNotes = *patch.MarkdownNotes
	}
	return nil
}
