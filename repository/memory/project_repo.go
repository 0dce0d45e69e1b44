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

type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project

	// FailDelete, when set, rejects the next Delete to exercise the
	// cascade inconsistency path.
	FailDelete error
}

func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{projects: make(map[string]*domain.Project)}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.projects[id]; ok {
		return cloneProject(p), nil
	}
	return nil, domain.ErrProjectNotFound
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var projects []domain.Project
	for _, p := range r.projects {
		if p.OwnerID != filter.AccountID && !p.HasMember(filter.AccountID) {
			continue
		}
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		projects = append(projects, *cloneProject(p))
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if project == nil || project.Name == "" || project.OwnerID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.projects[project.ID] = cloneProject(project)
	return nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[project.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = cloneProject(project)
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.FailDelete; err != nil {
		r.FailDelete = nil
		return err
	}
	if _, ok := r.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

func cloneProject(p *domain.Project) *domain.Project {
	out := *p
	out.Members = append([]string(nil), p.Members...)
	out.Tags = append([]string(nil), p.Tags...)
	return &out
}
