package repository

import (
	"context"

	"github.com/planhub/backend/domain"
)

// ProjectFilter selects projects visible to an account: owner or member.
type ProjectFilter struct {
	AccountID string
	Status    string
	Limit     int
	Offset    int
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
}
