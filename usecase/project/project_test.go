package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository/memory"
)

type fixture struct {
	uc       *UseCase
	projects *memory.ProjectRepository
	tasks    *memory.TaskRepository
	users    *memory.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	projects := memory.NewProjectRepository()
	tasks := memory.NewTaskRepository()
	users := memory.NewUserRepository()

	for _, u := range []*domain.User{
		{ID: "owner", Username: "owner", Email: "owner@example.com"},
		{ID: "member", Username: "member", Email: "member@example.com"},
		{ID: "other", Username: "other", Email: "other@example.com"},
	} {
		require.NoError(t, users.Create(context.Background(), u))
	}

	return &fixture{
		uc:       New(projects, tasks, users, nil),
		projects: projects,
		tasks:    tasks,
		users:    users,
	}
}

func (f *fixture) createProject(t *testing.T, members ...string) *domain.Project {
	t.Helper()
	project, err := f.uc.Create(context.Background(), "owner", CreateInput{Name: "Launch"})
	require.NoError(t, err)
	for _, m := range members {
		_, err := f.uc.AddMember(context.Background(), "owner", project.ID, m)
		require.NoError(t, err)
	}
	fresh, err := f.projects.GetByID(context.Background(), project.ID)
	require.NoError(t, err)
	return fresh
}

func strPtr(s string) *string { return &s }

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)

	project, err := f.uc.Create(context.Background(), "owner", CreateInput{Name: "  Launch  "})
	require.NoError(t, err)
	assert.Equal(t, "Launch", project.Name)
	assert.Equal(t, "owner", project.OwnerID)
	assert.Equal(t, domain.ProjectPlanning, project.Status)
	assert.Equal(t, domain.PriorityMedium, project.Priority)
	assert.Empty(t, project.Members)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Create(context.Background(), "owner", CreateInput{Name: "   "})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.Create(context.Background(), "owner", CreateInput{Name: "x", Status: "bogus"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.Create(context.Background(), "owner", CreateInput{Name: "x", Priority: "bogus"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "member")

	_, _, err := f.uc.Get(context.Background(), "owner", project.ID)
	assert.NoError(t, err)

	_, _, err = f.uc.Get(context.Background(), "member", project.ID)
	assert.NoError(t, err)

	_, _, err = f.uc.Get(context.Background(), "other", project.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, _, err = f.uc.Get(context.Background(), "owner", "missing")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestUpdateStructuralOwnerOnly(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "member")

	_, err := f.uc.Update(context.Background(), "member", project.ID, Patch{Name: strPtr("Renamed")})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	updated, err := f.uc.Update(context.Background(), "owner", project.ID, Patch{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdatePlanningOpenToMembers(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "member")

	updated, err := f.uc.Update(context.Background(), "member", project.ID, Patch{
		MermaidDiagram: strPtr("graph TD; A-->B"),
	})
	require.NoError(t, err)
	assert.Equal(t, "graph TD; A-->B", updated.MermaidDiagram)

	// A mixed patch is structural and stays owner-only.
	_, err = f.uc.Update(context.Background(), "member", project.ID, Patch{
		MermaidDiagram: strPtr("graph TD; A-->C"),
		Name:           strPtr("Sneaky"),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	// Non-members get nothing, planning payload included.
	_, err = f.uc.Update(context.Background(), "other", project.ID, Patch{
		MarkdownNotes: strPtr("notes"),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestDeleteCascadesToTasks(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t)

	for _, title := range []string{"a", "b"} {
		require.NoError(t, f.tasks.Create(context.Background(), &domain.Task{
			ProjectID: project.ID,
			Title:     title,
			CreatorID: "owner",
		}))
	}
	require.NoError(t, f.tasks.Create(context.Background(), &domain.Task{
		ID:        "unrelated",
		ProjectID: "another-project",
		Title:     "keep",
		CreatorID: "owner",
	}))

	require.NoError(t, f.uc.Delete(context.Background(), "owner", project.ID))

	_, err := f.projects.GetByID(context.Background(), project.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	swept, err := f.tasks.ListByProject(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Empty(t, swept)

	_, err = f.tasks.GetByID(context.Background(), "unrelated")
	assert.NoError(t, err, "tasks of other projects must survive")
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "member")

	err := f.uc.Delete(context.Background(), "member", project.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	err = f.uc.Delete(context.Background(), "other", project.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestDeleteSurfacesInconsistency(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t)
	require.NoError(t, f.tasks.Create(context.Background(), &domain.Task{
		ProjectID: project.ID,
		Title:     "doomed",
		CreatorID: "owner",
	}))

	f.projects.FailDelete = domain.WrapError(domain.ErrCodeInternal, "store down", nil)

	err := f.uc.Delete(context.Background(), "owner", project.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInconsistent))

	// The task sweep already ran; the project record is still there.
	remaining, listErr := f.tasks.ListByProject(context.Background(), project.ID)
	require.NoError(t, listErr)
	assert.Empty(t, remaining)

	_, getErr := f.projects.GetByID(context.Background(), project.ID)
	assert.NoError(t, getErr)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t)

	updated, err := f.uc.AddMember(context.Background(), "owner", project.ID, "member")
	require.NoError(t, err)
	assert.Contains(t, updated.Members, "member")

	// Unknown accounts cannot be added.
	_, err = f.uc.AddMember(context.Background(), "owner", project.ID, "ghost")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	// Members cannot manage membership.
	_, err = f.uc.AddMember(context.Background(), "member", project.ID, "other")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestAddMemberDuplicate(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "member")

	// Re-adding an existing member is reported but changes nothing.
	got, err := f.uc.AddMember(context.Background(), "owner", project.ID, "member")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
	require.NotNil(t, got)
	assert.Equal(t, []string{"member"}, got.Members)

	// The owner is never a member.
	_, err = f.uc.AddMember(context.Background(), "owner", project.ID, "owner")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	fresh, getErr := f.projects.GetByID(context.Background(), project.ID)
	require.NoError(t, getErr)
	assert.Equal(t, []string{"member"}, fresh.Members)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	project := f.createProject(t, "member")

	updated, err := f.uc.RemoveMember(context.Background(), "owner", project.ID, "member")
	require.NoError(t, err)
	assert.NotContains(t, updated.Members, "member")

	// Removing an account that is not a member is a silent no-op.
	_, err = f.uc.RemoveMember(context.Background(), "owner", project.ID, "other")
	assert.NoError(t, err)
}
