package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planhub/backend/domain"
	"github.com/planhub/backend/repository"
	"github.com/planhub/backend/repository/memory"
	projectUC "github.com/planhub/backend/usecase/project"
)

type fixture struct {
	uc        *UseCase
	projectUC *projectUC.UseCase
	projects  *memory.ProjectRepository
	tasks     *memory.TaskRepository
	users     *memory.UserRepository
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
		uc:        New(tasks, projects, nil),
		projectUC: projectUC.New(projects, tasks, users, nil),
		projects:  projects,
		tasks:     tasks,
		users:     users,
	}
}

func (f *fixture) seedProject(t *testing.T, members ...string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		ID:      "p1",
		Name:    "Launch",
		OwnerID: "owner",
		Members: members,
		Status:  domain.ProjectActive,
	}
	require.NoError(t, f.projects.Create(context.Background(), project))
	return project
}

func strPtr(s string) *string { return &s }

func TestCreateTask(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, "member")

	task, err := f.uc.Create(context.Background(), "member", CreateInput{
		ProjectID:  "p1",
		Title:      "  Ship it  ",
		AssigneeID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ship it", task.Title)
	assert.Equal(t, "member", task.CreatorID)
	assert.Equal(t, domain.TaskTodo, task.Status)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Nil(t, task.CompletedDate)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t)

	_, err := f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: "p1"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.Create(context.Background(), "owner", CreateInput{Title: "x"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: "missing", Title: "x"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	// Outsiders cannot create tasks in a project they cannot see.
	_, err = f.uc.Create(context.Background(), "other", CreateInput{ProjectID: "p1", Title: "x"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestCreateDoneTaskGetsCompletedDate(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t)

	task, err := f.uc.Create(context.Background(), "owner", CreateInput{
		ProjectID: "p1",
		Title:     "already done",
		Status:    string(domain.TaskDone),
	})
	require.NoError(t, err)
	assert.NotNil(t, task.CompletedDate)
}

func TestUpdateDerivesCompletion(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t)
	task, err := f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: "p1", Title: "work"})
	require.NoError(t, err)

	done, err := f.uc.Update(context.Background(), "owner", task.ID, Patch{Status: strPtr(string(domain.TaskDone))})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedDate)
	first := *done.CompletedDate

	// Reopening clears the stamp.
	reopened, err := f.uc.Update(context.Background(), "owner", task.ID, Patch{Status: strPtr(string(domain.TaskInProgress))})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedDate)

	// Completing again stamps a fresh date, not the old one.
	redone, err := f.uc.Update(context.Background(), "owner", task.ID, Patch{Status: strPtr(string(domain.TaskDone))})
	require.NoError(t, err)
	require.NotNil(t, redone.CompletedDate)
	assert.False(t, redone.CompletedDate.Before(first))
}

func TestTaskAccessRights(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, "member", "assignee-acct")
	require.NoError(t, f.users.Create(context.Background(), &domain.User{
		ID: "assignee-acct", Username: "assignee", Email: "assignee@example.com",
	}))

	task, err := f.uc.Create(context.Background(), "member", CreateInput{
		ProjectID:  "p1",
		Title:      "shared work",
		AssigneeID: "assignee-acct",
	})
	require.NoError(t, err)

	// Read: creator, assignee, member and owner all pass; outsiders fail.
	for _, principal := range []string{"member", "assignee-acct", "owner"} {
		_, err := f.uc.Get(context.Background(), principal, task.ID)
		assert.NoError(t, err, principal)
	}
	_, err = f.uc.Get(context.Background(), "other", task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	// Delete: assignee is not enough.
	err = f.uc.Delete(context.Background(), "assignee-acct", task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	// Creator may delete.
	require.NoError(t, f.uc.Delete(context.Background(), "member", task.ID))
}

func TestOwnerMayDeleteAnyTask(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, "member")

	task, err := f.uc.Create(context.Background(), "member", CreateInput{ProjectID: "p1", Title: "work"})
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(context.Background(), "owner", task.ID))
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, "member")
	task, err := f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: "p1", Title: "work"})
	require.NoError(t, err)

	comment, err := f.uc.AddComment(context.Background(), "member", task.ID, "  looks good  ")
	require.NoError(t, err)
	assert.Equal(t, "member", comment.AuthorID)
	assert.Equal(t, "looks good", comment.Content)
	assert.NotEmpty(t, comment.ID)
	assert.False(t, comment.CreatedAt.IsZero())

	_, err = f.uc.AddComment(context.Background(), "member", task.ID, "   ")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.AddComment(context.Background(), "other", task.ID, "drive-by")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	fresh, err := f.uc.Get(context.Background(), "owner", task.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.Comments, 1)
}

func TestSubtasks(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, "member")
	task, err := f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: "p1", Title: "work"})
	require.NoError(t, err)

	sub, err := f.uc.AddSubtask(context.Background(), "member", task.ID, "part one")
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.Completed)

	toggled, err := f.uc.ToggleSubtask(context.Background(), "member", task.ID, sub.ID, true)
	require.NoError(t, err)
	found := toggled.Subtask(sub.ID)
	require.NotNil(t, found)
	assert.True(t, found.Completed)

	_, err = f.uc.ToggleSubtask(context.Background(), "member", task.ID, "missing", true)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = f.uc.AddSubtask(context.Background(), "other", task.ID, "nope")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func TestListScopedToPrincipal(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t, "member")

	_, err := f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: "p1", Title: "owner task"})
	require.NoError(t, err)
	_, err = f.uc.Create(context.Background(), "member", CreateInput{ProjectID: "p1", Title: "member task"})
	require.NoError(t, err)

	// The filter principal cannot be spoofed by the caller.
	tasks, err := f.uc.List(context.Background(), "member", repository.TaskFilter{PrincipalID: "owner"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "member task", tasks[0].Title)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.seedProject(t)

	for _, in := range []CreateInput{
		{ProjectID: "p1", Title: "a", Status: string(domain.TaskDone), Priority: string(domain.PriorityHigh)},
		{ProjectID: "p1", Title: "b", Status: string(domain.TaskDone)},
		{ProjectID: "p1", Title: "c", Status: string(domain.TaskTodo), Priority: string(domain.PriorityUrgent)},
	} {
		_, err := f.uc.Create(context.Background(), "owner", in)
		require.NoError(t, err)
	}

	stats, err := f.uc.Stats(context.Background(), "owner", "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ByStatus[string(domain.TaskDone)])
	assert.Equal(t, 1, stats.ByStatus[string(domain.TaskTodo)])
	assert.Equal(t, 1, stats.ByPriority[string(domain.PriorityHigh)])
	assert.Equal(t, 1, stats.ByPriority[string(domain.PriorityUrgent)])
	assert.Equal(t, 1, stats.ByPriority[string(domain.PriorityMedium)])
}

// TestCollaborationLifecycle walks the shared-project flow end to end:
// access opens when a member is added and the cascade removes their view
// of the work when the project goes away.
func TestCollaborationLifecycle(t *testing.T) {
	f := newFixture(t)

	project, err := f.projectUC.Create(context.Background(), "owner", projectUC.CreateInput{Name: "Shared"})
	require.NoError(t, err)

	task, err := f.uc.Create(context.Background(), "owner", CreateInput{ProjectID: project.ID, Title: "kickoff"})
	require.NoError(t, err)

	// Before membership, the second account sees nothing.
	_, err = f.uc.Get(context.Background(), "member", task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = f.projectUC.AddMember(context.Background(), "owner", project.ID, "member")
	require.NoError(t, err)

	// Membership opens read and comment on the task.
	_, err = f.uc.Get(context.Background(), "member", task.ID)
	require.NoError(t, err)
	_, err = f.uc.AddComment(context.Background(), "member", task.ID, "on it")
	require.NoError(t, err)

	// Membership still does not grant task delete.
	err = f.uc.Delete(context.Background(), "member", task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	// Owner deletes the project; the cascade takes the task with it.
	require.NoError(t, f.projectUC.Delete(context.Background(), "owner", project.ID))

	_, err = f.uc.Get(context.Background(), "member", task.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}
