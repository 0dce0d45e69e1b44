package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectAllows(t *testing.T) {
	project := &Project{
		ID:      "p1",
		OwnerID: "owner",
		Members: []string{"member"},
	}

	tests := []struct {
		name      string
		principal string
		action    Action
		want      bool
	}{
		{"owner reads", "owner", ActionRead, true},
		{"owner updates", "owner", ActionUpdate, true},
		{"owner deletes", "owner", ActionDelete, true},
		{"owner manages members", "owner", ActionManageMembers, true},
		{"member reads", "member", ActionRead, true},
		{"member edits planning", "member", ActionUpdatePlanning, true},
		{"member cannot update structure", "member", ActionUpdate, false},
		{"member cannot delete", "member", ActionDelete, false},
		{"member cannot manage members", "member", ActionManageMembers, false},
		{"outsider cannot read", "stranger", ActionRead, false},
		{"outsider cannot edit planning", "stranger", ActionUpdatePlanning, false},
		{"empty principal denied", "", ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectAllows(tt.principal, project, tt.action))
		})
	}

	assert.False(t, ProjectAllows("owner", nil, ActionRead), "nil project never allows")
}

func TestTaskAllows(t *testing.T) {
	project := &Project{
		ID:      "p1",
		OwnerID: "owner",
		Members: []string{"member", "creator", "assignee"},
	}
	task := &Task{
		ID:         "t1",
		ProjectID:  "p1",
		CreatorID:  "creator",
		AssigneeID: "assignee",
	}

	tests := []struct {
		name      string
		principal string
		action    Action
		want      bool
	}{
		{"owner reads", "owner", ActionRead, true},
		{"owner updates", "owner", ActionUpdate, true},
		{"owner deletes", "owner", ActionDelete, true},
		{"creator reads", "creator", ActionRead, true},
		{"creator updates", "creator", ActionUpdate, true},
		{"creator deletes", "creator", ActionDelete, true},
		{"assignee reads", "assignee", ActionRead, true},
		{"assignee updates", "assignee", ActionUpdate, true},
		{"assignee cannot delete", "assignee", ActionDelete, false},
		{"member reads", "member", ActionRead, true},
		{"member comments", "member", ActionComment, true},
		{"member adds subtask", "member", ActionAddSubtask, true},
		{"member cannot delete", "member", ActionDelete, false},
		{"outsider cannot read", "stranger", ActionRead, false},
		{"outsider cannot comment", "stranger", ActionComment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskAllows(tt.principal, task, project, tt.action))
		})
	}
}

func TestTaskAllowsWithoutParent(t *testing.T) {
	task := &Task{
		ID:         "t1",
		ProjectID:  "gone",
		CreatorID:  "creator",
		AssigneeID: "assignee",
	}

	// Creator and assignee rights survive the parent project going away;
	// rights derived from the project do not.
	assert.True(t, TaskAllows("creator", task, nil, ActionRead))
	assert.True(t, TaskAllows("creator", task, nil, ActionDelete))
	assert.True(t, TaskAllows("assignee", task, nil, ActionUpdate))
	assert.False(t, TaskAllows("assignee", task, nil, ActionDelete))
	assert.False(t, TaskAllows("member", task, nil, ActionRead))
}

func TestTaskAllowsEmptyAssignee(t *testing.T) {
	task := &Task{ID: "t1", CreatorID: "creator"}
	project := &Project{ID: "p1", OwnerID: "owner"}

	// An unassigned task must not grant rights to an empty principal.
	assert.False(t, TaskAllows("", task, project, ActionRead))
}
