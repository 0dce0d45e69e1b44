package domain

// Action identifies an operation a principal attempts on a resource.
type Action string

const (
	ActionRead           Action = "read"
	ActionUpdate         Action = "update"
	ActionDelete         Action = "delete"
	ActionComment        Action = "comment"
	ActionAddSubtask     Action = "add-subtask"
	ActionManageMembers  Action = "manage-members"
	ActionUpdatePlanning Action = "update-planning"
)

// ProjectAllows is the pure access decision for project-level actions.
// The owner may do everything; members may read and edit the planning
// payload. Structural updates, member management and deletion are
// owner-only.
func ProjectAllows(principalID string, p *Project, action Action) bool {
	if p == nil || principalID == "" {
		return false
	}
	if p.IsOwner(principalID) {
		return true
	}
	switch action {
	case ActionRead, ActionUpdatePlanning, ActionComment, ActionAddSubtask:
		return p.HasMember(principalID)
	}
	return false
}

// TaskAllows is the pure access decision for task-level actions. Rights are
// derived transitively from the parent project: its owner dominates every
// decision. Creator and assignee can read, update and comment; so can any
// project member. Delete is restricted to the creator and project owner;
// membership alone never grants delete.
//
// parent may be nil when the project no longer resolves (the bounded window
// during a cascade delete); only creator/assignee rights apply then.
func TaskAllows(principalID string, t *Task, parent *Project, action Action) bool {
	if t == nil || principalID == "" {
		return false
	}
	if parent.IsOwner(principalID) {
		return true
	}
	switch action {
	case ActionRead, ActionUpdate, ActionComment, ActionAddSubtask:
		if t.CreatorID == principalID {
			return true
		}
		if t.AssigneeID != "" && t.AssigneeID == principalID {
			return true
		}
		return parent.HasMember(principalID)
	case ActionDelete:
		return t.CreatorID == principalID
	}
	return false
}
