package domain

import "time"

// TaskStatus enumerates the task workflow states. Any transition between
// states is permitted; only the completed-date derivation is enforced.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
)

// ValidTaskStatus reports whether s is one of the known workflow states.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone, TaskBlocked:
		return true
	}
	return false
}

// Subtask is a child record owned by its task. It has no lifecycle of its
// own beyond the parent's.
type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is an append-only child record owned by its task.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Task belongs to exactly one project. Creator and parent project are
// immutable after creation.
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CreatorID   string     `json:"creator_id"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`

	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`

	EstimatedHours float64 `json:"estimated_hours,omitempty"`
	ActualHours    float64 `json:"actual_hours,omitempty"`

	Dependencies []string  `json:"dependencies,omitempty"`
	Subtasks     []Subtask `json:"subtasks"`
	Comments     []Comment `json:"comments"`
	Tags         []string  `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeriveCompletion keeps CompletedDate in lockstep with Status: set exactly
// when the task is done, cleared otherwise. Must be invoked before every
// persist.
func (t *Task) DeriveCompletion(now time.Time) {
	if t == nil {
		return
	}
	switch {
	case t.Status == TaskDone && t.CompletedDate == nil:
		t.CompletedDate = &now
	case t.Status != TaskDone:
		t.CompletedDate = nil
	}
}

// Subtask returns the subtask with the given id, or nil.
func (t *Task) Subtask(id string) *Subtask {
	if t == nil {
		return nil
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}
