package transport

import "time"

// ProjectCreateRequest is the payload for creating a project.
type ProjectCreateRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	Deadline       string   `json:"deadline"`
	GanttData      string   `json:"gantt_data"`
	MermaidDiagram string   `json:"mermaid_diagram"`
	MarkdownNotes  string   `json:"markdown_notes"`
	Tags           []string `json:"tags"`
}

// ProjectUpdateRequest is a partial project update; absent fields stay
// untouched.
type ProjectUpdateRequest struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Status         *string   `json:"status"`
	Priority       *string   `json:"priority"`
	StartDate      *string   `json:"start_date"`
	EndDate        *string   `json:"end_date"`
	Deadline       *string   `json:"deadline"`
	Tags           *[]string `json:"tags"`
	GanttData      *string   `json:"gantt_data"`
	MermaidDiagram *string   `json:"mermaid_diagram"`
	MarkdownNotes  *string   `json:"markdown_notes"`
}

// DiagramRequest updates only the planning payload.
type DiagramRequest struct {
	GanttData      *string `json:"gantt_data"`
	MermaidDiagram *string `json:"mermaid_diagram"`
	MarkdownNotes  *string `json:"markdown_notes"`
}

type MemberRequest struct {
	MemberID string `json:"member_id"`
}

// TaskCreateRequest is the payload for creating a task.
type TaskCreateRequest struct {
	ProjectID      string   `json:"project_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	AssigneeID     string   `json:"assignee_id"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	DueDate        string   `json:"due_date"`
	EstimatedHours float64  `json:"estimated_hours"`
	ActualHours    float64  `json:"actual_hours"`
	Dependencies   []string `json:"dependencies"`
	Tags           []string `json:"tags"`
}

// TaskUpdateRequest is a partial task update; absent fields stay untouched.
type TaskUpdateRequest struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	AssigneeID     *string   `json:"assignee_id"`
	Status         *string   `json:"status"`
	Priority       *string   `json:"priority"`
	StartDate      *string   `json:"start_date"`
	EndDate        *string   `json:"end_date"`
	DueDate        *string   `json:"due_date"`
	EstimatedHours *float64  `json:"estimated_hours"`
	ActualHours    *float64  `json:"actual_hours"`
	Dependencies   *[]string `json:"dependencies"`
	Tags           *[]string `json:"tags"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type SubtaskCreateRequest struct {
	Title string `json:"title"`
}

type SubtaskUpdateRequest struct {
	Completed bool `json:"completed"`
}

type ProfileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ParseTime parses an RFC3339 timestamp, returning nil for empty or
// malformed input.
func ParseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed
	}
	return nil
}

// ParseTimePtr is ParseTime over an optional field.
func ParseTimePtr(value *string) *time.Time {
	if value == nil {
		return nil
	}
	return ParseTime(*value)
}
