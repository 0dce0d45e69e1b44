package domain

import "time"

// ProjectStatus enumerates the project lifecycle states.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ValidProjectStatus reports whether s is one of the known lifecycle states.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// Priority is shared by projects and tasks.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Project is a collaborative workspace owned by exactly one account.
// The owner is immutable after creation; members hold a strict subset of
// the owner's rights.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	OwnerID     string        `json:"owner_id"`
	Members     []string      `json:"members"`
	Status      ProjectStatus `json:"status"`
	Priority    Priority      `json:"priority"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`

	// Planning payload: opaque diagram and notes data, editable by members.
	GanttData      string `json:"gantt_data,omitempty"`
	MermaidDiagram string `json:"mermaid_diagram,omitempty"`
	MarkdownNotes  string `json:"markdown_notes,omitempty"`

	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwner reports whether the given account owns the project.
func (p *Project) IsOwner(accountID string) bool {
	return p != nil && accountID != "" && p.OwnerID == accountID
}

// HasMember reports whether the given account is in the member set. The
// owner is not implicitly a member.
func (p *Project) HasMember(accountID string) bool {
	if p == nil || accountID == "" {
		return false
	}
	for _, m := range p.Members {
		if m == accountID {
			return true
		}
	}
	return false
}

func (p *Project) Touch() {
	if p == nil {
		return
	}
	p.UpdatedAt = time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
}
