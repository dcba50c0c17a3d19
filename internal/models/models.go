package models

// Project is a remote tracker project. TeamID is the project's lead team
// when the tracker reports one; TeamIDs carries the full team connection.
type Project struct {
	ID          string
	Name        string
	Description string
	TeamID      string
	TeamIDs     []string
}

// Issue is a remote tracker issue. ParentID is empty for epics and set to
// the parent issue id for stories. CreatedAt is the raw ISO-8601 timestamp
// as reported by the tracker.
type Issue struct {
	ID          string
	Key         string
	Title       string
	Description string
	TeamID      string
	StateID     string
	ProjectID   string
	ProjectName string
	MilestoneID string
	ParentID    string
	AssigneeID  string
	CreatedAt   string
}

type User struct {
	ID          string
	Name        string
	DisplayName string
	Email       string
}

// WorkflowState is a team-scoped status value. Type is the tracker's coarse
// tag (unstarted, started, completed, canceled) and Position its ordering.
type WorkflowState struct {
	ID       string
	Name     string
	Type     string
	Position float64
}

// Milestone is scoped to a single project; matching is by exact name.
type Milestone struct {
	ID   string
	Name string
}
