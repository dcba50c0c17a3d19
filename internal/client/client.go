package client

import (
	"fmt"

	"github.com/cogflow/linear-engine/internal/models"
)

// Lookup methods return (nil, nil) when the entity does not exist; an error
// is only returned for transport or tracker failures.

type ProjectClient interface {
	FindProjectByName(name string) (*models.Project, error)
	ListProjects() ([]models.Project, error)
	CreateProject(name, description string) (*models.Project, error)
	UpdateProject(id string, fields ProjectUpdate) error
}

type IssueClient interface {
	ListIssues(projectID string) ([]models.Issue, error)
	FindIssueByKey(key string) (*models.Issue, error)
	CreateIssue(fields IssueCreate) (*models.Issue, error)
	UpdateIssue(id string, fields IssueUpdate) error
	CreateComment(issueID, body string) error
}

type UserClient interface {
	FindUserByIdentifier(identifier string) (*models.User, error)
	CurrentUser() (*models.User, error)
}

type WorkflowClient interface {
	GetWorkflowStates(teamID string) ([]models.WorkflowState, error)
	FirstTeamID() (string, error)
}

// MilestoneClient is an optional capability: trackers without milestone
// support simply don't provide one, and consumers receive nil instead of
// probing at runtime.
type MilestoneClient interface {
	ListMilestones(projectID string) ([]models.Milestone, error)
	CreateMilestone(projectID, name string) error
}

type Tracker interface {
	ProjectClient
	IssueClient
	UserClient
	WorkflowClient
}

type ProjectUpdate struct {
	Description *string
}

// IssueCreate carries the fields for a new issue. When AssigneeID is empty
// the tracker assigns the current authenticated user.
type IssueCreate struct {
	TeamID      string
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string
	ParentID    string
	MilestoneID string
}

type IssueUpdate struct {
	Description *string
	StateID     *string
	AssigneeID  *string
	MilestoneID *string
}

// OperationError wraps any tracker failure that is not a typed domain
// error, keeping the attempted operation name.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *OperationError) Unwrap() error { return e.Err }
