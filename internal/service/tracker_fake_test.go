package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/models"
)

// fakeTracker is an in-memory Tracker + MilestoneClient. Every read hands
// out copies, so services only change fake state through mutations, and
// every mutation is appended to calls for assertions.
type fakeTracker struct {
	projects   []models.Project
	issues     []models.Issue
	users      []models.User
	states     map[string][]models.WorkflowState
	milestones map[string][]models.Milestone
	viewer     models.User
	teams      []string
	comments   map[string][]string

	calls []string

	// swallowMilestoneCreate simulates a tracker that acks milestone
	// creation without persisting it.
	swallowMilestoneCreate bool
}

var (
	_ client.Tracker         = (*fakeTracker)(nil)
	_ client.MilestoneClient = (*fakeTracker)(nil)
)

func newFakeTracker() *fakeTracker {
	viewer := models.User{ID: uuid.NewString(), Name: "robot", DisplayName: "Robot", Email: "robot@example.com"}
	return &fakeTracker{
		viewer:     viewer,
		users:      []models.User{viewer},
		states:     map[string][]models.WorkflowState{},
		milestones: map[string][]models.Milestone{},
		comments:   map[string][]string{},
		teams:      []string{"team-1"},
	}
}

func (f *fakeTracker) callCount(op string) int {
	n := 0
	for _, call := range f.calls {
		if call == op {
			n++
		}
	}
	return n
}

func (f *fakeTracker) addProject(name, description string) *models.Project {
	project := models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		TeamIDs:     []string{f.teams[0]},
	}
	f.projects = append(f.projects, project)
	return &f.projects[len(f.projects)-1]
}

func (f *fakeTracker) addIssue(issue models.Issue) *models.Issue {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Key == "" {
		issue.Key = fmt.Sprintf("COG-%d", len(f.issues)+1)
	}
	if issue.TeamID == "" {
		issue.TeamID = f.teams[0]
	}
	if issue.CreatedAt == "" {
		issue.CreatedAt = fmt.Sprintf("2024-01-%02dT00:00:00Z", len(f.issues)+1)
	}
	f.issues = append(f.issues, issue)
	return &f.issues[len(f.issues)-1]
}

func (f *fakeTracker) addUser(name, displayName, email string) models.User {
	user := models.User{ID: uuid.NewString(), Name: name, DisplayName: displayName, Email: email}
	f.users = append(f.users, user)
	return user
}

func (f *fakeTracker) issueByID(id string) *models.Issue {
	for i := range f.issues {
		if f.issues[i].ID == id {
			return &f.issues[i]
		}
	}
	return nil
}

func (f *fakeTracker) FindProjectByName(name string) (*models.Project, error) {
	for _, project := range f.projects {
		if strings.EqualFold(project.Name, name) {
			copied := project
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTracker) ListProjects() ([]models.Project, error) {
	return append([]models.Project(nil), f.projects...), nil
}

func (f *fakeTracker) CreateProject(name, description string) (*models.Project, error) {
	f.calls = append(f.calls, "createProject")
	project := *f.addProject(name, description)
	return &project, nil
}

func (f *fakeTracker) UpdateProject(id string, fields client.ProjectUpdate) error {
	f.calls = append(f.calls, "updateProject")
	for i := range f.projects {
		if f.projects[i].ID == id {
			if fields.Description != nil {
				f.projects[i].Description = *fields.Description
			}
			return nil
		}
	}
	return fmt.Errorf("no such project: %s", id)
}

func (f *fakeTracker) ListIssues(projectID string) ([]models.Issue, error) {
	var issues []models.Issue
	for _, issue := range f.issues {
		if issue.ProjectID == projectID {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

func (f *fakeTracker) FindIssueByKey(key string) (*models.Issue, error) {
	for _, issue := range f.issues {
		if issue.Key == key {
			copied := issue
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTracker) CreateIssue(fields client.IssueCreate) (*models.Issue, error) {
	f.calls = append(f.calls, "createIssue")
	assigneeID := fields.AssigneeID
	if assigneeID == "" {
		assigneeID = f.viewer.ID
	}
	issue := *f.addIssue(models.Issue{
		Title:       fields.Title,
		Description: fields.Description,
		TeamID:      fields.TeamID,
		ProjectID:   fields.ProjectID,
		AssigneeID:  assigneeID,
		ParentID:    fields.ParentID,
		MilestoneID: fields.MilestoneID,
	})
	return &issue, nil
}

func (f *fakeTracker) UpdateIssue(id string, fields client.IssueUpdate) error {
	f.calls = append(f.calls, "updateIssue")
	issue := f.issueByID(id)
	if issue == nil {
		return fmt.Errorf("no such issue: %s", id)
	}
	if fields.Description != nil {
		issue.Description = *fields.Description
	}
	if fields.StateID != nil {
		issue.StateID = *fields.StateID
	}
	if fields.AssigneeID != nil {
		issue.AssigneeID = *fields.AssigneeID
	}
	if fields.MilestoneID != nil {
		issue.MilestoneID = *fields.MilestoneID
	}
	return nil
}

func (f *fakeTracker) CreateComment(issueID, body string) error {
	f.calls = append(f.calls, "createComment")
	f.comments[issueID] = append(f.comments[issueID], body)
	return nil
}

func (f *fakeTracker) FindUserByIdentifier(identifier string) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == identifier {
			copied := user
			return &copied, nil
		}
	}
	for _, user := range f.users {
		if strings.EqualFold(user.Name, identifier) ||
			strings.EqualFold(user.DisplayName, identifier) ||
			strings.EqualFold(user.Email, identifier) {
			copied := user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeTracker) CurrentUser() (*models.User, error) {
	viewer := f.viewer
	return &viewer, nil
}

func (f *fakeTracker) GetWorkflowStates(teamID string) ([]models.WorkflowState, error) {
	return append([]models.WorkflowState(nil), f.states[teamID]...), nil
}

func (f *fakeTracker) FirstTeamID() (string, error) {
	if len(f.teams) == 0 {
		return "", fmt.Errorf("no teams in workspace")
	}
	return f.teams[0], nil
}

func (f *fakeTracker) ListMilestones(projectID string) ([]models.Milestone, error) {
	return append([]models.Milestone(nil), f.milestones[projectID]...), nil
}

func (f *fakeTracker) CreateMilestone(projectID, name string) error {
	f.calls = append(f.calls, "createMilestone")
	if f.swallowMilestoneCreate {
		return nil
	}
	f.milestones[projectID] = append(f.milestones[projectID], models.Milestone{ID: uuid.NewString(), Name: name})
	return nil
}
