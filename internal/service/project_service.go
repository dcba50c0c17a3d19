package service

import (
	"sort"

	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/models"
	"github.com/cogflow/linear-engine/internal/workflow"
)

// ProjectService exposes project-level lookups and the bulk-assign
// operation.
type ProjectService struct {
	tracker client.Tracker
}

func NewProjectService(tracker client.Tracker) *ProjectService {
	return &ProjectService{tracker: tracker}
}

type AssignProjectResult struct {
	Total    int `json:"total"`
	Assigned int `json:"assigned"`
	Skipped  int `json:"skipped"`
}

type IssueRow struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Title     string `json:"title"`
	State     string `json:"state"`
	Assignee  string `json:"assignee,omitempty"`
	CreatedAt string `json:"created_at"`
}

type ProjectRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *ProjectService) resolveProject(name string) (*models.Project, error) {
	project, err := s.tracker.FindProjectByName(name)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound("project", name)
	}
	return project, nil
}

// AssignProjectIssues assigns every issue in the project to the current
// user. Issues that already have an assignee are skipped unless force is
// set. The walk is sequential and not transactional: issues assigned before
// a failure stay assigned.
func (s *ProjectService) AssignProjectIssues(projectName string, force bool) (*AssignProjectResult, error) {
	project, err := s.resolveProject(projectName)
	if err != nil {
		return nil, err
	}

	me, err := s.tracker.CurrentUser()
	if err != nil {
		return nil, err
	}
	issues, err := s.tracker.ListIssues(project.ID)
	if err != nil {
		return nil, err
	}

	result := &AssignProjectResult{Total: len(issues)}
	for _, issue := range issues {
		if !force && issue.AssigneeID != "" {
			result.Skipped++
			continue
		}
		if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{AssigneeID: &me.ID}); err != nil {
			return nil, err
		}
		result.Assigned++
	}
	return result, nil
}

// ListProjectIssues returns the project's issues sorted by creation
// timestamp (lexicographic on the raw ISO-8601 string), tie-broken by id.
// Workflow states are fetched once per distinct team.
func (s *ProjectService) ListProjectIssues(projectName string) ([]IssueRow, error) {
	project, err := s.resolveProject(projectName)
	if err != nil {
		return nil, err
	}
	issues, err := s.tracker.ListIssues(project.ID)
	if err != nil {
		return nil, err
	}

	statesByTeam := map[string][]models.WorkflowState{}
	rows := make([]IssueRow, 0, len(issues))
	for _, issue := range issues {
		stateName := "Unknown"
		if issue.TeamID != "" {
			states, ok := statesByTeam[issue.TeamID]
			if !ok {
				states, err = s.tracker.GetWorkflowStates(issue.TeamID)
				if err != nil {
					return nil, err
				}
				statesByTeam[issue.TeamID] = states
			}
			stateName = workflow.NameByID(states, issue.StateID)
		}
		rows = append(rows, IssueRow{
			ID:        issue.ID,
			Key:       issue.Key,
			Title:     issue.Title,
			State:     stateName,
			Assignee:  issue.AssigneeID,
			CreatedAt: issue.CreatedAt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt != rows[j].CreatedAt {
			return rows[i].CreatedAt < rows[j].CreatedAt
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// ListProjects returns all projects sorted by name, tie-broken by id.
func (s *ProjectService) ListProjects() ([]ProjectRow, error) {
	projects, err := s.tracker.ListProjects()
	if err != nil {
		return nil, err
	}

	rows := make([]ProjectRow, len(projects))
	for i, project := range projects {
		rows[i] = ProjectRow{ID: project.ID, Name: project.Name, Description: project.Description}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}
