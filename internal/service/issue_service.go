package service

import (
	"fmt"
	"strings"

	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/models"
	"github.com/cogflow/linear-engine/internal/workflow"
)

// IssueService exposes the imperative single-issue operations: status,
// move, comment, assign, start.
type IssueService struct {
	tracker client.Tracker
}

func NewIssueService(tracker client.Tracker) *IssueService {
	return &IssueService{tracker: tracker}
}

type StatusResult struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	State    string `json:"state"`
	Assignee string `json:"assignee"`
	Project  string `json:"project"`
}

type MoveResult struct {
	Key           string `json:"key"`
	PreviousState string `json:"previous_state"`
	NewState      string `json:"new_state"`
}

type CommentResult struct {
	Key string `json:"key"`
}

type AssignResult struct {
	Key      string `json:"key"`
	Assignee string `json:"assignee"`
}

func (s *IssueService) resolveIssue(key string) (*models.Issue, error) {
	issue, err := s.tracker.FindIssueByKey(key)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, notFound("issue", key)
	}
	return issue, nil
}

// userLabel prefers display name, then name, then email, then the id, using
// the first non-empty trimmed value.
func userLabel(user *models.User) string {
	for _, candidate := range []string{user.DisplayName, user.Name, user.Email, user.ID} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return user.ID
}

func (s *IssueService) assigneeLabel(assigneeID string) (string, error) {
	if assigneeID == "" {
		return "Unassigned", nil
	}
	user, err := s.tracker.FindUserByIdentifier(assigneeID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return assigneeID, nil
	}
	return userLabel(user), nil
}

func (s *IssueService) Status(key string) (*StatusResult, error) {
	issue, err := s.resolveIssue(key)
	if err != nil {
		return nil, err
	}

	stateName := "Unknown"
	if issue.TeamID != "" {
		states, err := s.tracker.GetWorkflowStates(issue.TeamID)
		if err != nil {
			return nil, err
		}
		stateName = workflow.NameByID(states, issue.StateID)
	}

	assignee, err := s.assigneeLabel(issue.AssigneeID)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		Key:      issue.Key,
		Title:    issue.Title,
		State:    stateName,
		Assignee: assignee,
		Project:  issue.ProjectName,
	}, nil
}

// Move transitions the issue to the named workflow state. Moving an issue
// that is already in the target state is a no-op success, not an error.
func (s *IssueService) Move(key, stateName string) (*MoveResult, error) {
	issue, err := s.resolveIssue(key)
	if err != nil {
		return nil, err
	}
	if issue.TeamID == "" {
		return nil, &ValidationError{Message: fmt.Sprintf("issue %s has no team", issue.Key)}
	}

	states, err := s.tracker.GetWorkflowStates(issue.TeamID)
	if err != nil {
		return nil, err
	}
	target := workflow.FindByName(states, stateName)
	if target == nil {
		return nil, notFound("state", stateName)
	}

	previous := workflow.NameByID(states, issue.StateID)
	if issue.StateID != target.ID {
		if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{StateID: &target.ID}); err != nil {
			return nil, err
		}
	}

	return &MoveResult{Key: issue.Key, PreviousState: previous, NewState: target.Name}, nil
}

func (s *IssueService) Comment(key, text string) (*CommentResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ValidationError{Message: "comment text cannot be empty"}
	}

	issue, err := s.resolveIssue(key)
	if err != nil {
		return nil, err
	}
	if err := s.tracker.CreateComment(issue.ID, text); err != nil {
		return nil, err
	}
	return &CommentResult{Key: issue.Key}, nil
}

func (s *IssueService) Assign(key, userIdentifier string) (*AssignResult, error) {
	issue, err := s.resolveIssue(key)
	if err != nil {
		return nil, err
	}

	user, err := s.tracker.FindUserByIdentifier(userIdentifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound("user", userIdentifier)
	}

	if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{AssigneeID: &user.ID}); err != nil {
		return nil, err
	}
	return &AssignResult{Key: issue.Key, Assignee: userLabel(user)}, nil
}

// Start moves the issue to its team's first active workflow state.
func (s *IssueService) Start(key string) (*MoveResult, error) {
	issue, err := s.resolveIssue(key)
	if err != nil {
		return nil, err
	}
	if issue.TeamID == "" {
		return nil, &ValidationError{Message: fmt.Sprintf("issue %s has no team", issue.Key)}
	}

	states, err := s.tracker.GetWorkflowStates(issue.TeamID)
	if err != nil {
		return nil, err
	}
	target := workflow.FirstActiveState(states)
	if target == nil {
		return nil, fmt.Errorf("no active workflow state for team %s", issue.TeamID)
	}

	previous := workflow.NameByID(states, issue.StateID)
	if issue.StateID != target.ID {
		if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{StateID: &target.ID}); err != nil {
			return nil, err
		}
	}

	return &MoveResult{Key: issue.Key, PreviousState: previous, NewState: target.Name}, nil
}
