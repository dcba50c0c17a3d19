package linear

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/models"
)

const defaultEndpoint = "https://api.linear.app/graphql"

const issueFields = `id identifier title description createdAt
team { id } state { id } project { id name }
projectMilestone { id } parent { id } assignee { id }`

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client

	viewerMu sync.Mutex
	viewer   *models.User
}

var (
	_ client.Tracker         = (*Client)(nil)
	_ client.MilestoneClient = (*Client)(nil)
)

func NewClient(apiKey string) *Client {
	return &Client{
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithEndpoint points the client at a non-default GraphQL endpoint.
func NewClientWithEndpoint(apiKey, endpoint string) *Client {
	c := NewClient(apiKey)
	c.endpoint = endpoint
	return c
}

func (c *Client) opError(op, message string, err error) error {
	return &client.OperationError{Op: op, Message: message, Err: err}
}

func (c *Client) do(op, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return c.opError(op, "marshal request (linear)", err)
	}

	req, err := http.NewRequest("POST", c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return c.opError(op, "build request (linear)", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.opError(op, "request (linear)", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.opError(op, "read response body (linear)", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.opError(op, fmt.Sprintf("error status (linear): %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))), nil)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return c.opError(op, "parse response (linear)", err)
	}

	if len(envelope.Errors) > 0 {
		return c.opError(op, "Linear error", graphQLErrors(envelope.Errors))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return c.opError(op, "parse data (linear)", err)
		}
	}
	return nil
}

func (c *Client) mapProject(node projectNode) models.Project {
	project := models.Project{
		ID:          node.ID,
		Name:        node.Name,
		Description: node.Description,
	}
	for _, team := range node.Teams.Nodes {
		project.TeamIDs = append(project.TeamIDs, team.ID)
	}
	return project
}

func (c *Client) mapIssue(node issueNode) models.Issue {
	issue := models.Issue{
		ID:          node.ID,
		Key:         node.Identifier,
		Title:       node.Title,
		Description: node.Description,
		CreatedAt:   node.CreatedAt,
	}
	if node.Team != nil {
		issue.TeamID = node.Team.ID
	}
	if node.State != nil {
		issue.StateID = node.State.ID
	}
	if node.Project != nil {
		issue.ProjectID = node.Project.ID
		issue.ProjectName = node.Project.Name
	}
	if node.ProjectMilestone != nil {
		issue.MilestoneID = node.ProjectMilestone.ID
	}
	if node.Parent != nil {
		issue.ParentID = node.Parent.ID
	}
	if node.Assignee != nil {
		issue.AssigneeID = node.Assignee.ID
	}
	return issue
}

func (c *Client) listProjectNodes(op string) ([]projectNode, error) {
	query := `query { projects(first: 250) { nodes {
		id name description teams { nodes { id } }
	} } }`

	var data struct {
		Projects struct {
			Nodes []projectNode `json:"nodes"`
		} `json:"projects"`
	}
	if err := c.do(op, query, nil, &data); err != nil {
		return nil, err
	}
	return data.Projects.Nodes, nil
}

func (c *Client) FindProjectByName(name string) (*models.Project, error) {
	nodes, err := c.listProjectNodes("findProjectByName")
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		if strings.EqualFold(node.Name, name) {
			project := c.mapProject(node)
			return &project, nil
		}
	}
	return nil, nil
}

func (c *Client) ListProjects() ([]models.Project, error) {
	nodes, err := c.listProjectNodes("listProjects")
	if err != nil {
		return nil, err
	}
	projects := make([]models.Project, len(nodes))
	for i, node := range nodes {
		projects[i] = c.mapProject(node)
	}
	return projects, nil
}

func (c *Client) CreateProject(name, description string) (*models.Project, error) {
	teamID, err := c.FirstTeamID()
	if err != nil {
		return nil, err
	}

	query := `mutation($input: ProjectCreateInput!) {
		projectCreate(input: $input) { success project {
			id name description teams { nodes { id } }
		} }
	}`
	variables := map[string]any{"input": map[string]any{
		"name":        name,
		"description": description,
		"teamIds":     []string{teamID},
	}}

	var data struct {
		ProjectCreate struct {
			Success bool        `json:"success"`
			Project projectNode `json:"project"`
		} `json:"projectCreate"`
	}
	if err := c.do("createProject", query, variables, &data); err != nil {
		return nil, err
	}
	if !data.ProjectCreate.Success {
		return nil, c.opError("createProject", "tracker reported failure", nil)
	}
	project := c.mapProject(data.ProjectCreate.Project)
	return &project, nil
}

func (c *Client) UpdateProject(id string, fields client.ProjectUpdate) error {
	input := map[string]any{}
	if fields.Description != nil {
		input["description"] = *fields.Description
	}

	query := `mutation($id: String!, $input: ProjectUpdateInput!) {
		projectUpdate(id: $id, input: $input) { success }
	}`

	var data struct {
		ProjectUpdate struct {
			Success bool `json:"success"`
		} `json:"projectUpdate"`
	}
	if err := c.do("updateProject", query, map[string]any{"id": id, "input": input}, &data); err != nil {
		return err
	}
	if !data.ProjectUpdate.Success {
		return c.opError("updateProject", "tracker reported failure", nil)
	}
	return nil
}

func (c *Client) ListIssues(projectID string) ([]models.Issue, error) {
	query := `query($projectId: ID!) {
		issues(filter: { project: { id: { eq: $projectId } } }, first: 250) {
			nodes { ` + issueFields + ` }
		}
	}`

	var data struct {
		Issues struct {
			Nodes []issueNode `json:"nodes"`
		} `json:"issues"`
	}
	if err := c.do("listIssues", query, map[string]any{"projectId": projectID}, &data); err != nil {
		return nil, err
	}
	issues := make([]models.Issue, len(data.Issues.Nodes))
	for i, node := range data.Issues.Nodes {
		issues[i] = c.mapIssue(node)
	}
	return issues, nil
}

func (c *Client) FindIssueByKey(key string) (*models.Issue, error) {
	query := `query($id: String!) { issue(id: $id) { ` + issueFields + ` } }`

	var data struct {
		Issue *issueNode `json:"issue"`
	}
	err := c.do("findIssueByKey", query, map[string]any{"id": key}, &data)
	if err != nil {
		// Linear answers a missing identifier with an entity-not-found
		// GraphQL error rather than a null node.
		var gqlErrs graphQLErrors
		if errors.As(err, &gqlErrs) && gqlErrs.entityNotFound() {
			return nil, nil
		}
		return nil, err
	}
	if data.Issue == nil {
		return nil, nil
	}
	issue := c.mapIssue(*data.Issue)
	return &issue, nil
}

func (c *Client) FindUserByIdentifier(identifier string) (*models.User, error) {
	query := `query { users(first: 250) { nodes { id name displayName email } } }`

	var data struct {
		Users struct {
			Nodes []userNode `json:"nodes"`
		} `json:"users"`
	}
	if err := c.do("findUserByIdentifier", query, nil, &data); err != nil {
		return nil, err
	}

	for _, node := range data.Users.Nodes {
		if node.ID == identifier {
			return &models.User{ID: node.ID, Name: node.Name, DisplayName: node.DisplayName, Email: node.Email}, nil
		}
	}
	for _, node := range data.Users.Nodes {
		if strings.EqualFold(node.Name, identifier) ||
			strings.EqualFold(node.DisplayName, identifier) ||
			strings.EqualFold(node.Email, identifier) {
			return &models.User{ID: node.ID, Name: node.Name, DisplayName: node.DisplayName, Email: node.Email}, nil
		}
	}
	return nil, nil
}

// CurrentUser caches only a successful lookup; a failed one is retried on
// the next call.
func (c *Client) CurrentUser() (*models.User, error) {
	c.viewerMu.Lock()
	defer c.viewerMu.Unlock()
	if c.viewer != nil {
		return c.viewer, nil
	}

	query := `query { viewer { id name displayName email } }`

	var data struct {
		Viewer userNode `json:"viewer"`
	}
	if err := c.do("getCurrentUser", query, nil, &data); err != nil {
		return nil, err
	}
	c.viewer = &models.User{
		ID:          data.Viewer.ID,
		Name:        data.Viewer.Name,
		DisplayName: data.Viewer.DisplayName,
		Email:       data.Viewer.Email,
	}
	return c.viewer, nil
}

func (c *Client) GetWorkflowStates(teamID string) ([]models.WorkflowState, error) {
	query := `query($teamId: String!) {
		team(id: $teamId) { states(first: 100) { nodes { id name type position } } }
	}`

	var data struct {
		Team struct {
			States struct {
				Nodes []stateNode `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}
	if err := c.do("getWorkflowStates", query, map[string]any{"teamId": teamID}, &data); err != nil {
		return nil, err
	}
	states := make([]models.WorkflowState, len(data.Team.States.Nodes))
	for i, node := range data.Team.States.Nodes {
		states[i] = models.WorkflowState{ID: node.ID, Name: node.Name, Type: node.Type, Position: node.Position}
	}
	return states, nil
}

func (c *Client) FirstTeamID() (string, error) {
	query := `query { teams(first: 1) { nodes { id } } }`

	var data struct {
		Teams struct {
			Nodes []idNode `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.do("firstTeamId", query, nil, &data); err != nil {
		return "", err
	}
	if len(data.Teams.Nodes) == 0 {
		return "", c.opError("firstTeamId", "no teams in workspace", nil)
	}
	return data.Teams.Nodes[0].ID, nil
}

func (c *Client) CreateIssue(fields client.IssueCreate) (*models.Issue, error) {
	assigneeID := fields.AssigneeID
	if assigneeID == "" {
		viewer, err := c.CurrentUser()
		if err != nil {
			return nil, err
		}
		assigneeID = viewer.ID
	}

	input := map[string]any{
		"teamId":      fields.TeamID,
		"projectId":   fields.ProjectID,
		"title":       fields.Title,
		"description": fields.Description,
		"assigneeId":  assigneeID,
	}
	if fields.ParentID != "" {
		input["parentId"] = fields.ParentID
	}
	if fields.MilestoneID != "" {
		input["projectMilestoneId"] = fields.MilestoneID
	}

	query := `mutation($input: IssueCreateInput!) {
		issueCreate(input: $input) { success issue { ` + issueFields + ` } }
	}`

	var data struct {
		IssueCreate struct {
			Success bool      `json:"success"`
			Issue   issueNode `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.do("createIssue", query, map[string]any{"input": input}, &data); err != nil {
		return nil, err
	}
	if !data.IssueCreate.Success {
		return nil, c.opError("createIssue", "tracker reported failure", nil)
	}
	issue := c.mapIssue(data.IssueCreate.Issue)
	return &issue, nil
}

func (c *Client) UpdateIssue(id string, fields client.IssueUpdate) error {
	input := map[string]any{}
	if fields.Description != nil {
		input["description"] = *fields.Description
	}
	if fields.StateID != nil {
		input["stateId"] = *fields.StateID
	}
	if fields.AssigneeID != nil {
		input["assigneeId"] = *fields.AssigneeID
	}
	if fields.MilestoneID != nil {
		input["projectMilestoneId"] = *fields.MilestoneID
	}

	query := `mutation($id: String!, $input: IssueUpdateInput!) {
		issueUpdate(id: $id, input: $input) { success }
	}`

	var data struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	if err := c.do("updateIssue", query, map[string]any{"id": id, "input": input}, &data); err != nil {
		return err
	}
	if !data.IssueUpdate.Success {
		return c.opError("updateIssue", "tracker reported failure", nil)
	}
	return nil
}

func (c *Client) CreateComment(issueID, body string) error {
	query := `mutation($input: CommentCreateInput!) {
		commentCreate(input: $input) { success }
	}`
	variables := map[string]any{"input": map[string]any{"issueId": issueID, "body": body}}

	var data struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}
	if err := c.do("createComment", query, variables, &data); err != nil {
		return err
	}
	if !data.CommentCreate.Success {
		return c.opError("createComment", "tracker reported failure", nil)
	}
	return nil
}

func (c *Client) ListMilestones(projectID string) ([]models.Milestone, error) {
	query := `query($projectId: String!) {
		project(id: $projectId) { projectMilestones(first: 100) { nodes { id name } } }
	}`

	var data struct {
		Project struct {
			ProjectMilestones struct {
				Nodes []milestoneNode `json:"nodes"`
			} `json:"projectMilestones"`
		} `json:"project"`
	}
	if err := c.do("listMilestones", query, map[string]any{"projectId": projectID}, &data); err != nil {
		return nil, err
	}
	milestones := make([]models.Milestone, len(data.Project.ProjectMilestones.Nodes))
	for i, node := range data.Project.ProjectMilestones.Nodes {
		milestones[i] = models.Milestone{ID: node.ID, Name: node.Name}
	}
	return milestones, nil
}

func (c *Client) CreateMilestone(projectID, name string) error {
	query := `mutation($input: ProjectMilestoneCreateInput!) {
		projectMilestoneCreate(input: $input) { success }
	}`
	variables := map[string]any{"input": map[string]any{"projectId": projectID, "name": name}}

	var data struct {
		ProjectMilestoneCreate struct {
			Success bool `json:"success"`
		} `json:"projectMilestoneCreate"`
	}
	if err := c.do("createMilestone", query, variables, &data); err != nil {
		return err
	}
	if !data.ProjectMilestoneCreate.Success {
		return c.opError("createMilestone", "tracker reported failure", nil)
	}
	return nil
}
