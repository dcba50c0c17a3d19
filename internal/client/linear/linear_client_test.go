package linear_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/client/linear"
)

type gqlCall struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// newStubServer serves canned GraphQL responses keyed by a substring of the
// incoming query, recording every call.
func newStubServer(t *testing.T, apiKey string, responses map[string]string) (*linear.Client, *[]gqlCall) {
	t.Helper()

	var calls []gqlCall
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, apiKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var call gqlCall
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		calls = append(calls, call)

		for key, response := range responses {
			if strings.Contains(call.Query, key) {
				fmt.Fprint(w, response)
				return
			}
		}
		t.Fatalf("unexpected query: %s", call.Query)
	}))
	t.Cleanup(server.Close)

	return linear.NewClientWithEndpoint(apiKey, server.URL), &calls
}

func countQueries(calls []gqlCall, substring string) int {
	n := 0
	for _, call := range calls {
		if strings.Contains(call.Query, substring) {
			n++
		}
	}
	return n
}

func TestCurrentUserIsCachedPerClient(t *testing.T) {
	c, calls := newStubServer(t, "test-key", map[string]string{
		"viewer": `{"data":{"viewer":{"id":"u1","name":"robot","displayName":"Robot","email":"robot@example.com"}}}`,
	})

	first, err := c.CurrentUser()
	require.NoError(t, err)
	second, err := c.CurrentUser()
	require.NoError(t, err)

	assert.Equal(t, "u1", first.ID)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, countQueries(*calls, "viewer"))
}

func TestCurrentUserRetriesAfterFailure(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "temporarily unavailable", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":{"viewer":{"id":"u1","name":"robot","displayName":"","email":""}}}`)
	}))
	t.Cleanup(server.Close)

	c := linear.NewClientWithEndpoint("k", server.URL)
	_, err := c.CurrentUser()
	require.Error(t, err)

	user, err := c.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 2, requests)

	// The successful answer is what gets cached.
	_, err = c.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestFindProjectByNameCaseInsensitive(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"projects": `{"data":{"projects":{"nodes":[
			{"id":"p1","name":"Engine","description":"d","teams":{"nodes":[{"id":"t1"}]}},
			{"id":"p2","name":"Other","description":"","teams":{"nodes":[]}}
		]}}}`,
	})

	project, err := c.FindProjectByName("engine")
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "p1", project.ID)
	assert.Equal(t, []string{"t1"}, project.TeamIDs)

	missing, err := c.FindProjectByName("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindIssueByKey(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"issue(": `{"data":{"issue":{
			"id":"i1","identifier":"COG-12","title":"Fix it","description":"body",
			"createdAt":"2024-01-01T00:00:00Z",
			"team":{"id":"t1"},"state":{"id":"s1"},
			"project":{"id":"p1","name":"Engine"},
			"parent":null,"assignee":{"id":"u1"},"projectMilestone":null
		}}}`,
	})

	issue, err := c.FindIssueByKey("COG-12")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "COG-12", issue.Key)
	assert.Equal(t, "t1", issue.TeamID)
	assert.Equal(t, "Engine", issue.ProjectName)
	assert.Equal(t, "u1", issue.AssigneeID)
	assert.Empty(t, issue.ParentID)
}

func TestFindIssueByKeyAbsent(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"issue(": `{"errors":[{"message":"Entity not found: Issue - Could not find referenced Issue."}]}`,
	})

	issue, err := c.FindIssueByKey("COG-404")
	require.NoError(t, err)
	assert.Nil(t, issue)
}

func TestFindIssueByKeyAbsentByErrorCode(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"issue(": `{"errors":[{"message":"Could not resolve issue","extensions":{"code":"ENTITY_NOT_FOUND"}}]}`,
	})

	issue, err := c.FindIssueByKey("COG-404")
	require.NoError(t, err)
	assert.Nil(t, issue)
}

func TestFindIssueByKeyUnrelatedErrorSurfaces(t *testing.T) {
	// "not found" in the middle of an unrelated error must not read as a
	// missing issue.
	c, _ := newStubServer(t, "k", map[string]string{
		"issue(": `{"errors":[{"message":"authentication token not found in request","extensions":{"code":"AUTHENTICATION_ERROR"}}]}`,
	})

	_, err := c.FindIssueByKey("COG-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication token")
}

func TestCreateIssueDefaultsAssigneeToViewer(t *testing.T) {
	c, calls := newStubServer(t, "k", map[string]string{
		"viewer": `{"data":{"viewer":{"id":"u1","name":"robot","displayName":"","email":""}}}`,
		"issueCreate": `{"data":{"issueCreate":{"success":true,"issue":{
			"id":"i1","identifier":"COG-1","title":"New","description":"",
			"createdAt":"2024-01-01T00:00:00Z","team":{"id":"t1"},
			"state":null,"project":null,"parent":null,"assignee":{"id":"u1"},"projectMilestone":null
		}}}}`,
	})

	issue, err := c.CreateIssue(client.IssueCreate{TeamID: "t1", ProjectID: "p1", Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "COG-1", issue.Key)

	var createCall *gqlCall
	for i := range *calls {
		if strings.Contains((*calls)[i].Query, "issueCreate") {
			createCall = &(*calls)[i]
		}
	}
	require.NotNil(t, createCall)
	input := createCall.Variables["input"].(map[string]any)
	assert.Equal(t, "u1", input["assigneeId"])
	_, hasParent := input["parentId"]
	assert.False(t, hasParent)
}

func TestFindUserByIdentifierResolutionOrder(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"users": `{"data":{"users":{"nodes":[
			{"id":"u1","name":"carol","displayName":"Carol D","email":"carol@example.com"},
			{"id":"carol","name":"impostor","displayName":"","email":""}
		]}}}`,
	})

	// Exact id match beats the case-insensitive name match.
	user, err := c.FindUserByIdentifier("carol")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "carol", user.ID)

	user, err = c.FindUserByIdentifier("CAROL@EXAMPLE.COM")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)

	user, err = c.FindUserByIdentifier("nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestTransportFailureWrapsOperationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c := linear.NewClientWithEndpoint("k", server.URL)
	_, err := c.ListProjects()
	require.Error(t, err)

	var opErr *client.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "listProjects", opErr.Op)
	assert.Contains(t, opErr.Message, "500")
}

func TestGraphQLErrorSurfaced(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"issueUpdate": `{"errors":[{"message":"stateId must be a valid uuid"}]}`,
	})

	stateID := "nonsense"
	err := c.UpdateIssue("i1", client.IssueUpdate{StateID: &stateID})
	require.Error(t, err)

	var opErr *client.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "updateIssue", opErr.Op)
	assert.Contains(t, err.Error(), "stateId must be a valid uuid")
}

func TestCreateMilestoneFailureReported(t *testing.T) {
	c, _ := newStubServer(t, "k", map[string]string{
		"projectMilestoneCreate": `{"data":{"projectMilestoneCreate":{"success":false}}}`,
	})

	err := c.CreateMilestone("p1", "Phase 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracker reported failure")
}
