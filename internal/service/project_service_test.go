package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cogflow/linear-engine/internal/models"
)

func TestAssignProjectIssuesSkipsAssigned(t *testing.T) {
	f := newFakeTracker()
	other := f.addUser("uma", "Uma", "uma@example.com")
	project := f.addProject("Engine", "d")
	f.addIssue(models.Issue{ProjectID: project.ID})
	f.addIssue(models.Issue{ProjectID: project.ID, AssigneeID: other.ID})
	f.addIssue(models.Issue{ProjectID: project.ID})

	s := NewProjectService(f)
	result, err := s.AssignProjectIssues("Engine", false)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Assigned)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, other.ID, f.issues[1].AssigneeID)
}

func TestAssignProjectIssuesForce(t *testing.T) {
	f := newFakeTracker()
	other := f.addUser("uma", "Uma", "uma@example.com")
	project := f.addProject("Engine", "d")
	f.addIssue(models.Issue{ProjectID: project.ID, AssigneeID: other.ID})

	s := NewProjectService(f)
	result, err := s.AssignProjectIssues("Engine", true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Assigned)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, f.viewer.ID, f.issues[0].AssigneeID)
}

func TestAssignProjectIssuesUnknownProject(t *testing.T) {
	f := newFakeTracker()

	s := NewProjectService(f)
	_, err := s.AssignProjectIssues("Nope", false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListProjectIssuesOrderIsDeterministic(t *testing.T) {
	f := newFakeTracker()
	seedWorkflow(f)
	project := f.addProject("Engine", "d")
	f.addIssue(models.Issue{ID: "i-2", Key: "COG-2", Title: "second", ProjectID: project.ID, StateID: "s-todo", CreatedAt: "2024-02-01T00:00:00Z"})
	f.addIssue(models.Issue{ID: "i-1", Key: "COG-1", Title: "first", ProjectID: project.ID, StateID: "s-prog", CreatedAt: "2024-01-01T00:00:00Z"})
	f.addIssue(models.Issue{ID: "i-3", Key: "COG-3", Title: "tied", ProjectID: project.ID, StateID: "s-todo", CreatedAt: "2024-02-01T00:00:00Z"})

	s := NewProjectService(f)
	first, err := s.ListProjectIssues("Engine")
	require.NoError(t, err)

	keys := make([]string, len(first))
	for i, row := range first {
		keys[i] = row.Key
	}
	assert.Equal(t, []string{"COG-1", "COG-2", "COG-3"}, keys)
	assert.Equal(t, "In Progress", first[0].State)

	second, err := s.ListProjectIssues("Engine")
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("listing not deterministic (-first +second):\n%s", diff)
	}
}

func TestListProjectsSortedByName(t *testing.T) {
	f := newFakeTracker()
	f.addProject("zeta", "")
	f.addProject("Alpha", "a")
	f.addProject("Beta", "b")

	s := NewProjectService(f)
	rows, err := s.ListProjects()
	require.NoError(t, err)

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	// Case-sensitive ordinal sort.
	assert.Equal(t, []string{"Alpha", "Beta", "zeta"}, names)
}
