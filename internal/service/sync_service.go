package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/models"
	"github.com/cogflow/linear-engine/internal/specfile"
)

type SyncStatus string

const (
	StatusCreated SyncStatus = "Created"
	StatusUpdated SyncStatus = "Updated"
	StatusSkipped SyncStatus = "Skipped"
)

type SyncEntity string

const (
	EntityProject             SyncEntity = "project"
	EntityMilestone           SyncEntity = "milestone"
	EntityEpic                SyncEntity = "epic"
	EntityStory               SyncEntity = "story"
	EntityMilestoneAssignment SyncEntity = "milestone-assignment"
)

type SyncAction struct {
	Status SyncStatus `json:"status"`
	Entity SyncEntity `json:"entity"`
	Name   string     `json:"name"`
	Reason string     `json:"reason,omitempty"`
}

// SyncReport lists every decision in the order it was evaluated: project,
// then milestones, then each epic depth-first with its stories.
type SyncReport struct {
	Actions []SyncAction `json:"actions"`
}

func (r *SyncReport) add(status SyncStatus, entity SyncEntity, name, reason string) {
	r.Actions = append(r.Actions, SyncAction{Status: status, Entity: entity, Name: name, Reason: reason})
}

// SyncService reconciles a project spec against the remote tracker. It
// never reads or writes workflow state: moving issues between states is the
// business of IssueService only. milestones is nil for trackers without
// milestone support.
type SyncService struct {
	tracker    client.Tracker
	milestones client.MilestoneClient
	logger     *log.Logger
}

func NewSyncService(tracker client.Tracker, milestones client.MilestoneClient, logger *log.Logger) *SyncService {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &SyncService{tracker: tracker, milestones: milestones, logger: logger}
}

// Sync ensures project, milestones, epics, and stories exist and match the
// spec. Mutations are applied as they are decided; a failure midway leaves
// earlier entities updated, and the next run reconciles forward from
// scratch.
func (s *SyncService) Sync(spec *specfile.ProjectSpec) (*SyncReport, error) {
	report := &SyncReport{}

	project, err := s.syncProject(spec, report)
	if err != nil {
		return nil, err
	}

	milestonesByName, err := s.syncMilestones(spec, project, report)
	if err != nil {
		return nil, err
	}

	if err := s.syncIssues(spec, project, milestonesByName, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *SyncService) syncProject(spec *specfile.ProjectSpec, report *SyncReport) (*models.Project, error) {
	project, err := s.tracker.FindProjectByName(spec.Project.Name)
	if err != nil {
		return nil, err
	}

	if project == nil {
		project, err = s.tracker.CreateProject(spec.Project.Name, spec.Project.Description)
		if err != nil {
			return nil, err
		}
		s.logger.Printf("created project %s", project.Name)
		report.add(StatusCreated, EntityProject, project.Name, "")
		return project, nil
	}

	// Raw comparison on purpose: the project description carries no
	// ownership sentinel.
	if project.Description != spec.Project.Description {
		description := spec.Project.Description
		if err := s.tracker.UpdateProject(project.ID, client.ProjectUpdate{Description: &description}); err != nil {
			return nil, err
		}
		project.Description = description
		s.logger.Printf("updated project %s description", project.Name)
		report.add(StatusUpdated, EntityProject, project.Name, "description updated")
	} else {
		report.add(StatusSkipped, EntityProject, project.Name, "description unchanged")
	}
	return project, nil
}

// epicMilestoneName resolves an epic's milestone: its own field, else a
// top-level milestone entry whose name equals the epic title, else none.
func epicMilestoneName(spec *specfile.ProjectSpec, epic specfile.EpicSpec) string {
	if epic.Milestone != "" {
		return epic.Milestone
	}
	for _, m := range spec.Milestones {
		if m.Name == epic.Title {
			return m.Name
		}
	}
	return ""
}

// storyMilestoneName resolves a story's milestone: its own field, else the
// enclosing epic's resolved milestone.
func storyMilestoneName(story specfile.StorySpec, epicMilestone string) string {
	if story.Milestone != "" {
		return story.Milestone
	}
	return epicMilestone
}

// desiredMilestoneNames is the deduplicated union of top-level milestone
// entries and every epic/story resolved milestone, in first-seen order.
func desiredMilestoneNames(spec *specfile.ProjectSpec) []string {
	seen := map[string]struct{}{}
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, m := range spec.Milestones {
		add(m.Name)
	}
	for _, epic := range spec.Epics {
		epicMilestone := epicMilestoneName(spec, epic)
		add(epicMilestone)
		for _, story := range epic.Stories {
			add(storyMilestoneName(story, epicMilestone))
		}
	}
	return names
}

func (s *SyncService) syncMilestones(spec *specfile.ProjectSpec, project *models.Project, report *SyncReport) (map[string]models.Milestone, error) {
	desired := desiredMilestoneNames(spec)
	if len(desired) == 0 {
		return map[string]models.Milestone{}, nil
	}
	if s.milestones == nil {
		return nil, errors.New("spec requires milestones but the tracker has no milestone support")
	}

	existing, err := s.milestones.ListMilestones(project.ID)
	if err != nil {
		return nil, err
	}
	existingNames := map[string]struct{}{}
	for _, m := range existing {
		existingNames[m.Name] = struct{}{}
	}

	for _, name := range desired {
		if _, ok := existingNames[name]; ok {
			report.add(StatusSkipped, EntityMilestone, name, "already exists")
			continue
		}
		if err := s.milestones.CreateMilestone(project.ID, name); err != nil {
			return nil, err
		}
		s.logger.Printf("created milestone %s", name)
		report.add(StatusCreated, EntityMilestone, name, "")
	}

	// Re-fetch and verify every desired name resolves, so a creation
	// failure the tracker swallowed fails the sync instead of surfacing
	// later as a half-attached milestone.
	refreshed, err := s.milestones.ListMilestones(project.ID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.Milestone, len(refreshed))
	for _, m := range refreshed {
		if _, ok := byName[m.Name]; !ok {
			byName[m.Name] = m
		}
	}
	for _, name := range desired {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("milestone %q is still missing after creation", name)
		}
	}
	return byName, nil
}

// resolveTeamID picks the team new issues are created under: the project's
// own team reference, else the first entry of its team list, else the team
// of any fetched issue, else the workspace's first team.
func (s *SyncService) resolveTeamID(project *models.Project, issues []models.Issue) (string, error) {
	if project.TeamID != "" {
		return project.TeamID, nil
	}
	if len(project.TeamIDs) > 0 {
		return project.TeamIDs[0], nil
	}
	for _, issue := range issues {
		if issue.TeamID != "" {
			return issue.TeamID, nil
		}
	}
	teamID, err := s.tracker.FirstTeamID()
	if err != nil {
		return "", err
	}
	if teamID == "" {
		return "", fmt.Errorf("unable to resolve a team for project %s", project.Name)
	}
	return teamID, nil
}

func (s *SyncService) syncIssues(spec *specfile.ProjectSpec, project *models.Project, milestonesByName map[string]models.Milestone, report *SyncReport) error {
	if len(spec.Epics) == 0 {
		return nil
	}

	issues, err := s.tracker.ListIssues(project.ID)
	if err != nil {
		return err
	}
	me, err := s.tracker.CurrentUser()
	if err != nil {
		return err
	}
	teamID, err := s.resolveTeamID(project, issues)
	if err != nil {
		return err
	}

	for _, epic := range spec.Epics {
		epicMilestone := epicMilestoneName(spec, epic)
		epicIssue, err := s.syncIssue(issueSpec{
			entity:      EntityEpic,
			title:       epic.Title,
			description: epic.Description,
			assigneeRef: epic.Assignee,
			milestone:   epicMilestone,
		}, &issues, project, teamID, me.ID, milestonesByName, report)
		if err != nil {
			return err
		}

		for _, story := range epic.Stories {
			if _, err := s.syncIssue(issueSpec{
				entity:      EntityStory,
				title:       story.Title,
				description: story.Description,
				assigneeRef: story.Assignee,
				milestone:   storyMilestoneName(story, epicMilestone),
				parentID:    epicIssue.ID,
			}, &issues, project, teamID, me.ID, milestonesByName, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// issueSpec is the desired state of one epic or story. parentID is empty
// for epics.
type issueSpec struct {
	entity      SyncEntity
	title       string
	description string
	assigneeRef string
	milestone   string
	parentID    string
}

// syncIssue reconciles one epic or story. Matching is by exact title plus
// parent identity, so two epics may each own a story of the same title.
// Created issues are appended to issues so story lookups under a fresh epic
// work without a re-fetch.
func (s *SyncService) syncIssue(spec issueSpec, issues *[]models.Issue, project *models.Project, teamID, currentUserID string, milestonesByName map[string]models.Milestone, report *SyncReport) (*models.Issue, error) {
	desiredAssignee, explicit, err := s.resolveDesiredAssignee(spec.assigneeRef, currentUserID)
	if err != nil {
		return nil, err
	}

	var issue *models.Issue
	for i := range *issues {
		candidate := &(*issues)[i]
		if candidate.Title == spec.title && candidate.ParentID == spec.parentID {
			issue = candidate
			break
		}
	}

	if issue == nil {
		created, err := s.tracker.CreateIssue(client.IssueCreate{
			TeamID:      teamID,
			ProjectID:   project.ID,
			Title:       spec.title,
			Description: WrapManaged(spec.description),
			AssigneeID:  desiredAssignee,
			ParentID:    spec.parentID,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Printf("created %s %s", spec.entity, spec.title)
		report.add(StatusCreated, spec.entity, spec.title, "")
		*issues = append(*issues, *created)
		issue = &(*issues)[len(*issues)-1]
	} else {
		if err := s.syncAssignee(issue, desiredAssignee, explicit, spec.entity, report); err != nil {
			return nil, err
		}
		if StripManaged(issue.Description) != spec.description {
			description := WrapManaged(spec.description)
			if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{Description: &description}); err != nil {
				return nil, err
			}
			issue.Description = description
			s.logger.Printf("updated %s %s description", spec.entity, spec.title)
			report.add(StatusUpdated, spec.entity, spec.title, "description synchronized")
		} else {
			report.add(StatusSkipped, spec.entity, spec.title, "description unchanged")
		}
	}

	if spec.milestone != "" {
		// A milestone missing from the project list is a silent no-op
		// here; only creation failures abort the sync.
		if milestone, ok := milestonesByName[spec.milestone]; ok && issue.MilestoneID != milestone.ID {
			milestoneID := milestone.ID
			if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{MilestoneID: &milestoneID}); err != nil {
				return nil, err
			}
			issue.MilestoneID = milestone.ID
			s.logger.Printf("attached milestone %s to %s", spec.milestone, spec.title)
			report.add(StatusUpdated, spec.entity, spec.title, "milestone assigned")
			report.add(StatusUpdated, EntityMilestoneAssignment, spec.milestone, "")
		}
	}
	return issue, nil
}

// resolveDesiredAssignee turns a spec assignee reference into a user id.
// An empty reference falls back to the current user and counts as not
// explicitly set. A non-empty reference resolves as a user identifier
// first, then as an issue key whose current assignee is borrowed.
func (s *SyncService) resolveDesiredAssignee(reference, fallback string) (id string, explicit bool, err error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return fallback, false, nil
	}

	user, err := s.tracker.FindUserByIdentifier(trimmed)
	if err != nil {
		return "", false, err
	}
	if user != nil {
		return user.ID, true, nil
	}

	issue, err := s.tracker.FindIssueByKey(trimmed)
	if err != nil {
		return "", false, err
	}
	if issue != nil {
		if issue.AssigneeID == "" {
			return "", false, fmt.Errorf("assignee reference %q points at issue %s which has no assignee", trimmed, issue.Key)
		}
		return issue.AssigneeID, true, nil
	}

	return "", false, fmt.Errorf("unable to resolve assignee reference %q", trimmed)
}

// syncAssignee applies the assignee rule: an explicit spec assignee is
// forced whenever it differs; without one, only unassigned issues are
// touched (assigned to the current user), and an already-assigned issue is
// left alone with no record.
func (s *SyncService) syncAssignee(issue *models.Issue, desired string, explicit bool, entity SyncEntity, report *SyncReport) error {
	if explicit {
		if issue.AssigneeID != desired {
			if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{AssigneeID: &desired}); err != nil {
				return err
			}
			issue.AssigneeID = desired
			report.add(StatusUpdated, entity, issue.Title, "assignee set from spec")
		}
		return nil
	}
	if issue.AssigneeID == "" {
		if err := s.tracker.UpdateIssue(issue.ID, client.IssueUpdate{AssigneeID: &desired}); err != nil {
			return err
		}
		issue.AssigneeID = desired
		report.add(StatusUpdated, entity, issue.Title, "Assigned issue to current user")
	}
	return nil
}
