// Package specfile loads and validates the declarative project
// specification consumed by sync.
package specfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectSpec struct {
	Project    ProjectInfo     `yaml:"project"`
	Milestones []MilestoneSpec `yaml:"milestones"`
	Epics      []EpicSpec      `yaml:"epics"`
}

type ProjectInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type MilestoneSpec struct {
	Name string `yaml:"name"`
}

type EpicSpec struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Assignee    string      `yaml:"assignee"`
	Milestone   string      `yaml:"milestone"`
	Stories     []StorySpec `yaml:"stories"`
}

type StorySpec struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Assignee    string `yaml:"assignee"`
	Milestone   string `yaml:"milestone"`
}

// Load reads, parses, and validates a spec file. Failures identify the
// stage: read, parse, or schema.
func Load(path string) (*ProjectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates raw spec document bytes.
func Parse(data []byte) (*ProjectSpec, error) {
	var spec ProjectSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse spec file: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid spec: %w", err)
	}
	return &spec, nil
}

func (s *ProjectSpec) Validate() error {
	if strings.TrimSpace(s.Project.Name) == "" {
		return errors.New("project.name is required")
	}
	for i, m := range s.Milestones {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("milestones[%d].name is required", i)
		}
	}
	for i, epic := range s.Epics {
		if strings.TrimSpace(epic.Title) == "" {
			return fmt.Errorf("epics[%d].title is required", i)
		}
		for j, story := range epic.Stories {
			if strings.TrimSpace(story.Title) == "" {
				return fmt.Errorf("epics[%d].stories[%d].title is required", i, j)
			}
		}
	}
	return nil
}
