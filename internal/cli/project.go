package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cogflow/linear-engine/internal/service"
)

func newProjectService() (*service.ProjectService, error) {
	tracker, err := newTracker()
	if err != nil {
		return nil, err
	}
	return service.NewProjectService(tracker), nil
}

var listCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List a project's issues, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := newProjectService()
		if err != nil {
			return err
		}
		rows, err := projects.ListProjectIssues(args[0])
		if err != nil {
			return err
		}
		return emit(rows, func() string {
			if len(rows) == 0 {
				return "No issues"
			}
			var b strings.Builder
			for i, row := range rows {
				if i > 0 {
					b.WriteByte('\n')
				}
				assignee := row.Assignee
				if assignee == "" {
					assignee = "Unassigned"
				}
				fmt.Fprintf(&b, "%s  %-40s  %-12s  %-12s  %s",
					styled(styleHeader, row.Key), row.Title, row.State, assignee,
					styled(styleDim, relativeTime(row.CreatedAt)))
			}
			return b.String()
		})
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List all projects in the workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := newProjectService()
		if err != nil {
			return err
		}
		rows, err := projects.ListProjects()
		if err != nil {
			return err
		}
		return emit(rows, func() string {
			if len(rows) == 0 {
				return "No projects"
			}
			var b strings.Builder
			for i, row := range rows {
				if i > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "%s  %s", styled(styleHeader, row.Name), styled(styleDim, row.Description))
			}
			return b.String()
		})
	},
}

var assignProjectForce bool

var assignProjectCmd = &cobra.Command{
	Use:   "assign-project <project>",
	Short: "Assign every issue in a project to the current user",
	Long: `Assign every issue in a project to the current authenticated user.

Issues that already have an assignee are skipped unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := newProjectService()
		if err != nil {
			return err
		}
		result, err := projects.AssignProjectIssues(args[0], assignProjectForce)
		if err != nil {
			return err
		}
		return emit(result, func() string {
			return fmt.Sprintf("%d issues: %d assigned, %d skipped",
				result.Total, result.Assigned, result.Skipped)
		})
	},
}

func init() {
	assignProjectCmd.Flags().BoolVar(&assignProjectForce, "force", false, "reassign issues that already have an assignee")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(assignProjectCmd)
}
