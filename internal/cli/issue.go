package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cogflow/linear-engine/internal/service"
)

func newIssueService() (*service.IssueService, error) {
	tracker, err := newTracker()
	if err != nil {
		return nil, err
	}
	return service.NewIssueService(tracker), nil
}

var statusCmd = &cobra.Command{
	Use:   "status <issue-key>",
	Short: "Show an issue's state, assignee, and project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := newIssueService()
		if err != nil {
			return err
		}
		result, err := issues.Status(args[0])
		if err != nil {
			return err
		}
		return emit(result, func() string {
			return fmt.Sprintf("%s  %s\n%s %s\n%s %s\n%s %s",
				styled(styleHeader, result.Key), result.Title,
				styled(styleDim, "state:"), result.State,
				styled(styleDim, "assignee:"), result.Assignee,
				styled(styleDim, "project:"), result.Project)
		})
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <issue-key> <state>",
	Short: "Move an issue to a workflow state (matched case-insensitively)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := newIssueService()
		if err != nil {
			return err
		}
		result, err := issues.Move(args[0], args[1])
		if err != nil {
			return err
		}
		return emit(result, func() string {
			return fmt.Sprintf("%s: %s → %s", result.Key, result.PreviousState, result.NewState)
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <issue-key> <text>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := newIssueService()
		if err != nil {
			return err
		}
		result, err := issues.Comment(args[0], args[1])
		if err != nil {
			return err
		}
		return emit(result, func() string {
			return fmt.Sprintf("Commented on %s", result.Key)
		})
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <issue-key> <user>",
	Short: "Assign an issue to a user (id, name, display name, or email)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := newIssueService()
		if err != nil {
			return err
		}
		result, err := issues.Assign(args[0], args[1])
		if err != nil {
			return err
		}
		return emit(result, func() string {
			return fmt.Sprintf("%s assigned to %s", result.Key, result.Assignee)
		})
	},
}

var startCmd = &cobra.Command{
	Use:   "start <issue-key>",
	Short: "Move an issue to its team's first active workflow state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := newIssueService()
		if err != nil {
			return err
		}
		result, err := issues.Start(args[0])
		if err != nil {
			return err
		}
		return emit(result, func() string {
			return fmt.Sprintf("%s: %s → %s", result.Key, result.PreviousState, result.NewState)
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(startCmd)
}
