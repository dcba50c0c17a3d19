package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cogflow/linear-engine/internal/service"
	"github.com/cogflow/linear-engine/internal/specfile"
)

var syncCmd = &cobra.Command{
	Use:   "sync <spec-file>",
	Short: "Reconcile a project spec file against the workspace",
	Long: `Reconcile a YAML project spec against the Linear workspace: the project,
its milestones, and every epic and story are created or updated to match,
without ever touching workflow state. The report lists one line per
decision.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := specfile.Load(args[0])
		if err != nil {
			return err
		}

		tracker, err := newTracker()
		if err != nil {
			return err
		}
		syncService := service.NewSyncService(tracker, tracker, nil)

		report, err := syncService.Sync(spec)
		if err != nil {
			return err
		}
		return emit(report, func() string {
			var b strings.Builder
			for i, action := range report.Actions {
				if i > 0 {
					b.WriteByte('\n')
				}
				fmt.Fprintf(&b, "%-8s  %-20s  %s", styled(actionStyle(action.Status), string(action.Status)),
					action.Entity, action.Name)
				if action.Reason != "" {
					fmt.Fprintf(&b, "  %s", styled(styleDim, "("+action.Reason+")"))
				}
			}
			return b.String()
		})
	},
}

func actionStyle(status service.SyncStatus) lipgloss.Style {
	switch status {
	case service.StatusCreated:
		return styleCreated
	case service.StatusUpdated:
		return styleUpdated
	default:
		return styleDim
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
