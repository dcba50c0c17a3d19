// Package cli implements the linear-engine command surface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogflow/linear-engine/internal/client/linear"
)

var jsonOut bool

var rootCmd = &cobra.Command{
	Use:   "linear-engine",
	Short: "Reconcile declarative project specs against a Linear workspace",
	Long: `linear-engine keeps a Linear project in line with a declarative spec file
(project, milestones, epics, stories) and offers quick per-issue commands:
status, move, comment, assign, start.

Set LINEAR_API_KEY in the environment or a .env file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit JSON instead of text")
}

// Execute runs the CLI and returns the process exit code. Errors honor the
// --json flag like every other payload.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if jsonOut {
			json.NewEncoder(os.Stdout).Encode(map[string]string{"error": err.Error()})
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func newTracker() (*linear.Client, error) {
	apiKey := os.Getenv("LINEAR_API_KEY")
	if apiKey == "" {
		return nil, errors.New("LINEAR_API_KEY is not set (create a personal API key in Linear settings)")
	}
	return linear.NewClient(apiKey), nil
}
