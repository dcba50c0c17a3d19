package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/cogflow/linear-engine/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the same operations over HTTP",
	Long: `Serve the issue, project, and sync operations over HTTP.

When LINEAR_ENGINE_TOKEN is set, every request must carry it as a bearer
token.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := newTracker()
		if err != nil {
			return err
		}

		router := api.SetupRouter(tracker, tracker, os.Getenv("LINEAR_ENGINE_TOKEN"))
		addr := fmt.Sprintf(":%d", servePort)
		fmt.Printf("Listening on http://localhost%s\n", addr)
		return http.ListenAndServe(addr, router)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}
