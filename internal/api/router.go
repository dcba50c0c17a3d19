package api

import (
	"encoding/json"
	"net/http"

	"github.com/cogflow/linear-engine/internal/api/handlers"
	"github.com/cogflow/linear-engine/internal/client"
	"github.com/cogflow/linear-engine/internal/service"
)

// SetupRouter wires the HTTP surface. authToken, when non-empty, gates
// every route behind a bearer token check.
func SetupRouter(tracker client.Tracker, milestones client.MilestoneClient, authToken string) http.Handler {
	mux := http.NewServeMux()

	issueService := service.NewIssueService(tracker)
	projectService := service.NewProjectService(tracker)
	syncService := service.NewSyncService(tracker, milestones, nil)

	issueHandler := handlers.NewIssueHandler(issueService)
	projectHandler := handlers.NewProjectHandler(projectService)
	syncHandler := handlers.NewSyncHandler(syncService)

	mux.HandleFunc("GET /issues/{key}", issueHandler.Status)
	mux.HandleFunc("POST /issues/{key}/move", issueHandler.Move)
	mux.HandleFunc("POST /issues/{key}/comment", issueHandler.Comment)
	mux.HandleFunc("POST /issues/{key}/assign", issueHandler.Assign)
	mux.HandleFunc("POST /issues/{key}/start", issueHandler.Start)

	mux.HandleFunc("GET /projects", projectHandler.ListProjects)
	mux.HandleFunc("GET /projects/{name}/issues", projectHandler.ListIssues)
	mux.HandleFunc("POST /projects/{name}/assign", projectHandler.AssignIssues)

	mux.HandleFunc("POST /sync", syncHandler.Sync)

	if authToken == "" {
		return mux
	}
	return requireToken(authToken, mux)
}

func requireToken(token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
