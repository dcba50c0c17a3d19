package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cogflow/linear-engine/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type assignIssuesRequest struct {
	Force bool `json:"force"`
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.projectService.ListProjectIssues(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

func (h *ProjectHandler) AssignIssues(w http.ResponseWriter, r *http.Request) {
	var body assignIssuesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	result, err := h.projectService.AssignProjectIssues(r.PathValue("name"), body.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}
