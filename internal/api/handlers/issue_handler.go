package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cogflow/linear-engine/internal/service"
)

type IssueHandler struct {
	issueService *service.IssueService
}

func NewIssueHandler(issueService *service.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

type moveRequest struct {
	State string `json:"state"`
}

type commentRequest struct {
	Body string `json:"body"`
}

type assignRequest struct {
	User string `json:"user"`
}

func (h *IssueHandler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.issueService.Status(r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issue": result})
}

func (h *IssueHandler) Move(w http.ResponseWriter, r *http.Request) {
	var body moveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	result, err := h.issueService.Move(r.PathValue("key"), body.State)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *IssueHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var body commentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	result, err := h.issueService.Comment(r.PathValue("key"), body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"result": result})
}

func (h *IssueHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var body assignRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	result, err := h.issueService.Assign(r.PathValue("key"), body.User)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *IssueHandler) Start(w http.ResponseWriter, r *http.Request) {
	result, err := h.issueService.Start(r.PathValue("key"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}
