package handlers

import (
	"io"
	"net/http"

	"github.com/cogflow/linear-engine/internal/service"
	"github.com/cogflow/linear-engine/internal/specfile"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// Sync accepts a spec document (YAML) as the request body and runs a full
// reconciliation.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body: " + err.Error()})
		return
	}

	spec, err := specfile.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	report, err := h.syncService.Sync(spec)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}
