// ABOUTME: Sizing endpoint: expands workloads and returns a cluster plan
// ABOUTME: Input errors are 400s; scheduling failures surface as 500s

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ronenav/sizer/models"
	"github.com/ronenav/sizer/services"
)

// SizeCustom handles POST /size/custom.
func (h *Handler) SizeCustom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeAPIError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.SizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Platform == "" {
		writeAPIError(w, "platform is required", http.StatusBadRequest)
		return
	}
	if len(req.Workloads) == 0 {
		writeAPIError(w, "at least one workload is required", http.StatusBadRequest)
		return
	}

	sizing, err := h.sizer.Size(req.Workloads, req.Platform, req.MachineSets)
	if err != nil {
		var invalid *services.InvalidInputError
		if errors.As(err, &invalid) {
			writeAPIError(w, invalid.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Sizing failed", "platform", req.Platform, "error", err)
		writeAPIError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !req.Detailed {
		sizing.Services = nil
		sizing.Workloads = nil
	}

	writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: sizing})
}
