// ABOUTME: Health endpoint reporting service and discovery status
// ABOUTME: Always 200; degraded collaborators are reported, not fatal

package handlers

import "net/http"

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":  "ok",
		"vsphere": "not_configured",
	}
	if h.vsphereClient != nil {
		resp["vsphere"] = "configured"
	}
	writeJSON(w, http.StatusOK, resp)
}
