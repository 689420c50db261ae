// ABOUTME: Platform catalog endpoints
// ABOUTME: Lists platforms and per-platform instance shapes

package handlers

import (
	"net/http"

	"github.com/ronenav/sizer/catalog"
	"github.com/ronenav/sizer/models"
)

// platformSummary pairs a platform name with its default instance.
type platformSummary struct {
	Name            string          `json:"name"`
	DefaultInstance models.Instance `json:"defaultInstance"`
}

// ListPlatforms handles GET /api/v1/platforms.
func (h *Handler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	names := catalog.Platforms()
	summaries := make([]platformSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, platformSummary{
			Name:            name,
			DefaultInstance: catalog.DefaultInstanceForPlatform(name),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// PlatformInstances handles GET /api/v1/platforms/{name}/instances.
// Unknown platforms fall back to the AWS catalog.
func (h *Handler) PlatformInstances(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		writeError(w, "platform name is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, catalog.InstancesForPlatform(name))
}
