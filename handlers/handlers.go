// ABOUTME: HTTP handler state and JSON helpers for the sizer API
// ABOUTME: Wires the sizing facade, catalog, cache, and vSphere discovery

package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/ronenav/sizer/cache"
	"github.com/ronenav/sizer/config"
	"github.com/ronenav/sizer/models"
	"github.com/ronenav/sizer/services"
)

type Handler struct {
	cfg           *config.Config
	cache         *cache.Cache
	sizer         *services.Sizer
	vsphereClient *services.VSphereClient

	// Deduplicates concurrent vSphere inventory fetches.
	inventoryGroup singleflight.Group
}

func NewHandler(cfg *config.Config, c *cache.Cache) *Handler {
	h := &Handler{
		cfg:   cfg,
		cache: c,
		sizer: services.NewSizer(nil),
	}

	if cfg != nil {
		if len(cfg.ControlPlaneMarkers) > 0 {
			h.sizer = services.NewSizer(cfg.ControlPlaneMarkers)
		}
		if cfg.VSphereConfigured() {
			h.vsphereClient = services.NewVSphereClient(services.VSphereCredentials{
				Host:       cfg.VSphereHost,
				Username:   cfg.VSphereUsername,
				Password:   cfg.VSpherePassword,
				Datacenter: cfg.VSphereDatacenter,
				Insecure:   cfg.VSphereInsecure,
				AllProxy:   cfg.VSphereAllProxy,
			})
		}
	}

	return h
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeAPIError writes the enveloped error shape used by the sizing API.
func writeAPIError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, models.APIResponse{
		Success: false,
		Error:   &models.APIError{Message: message},
	})
}
