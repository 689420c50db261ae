// ABOUTME: vSphere-backed MachineSet discovery endpoint
// ABOUTME: Results are cached with TTL; concurrent fetches are deduplicated

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ronenav/sizer/models"
)

const inventoryCacheKey = "machinesets:vsphere"

// DiscoverMachineSets handles GET /api/v1/infrastructure/machinesets.
// It returns MachineSet candidates derived from the configured vCenter.
func (h *Handler) DiscoverMachineSets(w http.ResponseWriter, r *http.Request) {
	if h.vsphereClient == nil {
		writeError(w, "vSphere not configured. Set VSPHERE_HOST, VSPHERE_USERNAME, VSPHERE_PASSWORD, and VSPHERE_DATACENTER environment variables.", http.StatusServiceUnavailable)
		return
	}

	if cached, found := h.cache.Get(inventoryCacheKey); found {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	// Collapse a thundering herd of cache misses into one vCenter query.
	result, err, _ := h.inventoryGroup.Do(inventoryCacheKey, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		if err := h.vsphereClient.Connect(ctx); err != nil {
			return nil, err
		}
		defer h.vsphereClient.Disconnect(ctx)

		machineSets, err := h.vsphereClient.DiscoverMachineSets(ctx)
		if err != nil {
			return nil, err
		}

		ttl := time.Duration(h.cfg.VSphereCacheTTL) * time.Second
		h.cache.SetWithTTL(inventoryCacheKey, machineSets, ttl)
		return machineSets, nil
	})
	if err != nil {
		slog.Error("vSphere discovery failed", "error", err)
		writeError(w, "Failed to discover machine sets: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, result.([]models.MachineSet))
}
