// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
	Sizing  bool             // true for the CPU-bound sizing routes
}

// Routes returns all API routes for registration. The bare /size/custom
// path is the stable public contract; /api/v1/ aliases it.
func (h *Handler) Routes() []Route {
	return []Route{
		// Sizing
		{Method: http.MethodPost, Path: "/size/custom", Handler: h.SizeCustom, Sizing: true},
		{Method: http.MethodPost, Path: "/api/v1/size/custom", Handler: h.SizeCustom, Sizing: true},

		// Catalog
		{Method: http.MethodGet, Path: "/api/v1/platforms", Handler: h.ListPlatforms},
		{Method: http.MethodGet, Path: "/api/v1/platforms/{name}/instances", Handler: h.PlatformInstances},

		// Infrastructure discovery
		{Method: http.MethodGet, Path: "/api/v1/infrastructure/machinesets", Handler: h.DiscoverMachineSets},

		// Health
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},
	}
}
