// ABOUTME: Entry point for the cluster sizer backend service
// ABOUTME: Provides an HTTP API for cluster sizing plans and discovery

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ronenav/sizer/cache"
	"github.com/ronenav/sizer/config"
	"github.com/ronenav/sizer/handlers"
	"github.com/ronenav/sizer/logger"
	"github.com/ronenav/sizer/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting Cluster Sizer Backend")
	if cfg.VSphereConfigured() {
		slog.Info("vSphere configured", "host", cfg.VSphereHost, "datacenter", cfg.VSphereDatacenter)
	} else {
		slog.Info("vSphere not configured, catalog and custom machine sets only")
	}

	cacheTTL := time.Duration(cfg.VSphereCacheTTL) * time.Second
	c := cache.New(cacheTTL)

	h := handlers.NewHandler(cfg, c)

	var sizingLimiter, defaultLimiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		sizingLimiter = middleware.NewRateLimiter(cfg.RateLimitSizing, time.Minute)
		defaultLimiter = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
	}

	mux := http.NewServeMux()
	cors := middleware.CORS(cfg.CORSAllowedOrigins)
	for _, route := range h.Routes() {
		limiter := defaultLimiter
		if route.Sizing {
			limiter = sizingLimiter
		}
		chained := middleware.Chain(route.Handler,
			cors,
			middleware.LogRequest,
			middleware.Metrics,
			middleware.RateLimit(limiter, middleware.ClientIP),
		)
		mux.HandleFunc(fmt.Sprintf("%s %s", route.Method, route.Path), chained)
		// Preflight requests never carry the route's method.
		mux.HandleFunc(fmt.Sprintf("%s %s", http.MethodOptions, route.Path), chained)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
