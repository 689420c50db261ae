// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, overrides, list parsing, and validation

package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RateLimitSizing != 30 {
		t.Errorf("Expected default sizing rate limit 30, got %d", cfg.RateLimitSizing)
	}
	if cfg.RateLimitDefault != 100 {
		t.Errorf("Expected default rate limit 100, got %d", cfg.RateLimitDefault)
	}
	if !cfg.RateLimitEnabled {
		t.Error("Expected rate limiting enabled by default")
	}
	if cfg.VSphereCacheTTL != 300 {
		t.Errorf("Expected default vSphere cache TTL 300, got %d", cfg.VSphereCacheTTL)
	}
	if cfg.VSphereConfigured() {
		t.Error("Expected vSphere unconfigured by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_SIZING", "5")
	t.Setenv("SIZER_CONTROL_PLANE_MARKERS", "etcd, kube-apiserver ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.RateLimitSizing != 5 {
		t.Errorf("Expected sizing rate limit 5, got %d", cfg.RateLimitSizing)
	}
	if len(cfg.ControlPlaneMarkers) != 2 || cfg.ControlPlaneMarkers[0] != "etcd" {
		t.Errorf("Expected trimmed marker list, got %v", cfg.ControlPlaneMarkers)
	}
}

func TestLoad_VSphereConfigured(t *testing.T) {
	t.Setenv("VSPHERE_HOST", "vcenter.example.com")
	t.Setenv("VSPHERE_USERNAME", "admin")
	t.Setenv("VSPHERE_PASSWORD", "secret")
	t.Setenv("VSPHERE_DATACENTER", "dc1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if !cfg.VSphereConfigured() {
		t.Error("Expected vSphere configured")
	}
}

func TestLoad_RejectsOutOfRangeRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_SIZING", "0")

	if _, err := Load(); err == nil {
		t.Error("Expected error for out-of-range rate limit")
	}
}
