// ABOUTME: Control-plane detection policy for services and MachineSets
// ABOUTME: Name-substring heuristic; the marker list is configurable

package services

import "strings"

// DefaultControlPlaneMarkers are the service-name substrings that mark a
// service as part of the control plane. Matching is case-insensitive.
// The list can be overridden via SIZER_CONTROL_PLANE_MARKERS.
var DefaultControlPlaneMarkers = []string{
	"kube-apiserver",
	"etcd",
	"kube-controller-manager",
	"kube-scheduler",
	"cluster-version-operator",
	"control-plane",
	"controlplane",
}

// IsControlPlaneService reports whether the service name matches any
// control-plane marker.
func IsControlPlaneService(name string, markers []string) bool {
	lower := strings.ToLower(name)
	for _, marker := range markers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// IsControlPlaneMachineSet reports whether a MachineSet (or node) name
// designates the control plane. User workloads land on such nodes only
// when workload scheduling is explicitly allowed.
func IsControlPlaneMachineSet(name string) bool {
	return strings.EqualFold(name, "controlPlane") || strings.EqualFold(name, "control-plane")
}
