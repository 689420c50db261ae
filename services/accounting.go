// ABOUTME: Resource accounting over sets of services
// ABOUTME: Requests drive scheduling; limits only feed over-commit reports

package services

import (
	"strings"

	"github.com/ronenav/sizer/models"
)

// osdMarker identifies services that consume one backing disk each.
// Matching is case-sensitive on the service name.
const osdMarker = "Ceph_OSD"

// ResourceRequest is a summed resource demand.
type ResourceRequest struct {
	CPU    float64
	Memory float64
	Disks  int
}

// Add returns the element-wise sum of two requests.
func (r ResourceRequest) Add(other ResourceRequest) ResourceRequest {
	return ResourceRequest{
		CPU:    r.CPU + other.CPU,
		Memory: r.Memory + other.Memory,
		Disks:  r.Disks + other.Disks,
	}
}

// TotalRequest sums the requests of a set of services. Every service whose
// name contains the Ceph_OSD marker consumes one disk.
func TotalRequest(services []models.Service) ResourceRequest {
	var total ResourceRequest
	for _, svc := range services {
		total.CPU += svc.RequiredCPU
		total.Memory += svc.RequiredMemory
		if strings.Contains(svc.Name, osdMarker) {
			total.Disks++
		}
	}
	return total
}

// CanSupport reports whether a node can take on an additional requirement
// given its current usage. The kubelet overhead of the node's capacity is
// charged against cpu and memory; disks are compared raw.
func CanSupport(requirement, current ResourceRequest, node models.Node) bool {
	overhead := KubeletOverhead(node.CPUUnits, node.Memory)
	if requirement.CPU+current.CPU+overhead.CPU > float64(node.CPUUnits) {
		return false
	}
	if requirement.Memory+current.Memory+overhead.Memory > float64(node.Memory) {
		return false
	}
	if requirement.Disks+current.Disks > node.MaxDisks {
		return false
	}
	return true
}
