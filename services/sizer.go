// ABOUTME: Sizing facade: expands descriptors, validates, schedules, sums
// ABOUTME: One Size call owns all zones, nodes, and ids it creates

package services

import (
	"github.com/ronenav/sizer/catalog"
	"github.com/ronenav/sizer/models"
)

// Sizer runs complete sizing computations. A Sizer is stateless across
// calls; every call seeds its own id allocator, so identical inputs yield
// identical outputs.
type Sizer struct {
	markers []string
}

// NewSizer creates a sizer. markers overrides the control-plane detection
// list; nil keeps the default.
func NewSizer(markers []string) *Sizer {
	if markers == nil {
		markers = DefaultControlPlaneMarkers
	}
	return &Sizer{markers: markers}
}

// Size computes a cluster sizing plan for the given workload descriptors
// on a platform. When machineSets is empty the platform's default instance
// is wrapped in a single "default" MachineSet.
func (s *Sizer) Size(descriptors []models.WorkloadDescriptor, platform string, machineSets []models.MachineSet) (models.ClusterSizing, error) {
	if len(descriptors) == 0 {
		return models.ClusterSizing{}, invalidInputf("at least one workload is required")
	}
	if platform == "" && len(machineSets) == 0 {
		return models.ClusterSizing{}, invalidInputf("platform is required when no machine sets are given")
	}

	resolved, err := resolveMachineSets(platform, machineSets)
	if err != nil {
		return models.ClusterSizing{}, err
	}

	ids := NewIDAllocator()
	services, workloads, err := expandDescriptors(descriptors, ids)
	if err != nil {
		return models.ClusterSizing{}, err
	}

	byID := make(map[int]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	// Validate schedulability up-front so a sizing run never returns a
	// partial plan.
	for _, w := range workloads {
		if _, err := AnalyzeWorkload(w, byID, resolved); err != nil {
			return models.ClusterSizing{}, err
		}
	}

	scheduler := NewScheduler(services, workloads, resolved, ids, s.markers)
	var zones []models.Zone
	var nodes []models.Node
	for _, w := range workloads {
		zones, nodes, err = scheduler.ScheduleWorkload(w, zones, nodes)
		if err != nil {
			return models.ClusterSizing{}, err
		}
	}

	return assemble(zones, nodes, services, workloads, byID), nil
}

func resolveMachineSets(platform string, machineSets []models.MachineSet) ([]models.MachineSet, error) {
	if len(machineSets) == 0 {
		inst := catalog.DefaultInstanceForPlatform(platform)
		machineSets = []models.MachineSet{{
			Name:          "default",
			CPU:           inst.CPUUnits,
			Memory:        inst.Memory,
			InstanceName:  inst.Name,
			NumberOfDisks: inst.MaxDisks,
		}}
	}

	seen := make(map[string]bool, len(machineSets))
	for _, ms := range machineSets {
		if ms.Name == "" {
			return nil, invalidInputf("machine set name is required")
		}
		if seen[ms.Name] {
			return nil, invalidInputf("duplicate machine set %q", ms.Name)
		}
		seen[ms.Name] = true
		if ms.CPU <= 0 || ms.Memory <= 0 {
			return nil, invalidInputf("machine set %q must have positive cpu and memory", ms.Name)
		}
		if ms.NumberOfDisks < 0 {
			return nil, invalidInputf("machine set %q has negative disk count", ms.Name)
		}
	}
	return machineSets, nil
}

// expandDescriptors turns user-facing descriptors into internal services
// and workloads with run-scoped ids. A workload count above one rewrites
// every contained service's zones to the count, fanning replicas out
// across distinct zones.
func expandDescriptors(descriptors []models.WorkloadDescriptor, ids *IDAllocator) ([]models.Service, []models.Workload, error) {
	var services []models.Service
	var workloads []models.Workload

	for _, d := range descriptors {
		if d.Name == "" {
			return nil, nil, invalidInputf("workload name is required")
		}
		if len(d.Services) == 0 {
			return nil, nil, invalidInputf("workload %q has no services", d.Name)
		}

		w := models.Workload{
			ID:                  ids.NextWorkload(),
			Name:                d.Name,
			Count:               max(1, d.Count),
			UsesMachines:        d.UsesMachines,
			AllowControlPlane:   d.AllowControlPlane,
			RequireControlPlane: d.RequireControlPlane,
		}

		idByName := make(map[string]int, len(d.Services))
		first := len(services)
		for _, sd := range d.Services {
			if sd.Name == "" {
				return nil, nil, invalidInputf("workload %q has a service without a name", d.Name)
			}
			if _, dup := idByName[sd.Name]; dup {
				return nil, nil, invalidInputf("workload %q defines service %q twice", d.Name, sd.Name)
			}

			svc, err := expandService(sd, d, ids.NextService(), w.ID)
			if err != nil {
				return nil, nil, err
			}
			idByName[sd.Name] = svc.ID
			w.Services = append(w.Services, svc.ID)
			services = append(services, svc)
		}

		// Second pass: resolve name references now that every id exists.
		for i := first; i < len(services); i++ {
			sd := d.Services[i-first]
			svc := &services[i]

			for _, name := range sd.RunsWith {
				id, ok := idByName[name]
				if !ok {
					return nil, nil, invalidInputf("workload %q: service %q runs with unknown service %q", d.Name, svc.Name, name)
				}
				if id != svc.ID {
					svc.RunsWith = append(svc.RunsWith, id)
				}
			}
			for _, name := range sd.Avoid {
				id, ok := idByName[name]
				if !ok {
					return nil, nil, invalidInputf("workload %q: service %q avoids unknown service %q", d.Name, svc.Name, name)
				}
				if id == svc.ID {
					return nil, nil, invalidInputf("workload %q: service %q cannot avoid itself", d.Name, svc.Name)
				}
				svc.Avoid = append(svc.Avoid, id)
			}
		}

		if err := normalizeRunsWith(services[first:]); err != nil {
			return nil, nil, err
		}

		workloads = append(workloads, w)
	}

	return services, workloads, nil
}

func expandService(sd models.ServiceDescriptor, d models.WorkloadDescriptor, id, workloadID int) (models.Service, error) {
	if sd.RequiredCPU < 0 || sd.RequiredMemory < 0 {
		return models.Service{}, invalidInputf("workload %q: service %q has negative resource requests", d.Name, sd.Name)
	}

	zones := sd.Zones
	if zones < 1 {
		zones = 1
	}
	if d.Count > 1 {
		zones = d.Count
	}

	svc := models.Service{
		ID:             id,
		Name:           sd.Name,
		RequiredCPU:    float64(sd.RequiredCPU),
		RequiredMemory: float64(sd.RequiredMemory),
		LimitCPU:       coresPtr(sd.LimitCPU),
		LimitMemory:    gigabytesPtr(sd.LimitMemory),
		MinLimitCPU:    coresPtr(sd.MinLimitCPU),
		MaxLimitCPU:    coresPtr(sd.MaxLimitCPU),
		MinLimitMemory: gigabytesPtr(sd.MinLimitMemory),
		MaxLimitMemory: gigabytesPtr(sd.MaxLimitMemory),
		OverCommitMode: sd.OverCommitMode,
		Zones:          zones,
		OwnerReference: workloadID,
	}
	if svc.OverCommitMode == "" {
		svc.OverCommitMode = models.OverCommitNone
	}

	if svc.LimitCPU != nil && *svc.LimitCPU < svc.RequiredCPU {
		return models.Service{}, invalidInputf("workload %q: service %q cpu limit is below its request", d.Name, sd.Name)
	}
	if svc.LimitMemory != nil && *svc.LimitMemory < svc.RequiredMemory {
		return models.Service{}, invalidInputf("workload %q: service %q memory limit is below its request", d.Name, sd.Name)
	}
	return svc, nil
}

// normalizeRunsWith makes runsWith symmetric and rejects services that
// both co-place with and avoid the same peer.
func normalizeRunsWith(services []models.Service) error {
	index := make(map[int]int, len(services))
	for i, svc := range services {
		index[svc.ID] = i
	}

	for i := range services {
		for _, other := range services[i].RunsWith {
			j, ok := index[other]
			if !ok {
				continue
			}
			if !containsInt(services[j].RunsWith, services[i].ID) {
				services[j].RunsWith = append(services[j].RunsWith, services[i].ID)
			}
		}
	}

	for _, svc := range services {
		for _, other := range svc.RunsWith {
			if containsInt(svc.Avoid, other) {
				return invalidInputf("service %q both runs with and avoids service %d", svc.Name, other)
			}
		}
	}
	return nil
}

func assemble(zones []models.Zone, nodes []models.Node, services []models.Service, workloads []models.Workload, byID map[int]models.Service) models.ClusterSizing {
	zoneOf := make(map[int]int, len(nodes))
	for _, zone := range zones {
		for _, nodeID := range zone.Nodes {
			zoneOf[nodeID] = zone.ID
		}
	}

	sizing := models.ClusterSizing{
		NodeCount: len(nodes),
		Zones:     len(zones),
		Services:  services,
		Workloads: workloads,
	}
	for _, node := range nodes {
		sizing.TotalCPU += node.CPUUnits
		sizing.TotalMemory += node.Memory
		sizing.Nodes = append(sizing.Nodes, models.NodeReport{
			Node:  node,
			Zone:  zoneOf[node.ID],
			Usage: NodeUsageReport(node, byID),
		})
	}
	for _, zone := range zones {
		sizing.ZoneDetails = append(sizing.ZoneDetails, models.ZoneDetail{
			ID:        zone.ID,
			NodeCount: len(zone.Nodes),
			Nodes:     zone.Nodes,
		})
	}
	sizing.OverCommit = ClusterUsageReport(nodes, services)
	return sizing
}

func coresPtr(c *models.Cores) *float64 {
	if c == nil {
		return nil
	}
	v := float64(*c)
	return &v
}

func gigabytesPtr(g *models.Gigabytes) *float64 {
	if g == nil {
		return nil
	}
	v := float64(*g)
	return &v
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
