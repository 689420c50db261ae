// ABOUTME: Node engine: admission checks and in-zone placement
// ABOUTME: Creates nodes from MachineSets when no existing node fits

package services

import "github.com/ronenav/sizer/models"

// Default control-plane reservation applied to new control-plane nodes
// when the MachineSet does not set one.
var defaultControlPlaneReserved = models.ResourceSpec{CPU: 2, Memory: 4}

// Scheduler holds the immutable context of one sizing run: the expanded
// services and workloads, the resolved MachineSets, the control-plane
// policy, and the run's id allocator. Zones and nodes are threaded through
// its methods as values.
type Scheduler struct {
	services    map[int]models.Service
	workloads   []models.Workload
	machineSets []models.MachineSet
	markers     []string
	ids         *IDAllocator
}

// NewScheduler builds a scheduler for one sizing run. markers may be nil
// to use the default control-plane detection list.
func NewScheduler(services []models.Service, workloads []models.Workload, machineSets []models.MachineSet, ids *IDAllocator, markers []string) *Scheduler {
	byID := make(map[int]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}
	if markers == nil {
		markers = DefaultControlPlaneMarkers
	}
	return &Scheduler{
		services:    byID,
		workloads:   workloads,
		machineSets: machineSets,
		markers:     markers,
		ids:         ids,
	}
}

func (s *Scheduler) ownerOf(svc models.Service) (models.Workload, bool) {
	for _, w := range s.workloads {
		if w.ID == svc.OwnerReference {
			return w, true
		}
	}
	return models.Workload{}, false
}

func (s *Scheduler) machineSet(name string) (models.MachineSet, bool) {
	for _, ms := range s.machineSets {
		if ms.Name == name {
			return ms, true
		}
	}
	return models.MachineSet{}, false
}

// CanNodeAddService reports whether the candidate service (together with
// its co-placement bundle) may land on the node. Checks run in order:
// ownership, machine pinning, control-plane routing, onlyFor taint,
// anti-affinity, capacity.
func (s *Scheduler) CanNodeAddService(node models.Node, candidate models.Service) bool {
	if _, ok := s.services[candidate.ID]; !ok {
		return false
	}
	owner, ok := s.ownerOf(candidate)
	if !ok {
		return false
	}

	if len(owner.UsesMachines) > 0 && !owner.UsesMachine(node.MachineSet) {
		return false
	}

	isCP := IsControlPlaneService(candidate.Name, s.markers)
	if node.IsControlPlane {
		if !isCP {
			msAllows := false
			if ms, ok := s.machineSet(node.MachineSet); ok {
				msAllows = ms.AllowWorkloadScheduling
			}
			if !node.AllowWorkloadScheduling && !msAllows {
				return false
			}
		}
	} else if owner.RequireControlPlane {
		return false
	}

	if len(node.OnlyFor) > 0 && !containsString(node.OnlyFor, owner.Name) {
		schedulableCP := IsControlPlaneMachineSet(node.MachineSet) && node.AllowWorkloadScheduling
		if !schedulableCP {
			return false
		}
	}

	if s.violatesAntiAffinity(node, candidate) {
		return false
	}

	requirement := TotalRequest(s.pendingBundle(node, candidate))
	current := TotalRequest(s.servicesOn(node))
	return CanSupport(requirement, current, node)
}

// pendingBundle is the candidate plus its co-runners that are not already
// on the node. Bundles are placed atomically, so capacity is checked for
// the whole group at once.
func (s *Scheduler) pendingBundle(node models.Node, candidate models.Service) []models.Service {
	owner, ok := s.ownerOf(candidate)
	if !ok {
		return []models.Service{candidate}
	}
	bundle := BundleFor(candidate.ID, owner, s.services)
	if bundle == nil {
		bundle = []models.Service{candidate}
	}
	pending := make([]models.Service, 0, len(bundle))
	for _, svc := range bundle {
		if !node.HasService(svc.ID) {
			pending = append(pending, svc)
		}
	}
	return pending
}

func (s *Scheduler) violatesAntiAffinity(node models.Node, candidate models.Service) bool {
	for _, placedID := range node.Services {
		for _, avoided := range candidate.Avoid {
			if avoided == placedID {
				return true
			}
		}
		placed, ok := s.services[placedID]
		if !ok {
			continue
		}
		for _, avoided := range placed.Avoid {
			if avoided == candidate.ID {
				return true
			}
		}
	}
	return false
}

func (s *Scheduler) servicesOn(node models.Node) []models.Service {
	out := make([]models.Service, 0, len(node.Services))
	for _, id := range node.Services {
		if svc, ok := s.services[id]; ok {
			out = append(out, svc)
		}
	}
	return out
}

// MachineSetForWorkload picks the MachineSet used when a new node must be
// created for the workload: a dedicated onlyFor match, then the first of
// usesMachines, then the first non-control-plane set, then the first set.
func (s *Scheduler) MachineSetForWorkload(w models.Workload) models.MachineSet {
	for _, ms := range s.machineSets {
		if ms.DedicatedTo(w.Name) {
			return ms
		}
	}
	for _, name := range w.UsesMachines {
		if ms, ok := s.machineSet(name); ok {
			return ms
		}
	}
	for _, ms := range s.machineSets {
		if !IsControlPlaneMachineSet(ms.Name) {
			return ms
		}
	}
	return s.machineSets[0]
}

// NewNode allocates a node from a MachineSet. Control-plane nodes get the
// default reservation unless the MachineSet sets an explicit one.
func (s *Scheduler) NewNode(ms models.MachineSet) models.Node {
	node := models.Node{
		ID:                      s.ids.NextNode(),
		MachineSet:              ms.Name,
		CPUUnits:                ms.CPU,
		Memory:                  ms.Memory,
		MaxDisks:                ms.NumberOfDisks,
		InstanceName:            ms.InstanceName,
		OnlyFor:                 ms.OnlyFor,
		IsControlPlane:          IsControlPlaneMachineSet(ms.Name),
		AllowWorkloadScheduling: ms.AllowWorkloadScheduling,
	}
	if node.IsControlPlane {
		if ms.ControlPlaneReserved != nil {
			node.ControlPlaneReserved = *ms.ControlPlaneReserved
		} else {
			node.ControlPlaneReserved = defaultControlPlaneReserved
		}
	}
	return node
}

// AddServiceToZone places a bundle on one of the zone's nodes, preferring
// the feasible node with the least memory already requested (ties go to
// input order). When no existing node fits, a new node is created from the
// workload's MachineSet and appended to the zone.
func (s *Scheduler) AddServiceToZone(zone *models.Zone, nodes []models.Node, bundle []models.Service) ([]models.Node, error) {
	if len(bundle) == 0 {
		return nodes, nil
	}
	owner, ok := s.ownerOf(bundle[0])
	if !ok {
		return nodes, internalf("no workload owns service %d (%s)", bundle[0].ID, bundle[0].Name)
	}

	best := -1
	bestMemory := 0.0
	for i := range nodes {
		if !zone.HasNode(nodes[i].ID) {
			continue
		}
		if !s.nodeFitsBundle(nodes[i], bundle) {
			continue
		}
		used := TotalRequest(s.servicesOn(nodes[i])).Memory
		if best == -1 || used < bestMemory {
			best = i
			bestMemory = used
		}
	}

	if best >= 0 {
		for _, svc := range bundle {
			nodes[best].Services = append(nodes[best].Services, svc.ID)
		}
		return nodes, nil
	}

	node := s.NewNode(s.MachineSetForWorkload(owner))
	for _, svc := range bundle {
		node.Services = append(node.Services, svc.ID)
	}
	zone.Nodes = append(zone.Nodes, node.ID)
	return append(nodes, node), nil
}

// nodeFitsBundle checks every bundle member against the node.
func (s *Scheduler) nodeFitsBundle(node models.Node, bundle []models.Service) bool {
	for _, svc := range bundle {
		if !s.CanNodeAddService(node, svc) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
