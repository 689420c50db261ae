// ABOUTME: Tests for the per-workload scheduler
// ABOUTME: Asserts distinct-zone replication and bundle atomicity

package services

import (
	"testing"

	"github.com/ronenav/sizer/models"
)

func TestScheduleWorkload_SingleService(t *testing.T) {
	services := []models.Service{{ID: 0, Name: "api", RequiredCPU: 2, RequiredMemory: 4, Zones: 1, OwnerReference: 0}}
	workloads := []models.Workload{{ID: 0, Name: "app", Services: []int{0}}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 32}}
	s := newTestScheduler(services, workloads, machineSets)

	zones, nodes, err := s.ScheduleWorkload(workloads[0], nil, nil)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}

	if len(zones) != 1 {
		t.Errorf("Expected 1 zone, got %d", len(zones))
	}
	if len(nodes) != 1 {
		t.Errorf("Expected 1 node, got %d", len(nodes))
	}
	if !nodes[0].HasService(0) {
		t.Error("Expected the service placed on the node")
	}
}

func TestScheduleWorkload_ReplicatesAcrossDistinctZones(t *testing.T) {
	services := []models.Service{{ID: 0, Name: "api", RequiredCPU: 2, RequiredMemory: 4, Zones: 3, OwnerReference: 0}}
	workloads := []models.Workload{{ID: 0, Name: "app", Services: []int{0}}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 32}}
	s := newTestScheduler(services, workloads, machineSets)

	zones, nodes, err := s.ScheduleWorkload(workloads[0], nil, nil)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}

	if len(zones) != 3 {
		t.Fatalf("Expected 3 zones, got %d", len(zones))
	}
	placedZones := make(map[int]bool)
	for _, zone := range zones {
		for _, nodeID := range zone.Nodes {
			for _, node := range nodes {
				if node.ID == nodeID && node.HasService(0) {
					if placedZones[zone.ID] {
						t.Errorf("Service placed twice in zone %d", zone.ID)
					}
					placedZones[zone.ID] = true
				}
			}
		}
	}
	if len(placedZones) != 3 {
		t.Errorf("Expected the service in 3 distinct zones, got %d", len(placedZones))
	}
}

func TestScheduleWorkload_BundleStaysTogether(t *testing.T) {
	services := []models.Service{
		{ID: 0, Name: "db", RequiredCPU: 2, RequiredMemory: 4, Zones: 2, RunsWith: []int{1}, OwnerReference: 0},
		{ID: 1, Name: "sidecar", RequiredCPU: 1, RequiredMemory: 1, Zones: 1, RunsWith: []int{0}, OwnerReference: 0},
	}
	workloads := []models.Workload{{ID: 0, Name: "app", Services: []int{0, 1}}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 32}}
	s := newTestScheduler(services, workloads, machineSets)

	zones, nodes, err := s.ScheduleWorkload(workloads[0], nil, nil)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}

	// The bundle's zone demand is max(2, 1) = 2 replicas, each complete.
	if len(zones) != 2 {
		t.Errorf("Expected 2 zones, got %d", len(zones))
	}
	together := 0
	for _, node := range nodes {
		hasDB, hasSidecar := node.HasService(0), node.HasService(1)
		if hasDB != hasSidecar {
			t.Errorf("Bundle split on node %d", node.ID)
		}
		if hasDB && hasSidecar {
			together++
		}
	}
	if together != 2 {
		t.Errorf("Expected 2 complete bundle replicas, got %d", together)
	}
}

func TestScheduleWorkload_AntiAffinityForcesSecondNode(t *testing.T) {
	services := []models.Service{
		{ID: 0, Name: "a", RequiredCPU: 2, RequiredMemory: 4, Zones: 1, Avoid: []int{1}, OwnerReference: 0},
		{ID: 1, Name: "b", RequiredCPU: 2, RequiredMemory: 4, Zones: 1, OwnerReference: 0},
	}
	workloads := []models.Workload{{ID: 0, Name: "app", Services: []int{0, 1}}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 16}}
	s := newTestScheduler(services, workloads, machineSets)

	zones, nodes, err := s.ScheduleWorkload(workloads[0], nil, nil)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}

	if len(zones) != 1 {
		t.Errorf("Expected a single zone, got %d", len(zones))
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(nodes))
	}
	for _, node := range nodes {
		if node.HasService(0) && node.HasService(1) {
			t.Error("Anti-affine services share a node")
		}
	}
}

func TestScheduleWorkload_FillsExistingNodesFirst(t *testing.T) {
	// Two small services with a single zone: the second lands on the
	// first's node instead of allocating a new one.
	services := []models.Service{
		{ID: 0, Name: "a", RequiredCPU: 1, RequiredMemory: 2, Zones: 1, OwnerReference: 0},
		{ID: 1, Name: "b", RequiredCPU: 1, RequiredMemory: 2, Zones: 1, OwnerReference: 0},
	}
	workloads := []models.Workload{{ID: 0, Name: "app", Services: []int{0, 1}}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 32}}
	s := newTestScheduler(services, workloads, machineSets)

	_, nodes, err := s.ScheduleWorkload(workloads[0], nil, nil)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}

	if len(nodes) != 1 {
		t.Errorf("Expected both services packed on 1 node, got %d", len(nodes))
	}
}

func TestScheduleWorkload_ReusesExistingZones(t *testing.T) {
	services := []models.Service{
		{ID: 0, Name: "a", RequiredCPU: 1, RequiredMemory: 2, Zones: 2, OwnerReference: 0},
		{ID: 1, Name: "b", RequiredCPU: 1, RequiredMemory: 2, Zones: 2, OwnerReference: 1},
	}
	workloads := []models.Workload{
		{ID: 0, Name: "first", Services: []int{0}},
		{ID: 1, Name: "second", Services: []int{1}},
	}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 32}}
	s := newTestScheduler(services, workloads, machineSets)

	zones, nodes, err := s.ScheduleWorkload(workloads[0], nil, nil)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}
	zones, nodes, err = s.ScheduleWorkload(workloads[1], zones, nodes)
	if err != nil {
		t.Fatalf("Expected scheduling to succeed, got %v", err)
	}

	if len(zones) != 2 {
		t.Errorf("Expected zones to be reused across workloads, got %d", len(zones))
	}
	if len(nodes) != 2 {
		t.Errorf("Expected both workloads packed on the 2 existing nodes, got %d", len(nodes))
	}
}
