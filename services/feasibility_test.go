// ABOUTME: Tests for workload feasibility analysis
// ABOUTME: Validates candidate selection order and NotSchedulable errors

package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/ronenav/sizer/models"
)

func TestAnalyzeWorkload_UsesMachinesRestricts(t *testing.T) {
	byID := serviceMap(models.Service{ID: 0, Name: "api", RequiredCPU: 2, RequiredMemory: 4, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "app", Services: []int{0}, UsesMachines: []string{"big"}}
	machineSets := []models.MachineSet{
		{Name: "small", CPU: 8, Memory: 32},
		{Name: "big", CPU: 32, Memory: 128},
	}

	candidates, err := AnalyzeWorkload(w, byID, machineSets)
	if err != nil {
		t.Fatalf("Expected workload to be schedulable, got %v", err)
	}
	if len(candidates) != 1 || candidates[0].Name != "big" {
		t.Errorf("Expected only the pinned machine set, got %v", candidates)
	}
}

func TestAnalyzeWorkload_DedicatedMachineSetWins(t *testing.T) {
	byID := serviceMap(models.Service{ID: 0, Name: "osd", RequiredCPU: 2, RequiredMemory: 4, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "storage", Services: []int{0}}
	machineSets := []models.MachineSet{
		{Name: "generic", CPU: 16, Memory: 64},
		{Name: "storage-nodes", CPU: 16, Memory: 64, OnlyFor: []string{"storage"}},
	}

	candidates, err := AnalyzeWorkload(w, byID, machineSets)
	if err != nil {
		t.Fatalf("Expected workload to be schedulable, got %v", err)
	}
	if len(candidates) != 1 || candidates[0].Name != "storage-nodes" {
		t.Errorf("Expected the dedicated machine set, got %v", candidates)
	}
}

func TestAnalyzeWorkload_ExcludesControlPlane(t *testing.T) {
	byID := serviceMap(models.Service{ID: 0, Name: "api", RequiredCPU: 2, RequiredMemory: 4, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "app", Services: []int{0}}
	machineSets := []models.MachineSet{
		{Name: "controlPlane", CPU: 16, Memory: 64},
		{Name: "worker", CPU: 16, Memory: 64},
	}

	candidates, err := AnalyzeWorkload(w, byID, machineSets)
	if err != nil {
		t.Fatalf("Expected workload to be schedulable, got %v", err)
	}
	for _, ms := range candidates {
		if ms.Name == "controlPlane" {
			t.Error("Expected control plane machine set to be excluded")
		}
	}
}

func TestAnalyzeWorkload_SchedulableControlPlaneIncluded(t *testing.T) {
	byID := serviceMap(models.Service{ID: 0, Name: "api", RequiredCPU: 2, RequiredMemory: 4, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "app", Services: []int{0}}
	machineSets := []models.MachineSet{
		{Name: "controlPlane", CPU: 16, Memory: 64, AllowWorkloadScheduling: true},
	}

	candidates, err := AnalyzeWorkload(w, byID, machineSets)
	if err != nil {
		t.Fatalf("Expected workload to be schedulable, got %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("Expected schedulable control plane to be retained, got %v", candidates)
	}
}

func TestAnalyzeWorkload_CPUUnschedulable(t *testing.T) {
	// 100 cpu against a 32-core worker.
	byID := serviceMap(models.Service{ID: 0, Name: "hungry", RequiredCPU: 100, RequiredMemory: 20, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "app", Services: []int{0}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 32, Memory: 64, NumberOfDisks: 4}}

	_, err := AnalyzeWorkload(w, byID, machineSets)

	var notSched *NotSchedulableError
	if !errors.As(err, &notSched) {
		t.Fatalf("Expected NotSchedulableError, got %v", err)
	}
	if !strings.Contains(notSched.Constraint, "cpu") {
		t.Errorf("Expected cpu constraint, got %q", notSched.Constraint)
	}
	if notSched.MachineSet != "worker" {
		t.Errorf("Expected target machine set worker, got %q", notSched.MachineSet)
	}
	// ceil((100 + 0.15) / 2) * 2 = 102
	if notSched.MinCPU != 102 {
		t.Errorf("Expected minimum viable cpu 102, got %d", notSched.MinCPU)
	}
}

func TestAnalyzeWorkload_MemoryUnschedulable(t *testing.T) {
	// 200 GB against a 64 GB worker.
	byID := serviceMap(models.Service{ID: 0, Name: "hungry", RequiredCPU: 10, RequiredMemory: 200, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "app", Services: []int{0}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 32, Memory: 64, NumberOfDisks: 4}}

	_, err := AnalyzeWorkload(w, byID, machineSets)

	var notSched *NotSchedulableError
	if !errors.As(err, &notSched) {
		t.Fatalf("Expected NotSchedulableError, got %v", err)
	}
	if !strings.Contains(notSched.Constraint, "memory") {
		t.Errorf("Expected memory constraint, got %q", notSched.Constraint)
	}
	if !strings.Contains(notSched.Error(), "memory") {
		t.Errorf("Expected memory cue in error message, got %q", notSched.Error())
	}
	// ceil((200 + 5.48) / 4) * 4 = 208
	if notSched.MinMemory != 208 {
		t.Errorf("Expected minimum viable memory 208, got %d", notSched.MinMemory)
	}
}

func TestAnalyzeWorkload_MinViableSizeIsCapped(t *testing.T) {
	byID := serviceMap(models.Service{ID: 0, Name: "huge", RequiredCPU: 900, RequiredMemory: 4000, OwnerReference: 0})
	w := models.Workload{ID: 0, Name: "app", Services: []int{0}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 32, Memory: 64}}

	_, err := AnalyzeWorkload(w, byID, machineSets)

	var notSched *NotSchedulableError
	if !errors.As(err, &notSched) {
		t.Fatalf("Expected NotSchedulableError, got %v", err)
	}
	if notSched.MinCPU != 200 {
		t.Errorf("Expected cpu hint capped at 200, got %d", notSched.MinCPU)
	}
	if notSched.MinMemory != 512 {
		t.Errorf("Expected memory hint capped at 512, got %d", notSched.MinMemory)
	}
}

func TestAnalyzeWorkload_BundleMustFitOneNode(t *testing.T) {
	// Two 6-cpu services co-placed: 12 cpu + kubelet never fits an 8-core
	// node even though each service alone would.
	byID := serviceMap(
		models.Service{ID: 0, Name: "a", RequiredCPU: 6, RequiredMemory: 4, RunsWith: []int{1}, OwnerReference: 0},
		models.Service{ID: 1, Name: "b", RequiredCPU: 6, RequiredMemory: 4, RunsWith: []int{0}, OwnerReference: 0},
	)
	w := models.Workload{ID: 0, Name: "app", Services: []int{0, 1}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 8, Memory: 32}}

	_, err := AnalyzeWorkload(w, byID, machineSets)

	var notSched *NotSchedulableError
	if !errors.As(err, &notSched) {
		t.Fatalf("Expected NotSchedulableError for oversized bundle, got %v", err)
	}
}

func TestAnalyzeWorkload_DiskConstraint(t *testing.T) {
	byID := serviceMap(
		models.Service{ID: 0, Name: "Ceph_OSD-0", RequiredCPU: 1, RequiredMemory: 2, RunsWith: []int{1}, OwnerReference: 0},
		models.Service{ID: 1, Name: "Ceph_OSD-1", RequiredCPU: 1, RequiredMemory: 2, RunsWith: []int{0}, OwnerReference: 0},
	)
	w := models.Workload{ID: 0, Name: "storage", Services: []int{0, 1}}
	machineSets := []models.MachineSet{{Name: "worker", CPU: 16, Memory: 64, NumberOfDisks: 1}}

	_, err := AnalyzeWorkload(w, byID, machineSets)

	var notSched *NotSchedulableError
	if !errors.As(err, &notSched) {
		t.Fatalf("Expected NotSchedulableError, got %v", err)
	}
	if !strings.Contains(notSched.Constraint, "disk") {
		t.Errorf("Expected disk constraint, got %q", notSched.Constraint)
	}
}
