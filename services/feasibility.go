// ABOUTME: Workload-to-MachineSet feasibility analysis
// ABOUTME: Filters candidates per bundle and surfaces NotSchedulable errors

package services

import (
	"math"
	"sort"
	"strings"

	"github.com/ronenav/sizer/models"
)

// Upper bounds for the minimum-viable-size hint in NotSchedulable errors.
const (
	maxViableCPU    = 200
	maxViableMemory = 512
)

// AnalyzeWorkload determines which MachineSets could host the workload.
// A candidate is retained only if a single node of that shape fits every
// co-placement bundle of the workload. When no candidate survives, the
// returned error names the workload, the targeted MachineSet, and the
// smallest node shape that would fit the heaviest failing bundle.
func AnalyzeWorkload(w models.Workload, byID map[int]models.Service, machineSets []models.MachineSet) ([]models.MachineSet, error) {
	candidates := candidateMachineSets(w, machineSets)
	if len(candidates) == 0 {
		return nil, invalidInputf("workload %q matches no machine set", w.Name)
	}

	// Heaviest bundle first so an unschedulable workload fails fast.
	bundles := Bundles(w, byID)
	sort.SliceStable(bundles, func(i, j int) bool {
		ri, rj := TotalRequest(bundles[i]), TotalRequest(bundles[j])
		return ri.CPU+ri.Memory > rj.CPU+rj.Memory
	})

	var retained []models.MachineSet
	for _, ms := range candidates {
		if fitsAllBundles(ms, bundles) {
			retained = append(retained, ms)
		}
	}
	if len(retained) > 0 {
		return retained, nil
	}

	target := candidates[0]
	return nil, notSchedulable(w, target, bundles)
}

// candidateMachineSets applies the selection order: explicit usesMachines,
// then MachineSets dedicated to the workload, then all compatible sets
// excluding unschedulable control planes.
func candidateMachineSets(w models.Workload, machineSets []models.MachineSet) []models.MachineSet {
	if len(w.UsesMachines) > 0 {
		var out []models.MachineSet
		for _, ms := range machineSets {
			if w.UsesMachine(ms.Name) {
				out = append(out, ms)
			}
		}
		return out
	}

	var dedicated []models.MachineSet
	for _, ms := range machineSets {
		if ms.DedicatedTo(w.Name) {
			dedicated = append(dedicated, ms)
		}
	}
	if len(dedicated) > 0 {
		return dedicated
	}

	var out []models.MachineSet
	for _, ms := range machineSets {
		if len(ms.OnlyFor) > 0 && !ms.DedicatedTo(w.Name) {
			continue
		}
		if IsControlPlaneMachineSet(ms.Name) && !ms.AllowWorkloadScheduling {
			continue
		}
		out = append(out, ms)
	}
	return out
}

func fitsAllBundles(ms models.MachineSet, bundles [][]models.Service) bool {
	overhead := KubeletOverhead(ms.CPU, ms.Memory)
	for _, bundle := range bundles {
		req := TotalRequest(bundle)
		if req.CPU+overhead.CPU > float64(ms.CPU) {
			return false
		}
		if req.Memory+overhead.Memory > float64(ms.Memory) {
			return false
		}
		if req.Disks > ms.NumberOfDisks {
			return false
		}
	}
	return true
}

func notSchedulable(w models.Workload, target models.MachineSet, bundles [][]models.Service) error {
	overhead := KubeletOverhead(target.CPU, target.Memory)

	for _, bundle := range bundles {
		req := TotalRequest(bundle)
		var constraints []string
		if req.CPU+overhead.CPU > float64(target.CPU) {
			constraints = append(constraints, "cpu")
		}
		if req.Memory+overhead.Memory > float64(target.Memory) {
			constraints = append(constraints, "memory")
		}
		if req.Disks > target.NumberOfDisks {
			constraints = append(constraints, "disk")
		}
		if len(constraints) == 0 {
			continue
		}

		return &NotSchedulableError{
			Workload:   w.Name,
			MachineSet: target.Name,
			Constraint: strings.Join(constraints, ", "),
			MinCPU:     minViable(req.CPU+overhead.CPU, 2, maxViableCPU),
			MinMemory:  minViable(req.Memory+overhead.Memory, 4, maxViableMemory),
		}
	}

	// No bundle overflows the target individually, yet nothing was
	// retained: the candidate list itself is inconsistent.
	return internalf("workload %q: no machine set retained and no failing bundle found", w.Name)
}

// minViable rounds a demand up to the given step, capped.
func minViable(demand float64, step, limit int) int {
	size := int(math.Ceil(demand/float64(step))) * step
	if size > limit {
		return limit
	}
	return size
}
