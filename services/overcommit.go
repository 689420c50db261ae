// ABOUTME: Over-commit metrics per node and cluster-wide
// ABOUTME: Requests are summed as-is; limits may become {min,max} ranges

package services

import "github.com/ronenav/sizer/models"

// limitBounds returns a service's effective limit bounds. The min bound
// defaults to the limit, which defaults to the request; same for max.
func limitBounds(svc models.Service) (cpuMin, cpuMax, memMin, memMax float64) {
	cpuBase := svc.RequiredCPU
	if svc.LimitCPU != nil {
		cpuBase = *svc.LimitCPU
	}
	memBase := svc.RequiredMemory
	if svc.LimitMemory != nil {
		memBase = *svc.LimitMemory
	}

	cpuMin, cpuMax = cpuBase, cpuBase
	if svc.MinLimitCPU != nil {
		cpuMin = *svc.MinLimitCPU
	}
	if svc.MaxLimitCPU != nil {
		cpuMax = *svc.MaxLimitCPU
	}
	memMin, memMax = memBase, memBase
	if svc.MinLimitMemory != nil {
		memMin = *svc.MinLimitMemory
	}
	if svc.MaxLimitMemory != nil {
		memMax = *svc.MaxLimitMemory
	}
	return cpuMin, cpuMax, memMin, memMax
}

// NodeUsageReport computes the over-commit block for one node. Limit
// outputs are ranges as soon as any placed service declares dynamic-limit
// bounds, scalars otherwise.
func NodeUsageReport(node models.Node, byID map[int]models.Service) models.NodeUsage {
	var reqCPU, reqMem float64
	var cpuMin, cpuMax, memMin, memMax float64
	dynamic := false

	for _, id := range node.Services {
		svc, ok := byID[id]
		if !ok {
			continue
		}
		reqCPU += svc.RequiredCPU
		reqMem += svc.RequiredMemory
		if svc.HasDynamicLimits() {
			dynamic = true
		}
		cMin, cMax, mMin, mMax := limitBounds(svc)
		cpuMin += cMin
		cpuMax += cMax
		memMin += mMin
		memMax += mMax
	}
	disks := TotalRequest(servicesByIDs(node.Services, byID)).Disks

	limitCPU := capacityValue(cpuMin, cpuMax, dynamic)
	limitMem := capacityValue(memMin, memMax, dynamic)

	alloc := Allocatable(node.CPUUnits, node.Memory)
	cpuRatio := limitCPU.Scale(1 / alloc.CPU)
	memRatio := limitMem.Scale(1 / alloc.Memory)

	return models.NodeUsage{
		RequestedCPU:    reqCPU,
		RequestedMemory: reqMem,
		LimitCPU:        limitCPU,
		LimitMemory:     limitMem,
		CPURatio:        cpuRatio,
		MemoryRatio:     memRatio,
		DisksUsed:       disks,
		RiskLevel:       riskOf(cpuRatio, memRatio),
	}
}

// ClusterUsageReport computes cluster-wide over-commit metrics. Each
// service is weighted by its placement count: the number of times its id
// appears across all node service lists.
func ClusterUsageReport(nodes []models.Node, services []models.Service) models.ClusterUsage {
	placements := make(map[int]int)
	for _, node := range nodes {
		for _, id := range node.Services {
			placements[id]++
		}
	}

	var reqCPU, reqMem float64
	var cpuMin, cpuMax, memMin, memMax float64
	dynamic := false
	for _, svc := range services {
		count := float64(placements[svc.ID])
		if count == 0 {
			continue
		}
		reqCPU += svc.RequiredCPU * count
		reqMem += svc.RequiredMemory * count
		if svc.HasDynamicLimits() {
			dynamic = true
		}
		cMin, cMax, mMin, mMax := limitBounds(svc)
		cpuMin += cMin * count
		cpuMax += cMax * count
		memMin += mMin * count
		memMax += mMax * count
	}

	var allocCPU, allocMem float64
	for _, node := range nodes {
		alloc := Allocatable(node.CPUUnits, node.Memory)
		allocCPU += alloc.CPU
		allocMem += alloc.Memory
	}

	limitCPU := capacityValue(cpuMin, cpuMax, dynamic)
	limitMem := capacityValue(memMin, memMax, dynamic)

	usage := models.ClusterUsage{
		AllocatableCPU:    allocCPU,
		AllocatableMemory: allocMem,
		RequestedCPU:      reqCPU,
		RequestedMemory:   reqMem,
		LimitCPU:          limitCPU,
		LimitMemory:       limitMem,
	}
	if allocCPU > 0 && allocMem > 0 {
		usage.CPURatio = limitCPU.Scale(1 / allocCPU)
		usage.MemoryRatio = limitMem.Scale(1 / allocMem)
		usage.RiskLevel = riskOf(usage.CPURatio, usage.MemoryRatio)
	} else {
		usage.RiskLevel = models.RiskNone
	}
	return usage
}

func capacityValue(min, max float64, dynamic bool) models.CapacityValue {
	if dynamic {
		return models.Range(min, max)
	}
	return models.Scalar(max)
}

func riskOf(cpuRatio, memRatio models.CapacityValue) models.RiskLevel {
	worst := cpuRatio.Worst()
	if memRatio.Worst() > worst {
		worst = memRatio.Worst()
	}
	return models.RiskForRatio(worst)
}

func servicesByIDs(ids []int, byID map[int]models.Service) []models.Service {
	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		if svc, ok := byID[id]; ok {
			out = append(out, svc)
		}
	}
	return out
}
