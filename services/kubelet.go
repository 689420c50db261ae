// ABOUTME: Kubelet resource reservations as a pure function of node size
// ABOUTME: Tiered schedule following the Kubernetes managed-node defaults

package services

import "github.com/ronenav/sizer/models"

// cpu reservation tiers: 6% of the first core, 1% of the second, 0.5% of
// the next two, 0.25% of everything above four.
var cpuTiers = []struct {
	cores float64
	rate  float64
}{
	{1, 0.06},
	{1, 0.01},
	{2, 0.005},
}

const cpuTailRate = 0.0025

// memory reservation tiers: 25% of the first 4 GB, 20% of the next 4 GB,
// 10% of the next 8 GB, 6% of the next 112 GB, 2% above 128 GB. Nodes of
// 1 GB or less reserve a flat 0.25 GB.
var memoryTiers = []struct {
	gb   float64
	rate float64
}{
	{4, 0.25},
	{4, 0.20},
	{8, 0.10},
	{112, 0.06},
}

const (
	memoryTailRate    = 0.02
	smallNodeMemoryGB = 0.25
)

// KubeletOverhead returns the cpu cores and memory GB the kubelet reserves
// on a node of the given capacity. Allocatable is capacity minus this.
func KubeletOverhead(cpuUnits, memoryGB int) models.ResourceSpec {
	return models.ResourceSpec{
		CPU:    reservedCPU(float64(cpuUnits)),
		Memory: reservedMemory(float64(memoryGB)),
	}
}

// Allocatable returns node capacity minus kubelet overhead.
func Allocatable(cpuUnits, memoryGB int) models.ResourceSpec {
	overhead := KubeletOverhead(cpuUnits, memoryGB)
	return models.ResourceSpec{
		CPU:    float64(cpuUnits) - overhead.CPU,
		Memory: float64(memoryGB) - overhead.Memory,
	}
}

func reservedCPU(cores float64) float64 {
	reserved := 0.0
	remaining := cores
	for _, tier := range cpuTiers {
		if remaining <= 0 {
			break
		}
		step := tier.cores
		if remaining < step {
			step = remaining
		}
		reserved += step * tier.rate
		remaining -= step
	}
	if remaining > 0 {
		reserved += remaining * cpuTailRate
	}
	return reserved
}

func reservedMemory(gb float64) float64 {
	if gb <= 1 {
		return smallNodeMemoryGB
	}
	reserved := 0.0
	remaining := gb
	for _, tier := range memoryTiers {
		if remaining <= 0 {
			break
		}
		step := tier.gb
		if remaining < step {
			step = remaining
		}
		reserved += step * tier.rate
		remaining -= step
	}
	if remaining > 0 {
		reserved += remaining * memoryTailRate
	}
	return reserved
}
