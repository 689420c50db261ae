// ABOUTME: Co-placement grouping of a workload's services
// ABOUTME: Bundles are connected components of the runsWith graph

package services

import "github.com/ronenav/sizer/models"

// Bundles partitions a workload's services into co-placement bundles: the
// connected components of the symmetric closure of runsWith, restricted to
// the workload. Bundle order and member order follow the workload's
// service order, so results are deterministic.
func Bundles(w models.Workload, byID map[int]models.Service) [][]models.Service {
	parent := make(map[int]int, len(w.Services))
	inWorkload := make(map[int]bool, len(w.Services))
	for _, id := range w.Services {
		parent[id] = id
		inWorkload[id] = true
	}

	var find func(int) int
	find = func(id int) int {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for _, id := range w.Services {
		svc, ok := byID[id]
		if !ok {
			continue
		}
		for _, other := range svc.RunsWith {
			if inWorkload[other] {
				union(id, other)
			}
		}
	}

	groups := make(map[int][]models.Service)
	var roots []int
	for _, id := range w.Services {
		root := find(id)
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], byID[id])
	}

	bundles := make([][]models.Service, 0, len(roots))
	for _, root := range roots {
		bundles = append(bundles, groups[root])
	}
	return bundles
}

// BundleFor returns the bundle containing the given service id.
func BundleFor(id int, w models.Workload, byID map[int]models.Service) []models.Service {
	for _, bundle := range Bundles(w, byID) {
		for _, svc := range bundle {
			if svc.ID == id {
				return bundle
			}
		}
	}
	return nil
}

// BundleZones returns the zone replication demand of a bundle: the largest
// zones value among its members, at least 1.
func BundleZones(bundle []models.Service) int {
	zones := 1
	for _, svc := range bundle {
		if svc.Zones > zones {
			zones = svc.Zones
		}
	}
	return zones
}
