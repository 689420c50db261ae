// ABOUTME: Workload scheduler: places each co-placement bundle across zones
// ABOUTME: Deterministic greedy walk in service input order

package services

import "github.com/ronenav/sizer/models"

// ScheduleWorkload places an entire workload. Zones and nodes are taken as
// values and returned updated; callers thread the latest state through
// successive workload calls.
func (s *Scheduler) ScheduleWorkload(w models.Workload, zones []models.Zone, nodes []models.Node) ([]models.Zone, []models.Node, error) {
	maxZones := 1
	for _, id := range w.Services {
		if svc, ok := s.services[id]; ok && svc.Zones > maxZones {
			maxZones = svc.Zones
		}
	}
	zones = s.EnsureZones(zones, maxZones)

	placed := make(map[int]bool, len(w.Services))
	for _, id := range w.Services {
		if placed[id] {
			continue
		}
		svc, ok := s.services[id]
		if !ok {
			return zones, nodes, internalf("workload %q references unknown service %d", w.Name, id)
		}

		bundle := BundleFor(svc.ID, w, s.services)
		if bundle == nil {
			bundle = []models.Service{svc}
		}
		replicas := BundleZones(bundle)

		used := make(map[int]bool, replicas)
		for r := 0; r < replicas; r++ {
			zi := s.pickZone(zones, nodes, bundle, used)
			used[zones[zi].ID] = true

			var err error
			nodes, err = s.AddServiceToZone(&zones[zi], nodes, bundle)
			if err != nil {
				return zones, nodes, err
			}
		}

		for _, member := range bundle {
			placed[member.ID] = true
		}
	}

	return zones, nodes, nil
}

// pickZone selects the zone index for the next bundle replica. Preference
// order: the best-ranked zone not yet used by this bundle; any unused zone
// (a new node will be created there); and when zone supply is exhausted,
// the used-set is reset and the zone with the highest id wins. The last
// step keeps placement moving when replicas outnumber zones, at the cost
// of the distinct-zone guarantee.
func (s *Scheduler) pickZone(zones []models.Zone, nodes []models.Node, bundle []models.Service, used map[int]bool) int {
	var unused []models.Zone
	for _, zone := range zones {
		if !used[zone.ID] {
			unused = append(unused, zone)
		}
	}

	if ranked := s.SortBestZones(unused, nodes, bundle); len(ranked) > 0 {
		return zoneIndex(zones, ranked[0].ID)
	}
	if len(unused) > 0 {
		return zoneIndex(zones, unused[0].ID)
	}

	for id := range used {
		delete(used, id)
	}
	highest := 0
	for i := range zones {
		if zones[i].ID > zones[highest].ID {
			highest = i
		}
	}
	return highest
}

func zoneIndex(zones []models.Zone, id int) int {
	for i := range zones {
		if zones[i].ID == id {
			return i
		}
	}
	return 0
}
