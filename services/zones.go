// ABOUTME: Zone allocation and ranking for bundle placement
// ABOUTME: Zones are ranked by how many of their nodes could host a bundle

package services

import (
	"sort"

	"github.com/ronenav/sizer/models"
)

// RequiredZones returns how many zones are missing to satisfy a demand of
// zoneCount distinct zones.
func RequiredZones(zoneCount int, zones []models.Zone) int {
	missing := zoneCount - len(zones)
	if missing < 0 {
		return 0
	}
	return missing
}

// EnsureZones appends empty zones until at least zoneCount exist. New zone
// ids increase monotonically within the run.
func (s *Scheduler) EnsureZones(zones []models.Zone, zoneCount int) []models.Zone {
	missing := RequiredZones(zoneCount, zones)
	for i := 0; i < missing; i++ {
		zones = append(zones, models.Zone{ID: s.ids.NextZone()})
	}
	return zones
}

// SortBestZones ranks zones by the number of nodes that could host the
// bundle, descending, ties broken by zone id descending. Zones with no
// capable node are dropped; placement in such a zone would always create
// a new node.
func (s *Scheduler) SortBestZones(zones []models.Zone, nodes []models.Node, bundle []models.Service) []models.Zone {
	type scored struct {
		zone    models.Zone
		capable int
	}

	var ranked []scored
	for _, zone := range zones {
		capable := 0
		for i := range nodes {
			if zone.HasNode(nodes[i].ID) && s.nodeFitsBundle(nodes[i], bundle) {
				capable++
			}
		}
		if capable > 0 {
			ranked = append(ranked, scored{zone: zone, capable: capable})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].capable != ranked[j].capable {
			return ranked[i].capable > ranked[j].capable
		}
		return ranked[i].zone.ID > ranked[j].zone.ID
	})

	out := make([]models.Zone, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.zone)
	}
	return out
}
