// Package filter reduces the full mart dataset to the rows matching the
// sidebar selections. Filtering is stable and purely functional: input order
// is preserved and the source slice is never mutated.
package filter

import (
	"math"

	"github.com/leap-analytics/gymscope/internal/model"
)

// WaterOverlapBlockGroups are census block groups whose geometry extends far
// into the bay/ocean, producing misleadingly large polygons on the map. They
// were identified by abnormally large area and are excluded by default.
var WaterOverlapBlockGroups = []string{"060750179021", "060750601001"}

func isWaterOverlap(id string) bool {
	for _, w := range WaterOverlapBlockGroups {
		if w == id {
			return true
		}
	}
	return false
}

// Apply keeps a record iff all filter conditions hold: tier in the selected
// set, population >= floor, nearest-gym distance <= ceiling, and (when
// exclusion is on) not in the water-overlap list.
func Apply(records []model.BlockGroup, f model.FilterState) []model.BlockGroup {
	out := make([]model.BlockGroup, 0, len(records))
	for _, r := range records {
		if !f.HasTier(r.OpportunityTier) {
			continue
		}
		if r.TotalPopulation < f.MinPopulation {
			continue
		}
		if r.DistanceToNearestGymMiles > f.MaxDistanceMiles {
			continue
		}
		if f.ExcludeWaterBlocks && isWaterOverlap(r.CensusBlockGroup) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Defaults derives the default filter state from the full dataset: all
// observed tiers, no population floor, distance ceiling at the observed
// maximum, water exclusion on.
func Defaults(records []model.BlockGroup) model.FilterState {
	return model.FilterState{
		Tiers:              Tiers(records),
		MinPopulation:      0,
		MaxDistanceMiles:   MaxDistance(records),
		ExcludeWaterBlocks: true,
	}
}

// Tiers returns the distinct opportunity tiers in first-seen order. The mart
// is ordered by opportunity score descending, so higher tiers list first.
func Tiers(records []model.BlockGroup) []string {
	seen := make(map[string]bool)
	var tiers []string
	for _, r := range records {
		if !seen[r.OpportunityTier] {
			seen[r.OpportunityTier] = true
			tiers = append(tiers, r.OpportunityTier)
		}
	}
	return tiers
}

// MaxDistance returns the largest nearest-gym distance in miles, rounded up
// to a tenth so the slider ceiling never clips the observed maximum.
func MaxDistance(records []model.BlockGroup) float64 {
	var max float64
	for _, r := range records {
		if r.DistanceToNearestGymMiles > max {
			max = r.DistanceToNearestGymMiles
		}
	}
	return math.Ceil(max*10) / 10
}

// MaxPopulation returns the largest total population, used as the population
// slider ceiling.
func MaxPopulation(records []model.BlockGroup) int {
	var max int
	for _, r := range records {
		if r.TotalPopulation > max {
			max = r.TotalPopulation
		}
	}
	return max
}
