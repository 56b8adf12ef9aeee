package model

// FilterState holds the sidebar filter selections for one render cycle. It is
// rebuilt from user input on every interaction and never persisted.
type FilterState struct {
	// Tiers is the selected subset of opportunity tiers. A record is kept
	// only if its tier is in this set.
	Tiers []string `json:"tiers"`

	// MinPopulation keeps records with total population >= this floor.
	MinPopulation int `json:"min_population"`

	// MaxDistanceMiles keeps records whose nearest-gym distance in miles is
	// <= this ceiling.
	MaxDistanceMiles float64 `json:"max_distance_miles"`

	// ExcludeWaterBlocks drops the fixed set of block groups whose geometry
	// extends into the bay/ocean. On by default.
	ExcludeWaterBlocks bool `json:"exclude_water_blocks"`
}

// HasTier reports whether tier is in the selected tier set.
func (f FilterState) HasTier(tier string) bool {
	for _, t := range f.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}
