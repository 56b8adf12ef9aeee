package main

import (
	"github.com/spf13/cobra"

	"github.com/leap-analytics/gymscope/internal/filter"
	"github.com/leap-analytics/gymscope/internal/model"
)

// Shared filter flags for the export and summary commands. Defaults match
// the dashboard sidebar: all tiers, no floors, water exclusion on.
var (
	flagTiers         []string
	flagMinPopulation int
	flagMaxDistance   float64
	flagIncludeWater  bool
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagTiers, "tiers", nil, "opportunity tiers to keep (default all)")
	cmd.Flags().IntVar(&flagMinPopulation, "min-population", 0, "minimum total population")
	cmd.Flags().Float64Var(&flagMaxDistance, "max-distance", 0, "maximum nearest-gym distance in miles (default observed max)")
	cmd.Flags().BoolVar(&flagIncludeWater, "include-water", false, "keep the water-overlapping block groups")
}

// filterStateFromFlags resolves flag values against the loaded dataset.
func filterStateFromFlags(records []model.BlockGroup) model.FilterState {
	state := filter.Defaults(records)
	if len(flagTiers) > 0 {
		state.Tiers = flagTiers
	}
	if flagMinPopulation > 0 {
		state.MinPopulation = flagMinPopulation
	}
	if flagMaxDistance > 0 {
		state.MaxDistanceMiles = flagMaxDistance
	}
	state.ExcludeWaterBlocks = !flagIncludeWater
	return state
}
