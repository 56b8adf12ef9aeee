// Package warehouse reads the precomputed gym-accessibility mart. It issues
// exactly two read-only queries and never writes back; all scoring happens
// upstream in the transformation pipeline.
package warehouse

import (
	"context"

	"github.com/leap-analytics/gymscope/internal/model"
)

// Store is the injectable data-access interface for the dashboard. Both
// fetches return immutable snapshots; callers must not mutate the slices.
type Store interface {
	// FetchBlockGroupMetrics returns one record per census block group,
	// ordered by opportunity score descending.
	FetchBlockGroupMetrics(ctx context.Context) ([]model.BlockGroup, error)

	// FetchGymLocations returns the individual gym points with their
	// geography already decomposed into lat/lng scalars.
	FetchGymLocations(ctx context.Context) ([]model.GymLocation, error)

	Close() error
}

// blockGroupColumns is the mart contract, in projection order. Column names
// are compared after lower-casing, so the store's native casing is irrelevant.
var blockGroupColumns = []string{
	"census_block_group",
	"state",
	"county",
	"geometry",
	"total_population",
	"pop_age_18_54",
	"pct_prime_gym_age",
	"median_household_income",
	"employed_population",
	"demand_score",
	"is_high_demand_area",
	"gyms_within_1_mile",
	"gyms_within_half_mile",
	"distance_to_nearest_gym_meters",
	"distance_to_nearest_gym_miles",
	"accessibility_rating",
	"is_underserved",
	"opportunity_score",
	"opportunity_tier",
}

// gymColumns is the intermediate gyms table contract, in projection order.
var gymColumns = []string{
	"place_id",
	"display_name",
	"gym_type",
	"longitude",
	"latitude",
}
