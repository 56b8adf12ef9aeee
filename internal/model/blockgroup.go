// Package model defines the typed records served by the dashboard: census
// block group accessibility metrics, gym locations, and the filter state.
package model

// BlockGroup is one row of the precomputed gym-accessibility mart, keyed by
// census block group. All scoring and distance computation happens upstream
// in the dbt pipeline; this type only carries the results.
type BlockGroup struct {
	CensusBlockGroup string `json:"census_block_group"`
	State            string `json:"state"`
	County           string `json:"county"`

	// Geometry is the block group boundary as GeoJSON text (Polygon or
	// MultiPolygon, longitude-first), exactly as returned by ST_AsGeoJSON.
	Geometry string `json:"geometry"`

	TotalPopulation       int     `json:"total_population"`
	PopAge18To54          int     `json:"pop_age_18_54"`
	PctPrimeGymAge        float64 `json:"pct_prime_gym_age"`
	MedianHouseholdIncome float64 `json:"median_household_income"`
	EmployedPopulation    int     `json:"employed_population"`

	DemandScore      float64 `json:"demand_score"`
	IsHighDemandArea bool    `json:"is_high_demand_area"`

	GymsWithin1Mile            int     `json:"gyms_within_1_mile"`
	GymsWithinHalfMile         int     `json:"gyms_within_half_mile"`
	DistanceToNearestGymMeters float64 `json:"distance_to_nearest_gym_meters"`
	DistanceToNearestGymMiles  float64 `json:"distance_to_nearest_gym_miles"`

	AccessibilityRating string  `json:"accessibility_rating"`
	IsUnderserved       bool    `json:"is_underserved"`
	OpportunityScore    float64 `json:"opportunity_score"`
	OpportunityTier     string  `json:"opportunity_tier"`
}

// Metric identifies a block group column the map can be colored by.
type Metric string

const (
	MetricOpportunityScore Metric = "opportunity_score"
	MetricGymsHalfMile     Metric = "gyms_within_half_mile"
	MetricDistanceMiles    Metric = "distance_to_nearest_gym_miles"
)

// Metrics lists the selectable map metrics in UI order.
var Metrics = []Metric{MetricOpportunityScore, MetricGymsHalfMile, MetricDistanceMiles}

// Valid reports whether m is one of the known map metrics.
func (m Metric) Valid() bool {
	switch m {
	case MetricOpportunityScore, MetricGymsHalfMile, MetricDistanceMiles:
		return true
	}
	return false
}

// DisplayName returns the human-readable label shown in the metric selector.
func (m Metric) DisplayName() string {
	switch m {
	case MetricGymsHalfMile:
		return "Gyms within 0.5 miles"
	case MetricDistanceMiles:
		return "Distance to Nearest Gym"
	default:
		return "Opportunity Score"
	}
}

// Value extracts the metric's value from a block group. Unknown metrics read
// as the opportunity score, matching the renderer's safe fallback.
func (m Metric) Value(bg BlockGroup) float64 {
	switch m {
	case MetricGymsHalfMile:
		return float64(bg.GymsWithinHalfMile)
	case MetricDistanceMiles:
		return bg.DistanceToNearestGymMiles
	default:
		return bg.OpportunityScore
	}
}
