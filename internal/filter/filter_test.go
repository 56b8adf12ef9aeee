package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leap-analytics/gymscope/internal/model"
)

func bg(id, tier string, pop int, dist float64) model.BlockGroup {
	return model.BlockGroup{
		CensusBlockGroup:          id,
		OpportunityTier:           tier,
		TotalPopulation:           pop,
		DistanceToNearestGymMiles: dist,
	}
}

func TestApply_AllConditionsMustHold(t *testing.T) {
	records := []model.BlockGroup{
		bg("060750101001", "High", 500, 0.3),
		bg("060750101002", "High", 1500, 0.8),
		bg("060750101003", "High", 0, 2.0),
	}
	f := model.FilterState{
		Tiers:            []string{"High"},
		MinPopulation:    100,
		MaxDistanceMiles: 1.0,
	}

	got := Apply(records, f)
	require.Len(t, got, 2)
	assert.Equal(t, "060750101001", got[0].CensusBlockGroup)
	assert.Equal(t, "060750101002", got[1].CensusBlockGroup)
}

func TestApply_TierMembership(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 100, 0.1),
		bg("b", "Medium", 100, 0.1),
		bg("c", "Low", 100, 0.1),
	}
	f := model.FilterState{Tiers: []string{"High", "Low"}, MaxDistanceMiles: 5}

	got := Apply(records, f)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].CensusBlockGroup)
	assert.Equal(t, "c", got[1].CensusBlockGroup)
}

func TestApply_BoundariesInclusive(t *testing.T) {
	records := []model.BlockGroup{
		bg("eq-pop", "High", 100, 0.5),
		bg("eq-dist", "High", 200, 1.0),
	}
	f := model.FilterState{Tiers: []string{"High"}, MinPopulation: 100, MaxDistanceMiles: 1.0}

	// Records sitting exactly on the floor or ceiling stay in.
	assert.Len(t, Apply(records, f), 2)
}

func TestApply_WaterOverlapExclusion(t *testing.T) {
	records := []model.BlockGroup{
		bg(WaterOverlapBlockGroups[0], "High", 1000, 0.5),
		bg(WaterOverlapBlockGroups[1], "High", 1000, 0.5),
		bg("060750102001", "High", 1000, 0.5),
	}
	f := model.FilterState{Tiers: []string{"High"}, MaxDistanceMiles: 5, ExcludeWaterBlocks: true}

	got := Apply(records, f)
	require.Len(t, got, 1)
	assert.Equal(t, "060750102001", got[0].CensusBlockGroup)

	f.ExcludeWaterBlocks = false
	assert.Len(t, Apply(records, f), 3)
}

func TestApply_TighteningNeverGrowsResult(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 500, 0.2),
		bg("b", "Medium", 1200, 0.6),
		bg("c", "Low", 80, 1.4),
		bg("d", "High", 2500, 0.9),
	}
	loose := model.FilterState{Tiers: []string{"High", "Medium", "Low"}, MaxDistanceMiles: 2}

	base := len(Apply(records, loose))
	for _, tight := range []model.FilterState{
		{Tiers: []string{"High"}, MaxDistanceMiles: 2},
		{Tiers: loose.Tiers, MinPopulation: 1000, MaxDistanceMiles: 2},
		{Tiers: loose.Tiers, MaxDistanceMiles: 0.5},
	} {
		assert.LessOrEqual(t, len(Apply(records, tight)), base)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 500, 0.2),
		bg("b", "Low", 80, 1.4),
	}
	Apply(records, model.FilterState{Tiers: []string{"High"}, MaxDistanceMiles: 2})

	assert.Equal(t, "a", records[0].CensusBlockGroup)
	assert.Equal(t, "b", records[1].CensusBlockGroup)
}

func TestDefaults(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 500, 0.83),
		bg("b", "Medium", 1200, 1.21),
		bg("c", "High", 80, 0.4),
	}

	d := Defaults(records)
	assert.Equal(t, []string{"High", "Medium"}, d.Tiers)
	assert.Equal(t, 0, d.MinPopulation)
	assert.InDelta(t, 1.3, d.MaxDistanceMiles, 1e-9)
	assert.True(t, d.ExcludeWaterBlocks)

	// Defaults keep every non-water record.
	assert.Len(t, Apply(records, d), 3)
}

func TestTiers_FirstSeenOrder(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 0, 0),
		bg("b", "High", 0, 0),
		bg("c", "Medium", 0, 0),
		bg("d", "Low", 0, 0),
		bg("e", "Medium", 0, 0),
	}
	assert.Equal(t, []string{"High", "Medium", "Low"}, Tiers(records))
}

func TestMaxDistance_RoundsUpToTenth(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 0, 0.51),
		bg("b", "High", 0, 1.402),
	}
	assert.InDelta(t, 1.5, MaxDistance(records), 1e-9)
	assert.Zero(t, MaxDistance(nil))
}

func TestMaxPopulation(t *testing.T) {
	records := []model.BlockGroup{
		bg("a", "High", 312, 0),
		bg("b", "High", 4100, 0),
	}
	assert.Equal(t, 4100, MaxPopulation(records))
	assert.Zero(t, MaxPopulation(nil))
}
