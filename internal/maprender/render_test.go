package maprender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const squareGeoJSON = `{"type":"Polygon","coordinates":[[[-122.45,37.75],[-122.44,37.75],[-122.44,37.76],[-122.45,37.76],[-122.45,37.75]]]}`

const multiGeoJSON = `{"type":"MultiPolygon","coordinates":[` +
	`[[[-122.45,37.75],[-122.44,37.75],[-122.44,37.76],[-122.45,37.75]]],` +
	`[[[-122.40,37.70],[-122.39,37.70],[-122.39,37.71],[-122.40,37.70]]]]}`

func renderable(id string, score float64) model.BlockGroup {
	return model.BlockGroup{
		CensusBlockGroup: id,
		OpportunityTier:  "High",
		OpportunityScore: score,
		Geometry:         squareGeoJSON,
	}
}

func TestRender_Empty(t *testing.T) {
	a, err := Render(nil, model.MetricOpportunityScore, false, nil)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestRender_Basics(t *testing.T) {
	records := []model.BlockGroup{
		renderable("060750101001", 90),
		renderable("060750101002", 40),
	}

	a, err := Render(records, model.MetricOpportunityScore, false, nil)
	require.NoError(t, err)

	assert.Equal(t, [2]float64{37.7749, -122.4194}, a.Center)
	assert.Equal(t, 12, a.Zoom)
	assert.Equal(t, "CartoDB positron", a.Tiles)
	require.Len(t, a.Polygons, 2)

	p := a.Polygons[0]
	assert.Equal(t, "060750101001", p.BlockGroup)
	assert.Equal(t, "gray", p.BorderColor)
	assert.Equal(t, 1, p.Weight)
	assert.InDelta(t, 0.6, p.FillOpacity, 1e-9)
	assert.Equal(t, "CBG: 060750101001 | High", p.Tooltip)

	// Gym layer is listed but hidden when not requested.
	require.Len(t, a.Layers, 2)
	assert.Equal(t, LayerToggle{Name: "Census Block Groups", Visible: true}, a.Layers[0])
	assert.Equal(t, LayerToggle{Name: "Gym Locations", Visible: false}, a.Layers[1])
	assert.Empty(t, a.Gyms)
}

func TestRender_LatitudeFirstRing(t *testing.T) {
	a, err := Render([]model.BlockGroup{renderable("a", 50)}, model.MetricOpportunityScore, false, nil)
	require.NoError(t, err)
	require.Len(t, a.Polygons, 1)

	ring := a.Polygons[0].Ring
	require.Len(t, ring, 5)
	assert.Equal(t, [2]float64{37.75, -122.45}, ring[0])
}

func TestRender_MultiPolygonDrawsFirstShapeOnly(t *testing.T) {
	rec := renderable("a", 50)
	rec.Geometry = multiGeoJSON

	a, err := Render([]model.BlockGroup{rec}, model.MetricOpportunityScore, false, nil)
	require.NoError(t, err)
	require.Len(t, a.Polygons, 1)

	// Only the first sub-polygon's outer ring is drawn.
	ring := a.Polygons[0].Ring
	require.Len(t, ring, 4)
	assert.Equal(t, [2]float64{37.75, -122.45}, ring[0])
}

func TestRender_BadGeometryIsIsolated(t *testing.T) {
	bad := renderable("bad", 60)
	bad.Geometry = `{"type":"Point","coordinates":[-122.4,37.7]}`
	garbage := renderable("garbage", 70)
	garbage.Geometry = `not json`

	records := []model.BlockGroup{renderable("ok", 50), bad, garbage}

	a, err := Render(records, model.MetricOpportunityScore, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, a.SkippedGeometries)
	require.Len(t, a.Polygons, 1)
	assert.Equal(t, "ok", a.Polygons[0].BlockGroup)
}

func TestRender_GymMarkers(t *testing.T) {
	gyms := []model.GymLocation{
		{DisplayName: "Iron Works", GymType: "gym", Latitude: 37.77, Longitude: -122.41},
	}

	a, err := Render([]model.BlockGroup{renderable("a", 50)}, model.MetricOpportunityScore, true, gyms)
	require.NoError(t, err)

	require.Len(t, a.Gyms, 1)
	g := a.Gyms[0]
	assert.Equal(t, 37.77, g.Lat)
	assert.Equal(t, -122.41, g.Lng)
	assert.Equal(t, 4, g.Radius)
	assert.Equal(t, "blue", g.Color)
	assert.InDelta(t, 0.7, g.FillOpacity, 1e-9)
	assert.Equal(t, "<b>Iron Works</b><br>Type: gym", g.Popup)
	assert.Equal(t, "Iron Works", g.Tooltip)
	assert.Equal(t, LayerToggle{Name: "Gym Locations", Visible: true}, a.Layers[1])
}

func TestRender_Legend(t *testing.T) {
	records := []model.BlockGroup{
		renderable("a", 10),
		renderable("b", 90),
	}

	a, err := Render(records, model.MetricDistanceMiles, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "Distance to Nearest Gym (Red = Farther)", a.Legend.Caption)
	assert.Equal(t, []string{"#008000", "#ffff00", "#ffa500", "#ff0000"}, a.Legend.Stops)
}

func TestRender_PopupFormatting(t *testing.T) {
	rec := model.BlockGroup{
		CensusBlockGroup:          "060750101001",
		OpportunityTier:           "High",
		TotalPopulation:           12345,
		GymsWithinHalfMile:        2,
		GymsWithin1Mile:           6,
		DistanceToNearestGymMiles: 0.456,
		AccessibilityRating:       "Poor",
		MedianHouseholdIncome:     98765,
		PopAge18To54:              8100,
		OpportunityScore:          87.4,
		Geometry:                  squareGeoJSON,
	}

	a, err := Render([]model.BlockGroup{rec}, model.MetricOpportunityScore, false, nil)
	require.NoError(t, err)
	require.Len(t, a.Polygons, 1)

	popup := a.Polygons[0].Popup
	assert.Contains(t, popup, "<h4>Census Block: 060750101001</h4>")
	assert.Contains(t, popup, "<b>Population:</b> 12,345<br>")
	assert.Contains(t, popup, "<b>Gyms (0.5mi):</b> 2<br>")
	assert.Contains(t, popup, "<b>Nearest Gym:</b> 0.46 miles<br>")
	assert.Contains(t, popup, "<b>Median Income:</b> $98,765<br>")
	assert.Contains(t, popup, "<b>Working Age Pop:</b> 8,100<br>")
	assert.Contains(t, popup, "<b>Opportunity Score:</b> 87")
}
