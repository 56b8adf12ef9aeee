package maprender

import (
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leap-analytics/gymscope/internal/model"
)

// ErrNoRecords is returned when Render is called with zero records. Callers
// are expected to show an empty-state message instead of rendering; the
// percentile and min/max domains are undefined on empty input.
var ErrNoRecords = eris.New("maprender: no records to render")

// Render builds the map artifact for the filtered records: one colored
// polygon per block group under the active metric's color scale, optional gym
// markers in a separate togglable layer, a legend, and layer toggles.
func Render(records []model.BlockGroup, metric model.Metric, showGyms bool, gyms []model.GymLocation) (*Artifact, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	scale, caption := scaleFor(metric, records)

	a := &Artifact{
		Center:   sfCenter,
		Zoom:     defaultZoom,
		Tiles:    tileLayer,
		Polygons: make([]PolygonFeature, 0, len(records)),
		Legend: Legend{
			Caption: caption,
			Min:     scale.Min,
			Max:     scale.Max,
			Stops:   scale.StopHexes(),
		},
		Layers: []LayerToggle{
			{Name: polygonLayerName, Visible: true},
			{Name: gymLayerName, Visible: showGyms},
		},
	}

	fmtNum := message.NewPrinter(language.English)

	for _, r := range records {
		ring, err := outerRing(r.CensusBlockGroup, r.Geometry)
		if err != nil {
			// One bad geometry must not abort the rest of the map.
			zap.L().Warn("maprender: skipping record with bad geometry",
				zap.String("block_group", r.CensusBlockGroup),
				zap.Error(err),
			)
			a.SkippedGeometries++
			continue
		}

		a.Polygons = append(a.Polygons, PolygonFeature{
			BlockGroup:  r.CensusBlockGroup,
			Ring:        ring,
			FillColor:   scale.Color(metric.Value(r)),
			BorderColor: borderColor,
			Weight:      borderWeight,
			FillOpacity: fillOpacity,
			Popup:       popupHTML(fmtNum, r),
			Tooltip:     fmt.Sprintf("CBG: %s | %s", r.CensusBlockGroup, r.OpportunityTier),
		})
	}

	if showGyms {
		a.Gyms = make([]GymMarker, 0, len(gyms))
		for _, g := range gyms {
			a.Gyms = append(a.Gyms, GymMarker{
				Lat:         g.Latitude,
				Lng:         g.Longitude,
				Radius:      gymMarkerRadius,
				Color:       gymMarkerColor,
				FillOpacity: gymMarkerOpacity,
				Popup:       fmt.Sprintf("<b>%s</b><br>Type: %s", g.DisplayName, g.GymType),
				Tooltip:     g.DisplayName,
			})
		}
	}

	return a, nil
}

// popupHTML renders the information popup for one block group with the fixed
// human-readable formatting: thousands separators, a currency prefix on
// income, two decimals on distance, whole numbers on scores.
func popupHTML(p *message.Printer, r model.BlockGroup) string {
	return fmt.Sprintf(`<div style="font-family: Arial; width: 250px;">`+
		`<h4>Census Block: %s</h4><hr>`+
		`<b>Opportunity Tier:</b> %s<br>`+
		`<b>Population:</b> %s<br>`+
		`<b>Gyms (0.5mi):</b> %d<br>`+
		`<b>Gyms (1mi):</b> %d<br>`+
		`<b>Nearest Gym:</b> %.2f miles<br>`+
		`<b>Accessibility:</b> %s<br><hr>`+
		`<b>Median Income:</b> $%s<br>`+
		`<b>Working Age Pop:</b> %s<br>`+
		`<b>Opportunity Score:</b> %s`+
		`</div>`,
		r.CensusBlockGroup,
		r.OpportunityTier,
		p.Sprintf("%d", r.TotalPopulation),
		r.GymsWithinHalfMile,
		r.GymsWithin1Mile,
		r.DistanceToNearestGymMiles,
		r.AccessibilityRating,
		p.Sprintf("%.0f", r.MedianHouseholdIncome),
		p.Sprintf("%d", r.PopAge18To54),
		p.Sprintf("%.0f", r.OpportunityScore),
	)
}
