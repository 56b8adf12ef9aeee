package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/leap-analytics/gymscope/internal/filter"
	"github.com/leap-analytics/gymscope/internal/model"
)

// parseFilterState builds the filter state from the query string. Absent
// parameters take the sidebar defaults: all observed tiers, no population
// floor, distance ceiling at the observed maximum, water exclusion on.
//
//	tiers=High Opportunity,Medium Opportunity
//	min_population=500
//	max_distance=1.5
//	exclude_water=true|false
func parseFilterState(r *http.Request, records []model.BlockGroup) model.FilterState {
	q := r.URL.Query()
	state := filter.Defaults(records)

	if raw := q.Get("tiers"); raw != "" {
		var tiers []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tiers = append(tiers, t)
			}
		}
		state.Tiers = tiers
	}

	if raw := q.Get("min_population"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			state.MinPopulation = n
		}
	}

	if raw := q.Get("max_distance"); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
			state.MaxDistanceMiles = f
		}
	}

	if raw := q.Get("exclude_water"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			state.ExcludeWaterBlocks = b
		}
	}

	return state
}

// mapParams are the render options beyond the filter state.
type mapParams struct {
	Metric   model.Metric
	ShowGyms bool
}

// parseMapParams reads the metric selector and gym-visibility checkbox.
// Unknown metric keys are passed through; the renderer falls back to the
// opportunity scale rather than failing.
func parseMapParams(r *http.Request) mapParams {
	q := r.URL.Query()

	params := mapParams{Metric: model.MetricOpportunityScore, ShowGyms: true}
	if raw := q.Get("metric"); raw != "" {
		params.Metric = model.Metric(raw)
	}
	if raw := q.Get("gyms"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			params.ShowGyms = b
		}
	}
	return params
}
