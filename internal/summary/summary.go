// Package summary derives the aggregate counters, grouped distributions, and
// top-opportunity view shown in the dashboard's metric row and analytics tab.
package summary

import (
	"math"
	"sort"

	"github.com/leap-analytics/gymscope/internal/model"
)

// Totals are the four headline metrics above the tabs.
type Totals struct {
	Blocks             int     `json:"blocks"`
	TotalPopulation    int     `json:"total_population"`
	AvgGymsHalfMile    float64 `json:"avg_gyms_half_mile"`
	UnderservedBlocks  int     `json:"underserved_blocks"`
	FilteredOutOfTotal int     `json:"filtered_out_of_total,omitempty"`
}

// TierRow is one row of the opportunity tier distribution.
type TierRow struct {
	Tier       string  `json:"tier"`
	Blocks     int     `json:"blocks"`
	Population int     `json:"population"`
	AvgScore   float64 `json:"avg_score"`
}

// AccessibilityRow is one row of the accessibility rating distribution.
type AccessibilityRow struct {
	Rating     string `json:"rating"`
	Blocks     int    `json:"blocks"`
	Population int    `json:"population"`
}

// Compute returns the headline metrics for the filtered dataset. The average
// half-mile gym count is rounded to one decimal.
func Compute(records []model.BlockGroup) Totals {
	t := Totals{Blocks: len(records)}
	var gymSum int
	for _, r := range records {
		t.TotalPopulation += r.TotalPopulation
		gymSum += r.GymsWithinHalfMile
		if r.IsUnderserved {
			t.UnderservedBlocks++
		}
	}
	if len(records) > 0 {
		t.AvgGymsHalfMile = round1(float64(gymSum) / float64(len(records)))
	}
	return t
}

// ByTier groups by opportunity tier with block count, population sum, and
// mean opportunity score rounded to whole numbers. Rows are ordered by tier
// label.
func ByTier(records []model.BlockGroup) []TierRow {
	type agg struct {
		blocks int
		pop    int
		score  float64
	}
	groups := make(map[string]*agg)
	for _, r := range records {
		g := groups[r.OpportunityTier]
		if g == nil {
			g = &agg{}
			groups[r.OpportunityTier] = g
		}
		g.blocks++
		g.pop += r.TotalPopulation
		g.score += r.OpportunityScore
	}

	rows := make([]TierRow, 0, len(groups))
	for tier, g := range groups {
		rows = append(rows, TierRow{
			Tier:       tier,
			Blocks:     g.blocks,
			Population: g.pop,
			AvgScore:   math.Round(g.score / float64(g.blocks)),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Tier < rows[j].Tier })
	return rows
}

// ByAccessibility groups by accessibility rating with block count and
// population sum, ordered by rating label.
func ByAccessibility(records []model.BlockGroup) []AccessibilityRow {
	type agg struct {
		blocks int
		pop    int
	}
	groups := make(map[string]*agg)
	for _, r := range records {
		g := groups[r.AccessibilityRating]
		if g == nil {
			g = &agg{}
			groups[r.AccessibilityRating] = g
		}
		g.blocks++
		g.pop += r.TotalPopulation
	}

	rows := make([]AccessibilityRow, 0, len(groups))
	for rating, g := range groups {
		rows = append(rows, AccessibilityRow{Rating: rating, Blocks: g.blocks, Population: g.pop})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Rating < rows[j].Rating })
	return rows
}

// TopOpportunities returns the n records with the highest opportunity score.
// The sort is stable, so ties keep their original input order.
func TopOpportunities(records []model.BlockGroup, n int) []model.BlockGroup {
	sorted := make([]model.BlockGroup, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OpportunityScore > sorted[j].OpportunityScore
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
