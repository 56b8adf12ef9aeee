package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/leap-analytics/gymscope/internal/export"
	"github.com/leap-analytics/gymscope/internal/filter"
	"github.com/leap-analytics/gymscope/internal/maprender"
	"github.com/leap-analytics/gymscope/internal/model"
	"github.com/leap-analytics/gymscope/internal/summary"
	"github.com/leap-analytics/gymscope/internal/warehouse"
)

// emptyStateMessage is shown instead of the map when filters exclude every
// record. Rendering is skipped entirely in that case.
const emptyStateMessage = "No data matches the current filters. Please adjust your selections."

const topOpportunityCount = 10

// metricOption is one entry of the metric selector.
type metricOption struct {
	Key   model.Metric `json:"key"`
	Label string       `json:"label"`
}

// filtersResponse feeds the sidebar controls: observed tier set, slider
// ceilings, metric options, and the default filter state.
type filtersResponse struct {
	Tiers         []string          `json:"tiers"`
	MaxPopulation int               `json:"max_population"`
	MaxDistance   float64           `json:"max_distance"`
	Metrics       []metricOption    `json:"metrics"`
	Defaults      model.FilterState `json:"defaults"`
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.FetchBlockGroupMetrics(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	opts := make([]metricOption, 0, len(model.Metrics))
	for _, m := range model.Metrics {
		opts = append(opts, metricOption{Key: m, Label: m.DisplayName()})
	}

	writeJSON(w, http.StatusOK, filtersResponse{
		Tiers:         filter.Tiers(records),
		MaxPopulation: filter.MaxPopulation(records),
		MaxDistance:   filter.MaxDistance(records),
		Metrics:       opts,
		Defaults:      filter.Defaults(records),
	})
}

// mapResponse wraps the artifact, or carries the empty-state message when no
// records survive the filters.
type mapResponse struct {
	Empty    bool                `json:"empty"`
	Message  string              `json:"message,omitempty"`
	Artifact *maprender.Artifact `json:"artifact,omitempty"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.filteredRecords(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if len(filtered) == 0 {
		writeJSON(w, http.StatusOK, mapResponse{Empty: true, Message: emptyStateMessage})
		return
	}

	params := parseMapParams(r)
	var gyms []model.GymLocation
	if params.ShowGyms {
		gyms, err = s.store.FetchGymLocations(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
	}

	artifact, err := maprender.Render(filtered, params.Metric, params.ShowGyms, gyms)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{Artifact: artifact})
}

// blocksResponse is the data-table panel: the fixed display projection of the
// filtered records.
type blocksResponse struct {
	Count int          `json:"count"`
	Rows  []export.Row `json:"rows"`
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.filteredRecords(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocksResponse{
		Count: len(filtered),
		Rows:  export.Rows(filtered),
	})
}

// summaryResponse is the metric row plus the analytics tab.
type summaryResponse struct {
	Totals          summary.Totals             `json:"totals"`
	ByTier          []summary.TierRow          `json:"by_tier"`
	ByAccessibility []summary.AccessibilityRow `json:"by_accessibility"`
	Top             []export.Row               `json:"top_opportunities"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.FetchBlockGroupMetrics(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	filtered := filter.Apply(records, parseFilterState(r, records))

	totals := summary.Compute(filtered)
	totals.FilteredOutOfTotal = len(records)

	writeJSON(w, http.StatusOK, summaryResponse{
		Totals:          totals,
		ByTier:          summary.ByTier(filtered),
		ByAccessibility: summary.ByAccessibility(filtered),
		Top:             export.Rows(summary.TopOpportunities(filtered, topOpportunityCount)),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.filteredRecords(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := export.CSV(filtered)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sf_gym_opportunities.csv"`)
	_, _ = w.Write(data)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	filtered, err := s.filteredRecords(r)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.XLSX(&buf, filtered); err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="sf_gym_opportunities.xlsx"`)
	_, _ = buf.WriteTo(w)
}

// filteredRecords loads the mart snapshot and applies the request's filter
// state.
func (s *Server) filteredRecords(r *http.Request) ([]model.BlockGroup, error) {
	records, err := s.store.FetchBlockGroupMetrics(r.Context())
	if err != nil {
		return nil, err
	}
	return filter.Apply(records, parseFilterState(r, records)), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeStoreError maps the error taxonomy onto HTTP statuses: connection
// failures are 503 (the warehouse, not this service, is down), schema breaks
// are 500, anything else is 500.
func writeStoreError(w http.ResponseWriter, err error) {
	var connErr *warehouse.ConnectionError
	var schemaErr *warehouse.SchemaError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &connErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &schemaErr):
		status = http.StatusInternalServerError
	}

	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
